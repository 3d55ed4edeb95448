// internal/domain/notification/dispatcher.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/pkg/email"
)

// DefaultTimeout bounds a single send when none is configured
const DefaultTimeout = 15 * time.Second

var errTimeout = errors.New("email send timed out")

// Sender is a mail provider
type Sender interface {
	Send(ctx context.Context, e *email.Email) (string, error)
}

// Message is one outgoing notification
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Type    email.EmailType
}

// Result reports the outcome of a send
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Dispatcher delivers notifications best-effort. Send never panics and never
// takes longer than the configured timeout.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  *logrus.Logger
}

// NewDispatcher creates a dispatcher around sender
func NewDispatcher(sender Sender, timeout time.Duration, logger *logrus.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{sender: sender, timeout: timeout, logger: logger}
}

type outcome struct {
	id  string
	err error
}

// Send delivers msg and reports the outcome. Failures are logged and returned
// in the Result only.
func (d *Dispatcher) Send(ctx context.Context, msg Message) Result {
	if err := validate(msg); err != nil {
		return d.fail(msg, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// Buffered so the sender goroutine can finish after a timeout
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("email provider panicked: %v", r)}
			}
		}()
		id, err := d.sender.Send(ctx, &email.Email{
			To:          []string{msg.To},
			Subject:     msg.Subject,
			HTMLContent: msg.HTML,
			TextContent: msg.Text,
			Type:        msg.Type,
		})
		done <- outcome{id: id, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return d.fail(msg, errTimeout)
			}
			return d.fail(msg, out.err)
		}
		d.logger.WithFields(logrus.Fields{
			"to":   msg.To,
			"type": msg.Type,
			"id":   out.id,
		}).Info("notification sent")
		return Result{Success: true, ID: out.id}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return d.fail(msg, errTimeout)
		}
		return d.fail(msg, ctx.Err())
	}
}

func (d *Dispatcher) fail(msg Message, err error) Result {
	d.logger.WithError(err).WithFields(logrus.Fields{
		"to":      msg.To,
		"type":    msg.Type,
		"subject": msg.Subject,
	}).Warn("notification failed")
	return Result{Success: false, Error: err.Error()}
}

func validate(msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient is required")
	}
	if msg.HTML == "" && msg.Text == "" {
		return errors.New("message body is required")
	}
	return nil
}
