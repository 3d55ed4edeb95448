// internal/pkg/email/service.go
package email

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/config"
)

// EmailService sends mail through the configured provider
type EmailService struct {
	config config.EmailConfig
	client *http.Client
	logger *logrus.Logger
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig, logger *logrus.Logger) *EmailService {
	return &EmailService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Provider returns the configured provider name
func (s *EmailService) Provider() string {
	return s.config.Provider
}

// Send delivers email and returns the provider's message id when it reports one
func (s *EmailService) Send(ctx context.Context, email *Email) (string, error) {
	if len(email.To) == 0 {
		return "", fmt.Errorf("email has no recipients")
	}

	var (
		id  string
		err error
	)
	switch s.config.Provider {
	case "smtp":
		err = s.sendSMTPEmail(email)
	case "resend":
		id, err = s.sendResendEmail(ctx, email)
	case "sendgrid":
		id, err = s.sendSendGridEmail(ctx, email)
	case "mailersend":
		id, err = s.sendMailerSendEmail(ctx, email)
	default:
		return "", fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
	if err != nil {
		return "", err
	}

	s.logger.WithFields(logrus.Fields{
		"provider": s.config.Provider,
		"type":     email.Type,
		"id":       id,
	}).Debug("email sent")

	return id, nil
}

// from returns the formatted sender address
func (s *EmailService) from() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}
