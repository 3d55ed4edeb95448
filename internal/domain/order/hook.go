package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Hook is a named side effect run after an order change has committed
type Hook interface {
	Name() string
	Run(ctx context.Context, o *Order) error
}

// HookFunc adapts a function into a Hook
type HookFunc struct {
	HookName string
	Fn       func(ctx context.Context, o *Order) error
}

func (h HookFunc) Name() string                            { return h.HookName }
func (h HookFunc) Run(ctx context.Context, o *Order) error { return h.Fn(ctx, o) }

// Hooks groups post-commit hooks by event
type Hooks struct {
	Placed        []Hook
	StatusChanged []Hook
}

// HookRunner executes post-commit hooks off the request path. Every hook is
// isolated: an error or panic is logged and the remaining hooks still run.
type HookRunner struct {
	logger  *logrus.Logger
	timeout time.Duration
	sync    bool
	wg      sync.WaitGroup
}

// NewHookRunner creates a runner that gives each hook at most timeout
func NewHookRunner(logger *logrus.Logger, timeout time.Duration) *HookRunner {
	return &HookRunner{logger: logger, timeout: timeout}
}

// NewSyncHookRunner runs hooks on the calling goroutine
func NewSyncHookRunner(logger *logrus.Logger) *HookRunner {
	return &HookRunner{logger: logger, sync: true}
}

// Run schedules hooks for the committed order o. The request context only
// contributes values; cancellation of the request does not stop the hooks.
func (r *HookRunner) Run(ctx context.Context, event string, o *Order, hooks []Hook) {
	if r == nil || len(hooks) == 0 || o == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	if r.sync {
		r.runAll(detached, event, o, hooks)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.runAll(detached, event, o, hooks)
	}()
}

// Wait blocks until all scheduled hooks finished
func (r *HookRunner) Wait() {
	if r != nil {
		r.wg.Wait()
	}
}

func (r *HookRunner) runAll(ctx context.Context, event string, o *Order, hooks []Hook) {
	for _, h := range hooks {
		start := time.Now()
		err := r.runOne(ctx, h, o)

		entry := r.logger.WithFields(logrus.Fields{
			"event":    event,
			"hook":     h.Name(),
			"order_id": o.ID,
			"duration": time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("post-commit hook failed")
			continue
		}
		entry.Debug("post-commit hook completed")
	}
}

func (r *HookRunner) runOne(ctx context.Context, h Hook, o *Order) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("hook panicked: %v", rec)
		}
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return h.Run(ctx, o)
}
