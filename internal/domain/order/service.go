// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
	"github.com/your-org/bookstore-backend/internal/pkg/pagination"
	"github.com/your-org/bookstore-backend/internal/pkg/validation"
)

// Service handles order reads and the admin status workflow
type Service struct {
	repo   Repository
	runner *HookRunner
	hooks  []Hook
	logger *logrus.Logger
}

// NewService creates a new order service. hooks run after every committed
// status update.
func NewService(repo Repository, runner *HookRunner, logger *logrus.Logger, hooks ...Hook) *Service {
	return &Service{
		repo:   repo,
		runner: runner,
		hooks:  hooks,
		logger: logger,
	}
}

// StatusUpdateInput is the admin request to change an order. Empty optional
// fields are ignored.
type StatusUpdateInput struct {
	Status            string `json:"status" validate:"required"`
	TrackingID        string `json:"trackingId" validate:"omitempty,max=100"`
	ShippingMethod    string `json:"shippingMethod"`
	EstimatedDelivery string `json:"estimatedDelivery"`
	PaymentStatus     string `json:"paymentStatus"`
}

// AdminListQuery represents admin order list parameters
type AdminListQuery struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"paymentStatus"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
}

// List is one page of normalized orders
type List struct {
	Orders     []View                `json:"orders"`
	Pagination pagination.Pagination `json:"pagination"`
}

// Get returns an order of either kind
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.FindByID(ctx, id)
}

// GetForUser returns an order only when userID placed it
func (s *Service) GetForUser(ctx context.Context, userID, id string) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(userID) {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListForUser returns the user's orders, newest first
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	orders, _, err := s.repo.List(ctx, ListFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// AdminList returns registered and guest orders together, newest first
func (s *Service) AdminList(ctx context.Context, q AdminListQuery) (*List, error) {
	filter := ListFilter{}

	if q.Status != "" {
		st, err := ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}
	if q.PaymentStatus != "" {
		ps, err := ParsePaymentStatus(q.PaymentStatus)
		if err != nil {
			return nil, err
		}
		filter.PaymentStatus = &ps
	}

	page, limit := pagination.Normalize(q.Page, q.Limit, 20)
	filter.Offset = pagination.Offset(page, limit)
	filter.Limit = limit

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &List{
		Orders:     NewViews(orders),
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// UpdateStatus validates every supplied value, then applies the change
// atomically and notifies the buyer after commit. Any status may follow any
// other; the history keeps the full trail.
func (s *Service) UpdateStatus(ctx context.Context, id string, in StatusUpdateInput) (*Order, error) {
	upd, err := ParseStatusUpdate(in)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.UpdateStatus(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"status":   o.Status,
		"guest":    o.IsGuest(),
	}).Info("order status updated")

	s.runner.Run(ctx, "order.status_changed", o, s.hooks)
	return o, nil
}

// Delete removes an order and its dependent rows
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithField("order_id", id).Info("order deleted")
	return nil
}

// ParseStatusUpdate turns raw admin input into a StatusUpdate, rejecting
// unknown enum values before anything is written.
func ParseStatusUpdate(in StatusUpdateInput) (StatusUpdate, error) {
	if err := validation.Struct(in); err != nil {
		return StatusUpdate{}, err
	}

	status, err := ParseStatus(strings.TrimSpace(in.Status))
	if err != nil {
		return StatusUpdate{}, err
	}
	upd := StatusUpdate{Status: status}

	if v := strings.TrimSpace(in.ShippingMethod); v != "" {
		sm, err := ParseShippingMethod(v)
		if err != nil {
			return StatusUpdate{}, err
		}
		upd.ShippingMethod = &sm
	}
	if v := strings.TrimSpace(in.PaymentStatus); v != "" {
		ps, err := ParsePaymentStatus(v)
		if err != nil {
			return StatusUpdate{}, err
		}
		upd.PaymentStatus = &ps
	}
	if v := strings.TrimSpace(in.TrackingID); v != "" {
		upd.TrackingID = &v
	}
	if v := strings.TrimSpace(in.EstimatedDelivery); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return StatusUpdate{}, apperror.Validation("Invalid estimated delivery date")
		}
		upd.EstimatedDelivery = &t
	}

	return upd, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", v)
}
