package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("Order not found")
	ErrPricesChanged     = apperror.Conflict("Product prices changed")
	ErrDuplicate         = apperror.Conflict("Order creation failed due to duplicate entry")
	ErrForbidden         = apperror.Forbidden("Unauthorized access or order not found")
	ErrNoPayment         = apperror.Validation("No payment associated with this order")
	ErrPaymentNotPending = apperror.Validation("Payment is not in pending status")
)

// CreateOptions tune the atomic order write
type CreateOptions struct {
	// ClearCartOfUser empties this user's cart in the same transaction
	ClearCartOfUser string
	// PriceTolerance is the allowed drift between the snapshot price and the
	// product price re-read under lock before commit.
	PriceTolerance decimal.Decimal
}

// StatusUpdate is a validated admin status change. Nil fields are left as is.
type StatusUpdate struct {
	Status            Status
	TrackingID        *string
	ShippingMethod    *ShippingMethod
	EstimatedDelivery *time.Time
	PaymentStatus     *PaymentStatus
}

// ListFilter narrows an order listing
type ListFilter struct {
	UserID        string
	Status        *Status
	PaymentStatus *PaymentStatus
	Offset        int
	Limit         int
}

// Repository persists orders of both kinds
type Repository interface {
	// Create writes the order, its items and payment, and optionally clears
	// the buyer's cart, as one unit.
	Create(ctx context.Context, o *Order, opts CreateOptions) error
	// FindByID loads the order with items, products, payment and buyer.
	FindByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int64, error)
	// UpdateStatus applies upd, mirrors a supplied payment status onto the
	// payment record and appends a history entry, as one unit.
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*Order, error)
	SetPaymentProof(ctx context.Context, orderID, url string) error
	// Delete removes history, payment and items before the order itself.
	Delete(ctx context.Context, id string) error
}
