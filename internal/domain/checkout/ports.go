package checkout

import (
	"context"
	"io"
	"time"

	"github.com/your-org/bookstore-backend/internal/domain/upload"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

var (
	ErrInvalidItem     = apperror.Validation("Invalid item data: productId, quantity, and price are required")
	ErrInvalidCharges  = apperror.Validation("Taxes and shipping fee must not be negative")
	ErrInvalidMobile   = apperror.Validation("Invalid mobile number")
	ErrRequestInFlight = apperror.Conflict("An order with this Idempotency-Key is already being processed")
)

// IdempotencyStore remembers which order a client request key produced
type IdempotencyStore interface {
	// Reserve claims key. When the key is already taken it reports the order
	// id stored for it, or "" while the first request is still running.
	Reserve(ctx context.Context, key string, ttl time.Duration) (existingOrderID string, reserved bool, err error)
	// Complete records the order created for a reserved key.
	Complete(ctx context.Context, key, orderID string, ttl time.Duration) error
	// Release frees a reserved key after a failed attempt.
	Release(ctx context.Context, key string) error
}

// UserFinder resolves the registered buyer
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// ProfileWriter stores the shipping details a buyer asked to keep
type ProfileWriter interface {
	SaveShippingInfo(ctx context.Context, userID string, info user.ShippingInfo) (*user.User, error)
}

// FileStore keeps uploaded payment proofs
type FileStore interface {
	Upload(ctx context.Context, r io.Reader, filename, folder, publicID string) (*upload.Result, error)
}
