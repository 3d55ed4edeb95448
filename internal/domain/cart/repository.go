package cart

import (
	"context"

	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

var (
	ErrItemNotFound       = apperror.NotFound("Item not found in cart")
	ErrProductUnavailable = apperror.Validation("Product is not available")
)

// Repository persists carts
type Repository interface {
	// GetOrCreate returns the user's cart with items and their products,
	// creating an empty cart on first use.
	GetOrCreate(ctx context.Context, userID string) (*Cart, error)
	// AddQuantity increments the line for productID, creating it when absent.
	AddQuantity(ctx context.Context, cartID, productID string, quantity int) error
	// SetQuantity overwrites the quantity of an existing line.
	SetQuantity(ctx context.Context, cartID, productID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error
}
