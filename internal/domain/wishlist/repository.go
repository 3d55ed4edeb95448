package wishlist

import (
	"context"

	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

var (
	ErrAlreadyInWishlist = apperror.Conflict("Product already in wishlist")
	ErrItemNotFound      = apperror.NotFound("Item not found in wishlist")
)

// Repository persists wishlists
type Repository interface {
	// GetOrCreate returns the user's wishlist with items and products. A new
	// wishlist is created with the given item limit.
	GetOrCreate(ctx context.Context, userID string, limit int) (*Wishlist, error)
	// AddItem inserts productID; an existing entry is left untouched.
	AddItem(ctx context.Context, wishlistID, productID string) error
	RemoveItem(ctx context.Context, wishlistID, productID string) error
}
