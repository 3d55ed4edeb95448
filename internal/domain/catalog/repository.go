package catalog

import (
	"context"
	"time"

	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

var (
	ErrNotFound  = apperror.NotFound("Product not found")
	ErrDuplicate = apperror.Conflict("Product name or ISBN already exists")
	ErrInUse     = apperror.Conflict("Product is part of existing orders; mark it unavailable instead")
)

// Reader is the read contract every other component uses for price and
// availability truth.
type Reader interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	// FindByIDs returns the products that exist; missing ids are simply absent.
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)
}

// Repository persists products
type Repository interface {
	Reader
	List(ctx context.Context, filter ListFilter) ([]Product, int64, error)
	Create(ctx context.Context, p *Product) error
	Save(ctx context.Context, p *Product) error
	// Delete removes the product together with its reviews, cart and wishlist
	// lines. It fails with ErrInUse when an order item references the product.
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows a product listing
type ListFilter struct {
	Category      string
	Bestseller    *bool
	Search        string
	OnlyAvailable bool
	Offset        int
	Limit         int
}

// Cache is a string key/value cache used for product reads
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ImageRemover deletes a stored product image
type ImageRemover interface {
	Destroy(ctx context.Context, publicID string) error
}
