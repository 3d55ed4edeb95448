package review

import (
	"context"

	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

var ErrAlreadyReviewed = apperror.Conflict("You have already reviewed this product")

// Repository persists reviews
type Repository interface {
	// Create fails with ErrAlreadyReviewed when the user reviewed the product before.
	Create(ctx context.Context, r *Review) error
	Exists(ctx context.Context, productID, userID string) (bool, error)
	// ListByProduct returns a page of reviews, newest first, with their authors.
	ListByProduct(ctx context.Context, productID string, offset, limit int) ([]Review, int64, error)
	AverageRating(ctx context.Context, productID string) (float64, error)
}
