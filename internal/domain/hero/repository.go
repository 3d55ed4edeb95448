package hero

import (
	"context"

	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

var (
	ErrNotFound       = apperror.NotFound("Hero image not found")
	ErrDuplicateImage = apperror.Conflict("Image URL already exists")
	ErrImageRequired  = apperror.Validation("Image file is required")
	ErrActiveLimit    = apperror.Validation("Maximum limit of 10 active hero images reached. Please deactivate some images first.")
)

// Repository persists hero banners
type Repository interface {
	// List returns banners ordered by sort order then id.
	List(ctx context.Context, activeOnly bool) ([]HeroImage, error)
	FindByID(ctx context.Context, id uint) (*HeroImage, error)
	CountActive(ctx context.Context) (int64, error)
	// Create and Save fail with ErrDuplicateImage on a reused image URL.
	Create(ctx context.Context, h *HeroImage) error
	Save(ctx context.Context, h *HeroImage) error
	Delete(ctx context.Context, id uint) error
}
