// internal/domain/hero/service.go
package hero

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/domain/upload"
	"github.com/your-org/bookstore-backend/internal/pkg/validation"
)

const imageFolder = "hero_images"

// ImageStore keeps banner images
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, filename, folder, publicID string) (*upload.Result, error)
	Destroy(ctx context.Context, publicID string) error
}

// Service handles hero banner business logic
type Service struct {
	repo   Repository
	images ImageStore
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new hero service
func NewService(repo Repository, images ImageStore, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		images: images,
		logger: logger,
		now:    time.Now,
	}
}

// Image is an uploaded banner file
type Image struct {
	File     io.Reader
	Filename string
}

// CreateInput represents a new banner
type CreateInput struct {
	Title     string `form:"title" json:"title" validate:"max=255"`
	AltText   string `form:"altText" json:"altText" validate:"max=255"`
	SortOrder int    `form:"sortOrder" json:"sortOrder"`
}

// UpdateInput represents a partial banner update
type UpdateInput struct {
	Title     *string `form:"title" json:"title" validate:"omitempty,max=255"`
	AltText   *string `form:"altText" json:"altText" validate:"omitempty,max=255"`
	IsActive  *bool   `form:"isActive" json:"isActive"`
	SortOrder *int    `form:"sortOrder" json:"sortOrder"`
}

// AdminList is every banner plus how many are live
type AdminList struct {
	Images      []HeroImage `json:"data"`
	ActiveCount int64       `json:"activeCount"`
}

// ListActive returns the banners shown on the storefront
func (s *Service) ListActive(ctx context.Context) ([]HeroImage, error) {
	return s.repo.List(ctx, true)
}

// ListAll returns every banner for the admin panel
func (s *Service) ListAll(ctx context.Context) (*AdminList, error) {
	images, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminList{Images: images, ActiveCount: active}, nil
}

// Create uploads a banner image and stores it as active
func (s *Service) Create(ctx context.Context, in CreateInput, image *Image) (*HeroImage, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if image == nil || image.File == nil {
		return nil, ErrImageRequired
	}
	if err := s.ensureActiveSlot(ctx); err != nil {
		return nil, err
	}

	stored, err := s.images.Upload(ctx, image.File, image.Filename, imageFolder,
		fmt.Sprintf("hero_image_%d", s.now().UnixMilli()))
	if err != nil {
		return nil, err
	}

	h := &HeroImage{
		Title:         in.Title,
		AltText:       in.AltText,
		ImageURL:      stored.URL,
		ImagePublicID: stored.PublicID,
		IsActive:      true,
		SortOrder:     in.SortOrder,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		s.destroy(ctx, stored.PublicID)
		return nil, err
	}
	return h, nil
}

// Update changes banner fields and optionally replaces the image
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput, image *Image) (*HeroImage, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.IsActive != nil && *in.IsActive && !h.IsActive {
		if err := s.ensureActiveSlot(ctx); err != nil {
			return nil, err
		}
	}

	var replaced string
	if image != nil && image.File != nil {
		stored, err := s.images.Upload(ctx, image.File, image.Filename, imageFolder,
			fmt.Sprintf("hero_image_%d_%d", id, s.now().UnixMilli()))
		if err != nil {
			return nil, err
		}
		replaced = h.ImagePublicID
		h.ImageURL = stored.URL
		h.ImagePublicID = stored.PublicID
	}

	if in.Title != nil {
		h.Title = *in.Title
	}
	if in.AltText != nil {
		h.AltText = *in.AltText
	}
	if in.IsActive != nil {
		h.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		h.SortOrder = *in.SortOrder
	}

	if err := s.repo.Save(ctx, h); err != nil {
		return nil, err
	}

	s.destroy(ctx, replaced)
	return h, nil
}

// ToggleActive flips a banner on or off
func (s *Service) ToggleActive(ctx context.Context, id uint) (*HeroImage, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !h.IsActive {
		if err := s.ensureActiveSlot(ctx); err != nil {
			return nil, err
		}
	}

	h.IsActive = !h.IsActive
	if err := s.repo.Save(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Delete removes a banner and its image
func (s *Service) Delete(ctx context.Context, id uint) error {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.destroy(ctx, h.ImagePublicID)
	return nil
}

func (s *Service) ensureActiveSlot(ctx context.Context) error {
	active, err := s.repo.CountActive(ctx)
	if err != nil {
		return err
	}
	if active >= MaxActive {
		return ErrActiveLimit
	}
	return nil
}

func (s *Service) destroy(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.images.Destroy(ctx, publicID); err != nil {
		s.logger.WithError(err).WithField("public_id", publicID).Warn("failed to delete hero image")
	}
}
