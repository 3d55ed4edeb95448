package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/bookstore-backend/internal/domain/hero"
	"gorm.io/gorm"
)

type heroRepo struct{ db *gorm.DB }

func (r *heroRepo) List(ctx context.Context, activeOnly bool) ([]hero.HeroImage, error) {
	query := r.db.WithContext(ctx).Model(&hero.HeroImage{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var images []hero.HeroImage
	if err := query.Order("sort_order ASC").Order("id ASC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list hero images: %w", err)
	}
	return images, nil
}

func (r *heroRepo) FindByID(ctx context.Context, id uint) (*hero.HeroImage, error) {
	var h hero.HeroImage
	if err := r.db.WithContext(ctx).First(&h, id).Error; err != nil {
		if isNotFound(err) {
			return nil, hero.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hero image: %w", err)
	}
	return &h, nil
}

func (r *heroRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&hero.HeroImage{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count hero images: %w", err)
	}
	return count, nil
}

func (r *heroRepo) Create(ctx context.Context, h *hero.HeroImage) error {
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		if isUniqueViolation(err) {
			return hero.ErrDuplicateImage
		}
		return fmt.Errorf("failed to create hero image: %w", err)
	}
	return nil
}

func (r *heroRepo) Save(ctx context.Context, h *hero.HeroImage) error {
	if err := r.db.WithContext(ctx).Save(h).Error; err != nil {
		if isUniqueViolation(err) {
			return hero.ErrDuplicateImage
		}
		return fmt.Errorf("failed to update hero image: %w", err)
	}
	return nil
}

func (r *heroRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&hero.HeroImage{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete hero image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return hero.ErrNotFound
	}
	return nil
}
