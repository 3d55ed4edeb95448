package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/bookstore-backend/internal/domain/review"
	"gorm.io/gorm"
)

type reviewRepo struct{ db *gorm.DB }

func (r *reviewRepo) Create(ctx context.Context, rv *review.Review) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(rv).Error; err != nil {
		if isUniqueViolation(err) {
			return review.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepo) Exists(ctx context.Context, productID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&review.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return count > 0, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID string, offset, limit int) ([]review.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&review.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []review.Review
	err := query.Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *reviewRepo) AverageRating(ctx context.Context, productID string) (float64, error) {
	var avg float64
	row := r.db.WithContext(ctx).Model(&review.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("product_id = ?", productID).
		Row()
	if err := row.Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average ratings: %w", err)
	}
	return avg, nil
}
