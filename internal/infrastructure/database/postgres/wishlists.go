package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type wishlistRepo struct{ db *gorm.DB }

func (r *wishlistRepo) load(ctx context.Context, userID string) (*wishlist.Wishlist, error) {
	var w wishlist.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *wishlistRepo) GetOrCreate(ctx context.Context, userID string, limit int) (*wishlist.Wishlist, error) {
	w, err := r.load(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}

	fresh := wishlist.Wishlist{UserID: userID, ItemLimit: limit}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create wishlist: %w", err)
	}

	w, err = r.load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return w, nil
}

func (r *wishlistRepo) AddItem(ctx context.Context, wishlistID, productID string) error {
	item := wishlist.WishlistItem{WishlistID: wishlistID, ProductID: productID}
	err := r.db.WithContext(ctx).
		Omit("Product").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wishlist_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *wishlistRepo) RemoveItem(ctx context.Context, wishlistID, productID string) error {
	result := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&wishlist.WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return wishlist.ErrItemNotFound
	}
	return nil
}
