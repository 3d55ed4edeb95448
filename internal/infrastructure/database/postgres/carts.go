package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepo struct{ db *gorm.DB }

func (r *cartRepo) load(ctx context.Context, userID string) (*cart.Cart, error) {
	var c cart.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepo) GetOrCreate(ctx context.Context, userID string) (*cart.Cart, error) {
	c, err := r.load(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	// A concurrent first access may win the insert; both then read the same row
	fresh := cart.Cart{UserID: userID}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	c, err = r.load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return c, nil
}

func (r *cartRepo) AddQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	item := cart.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err := r.db.WithContext(ctx).
		Omit("Product").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"updated_at": gorm.Expr("EXCLUDED.updated_at"),
			}),
		}).
		Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *cartRepo) SetQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	result := r.db.WithContext(ctx).Model(&cart.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (r *cartRepo) RemoveItem(ctx context.Context, cartID, productID string) error {
	result := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&cart.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

func (r *cartRepo) Clear(ctx context.Context, cartID string) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&cart.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
