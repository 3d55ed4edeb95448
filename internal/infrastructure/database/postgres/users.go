package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
	"gorm.io/gorm"
)

type userRepo struct{ db *gorm.DB }

func (r *userRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	if !validUUID(id) {
		return nil, user.ErrNotFound
	}
	return r.first(ctx, "id = ?", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", user.NormalizeEmail(email))
}

func (r *userRepo) first(ctx context.Context, query string, arg any) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if isNotFound(err) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailInUse
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepo) Save(ctx context.Context, u *user.User) error {
	u.Email = user.NormalizeEmail(u.Email)
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailInUse
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return user.ErrNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&review.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews: %w", err)
		}

		carts := tx.Model(&cart.Cart{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("cart_id IN (?)", carts).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart items: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&cart.Cart{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}

		wishlists := tx.Model(&wishlist.Wishlist{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("wishlist_id IN (?)", wishlists).Delete(&wishlist.WishlistItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist items: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&wishlist.Wishlist{}).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist: %w", err)
		}

		// Orders outlive the account
		if err := tx.Model(&order.Order{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach orders: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&user.User{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}
