package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
	"gorm.io/gorm"
)

type productRepo struct{ db *gorm.DB }

func (r *productRepo) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	if !validUUID(id) {
		return nil, catalog.ErrNotFound
	}

	var p catalog.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	valid := validUUIDs(ids)
	if len(valid) == 0 {
		return []catalog.Product{}, nil
	}

	var found []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", valid).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	// Keep the caller's order, once per id
	byID := make(map[string]catalog.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]catalog.Product, 0, len(found))
	for _, id := range valid {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out, nil
}

func (r *productRepo) List(ctx context.Context, f catalog.ListFilter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{})

	if f.OnlyAvailable {
		query = query.Where("availability = ?", true)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Bestseller != nil {
		query = query.Where("bestseller = ?", *f.Bestseller)
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		query = query.Where(
			"name ILIKE ? OR author ILIKE ? OR category ILIKE ? OR description ILIKE ? OR array_to_string(sub_categories, ' ') ILIKE ?",
			term, term, term, term, term,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Order("date DESC").Order("created_at DESC").Offset(f.Offset)
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var products []catalog.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *productRepo) Create(ctx context.Context, p *catalog.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicate
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepo) Save(ctx context.Context, p *catalog.Product) error {
	p.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(p).Select("*").Omit("id", "created_at").Updates(p)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return catalog.ErrDuplicate
		}
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return catalog.ErrNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ordered int64
		if err := tx.Model(&order.OrderItem{}).Where("product_id = ?", id).Count(&ordered).Error; err != nil {
			return fmt.Errorf("failed to check order items: %w", err)
		}
		if ordered > 0 {
			return catalog.ErrInUse
		}

		for _, model := range []any{&review.Review{}, &cart.CartItem{}, &wishlist.WishlistItem{}} {
			if err := tx.Where("product_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete product references: %w", err)
			}
		}

		result := tx.Where("id = ?", id).Delete(&catalog.Product{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return catalog.ErrNotFound
		}
		return nil
	})
}
