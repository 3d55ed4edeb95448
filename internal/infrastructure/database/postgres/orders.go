package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct{ db *gorm.DB }

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items.Product").
		Preload("Payment").
		Preload("User").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order, opts order.CreateOptions) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			ids = append(ids, item.ProductID)
		}

		// Lock the products so prices cannot move between this check and commit
		var products []catalog.Product
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id IN ?", validUUIDs(ids)).
			Find(&products).Error
		if err != nil {
			return fmt.Errorf("failed to lock products: %w", err)
		}
		byID := make(map[string]catalog.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, item := range o.Items {
			p, ok := byID[item.ProductID]
			if !ok || !p.Purchasable() || p.Price.Sub(item.Price).Abs().GreaterThan(opts.PriceTolerance) {
				return order.ErrPricesChanged
			}
		}

		o.PrepareCreate(time.Now().UTC())
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			if isUniqueViolation(err) {
				return order.ErrDuplicate
			}
			return fmt.Errorf("failed to create order: %w", err)
		}
		if len(o.Items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&o.Items).Error; err != nil {
				return fmt.Errorf("failed to create order items: %w", err)
			}
		}
		if o.Payment != nil {
			if err := tx.Create(o.Payment).Error; err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}
		}

		if opts.ClearCartOfUser != "" {
			err := tx.Where("cart_id IN (?)",
				tx.Model(&cart.Cart{}).Select("id").Where("user_id = ?", opts.ClearCartOfUser),
			).Delete(&cart.CartItem{}).Error
			if err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
		}
		return nil
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*order.Order, error) {
	if !validUUID(id) {
		return nil, order.ErrNotFound
	}

	var o order.Order
	if err := withDetails(r.db.WithContext(ctx)).Where("id = ?", id).First(&o).Error; err != nil {
		if isNotFound(err) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, f order.ListFilter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *f.PaymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = withDetails(query).Order("created_at DESC").Offset(f.Offset)
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var orders []order.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, upd order.StatusUpdate) (*order.Order, error) {
	if !validUUID(id) {
		return nil, order.ErrNotFound
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		updates := map[string]any{
			"status":     upd.Status,
			"updated_at": now,
		}
		if upd.TrackingID != nil {
			updates["tracking_id"] = *upd.TrackingID
		}
		if upd.ShippingMethod != nil {
			updates["shipping_method"] = *upd.ShippingMethod
		}
		if upd.EstimatedDelivery != nil {
			updates["estimated_delivery"] = *upd.EstimatedDelivery
		}
		if upd.PaymentStatus != nil {
			updates["payment_status"] = *upd.PaymentStatus
		}

		result := tx.Model(&order.Order{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return order.ErrNotFound
		}

		if upd.PaymentStatus != nil {
			err := tx.Model(&order.Payment{}).Where("order_id = ?", id).
				Updates(map[string]any{
					"status":     order.RecordStatusFor(*upd.PaymentStatus),
					"updated_at": now,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
		}

		history := order.StatusHistory{
			OrderID:       id,
			Status:        upd.Status,
			PaymentStatus: upd.PaymentStatus,
			CreatedAt:     now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *orderRepo) SetPaymentProof(ctx context.Context, orderID, url string) error {
	if !validUUID(orderID) {
		return order.ErrNotFound
	}

	result := r.db.WithContext(ctx).Model(&order.Payment{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{"payment_proof": url, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return fmt.Errorf("failed to store payment proof: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&order.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if count == 0 {
		return order.ErrNotFound
	}
	return order.ErrNoPayment
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return order.ErrNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&order.StatusHistory{}, &order.Payment{}, &order.OrderItem{}} {
			if err := tx.Where("order_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete order children: %w", err)
			}
		}

		result := tx.Where("id = ?", id).Delete(&order.Order{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return order.ErrNotFound
		}
		return nil
	})
}
