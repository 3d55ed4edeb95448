package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"gorm.io/gorm"
)

type analyticsRepo struct{ db *gorm.DB }

func (r *analyticsRepo) OrderStats(ctx context.Context) (*analytics.OrderStats, error) {
	var stats analytics.OrderStats
	row := r.db.WithContext(ctx).Model(&order.Order{}).Select(`COUNT(*),
		COUNT(*) FILTER (WHERE status = ?),
		COUNT(*) FILTER (WHERE status = ?),
		COUNT(*) FILTER (WHERE status = ?),
		COALESCE(SUM(total_price) FILTER (WHERE payment_status = ?), 0)`,
		order.StatusPending, order.StatusProcessing, order.StatusDelivered, order.PaymentStatusPaid,
	).Row()

	err := row.Scan(
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.ProcessingOrders,
		&stats.DeliveredOrders,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	return &stats, nil
}

func (r *analyticsRepo) TopProducts(ctx context.Context, since time.Time, limit int) ([]analytics.ProductSales, error) {
	var sales []analytics.ProductSales
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(`oi.product_id,
			COALESCE(p.name, '') AS product_name,
			SUM(oi.quantity) AS total_sold,
			SUM(oi.price * oi.quantity) AS revenue,
			COUNT(DISTINCT oi.order_id) AS order_count`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Where("o.created_at >= ?", since).
		Where("o.status NOT IN ?", []order.Status{order.StatusCancelled, order.StatusRefunded}).
		Group("oi.product_id, p.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute top products: %w", err)
	}
	return sales, nil
}
