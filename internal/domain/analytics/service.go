// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStats summarizes orders of both kinds for the admin dashboard
type OrderStats struct {
	TotalOrders      int64           `json:"totalOrders"`
	PendingOrders    int64           `json:"pendingOrders"`
	ProcessingOrders int64           `json:"processingOrders"`
	DeliveredOrders  int64           `json:"deliveredOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"` // Σ totalPrice of paid orders
}

// ProductSales is the sold volume of one product
type ProductSales struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	TotalSold   int64           `json:"totalSold"`
	Revenue     decimal.Decimal `json:"revenue"`
	OrderCount  int64           `json:"orderCount"`
}

// SalesSummary lists best sellers over a trailing window
type SalesSummary struct {
	Days        int            `json:"days"`
	Since       time.Time      `json:"since"`
	TopProducts []ProductSales `json:"topProducts"`
}

// Repository runs aggregate queries over orders
type Repository interface {
	OrderStats(ctx context.Context) (*OrderStats, error)
	// TopProducts ranks products by revenue over orders created since the
	// given time, ignoring cancelled and refunded orders.
	TopProducts(ctx context.Context, since time.Time, limit int) ([]ProductSales, error)
}

// Service handles analytics business logic
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new analytics service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// OrderStats returns dashboard counters
func (s *Service) OrderStats(ctx context.Context) (*OrderStats, error) {
	stats, err := s.repo.OrderStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get order stats: %w", err)
	}
	return stats, nil
}

// Sales returns the ten best-selling products of the last days days
func (s *Service) Sales(ctx context.Context, days int) (*SalesSummary, error) {
	// Default to 30 days if not specified
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}

	since := s.now().UTC().AddDate(0, 0, -days)

	top, err := s.repo.TopProducts(ctx, since, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	if top == nil {
		top = []ProductSales{}
	}

	return &SalesSummary{Days: days, Since: since, TopProducts: top}, nil
}
