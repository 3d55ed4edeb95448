package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/order"
)

type analyticsRepo struct{ st *state }

func (r *analyticsRepo) OrderStats(ctx context.Context) (*analytics.OrderStats, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	stats := &analytics.OrderStats{TotalRevenue: decimal.Zero}
	for _, o := range r.st.orders {
		stats.TotalOrders++
		switch o.Status {
		case order.StatusPending:
			stats.PendingOrders++
		case order.StatusProcessing:
			stats.ProcessingOrders++
		case order.StatusDelivered:
			stats.DeliveredOrders++
		}
		if o.PaymentStatus == order.PaymentStatusPaid {
			stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalPrice)
		}
	}
	return stats, nil
}

func (r *analyticsRepo) TopProducts(ctx context.Context, since time.Time, limit int) ([]analytics.ProductSales, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	byProduct := make(map[string]*analytics.ProductSales)
	for _, o := range r.st.orders {
		if o.CreatedAt.Before(since) || o.Status == order.StatusCancelled || o.Status == order.StatusRefunded {
			continue
		}
		counted := make(map[string]bool)
		for _, it := range o.Items {
			ps, ok := byProduct[it.ProductID]
			if !ok {
				ps = &analytics.ProductSales{ProductID: it.ProductID, Revenue: decimal.Zero}
				if p, found := r.st.products[it.ProductID]; found {
					ps.ProductName = p.Name
				}
				byProduct[it.ProductID] = ps
			}
			ps.TotalSold += int64(it.Quantity)
			ps.Revenue = ps.Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			if !counted[it.ProductID] {
				ps.OrderCount++
				counted[it.ProductID] = true
			}
		}
	}

	out := make([]analytics.ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].ProductID < out[j].ProductID
	})
	return window(out, 0, limit), nil
}
