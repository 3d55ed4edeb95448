package analytics_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
)

func addBook(t *testing.T, store *database.Store, name string, price int64) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:         name,
		Description:  "A book",
		Price:        decimal.NewFromInt(price),
		Category:     "Fiction",
		Author:       "Author",
		Language:     "English",
		Availability: true,
	}
	require.NoError(t, store.Products.Create(context.Background(), p))
	return p
}

func place(t *testing.T, store *database.Store, p *catalog.Product, qty int, status order.Status, paid order.PaymentStatus) {
	t.Helper()
	total := p.Price.Mul(decimal.NewFromInt(int64(qty)))
	require.NoError(t, store.Orders.Create(context.Background(), &order.Order{
		Kind:          order.KindGuest,
		Guest:         order.Guest{Name: "Guest", Email: "guest@example.com"},
		PaymentMethod: order.PaymentMethodCOD,
		Status:        status,
		PaymentStatus: paid,
		TotalPrice:    total,
		Items:         []order.OrderItem{{ProductID: p.ID, Quantity: qty, Price: p.Price}},
	}, order.CreateOptions{}))
}

func TestOrderStats(t *testing.T) {
	store := memory.NewStore()
	svc := analytics.NewService(store.Analytics)
	dune := addBook(t, store, "Dune", 500)

	place(t, store, dune, 1, order.StatusPending, order.PaymentStatusNotPaid)
	place(t, store, dune, 2, order.StatusDelivered, order.PaymentStatusPaid)
	place(t, store, dune, 1, order.StatusProcessing, order.PaymentStatusPaid)

	stats, err := svc.OrderStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.PendingOrders)
	assert.EqualValues(t, 1, stats.ProcessingOrders)
	assert.EqualValues(t, 1, stats.DeliveredOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(1500)))
}

func TestSalesRanksByRevenue(t *testing.T) {
	store := memory.NewStore()
	svc := analytics.NewService(store.Analytics)
	dune := addBook(t, store, "Dune", 500)
	emma := addBook(t, store, "Emma", 300)

	place(t, store, dune, 1, order.StatusPending, order.PaymentStatusNotPaid)
	place(t, store, emma, 3, order.StatusDelivered, order.PaymentStatusPaid)
	place(t, store, dune, 5, order.StatusCancelled, order.PaymentStatusNotPaid)

	sales, err := svc.Sales(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 30, sales.Days)
	require.Len(t, sales.TopProducts, 2)

	assert.Equal(t, "Emma", sales.TopProducts[0].ProductName)
	assert.EqualValues(t, 3, sales.TopProducts[0].TotalSold)
	assert.True(t, sales.TopProducts[0].Revenue.Equal(decimal.NewFromInt(900)))
	assert.EqualValues(t, 1, sales.TopProducts[1].TotalSold)
}

func TestSalesClampsWindow(t *testing.T) {
	svc := analytics.NewService(memory.NewStore().Analytics)

	sales, err := svc.Sales(context.Background(), 9999)
	require.NoError(t, err)
	assert.Equal(t, 365, sales.Days)
	assert.NotNil(t, sales.TopProducts)
}
