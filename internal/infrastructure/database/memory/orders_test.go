package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
)

const (
	buyerID = "8c7b6a59-4d3e-4f21-9a0b-1c2d3e4f5a6b"
	otherID = "1f2e3d4c-5b6a-4798-8a9b-0c1d2e3f4a5b"
)

var tolerance = decimal.RequireFromString("0.01")

func seed(t *testing.T) (*database.Store, *catalog.Product) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	p := &catalog.Product{
		Name:         "Clean Code",
		Description:  "A handbook",
		Price:        decimal.NewFromInt(2200),
		Category:     "Technology",
		Author:       "Robert C. Martin",
		Language:     "English",
		Availability: true,
	}
	require.NoError(t, store.Products.Create(ctx, p))

	for _, uid := range []string{buyerID, otherID} {
		c, err := store.Carts.GetOrCreate(ctx, uid)
		require.NoError(t, err)
		require.NoError(t, store.Carts.AddQuantity(ctx, c.ID, p.ID, 1))
	}
	return store, p
}

func orderFor(p *catalog.Product, price decimal.Decimal) *order.Order {
	uid := buyerID
	return &order.Order{
		Kind:            order.KindRegistered,
		UserID:          &uid,
		TotalPrice:      price,
		ShippingAddress: "12 Mall Road, Lahore",
		PaymentMethod:   order.PaymentMethodCOD,
		Items:           []order.OrderItem{{ProductID: p.ID, Quantity: 1, Price: price}},
	}
}

func cartLines(t *testing.T, store *database.Store, userID string) int {
	t.Helper()
	c, err := store.Carts.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	return len(c.Items)
}

func TestOrdersCreateClearsOnlyTheBuyersCart(t *testing.T) {
	store, p := seed(t)

	err := store.Orders.Create(context.Background(), orderFor(p, p.Price), order.CreateOptions{
		ClearCartOfUser: buyerID,
		PriceTolerance:  tolerance,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, cartLines(t, store, buyerID))
	assert.Equal(t, 1, cartLines(t, store, otherID))
}

func TestOrdersCreateRejectsPriceDrift(t *testing.T) {
	store, p := seed(t)
	ctx := context.Background()

	err := store.Orders.Create(ctx, orderFor(p, decimal.NewFromInt(1980)), order.CreateOptions{
		ClearCartOfUser: buyerID,
		PriceTolerance:  tolerance,
	})
	require.ErrorIs(t, err, order.ErrPricesChanged)

	_, total, err := store.Orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 1, cartLines(t, store, buyerID))
}

func TestOrdersCreateToleratesRounding(t *testing.T) {
	store, p := seed(t)

	err := store.Orders.Create(context.Background(), orderFor(p, decimal.RequireFromString("2199.99")), order.CreateOptions{
		PriceTolerance: tolerance,
	})
	assert.NoError(t, err)
}
