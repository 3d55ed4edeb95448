package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

const userID = "6a5b4c3d-2e1f-4a0b-9c8d-7e6f5a4b3c2d"

func setup(t *testing.T) (*cart.Service, *database.Store) {
	t.Helper()
	store := memory.NewStore()
	return cart.NewService(store.Carts, store.Products), store
}

func addBook(t *testing.T, store *database.Store, name, price string, available bool) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:         name,
		Description:  "A book",
		Price:        decimal.RequireFromString(price),
		Category:     "Fiction",
		Author:       "Author",
		Language:     "English",
		Availability: available,
	}
	require.NoError(t, store.Products.Create(context.Background(), p))
	return p
}

func TestGetCreatesEmptyCart(t *testing.T) {
	svc, _ := setup(t)

	view, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, view.UserID)
	assert.Empty(t, view.Items)
	assert.True(t, view.Totals.Subtotal.IsZero())
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	dune := addBook(t, store, "Dune", "450", true)
	emma := addBook(t, store, "Emma", "300.50", true)

	_, err := svc.AddItem(ctx, userID, cart.AddItemInput{ProductID: dune.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, cart.AddItemInput{ProductID: dune.ID, Quantity: 2})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, userID, cart.AddItemInput{ProductID: emma.ID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Find(dune.ID).Quantity)
	assert.Equal(t, 2, view.Totals.ItemCount)
	assert.Equal(t, 4, view.Totals.TotalQuantity)
	assert.Equal(t, "1650.5", view.Totals.Subtotal.String())
}

func TestAddItemRejects(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	hidden := addBook(t, store, "Hidden", "100", false)

	_, err := svc.AddItem(ctx, userID, cart.AddItemInput{ProductID: hidden.ID, Quantity: 1})
	assert.ErrorIs(t, err, cart.ErrProductUnavailable)

	_, err = svc.AddItem(ctx, userID, cart.AddItemInput{ProductID: "1d2c3b4a-5e6f-4a7b-8c9d-0e1f2a3b4c5d", Quantity: 1})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.AddItem(ctx, userID, cart.AddItemInput{ProductID: hidden.ID, Quantity: 0})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdateAndRemoveItem(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	dune := addBook(t, store, "Dune", "450", true)

	_, err := svc.UpdateItem(ctx, userID, dune.ID, cart.UpdateItemInput{Quantity: 4})
	assert.ErrorIs(t, err, cart.ErrItemNotFound)

	_, err = svc.AddItem(ctx, userID, cart.AddItemInput{ProductID: dune.ID, Quantity: 1})
	require.NoError(t, err)

	view, err := svc.UpdateItem(ctx, userID, dune.ID, cart.UpdateItemInput{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, view.Find(dune.ID).Quantity)

	view, err = svc.RemoveItem(ctx, userID, dune.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = svc.RemoveItem(ctx, userID, dune.ID)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}

func TestClear(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	dune := addBook(t, store, "Dune", "450", true)

	_, err := svc.AddItem(ctx, userID, cart.AddItemInput{ProductID: dune.ID, Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, userID))

	view, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
