package cartsync

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
)

const userID = "0b7f1c9e-3a52-4f7e-8c1d-5e2f6a7b8c9d"

func newMerger(t *testing.T) (*Merger, *database.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	return NewMerger(store.Carts, store.Wishlists, store.Products, 10, logger), store
}

func addBook(t *testing.T, store *database.Store, name string, available bool) string {
	t.Helper()
	p := &catalog.Product{
		Name:         name,
		Description:  "A book",
		Price:        decimal.NewFromInt(400),
		Category:     "Fiction",
		Author:       "Author",
		Language:     "English",
		Availability: available,
	}
	require.NoError(t, store.Products.Create(context.Background(), p))
	return p.ID
}

func quantities(t *testing.T, store *database.Store) map[string]int {
	t.Helper()
	c, err := store.Carts.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	out := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		out[it.ProductID] = it.Quantity
	}
	return out
}

func TestMergeEmptyRequest(t *testing.T) {
	m, _ := newMerger(t)

	res := m.Merge(context.Background(), userID, Request{})
	assert.True(t, res.CartSynced)
	assert.True(t, res.WishlistSynced)
	assert.Empty(t, res.Errors)
}

func TestMergeCartAddsSuppliedQuantities(t *testing.T) {
	m, store := newMerger(t)
	ctx := context.Background()
	p1 := addBook(t, store, "Dune", true)

	res := m.Merge(ctx, userID, Request{LocalCart: []CartEntry{{ProductID: p1, Quantity: 2}}})
	require.True(t, res.CartSynced)

	res = m.Merge(ctx, userID, Request{LocalCart: []CartEntry{{ProductID: p1, Quantity: 3}}})
	require.True(t, res.CartSynced)

	got := quantities(t, store)
	assert.Len(t, got, 1)
	assert.Equal(t, 5, got[p1])
}

func TestMergeCartReportsInvalidEntries(t *testing.T) {
	m, store := newMerger(t)
	ok := addBook(t, store, "Dune", true)
	hidden := addBook(t, store, "Lost Manuscript", false)
	missing := "7c4a1e2b-9d3f-4b6a-8e5c-1f2a3b4c5d6e"

	res := m.Merge(context.Background(), userID, Request{LocalCart: []CartEntry{
		{ProductID: ok, Quantity: 1},
		{ProductID: "", Quantity: 1},
		{ProductID: ok, Quantity: 1.5},
		{ProductID: ok, Quantity: -2},
		{ProductID: hidden, Quantity: 1},
		{ProductID: missing, Quantity: 1},
	}})

	assert.False(t, res.CartSynced)
	assert.True(t, res.WishlistSynced)
	assert.Len(t, res.Errors, 5)
	assert.Contains(t, res.Errors, fmt.Sprintf("Product %s is not available", hidden))
	assert.Contains(t, res.Errors, fmt.Sprintf("Product %s not found", missing))

	got := quantities(t, store)
	assert.Equal(t, map[string]int{ok: 1}, got)
}

func TestMergeWishlistCapsAtCapacity(t *testing.T) {
	m, store := newMerger(t)
	ctx := context.Background()

	entries := make([]WishlistEntry, 0, 15)
	for i := 0; i < 15; i++ {
		entries = append(entries, WishlistEntry{ProductID: addBook(t, store, fmt.Sprintf("Book %02d", i), true)})
	}

	res := m.Merge(ctx, userID, Request{LocalWishlist: entries})
	assert.True(t, res.WishlistSynced)
	assert.Empty(t, res.Errors)

	w, err := store.Wishlists.GetOrCreate(ctx, userID, 10)
	require.NoError(t, err)
	assert.Len(t, w.Items, 10)
	for _, e := range entries[:10] {
		assert.True(t, w.Contains(e.ProductID))
	}
}

func TestMergeWishlistIsIdempotent(t *testing.T) {
	m, store := newMerger(t)
	ctx := context.Background()
	p1 := addBook(t, store, "Dune", true)
	p2 := addBook(t, store, "Emma", true)

	req := Request{LocalWishlist: []WishlistEntry{{ProductID: p1}, {ProductID: p2}}}
	require.True(t, m.Merge(ctx, userID, req).WishlistSynced)
	res := m.Merge(ctx, userID, req)

	assert.True(t, res.WishlistSynced)
	assert.Empty(t, res.Errors)

	w, err := store.Wishlists.GetOrCreate(ctx, userID, 10)
	require.NoError(t, err)
	assert.Len(t, w.Items, 2)
}

func TestMergeWishlistAcceptsUnavailableProducts(t *testing.T) {
	m, store := newMerger(t)
	hidden := addBook(t, store, "Lost Manuscript", false)

	res := m.Merge(context.Background(), userID, Request{
		LocalWishlist: []WishlistEntry{{ProductID: hidden}, {ProductID: "8e2d3c4b-5a6f-4e7d-9c8b-7a6f5e4d3c2b"}},
	})

	assert.False(t, res.WishlistSynced)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "not found")
}
