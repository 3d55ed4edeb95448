// Package cartsync folds the cart and wishlist a client collected while
// anonymous into the user's persistent collections after authentication.
package cartsync

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
)

// CartEntry is one client-held cart line. Quantity is kept as a JSON number so
// that fractional or negative values are reported instead of rejected wholesale.
type CartEntry struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// WishlistEntry is one client-held wishlist entry
type WishlistEntry struct {
	ProductID string `json:"productId"`
}

// Request carries the local collections to merge
type Request struct {
	LocalCart     []CartEntry     `json:"localCart"`
	LocalWishlist []WishlistEntry `json:"localWishlist"`
}

// Result reports the outcome of a merge
type Result struct {
	CartSynced     bool     `json:"cartSynced"`
	WishlistSynced bool     `json:"wishlistSynced"`
	Errors         []string `json:"errors,omitempty"`
}

// Merger reconciles local collections into persistent ones
type Merger struct {
	carts     cart.Repository
	wishlists wishlist.Repository
	products  catalog.Reader
	limit     int
	logger    *logrus.Logger
}

// NewMerger creates a merger. limit is the capacity of wishlists it creates.
func NewMerger(carts cart.Repository, wishlists wishlist.Repository, products catalog.Reader, limit int, logger *logrus.Logger) *Merger {
	if limit <= 0 {
		limit = wishlist.DefaultLimit
	}
	return &Merger{
		carts:     carts,
		wishlists: wishlists,
		products:  products,
		limit:     limit,
		logger:    logger,
	}
}

// Merge applies req to the user's cart and wishlist. Per-item failures are
// collected in the result and never returned as an error; calling it again
// with the same input adds the cart quantities again and leaves the wishlist
// unchanged.
func (m *Merger) Merge(ctx context.Context, userID string, req Request) Result {
	res := Result{CartSynced: true, WishlistSynced: true}

	if len(req.LocalCart) > 0 {
		errs := m.mergeCart(ctx, userID, req.LocalCart)
		res.CartSynced = len(errs) == 0
		res.Errors = append(res.Errors, errs...)
	}

	if len(req.LocalWishlist) > 0 {
		errs := m.mergeWishlist(ctx, userID, req.LocalWishlist)
		res.WishlistSynced = len(errs) == 0
		res.Errors = append(res.Errors, errs...)
	}

	if len(res.Errors) > 0 {
		m.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"errors":  len(res.Errors),
		}).Warn("cart/wishlist merge completed with item errors")
	}

	return res
}

func (m *Merger) mergeCart(ctx context.Context, userID string, entries []CartEntry) []string {
	c, err := m.carts.GetOrCreate(ctx, userID)
	if err != nil {
		m.logger.WithError(err).WithField("user_id", userID).Error("failed to load cart for merge")
		return []string{"Failed to sync cart"}
	}

	products, err := m.lookup(ctx, cartIDs(entries))
	if err != nil {
		m.logger.WithError(err).WithField("user_id", userID).Error("failed to load products for cart merge")
		return []string{"Failed to sync cart"}
	}

	var errs []string
	for _, e := range entries {
		if e.ProductID == "" {
			errs = append(errs, "Cart item is missing productId")
			continue
		}
		if e.Quantity < 1 || e.Quantity != math.Trunc(e.Quantity) {
			errs = append(errs, fmt.Sprintf("Invalid quantity for product %s", e.ProductID))
			continue
		}
		p, ok := products[e.ProductID]
		if !ok {
			errs = append(errs, fmt.Sprintf("Product %s not found", e.ProductID))
			continue
		}
		if !p.Purchasable() {
			errs = append(errs, fmt.Sprintf("Product %s is not available", e.ProductID))
			continue
		}

		if err := m.carts.AddQuantity(ctx, c.ID, e.ProductID, int(e.Quantity)); err != nil {
			m.logger.WithError(err).WithField("product_id", e.ProductID).Error("failed to merge cart item")
			errs = append(errs, fmt.Sprintf("Failed to add product %s to cart", e.ProductID))
		}
	}

	return errs
}

func (m *Merger) mergeWishlist(ctx context.Context, userID string, entries []WishlistEntry) []string {
	w, err := m.wishlists.GetOrCreate(ctx, userID, m.limit)
	if err != nil {
		m.logger.WithError(err).WithField("user_id", userID).Error("failed to load wishlist for merge")
		return []string{"Failed to sync wishlist"}
	}

	// Overflow beyond the free slots is dropped without an error
	if slots := w.Remaining(); len(entries) > slots {
		entries = entries[:slots]
	}
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	products, err := m.lookup(ctx, ids)
	if err != nil {
		m.logger.WithError(err).WithField("user_id", userID).Error("failed to load products for wishlist merge")
		return []string{"Failed to sync wishlist"}
	}

	var errs []string
	for _, e := range entries {
		if e.ProductID == "" {
			errs = append(errs, "Wishlist item is missing productId")
			continue
		}
		if _, ok := products[e.ProductID]; !ok {
			errs = append(errs, fmt.Sprintf("Product %s not found", e.ProductID))
			continue
		}

		if err := m.wishlists.AddItem(ctx, w.ID, e.ProductID); err != nil {
			m.logger.WithError(err).WithField("product_id", e.ProductID).Error("failed to merge wishlist item")
			errs = append(errs, fmt.Sprintf("Failed to add product %s to wishlist", e.ProductID))
		}
	}

	return errs
}

func (m *Merger) lookup(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	wanted := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			wanted = append(wanted, id)
		}
	}

	found := make(map[string]catalog.Product, len(wanted))
	if len(wanted) == 0 {
		return found, nil
	}

	products, err := m.products.FindByIDs(ctx, wanted)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

func cartIDs(entries []CartEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	return ids
}
