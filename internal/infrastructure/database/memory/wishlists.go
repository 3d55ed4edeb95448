package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
)

type wishlistRepo struct{ st *state }

func (r *wishlistRepo) wishlistByID(id string) *wishlist.Wishlist {
	for _, w := range r.st.wishlists {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (r *wishlistRepo) GetOrCreate(ctx context.Context, userID string, limit int) (*wishlist.Wishlist, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	w, ok := r.st.wishlists[userID]
	if !ok {
		now := r.st.now()
		w = &wishlist.Wishlist{ID: uuid.NewString(), UserID: userID, ItemLimit: limit, CreatedAt: now, UpdatedAt: now}
		r.st.wishlists[userID] = w
	}

	out := *w
	out.Items = make([]wishlist.WishlistItem, 0, len(w.Items))
	for _, it := range w.Items {
		if p, ok := r.st.products[it.ProductID]; ok {
			it.Product = cloneProduct(p)
		}
		out.Items = append(out.Items, it)
	}
	return &out, nil
}

func (r *wishlistRepo) AddItem(ctx context.Context, wishlistID, productID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	w := r.wishlistByID(wishlistID)
	if w == nil {
		return wishlist.ErrItemNotFound
	}
	if w.Contains(productID) {
		return nil
	}
	w.Items = append(w.Items, wishlist.WishlistItem{
		ID:         uuid.NewString(),
		WishlistID: wishlistID,
		ProductID:  productID,
		CreatedAt:  r.st.now(),
	})
	return nil
}

func (r *wishlistRepo) RemoveItem(ctx context.Context, wishlistID, productID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	w := r.wishlistByID(wishlistID)
	if w == nil {
		return wishlist.ErrItemNotFound
	}
	for i, it := range w.Items {
		if it.ProductID == productID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			return nil
		}
	}
	return wishlist.ErrItemNotFound
}
