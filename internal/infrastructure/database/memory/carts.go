package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
)

type cartRepo struct{ st *state }

func filterCartItems(items []cart.CartItem, keep func(productID string) bool) []cart.CartItem {
	out := items[:0]
	for _, it := range items {
		if keep(it.ProductID) {
			out = append(out, it)
		}
	}
	return out
}

// cartByID must be called with the lock held
func (r *cartRepo) cartByID(cartID string) *cart.Cart {
	for _, c := range r.st.carts {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func (r *cartRepo) GetOrCreate(ctx context.Context, userID string) (*cart.Cart, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	c, ok := r.st.carts[userID]
	if !ok {
		now := r.st.now()
		c = &cart.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
		r.st.carts[userID] = c
	}

	out := *c
	out.Items = make([]cart.CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if p, ok := r.st.products[it.ProductID]; ok {
			it.Product = cloneProduct(p)
		}
		out.Items = append(out.Items, it)
	}
	return &out, nil
}

func (r *cartRepo) AddQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	c := r.cartByID(cartID)
	if c == nil {
		return cart.ErrItemNotFound
	}

	now := r.st.now()
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.Items[i].UpdatedAt = now
			return nil
		}
	}

	c.Items = append(c.Items, cart.CartItem{
		ID:        uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

func (r *cartRepo) SetQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	c := r.cartByID(cartID)
	if c == nil {
		return cart.ErrItemNotFound
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.Items[i].UpdatedAt = r.st.now()
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func (r *cartRepo) RemoveItem(ctx context.Context, cartID, productID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	c := r.cartByID(cartID)
	if c == nil {
		return cart.ErrItemNotFound
	}
	before := len(c.Items)
	c.Items = filterCartItems(c.Items, func(id string) bool { return id != productID })
	if len(c.Items) == before {
		return cart.ErrItemNotFound
	}
	return nil
}

func (r *cartRepo) Clear(ctx context.Context, cartID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if c := r.cartByID(cartID); c != nil {
		c.Items = nil
	}
	return nil
}
