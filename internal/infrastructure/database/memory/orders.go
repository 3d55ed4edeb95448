package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/your-org/bookstore-backend/internal/domain/order"
)

type orderRepo struct{ st *state }

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = append([]order.OrderItem(nil), o.Items...)
	c.StatusHistory = append([]order.StatusHistory(nil), o.StatusHistory...)
	if o.Payment != nil {
		p := *o.Payment
		c.Payment = &p
	}
	if o.UserID != nil {
		id := *o.UserID
		c.UserID = &id
	}
	c.User = nil
	return &c
}

// hydrate attaches products and the buyer; the lock must be held
func (r *orderRepo) hydrate(o *order.Order) *order.Order {
	c := cloneOrder(o)
	for i := range c.Items {
		if p, ok := r.st.products[c.Items[i].ProductID]; ok {
			c.Items[i].Product = cloneProduct(p)
		}
	}
	if c.UserID != nil {
		if u, ok := r.st.users[*c.UserID]; ok {
			c.User = &order.Buyer{
				ID:             u.ID,
				Name:           u.Name,
				LastName:       u.LastName,
				Email:          u.Email,
				MobileNumber:   u.MobileNumber,
				ProfilePicture: u.ProfilePicture,
			}
		}
	}
	return c
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order, opts order.CreateOptions) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	// Re-check the catalog under the write lock before anything is stored
	for _, item := range o.Items {
		p, ok := r.st.products[item.ProductID]
		if !ok || !p.Purchasable() || p.Price.Sub(item.Price).Abs().GreaterThan(opts.PriceTolerance) {
			return order.ErrPricesChanged
		}
	}

	now := r.st.now()
	o.PrepareCreate(now)
	if _, exists := r.st.orders[o.ID]; exists {
		return order.ErrDuplicate
	}
	o.UpdatedAt = now
	if o.Payment != nil {
		o.Payment.CreatedAt = now
		o.Payment.UpdatedAt = now
	}

	r.st.orders[o.ID] = cloneOrder(o)
	r.st.orderSeq[o.ID] = r.st.next()

	if opts.ClearCartOfUser != "" {
		if c, ok := r.st.carts[opts.ClearCartOfUser]; ok {
			c.Items = nil
		}
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*order.Order, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	if !validID(id) {
		return nil, order.ErrNotFound
	}
	o, ok := r.st.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return r.hydrate(o), nil
}

func (r *orderRepo) List(ctx context.Context, f order.ListFilter) ([]order.Order, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	matched := make([]*order.Order, 0)
	for _, o := range r.st.orders {
		if f.UserID != "" && !o.BelongsTo(f.UserID) {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.PaymentStatus != nil && o.PaymentStatus != *f.PaymentStatus {
			continue
		}
		matched = append(matched, o)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.st.orderSeq[a.ID] > r.st.orderSeq[b.ID]
	})

	total := int64(len(matched))
	matched = window(matched, f.Offset, f.Limit)

	out := make([]order.Order, 0, len(matched))
	for _, o := range matched {
		out = append(out, *r.hydrate(o))
	}
	return out, total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, upd order.StatusUpdate) (*order.Order, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	o, ok := r.st.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}

	now := r.st.now()
	o.Status = upd.Status
	if upd.TrackingID != nil {
		o.TrackingID = upd.TrackingID
	}
	if upd.ShippingMethod != nil {
		o.ShippingMethod = upd.ShippingMethod
	}
	if upd.EstimatedDelivery != nil {
		o.EstimatedDelivery = upd.EstimatedDelivery
	}
	if upd.PaymentStatus != nil {
		o.PaymentStatus = *upd.PaymentStatus
		if o.Payment != nil {
			o.Payment.Status = order.RecordStatusFor(*upd.PaymentStatus)
			o.Payment.UpdatedAt = now
		}
	}
	o.UpdatedAt = now
	o.StatusHistory = append(o.StatusHistory, order.StatusHistory{
		ID:            uuid.NewString(),
		OrderID:       o.ID,
		Status:        upd.Status,
		PaymentStatus: upd.PaymentStatus,
		CreatedAt:     now,
	})

	return r.hydrate(o), nil
}

func (r *orderRepo) SetPaymentProof(ctx context.Context, orderID, url string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	o, ok := r.st.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	if o.Payment == nil {
		return order.ErrNoPayment
	}
	o.Payment.PaymentProof = &url
	o.Payment.UpdatedAt = r.st.now()
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.orders[id]; !ok {
		return order.ErrNotFound
	}
	delete(r.st.orders, id)
	delete(r.st.orderSeq, id)
	return nil
}

// window applies offset and limit; a zero limit keeps everything
func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
