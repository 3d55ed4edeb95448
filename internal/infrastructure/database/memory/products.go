package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
)

type productRepo struct{ st *state }

func cloneProduct(p *catalog.Product) *catalog.Product {
	c := *p
	if p.OriginalPrice != nil {
		op := *p.OriginalPrice
		c.OriginalPrice = &op
	}
	if p.ISBN != nil {
		isbn := *p.ISBN
		c.ISBN = &isbn
	}
	c.SubCategories = append(pq.StringArray{}, p.SubCategories...)
	return &c
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	p, ok := r.st.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.st.products[id]; ok {
			out = append(out, *cloneProduct(p))
		}
	}
	return out, nil
}

func (r *productRepo) List(ctx context.Context, f catalog.ListFilter) ([]catalog.Product, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var matched []*catalog.Product
	for _, p := range r.st.products {
		if matches(p, f) {
			matched = append(matched, p)
		}
	}

	// Newest first
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		return r.st.productSeq[matched[i].ID] > r.st.productSeq[matched[j].ID]
	})

	total := int64(len(matched))
	out := make([]catalog.Product, 0, f.Limit)
	for i := f.Offset; i < len(matched) && (f.Limit <= 0 || len(out) < f.Limit); i++ {
		out = append(out, *cloneProduct(matched[i]))
	}
	return out, total, nil
}

func matches(p *catalog.Product, f catalog.ListFilter) bool {
	if f.OnlyAvailable && !p.Availability {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Bestseller != nil && p.Bestseller != *f.Bestseller {
		return false
	}
	if f.Search == "" {
		return true
	}

	q := strings.ToLower(f.Search)
	fields := []string{p.Name, p.Author, p.Category, p.Description}
	fields = append(fields, p.SubCategories...)
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func (r *productRepo) Create(ctx context.Context, p *catalog.Product) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.duplicate(p) {
		return catalog.ErrDuplicate
	}

	now := r.st.now()
	p.PrepareCreate(now)
	p.CreatedAt = now
	p.UpdatedAt = now

	r.st.products[p.ID] = cloneProduct(p)
	r.st.productSeq[p.ID] = r.st.next()
	return nil
}

func (r *productRepo) Save(ctx context.Context, p *catalog.Product) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	if r.duplicate(p) {
		return catalog.ErrDuplicate
	}

	p.UpdatedAt = r.st.now()
	r.st.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *productRepo) duplicate(p *catalog.Product) bool {
	for id, other := range r.st.products {
		if id == p.ID {
			continue
		}
		if other.Name == p.Name {
			return true
		}
		if p.ISBN != nil && other.ISBN != nil && *p.ISBN == *other.ISBN {
			return true
		}
	}
	return false
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.products[id]; !ok {
		return catalog.ErrNotFound
	}
	for _, o := range r.st.orders {
		for _, it := range o.Items {
			if it.ProductID == id {
				return catalog.ErrInUse
			}
		}
	}

	for rid, rv := range r.st.reviews {
		if rv.ProductID == id {
			delete(r.st.reviews, rid)
		}
	}
	for _, c := range r.st.carts {
		c.Items = filterCartItems(c.Items, func(productID string) bool { return productID != id })
	}
	for _, w := range r.st.wishlists {
		kept := w.Items[:0]
		for _, it := range w.Items {
			if it.ProductID != id {
				kept = append(kept, it)
			}
		}
		w.Items = kept
	}

	delete(r.st.products, id)
	delete(r.st.productSeq, id)
	return nil
}
