package memory

import (
	"context"
	"sort"

	"github.com/your-org/bookstore-backend/internal/domain/hero"
)

type heroRepo struct{ st *state }

func (r *heroRepo) List(ctx context.Context, activeOnly bool) ([]hero.HeroImage, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]hero.HeroImage, 0, len(r.st.heroes))
	for _, h := range r.st.heroes {
		if activeOnly && !h.IsActive {
			continue
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *heroRepo) FindByID(ctx context.Context, id uint) (*hero.HeroImage, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	h, ok := r.st.heroes[id]
	if !ok {
		return nil, hero.ErrNotFound
	}
	c := *h
	return &c, nil
}

func (r *heroRepo) CountActive(ctx context.Context) (int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var n int64
	for _, h := range r.st.heroes {
		if h.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *heroRepo) Create(ctx context.Context, h *hero.HeroImage) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.urlTaken(0, h.ImageURL) {
		return hero.ErrDuplicateImage
	}
	r.st.heroSeq++
	now := r.st.now()
	h.ID = r.st.heroSeq
	h.CreatedAt = now
	h.UpdatedAt = now
	c := *h
	r.st.heroes[h.ID] = &c
	return nil
}

func (r *heroRepo) Save(ctx context.Context, h *hero.HeroImage) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.heroes[h.ID]; !ok {
		return hero.ErrNotFound
	}
	if r.urlTaken(h.ID, h.ImageURL) {
		return hero.ErrDuplicateImage
	}
	h.UpdatedAt = r.st.now()
	c := *h
	r.st.heroes[h.ID] = &c
	return nil
}

func (r *heroRepo) urlTaken(id uint, url string) bool {
	for otherID, other := range r.st.heroes {
		if otherID != id && other.ImageURL == url {
			return true
		}
	}
	return false
}

func (r *heroRepo) Delete(ctx context.Context, id uint) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.heroes[id]; !ok {
		return hero.ErrNotFound
	}
	delete(r.st.heroes, id)
	return nil
}
