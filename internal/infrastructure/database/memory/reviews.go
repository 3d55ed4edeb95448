package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/your-org/bookstore-backend/internal/domain/review"
)

type reviewRepo struct{ st *state }

func (r *reviewRepo) Create(ctx context.Context, rv *review.Review) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, other := range r.st.reviews {
		if other.ProductID == rv.ProductID && other.UserID == rv.UserID {
			return review.ErrAlreadyReviewed
		}
	}
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = r.st.now()
	}

	c := *rv
	c.User = nil
	r.st.reviews[rv.ID] = &c
	r.st.reviewSeq[rv.ID] = r.st.next()
	return nil
}

func (r *reviewRepo) Exists(ctx context.Context, productID, userID string) (bool, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	for _, rv := range r.st.reviews {
		if rv.ProductID == productID && rv.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID string, offset, limit int) ([]review.Review, int64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var matched []*review.Review
	for _, rv := range r.st.reviews {
		if rv.ProductID == productID {
			matched = append(matched, rv)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.st.reviewSeq[a.ID] > r.st.reviewSeq[b.ID]
	})

	total := int64(len(matched))
	matched = window(matched, offset, limit)

	out := make([]review.Review, 0, len(matched))
	for _, rv := range matched {
		c := *rv
		if u, ok := r.st.users[rv.UserID]; ok {
			c.User = &review.Author{ID: u.ID, Name: u.Name, LastName: u.LastName, ProfilePicture: u.ProfilePicture}
		}
		out = append(out, c)
	}
	return out, total, nil
}

func (r *reviewRepo) AverageRating(ctx context.Context, productID string) (float64, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var sum, n int
	for _, rv := range r.st.reviews {
		if rv.ProductID == productID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}
