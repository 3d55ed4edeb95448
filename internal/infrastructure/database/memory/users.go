package memory

import (
	"context"

	"github.com/your-org/bookstore-backend/internal/domain/user"
)

type userRepo struct{ st *state }

func cloneUser(u *user.User) *user.User {
	c := *u
	return &c
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	u, ok := r.st.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	email = user.NormalizeEmail(email)
	for _, u := range r.st.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	u.PrepareCreate()
	if r.emailTaken(u.ID, u.Email) {
		return user.ErrEmailInUse
	}
	now := r.st.now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.st.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepo) Save(ctx context.Context, u *user.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	u.Email = user.NormalizeEmail(u.Email)
	if r.emailTaken(u.ID, u.Email) {
		return user.ErrEmailInUse
	}
	u.UpdatedAt = r.st.now()
	r.st.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepo) emailTaken(id, email string) bool {
	for otherID, other := range r.st.users {
		if otherID != id && other.Email == email {
			return true
		}
	}
	return false
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.users[id]; !ok {
		return user.ErrNotFound
	}
	for rid, rv := range r.st.reviews {
		if rv.UserID == id {
			delete(r.st.reviews, rid)
			delete(r.st.reviewSeq, rid)
		}
	}
	delete(r.st.carts, id)
	delete(r.st.wishlists, id)
	for _, o := range r.st.orders {
		if o.BelongsTo(id) {
			o.UserID = nil
		}
	}
	delete(r.st.users, id)
	return nil
}
