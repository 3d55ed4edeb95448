// Package memory keeps every repository in process memory. It backs the
// domain and handler tests and STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/hero"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
)

// state is shared by all repositories of one store. A single lock makes every
// multi-entity write atomic.
type state struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	products   map[string]*catalog.Product
	productSeq map[string]int64
	reviews    map[string]*review.Review
	reviewSeq  map[string]int64
	carts      map[string]*cart.Cart // by user id
	wishlists  map[string]*wishlist.Wishlist
	orders     map[string]*order.Order
	orderSeq   map[string]int64
	users      map[string]*user.User
	heroes     map[uint]*hero.HeroImage
	heroSeq    uint
}

func newState() *state {
	return &state{
		now:        time.Now,
		products:   make(map[string]*catalog.Product),
		productSeq: make(map[string]int64),
		reviews:    make(map[string]*review.Review),
		reviewSeq:  make(map[string]int64),
		carts:      make(map[string]*cart.Cart),
		wishlists:  make(map[string]*wishlist.Wishlist),
		orders:     make(map[string]*order.Order),
		orderSeq:   make(map[string]int64),
		users:      make(map[string]*user.User),
		heroes:     make(map[uint]*hero.HeroImage),
	}
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

// NewStore creates an empty in-memory store
func NewStore() *database.Store {
	st := newState()
	return &database.Store{
		Products:  &productRepo{st},
		Reviews:   &reviewRepo{st},
		Carts:     &cartRepo{st},
		Wishlists: &wishlistRepo{st},
		Orders:    &orderRepo{st},
		Users:     &userRepo{st},
		Heroes:    &heroRepo{st},
		Analytics: &analyticsRepo{st},
		Ping:      func(context.Context) error { return nil },
		Close:     func() error { return nil },
	}
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}
