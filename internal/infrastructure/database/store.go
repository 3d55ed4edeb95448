// Package database defines the persistence bundle handed to every component.
// It is built once at start-up by the postgres or memory driver.
package database

import (
	"context"

	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/hero"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
)

// Store bundles every repository
type Store struct {
	Products  catalog.Repository
	Reviews   review.Repository
	Carts     cart.Repository
	Wishlists wishlist.Repository
	Orders    order.Repository
	Users     user.Repository
	Heroes    hero.Repository
	Analytics analytics.Repository

	// Ping reports whether the backing store is reachable
	Ping func(ctx context.Context) error
	// Close releases the backing connection
	Close func() error
}

// Health runs the store's ping
func (s *Store) Health(ctx context.Context) error {
	if s.Ping == nil {
		return nil
	}
	return s.Ping(ctx)
}

// Shutdown closes the backing connection
func (s *Store) Shutdown() error {
	if s.Close == nil {
		return nil
	}
	return s.Close()
}
