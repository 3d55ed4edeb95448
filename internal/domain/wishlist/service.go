package wishlist

import (
	"context"
	"fmt"

	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
	"github.com/your-org/bookstore-backend/internal/pkg/validation"
)

// DefaultLimit is the capacity given to new wishlists
const DefaultLimit = 10

// Service handles wishlist business logic
type Service struct {
	repo     Repository
	products catalog.Reader
	carts    *cart.Service
	limit    int
}

// NewService creates a new wishlist service
func NewService(repo Repository, products catalog.Reader, carts *cart.Service, limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{
		repo:     repo,
		products: products,
		carts:    carts,
		limit:    limit,
	}
}

// AddInput represents add to wishlist request
type AddInput struct {
	ProductID string `json:"productId" validate:"required"`
}

// MoveToCartInput moves a wished product into the cart
type MoveToCartInput struct {
	Quantity int `json:"quantity" validate:"omitempty,min=1"`
}

// Get returns the user's wishlist, creating it on first access
func (s *Service) Get(ctx context.Context, userID string) (*Wishlist, error) {
	w, err := s.repo.GetOrCreate(ctx, userID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}
	return w, nil
}

// Add puts a product on the wishlist
func (s *Service) Add(ctx context.Context, userID string, in AddInput) (*Wishlist, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.products.FindByID(ctx, in.ProductID); err != nil {
		return nil, err
	}

	w, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w.Contains(in.ProductID) {
		return nil, ErrAlreadyInWishlist
	}
	if w.Remaining() == 0 {
		return nil, apperror.Validationf("Wishlist limit of %d items reached", w.ItemLimit)
	}

	if err := s.repo.AddItem(ctx, w.ID, in.ProductID); err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	return s.Get(ctx, userID)
}

// Remove drops a product from the wishlist
func (s *Service) Remove(ctx context.Context, userID, productID string) (*Wishlist, error) {
	w, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !w.Contains(productID) {
		return nil, ErrItemNotFound
	}

	if err := s.repo.RemoveItem(ctx, w.ID, productID); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// MoveToCart adds the product to the cart and removes it from the wishlist
func (s *Service) MoveToCart(ctx context.Context, userID, productID string, in MoveToCartInput) (*cart.View, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	w, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !w.Contains(productID) {
		return nil, ErrItemNotFound
	}

	view, err := s.carts.AddItem(ctx, userID, cart.AddItemInput{ProductID: productID, Quantity: in.Quantity})
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveItem(ctx, w.ID, productID); err != nil {
		return nil, fmt.Errorf("failed to remove moved item from wishlist: %w", err)
	}

	return view, nil
}
