// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"

	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/pkg/validation"
)

// Service handles cart business logic
type Service struct {
	repo     Repository
	products catalog.Reader
}

// NewService creates a new cart service
func NewService(repo Repository, products catalog.Reader) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// View is a cart together with its computed totals
type View struct {
	*Cart
	Totals Totals `json:"totals"`
}

// AddItemInput represents add to cart request
type AddItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// UpdateItemInput represents update cart item request
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// Get returns the user's cart, creating it on first access
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &View{Cart: c, Totals: c.Totals()}, nil
}

// AddItem adds quantity of a product, incrementing an existing line
func (s *Service) AddItem(ctx context.Context, userID string, in AddItemInput) (*View, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Purchasable() {
		return nil, ErrProductUnavailable
	}

	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if err := s.repo.AddQuantity(ctx, c.ID, in.ProductID, in.Quantity); err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	return s.Get(ctx, userID)
}

// UpdateItem sets the quantity of a product already in the cart
func (s *Service) UpdateItem(ctx context.Context, userID, productID string, in UpdateItemInput) (*View, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.Find(productID) == nil {
		return nil, ErrItemNotFound
	}

	if err := s.repo.SetQuantity(ctx, c.ID, productID, in.Quantity); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// RemoveItem drops a product line from the cart
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*View, error) {
	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.Find(productID) == nil {
		return nil, ErrItemNotFound
	}

	if err := s.repo.RemoveItem(ctx, c.ID, productID); err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// Clear removes every line from the user's cart
func (s *Service) Clear(ctx context.Context, userID string) error {
	c, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	return s.repo.Clear(ctx, c.ID)
}
