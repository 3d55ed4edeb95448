// internal/domain/review/service.go
package review

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
	"github.com/your-org/bookstore-backend/internal/pkg/pagination"
	"github.com/your-org/bookstore-backend/internal/pkg/validation"
)

// DefaultPageSize is the number of reviews shown per product page
const DefaultPageSize = 3

// UserFinder resolves the reviewing account
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// Service handles review business logic
type Service struct {
	repo     Repository
	products catalog.Reader
	users    UserFinder
	pageSize int
}

// NewService creates a new review service
func NewService(repo Repository, products catalog.Reader, users UserFinder, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		repo:     repo,
		products: products,
		users:    users,
		pageSize: pageSize,
	}
}

// AddInput represents a new review
type AddInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// Added is a stored review and the product's new average
type Added struct {
	Review        *Review `json:"review"`
	AverageRating float64 `json:"averageRating"`
}

// ProductReviews is one page of a product's reviews
type ProductReviews struct {
	Reviews       []Review              `json:"reviews"`
	AverageRating float64               `json:"averageRating"`
	Pagination    pagination.Pagination `json:"pagination"`
}

// Add stores a review by userID
func (s *Service) Add(ctx context.Context, userID string, in AddInput) (*Added, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.products.FindByID(ctx, in.ProductID); err != nil {
		return nil, err
	}
	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, in.ProductID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check review: %w", err)
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	r := &Review{
		ProductID: in.ProductID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	r.User = &Author{
		ID:             author.ID,
		Name:           author.Name,
		LastName:       author.LastName,
		ProfilePicture: author.ProfilePicture,
	}

	avg, err := s.repo.AverageRating(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating: %w", err)
	}

	return &Added{Review: r, AverageRating: roundRating(avg)}, nil
}

// ListForProduct returns a page of reviews with the product's average rating
func (s *Service) ListForProduct(ctx context.Context, productID string, page, limit int) (*ProductReviews, error) {
	if !validation.Var(productID, "uuid") {
		return nil, apperror.Validation("Invalid product ID format")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	page, limit = pagination.Normalize(page, limit, s.pageSize)

	reviews, total, err := s.repo.ListByProduct(ctx, productID, pagination.Offset(page, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	avg, err := s.repo.AverageRating(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating: %w", err)
	}

	return &ProductReviews{
		Reviews:       reviews,
		AverageRating: roundRating(avg),
		Pagination:    pagination.New(page, limit, total),
	}, nil
}

func roundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}
