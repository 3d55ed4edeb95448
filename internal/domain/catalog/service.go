// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
	"github.com/your-org/bookstore-backend/internal/pkg/pagination"
	"github.com/your-org/bookstore-backend/internal/pkg/validation"
)

const cacheKeyPrefix = "catalog:product:"

// Service handles catalog business logic
type Service struct {
	repo        Repository
	cache       Cache
	images      ImageRemover
	cacheTTL    time.Duration
	defaultSize int
	logger      *logrus.Logger
}

// Option configures a Service
type Option func(*Service)

// WithCache enables read-through caching of single products
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithImageRemover deletes replaced and removed product images
func WithImageRemover(images ImageRemover) Option {
	return func(s *Service) { s.images = images }
}

// WithDefaultPageSize sets the listing page size used when none is requested
func WithDefaultPageSize(size int) Option {
	return func(s *Service) { s.defaultSize = size }
}

// NewService creates a new catalog service
func NewService(repo Repository, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		logger:      logger,
		defaultSize: 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListQuery represents product list query parameters
type ListQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Category   string `form:"category"`
	Search     string `form:"search"`
	Bestseller *bool  `form:"bestseller"`
}

// ProductList is one page of products
type ProductList struct {
	Products   []Product             `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
}

// CreateInput represents product creation data
type CreateInput struct {
	Name          string           `json:"name" validate:"required,max=255"`
	Description   string           `json:"description" validate:"required,max=1000"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	Category      string           `json:"category" validate:"required,max=100"`
	SubCategories []string         `json:"subCategories"`
	Author        string           `json:"author" validate:"required,max=255"`
	ISBN          string           `json:"isbn" validate:"omitempty,max=32"`
	Language      string           `json:"language" validate:"required,max=50"`
	Image         string           `json:"-"`
	ImagePublicID string           `json:"-"`
}

// UpdateInput represents a partial product update
type UpdateInput struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description   *string          `json:"description" validate:"omitempty,min=1,max=1000"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	Category      *string          `json:"category" validate:"omitempty,min=1,max=100"`
	SubCategories []string         `json:"subCategories"`
	Author        *string          `json:"author" validate:"omitempty,min=1,max=255"`
	ISBN          *string          `json:"isbn" validate:"omitempty,max=32"`
	Language      *string          `json:"language" validate:"omitempty,min=1,max=50"`
	Image         string           `json:"-"`
	ImagePublicID string           `json:"-"`
}

// FindByID reads a product straight from the store
func (s *Service) FindByID(ctx context.Context, id string) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByIDs batch-reads products straight from the store
func (s *Service) FindByIDs(ctx context.Context, ids []string) ([]Product, error) {
	return s.repo.FindByIDs(ctx, ids)
}

// List returns available products for the storefront
func (s *Service) List(ctx context.Context, q ListQuery) (*ProductList, error) {
	return s.list(ctx, q, true)
}

// AdminList returns products regardless of availability
func (s *Service) AdminList(ctx context.Context, q ListQuery) (*ProductList, error) {
	return s.list(ctx, q, false)
}

func (s *Service) list(ctx context.Context, q ListQuery, onlyAvailable bool) (*ProductList, error) {
	page, limit := pagination.Normalize(q.Page, q.Limit, s.defaultSize)

	products, total, err := s.repo.List(ctx, ListFilter{
		Category:      strings.TrimSpace(q.Category),
		Bestseller:    q.Bestseller,
		Search:        strings.TrimSpace(q.Search),
		OnlyAvailable: onlyAvailable,
		Offset:        pagination.Offset(page, limit),
		Limit:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &ProductList{
		Products:   products,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// Get returns a single product, served from cache when possible
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	if cached := s.cached(ctx, id); cached != nil {
		return cached, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.remember(ctx, product)
	return product, nil
}

// Create adds a new product
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !in.Price.IsPositive() {
		return nil, apperror.Validation("Invalid price")
	}
	if in.OriginalPrice != nil && !in.OriginalPrice.IsPositive() {
		return nil, apperror.Validation("Invalid original price")
	}

	product := &Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price.Round(2),
		OriginalPrice: roundPtr(in.OriginalPrice),
		Image:         in.Image,
		ImagePublicID: in.ImagePublicID,
		Category:      strings.TrimSpace(in.Category),
		SubCategories: pq.StringArray(cleanSubCategories(in.SubCategories)),
		Author:        strings.TrimSpace(in.Author),
		ISBN:          optionalString(in.ISBN),
		Language:      strings.TrimSpace(in.Language),
		Bestseller:    false,
		Availability:  true,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update applies a partial update to a product
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return nil, apperror.Validation("Invalid price")
		}
		product.Price = in.Price.Round(2)
	}
	if in.OriginalPrice != nil {
		if !in.OriginalPrice.IsPositive() {
			return nil, apperror.Validation("Invalid original price")
		}
		product.OriginalPrice = roundPtr(in.OriginalPrice)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.SubCategories != nil {
		product.SubCategories = pq.StringArray(cleanSubCategories(in.SubCategories))
	}
	if in.Author != nil {
		product.Author = strings.TrimSpace(*in.Author)
	}
	if in.ISBN != nil {
		product.ISBN = optionalString(*in.ISBN)
	}
	if in.Language != nil {
		product.Language = strings.TrimSpace(*in.Language)
	}

	var replacedImage string
	if in.Image != "" {
		replacedImage = product.ImagePublicID
		product.Image = in.Image
		product.ImagePublicID = in.ImagePublicID
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.forget(ctx, id)
	s.destroyImage(ctx, replacedImage)

	return product, nil
}

// Remove deletes a product and its dependent rows
func (s *Service) Remove(ctx context.Context, id string) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.forget(ctx, id)
	s.destroyImage(ctx, product.ImagePublicID)
	return nil
}

// ToggleAvailability flips the availability flag
func (s *Service) ToggleAvailability(ctx context.Context, id string) (*Product, error) {
	return s.toggle(ctx, id, func(p *Product) { p.Availability = !p.Availability })
}

// ToggleBestseller flips the bestseller flag
func (s *Service) ToggleBestseller(ctx context.Context, id string) (*Product, error) {
	return s.toggle(ctx, id, func(p *Product) { p.Bestseller = !p.Bestseller })
}

func (s *Service) toggle(ctx context.Context, id string, flip func(*Product)) (*Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	flip(product)

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.forget(ctx, id)
	return product, nil
}

func (s *Service) cached(ctx context.Context, id string) *Product {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, cacheKeyPrefix+id)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", id).Warn("product cache read failed")
		return nil
	}
	if raw == "" {
		return nil
	}

	var product Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		return nil
	}
	return &product
}

func (s *Service) remember(ctx context.Context, product *Product) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+product.ID, string(raw), s.cacheTTL); err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Warn("product cache write failed")
	}
}

func (s *Service) forget(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyPrefix+id); err != nil {
		s.logger.WithError(err).WithField("product_id", id).Warn("product cache invalidation failed")
	}
}

func (s *Service) destroyImage(ctx context.Context, publicID string) {
	if s.images == nil || publicID == "" {
		return
	}
	if err := s.images.Destroy(ctx, publicID); err != nil {
		s.logger.WithError(err).WithField("public_id", publicID).Warn("failed to delete product image")
	}
}

func cleanSubCategories(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, sc := range in {
		sc = strings.TrimSpace(sc)
		if sc == "" {
			continue
		}
		if _, dup := seen[sc]; dup {
			continue
		}
		seen[sc] = struct{}{}
		out = append(out, sc)
	}
	return out
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := d.Round(2)
	return &r
}
