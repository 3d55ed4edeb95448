// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/hero"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Default admin account created by SeedInitialData
const (
	seedAdminEmail    = "admin@example.com"
	seedAdminPassword = "admin123"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Models lists every table in dependency order
func Models() []any {
	return []any{
		// Base tables
		&user.User{},
		&catalog.Product{},

		// Per-user collections
		&review.Review{},
		&cart.Cart{},
		&cart.CartItem{},
		&wishlist.Wishlist{},
		&wishlist.WishlistItem{},

		// Orders
		&order.Order{},
		&order.OrderItem{},
		&order.Payment{},
		&order.StatusHistory{},

		// Storefront
		&hero.HeroImage{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Listings
		"CREATE INDEX IF NOT EXISTS idx_products_available_date ON products(availability, date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_date ON products(category, date DESC)",

		// Orders
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		// Reviews
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",

		// Hero banners
		"CREATE INDEX IF NOT EXISTS idx_hero_images_active_sort ON hero_images(is_active, sort_order)",

		// Value guards
		"DO $$ BEGIN ALTER TABLE reviews ADD CONSTRAINT chk_reviews_rating CHECK (rating BETWEEN 1 AND 5); EXCEPTION WHEN duplicate_object THEN NULL; END $$",
		"DO $$ BEGIN ALTER TABLE cart_items ADD CONSTRAINT chk_cart_items_quantity CHECK (quantity >= 1); EXCEPTION WHEN duplicate_object THEN NULL; END $$",
		"DO $$ BEGIN ALTER TABLE order_items ADD CONSTRAINT chk_order_items_quantity CHECK (quantity >= 1); EXCEPTION WHEN duplicate_object THEN NULL; END $$",
	}

	failed := 0
	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			m.logger.WithError(err).Warn("failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("database indexes ensured")
	return nil
}

// SeedInitialData inserts the admin account and a starter catalog
func (m *Migration) SeedInitialData() error {
	m.logger.Info("seeding initial data")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedBooks(); err != nil {
		return fmt.Errorf("failed to seed books: %w", err)
	}

	m.logger.Info("initial data seeded")
	return nil
}

func (m *Migration) seedAdminUser() error {
	var count int64
	if err := m.db.Model(&user.User{}).Where("email = ?", seedAdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.logger.WithField("email", seedAdminEmail).Debug("admin user already exists")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	password := string(hashed)

	admin := user.User{
		Name:              "Admin",
		LastName:          "User",
		Email:             seedAdminEmail,
		Password:          &password,
		IsAdmin:           true,
		IsAccountVerified: true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	m.logger.WithField("email", seedAdminEmail).Warn("created default admin user; change its password")
	return nil
}

func (m *Migration) seedBooks() error {
	var count int64
	if err := m.db.Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.logger.Debug("catalog already has products")
		return nil
	}

	isbn := func(s string) *string { return &s }
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	original := func(s string) *decimal.Decimal { d := decimal.RequireFromString(s); return &d }

	books := []catalog.Product{
		{
			Name:          "The Pragmatic Programmer",
			Description:   "From journeyman to master: practical advice for working developers.",
			Price:         price("2500.00"),
			OriginalPrice: original("2900.00"),
			Category:      "Technology",
			SubCategories: pq.StringArray{"Programming", "Career"},
			Author:        "David Thomas, Andrew Hunt",
			ISBN:          isbn("9780135957059"),
			Language:      "English",
			Bestseller:    true,
			Availability:  true,
		},
		{
			Name:          "Clean Code",
			Description:   "A handbook of agile software craftsmanship.",
			Price:         price("2200.00"),
			Category:      "Technology",
			SubCategories: pq.StringArray{"Programming"},
			Author:        "Robert C. Martin",
			ISBN:          isbn("9780132350884"),
			Language:      "English",
			Availability:  true,
		},
		{
			Name:          "Peer-e-Kamil",
			Description:   "A novel about faith and the search for meaning.",
			Price:         price("1150.00"),
			Category:      "Fiction",
			SubCategories: pq.StringArray{"Novel"},
			Author:        "Umera Ahmed",
			Language:      "Urdu",
			Bestseller:    true,
			Availability:  true,
		},
		{
			Name:          "Sapiens",
			Description:   "A brief history of humankind.",
			Price:         price("1800.00"),
			Category:      "History",
			SubCategories: pq.StringArray{"World History", "Anthropology"},
			Author:        "Yuval Noah Harari",
			ISBN:          isbn("9780062316097"),
			Language:      "English",
			Availability:  true,
		},
	}

	for i := range books {
		if err := m.db.Create(&books[i]).Error; err != nil {
			return fmt.Errorf("failed to create book %q: %w", books[i].Name, err)
		}
	}

	m.logger.WithField("count", len(books)).Info("seeded starter catalog")
	return nil
}

// TableInfo reports the row count of every migrated table
func (m *Migration) TableInfo() (map[string]int64, error) {
	info := make(map[string]int64)
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: m.db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		var count int64
		if err := m.db.Table(stmt.Schema.Table).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", stmt.Schema.Table, err)
		}
		info[stmt.Schema.Table] = count
	}
	return info, nil
}
