// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a book in the catalog
type Product struct {
	ID            string           `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string           `gorm:"not null;size:255;uniqueIndex" json:"name"`
	Description   string           `gorm:"type:text;not null" json:"description"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"originalPrice"`
	Image         string           `gorm:"size:500" json:"image"`
	ImagePublicID string           `gorm:"size:255" json:"-"`
	Category      string           `gorm:"not null;size:100;index" json:"category"`
	SubCategories pq.StringArray   `gorm:"type:text[]" json:"subCategories"`
	Author        string           `gorm:"not null;size:255" json:"author"`
	ISBN          *string          `gorm:"size:32;uniqueIndex" json:"isbn"`
	Language      string           `gorm:"not null;size:50" json:"language"`
	Date          int64            `gorm:"not null;index" json:"date"` // epoch milliseconds
	Bestseller    bool             `gorm:"not null;index" json:"bestseller"`
	Availability  bool             `gorm:"not null;index" json:"availability"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// TableName overrides
func (Product) TableName() string { return "products" }

// BeforeCreate assigns identity and creation date
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.PrepareCreate(time.Now())
	return nil
}

// PrepareCreate fills the generated fields of a new product
func (p *Product) PrepareCreate(now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Date == 0 {
		p.Date = now.UnixMilli()
	}
	if p.SubCategories == nil {
		p.SubCategories = pq.StringArray{}
	}
}

// Purchasable reports whether the product can be put in a cart or ordered
func (p *Product) Purchasable() bool {
	return p.Availability
}

// Discount returns originalPrice - price when the product is on sale
func (p *Product) Discount() decimal.Decimal {
	if p.OriginalPrice == nil || p.OriginalPrice.LessThanOrEqual(p.Price) {
		return decimal.Zero
	}
	return p.OriginalPrice.Sub(p.Price)
}
