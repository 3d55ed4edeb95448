// internal/domain/hero/entity.go
package hero

import "time"

// MaxActive is the number of banners the storefront rotates through
const MaxActive = 10

// HeroImage is a storefront banner
type HeroImage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:255" json:"title"`
	AltText       string    `gorm:"size:255" json:"altText"`
	ImageURL      string    `gorm:"size:500;not null;uniqueIndex" json:"imageUrl"`
	ImagePublicID string    `gorm:"size:255" json:"-"`
	IsActive      bool      `gorm:"not null;index" json:"isActive"`
	SortOrder     int       `gorm:"not null" json:"sortOrder"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName overrides
func (HeroImage) TableName() string { return "hero_images" }
