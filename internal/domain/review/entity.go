// internal/domain/review/entity.go
package review

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a rating left by a registered user; one per product and user
type Review struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID string    `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user" json:"productId"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user;index" json:"userId"`
	User      *Author   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Author is the public face of the reviewing user
type Author struct {
	ID             string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string  `json:"name"`
	LastName       string  `json:"lastName"`
	ProfilePicture *string `json:"profilePicture"`
}

// TableName overrides
func (Review) TableName() string { return "reviews" }
func (Author) TableName() string { return "users" }

// BeforeCreate assigns identity
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
