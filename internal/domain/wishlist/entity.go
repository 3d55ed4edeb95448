package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Wishlist is the persistent wishlist of a registered user. ItemLimit is
// fixed when the wishlist is created.
type Wishlist struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	ItemLimit int            `gorm:"not null" json:"itemLimit"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID" json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// WishlistItem represents a wishlist item
type WishlistItem struct {
	ID         string           `gorm:"type:uuid;primaryKey" json:"id"`
	WishlistID string           `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_wishlist_product" json:"wishlistId"`
	ProductID  string           `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_wishlist_product" json:"productId"`
	Product    *catalog.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// TableName overrides the table name
func (Wishlist) TableName() string     { return "wishlists" }
func (WishlistItem) TableName() string { return "wishlist_items" }

// BeforeCreate assigns identity
func (w *Wishlist) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns identity
func (i *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Contains reports whether productID is already wished for
func (w *Wishlist) Contains(productID string) bool {
	for _, item := range w.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Remaining returns the number of free slots
func (w *Wishlist) Remaining() int {
	if n := w.ItemLimit - len(w.Items); n > 0 {
		return n
	}
	return 0
}
