// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Cart is the persistent cart of a registered user
type Cart struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string     `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is one product line of a cart
type CartItem struct {
	ID        string           `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    string           `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"cartId"`
	ProductID string           `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"productId"`
	Quantity  int              `gorm:"not null" json:"quantity"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// BeforeCreate assigns identity
func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns identity
func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Totals summarises a cart
type Totals struct {
	ItemCount     int             `json:"itemCount"`
	TotalQuantity int             `json:"totalQuantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// Totals computes the cart summary from the loaded product prices
func (c *Cart) Totals() Totals {
	t := Totals{ItemCount: len(c.Items), Subtotal: decimal.Zero}
	for _, item := range c.Items {
		t.TotalQuantity += item.Quantity
		if item.Product != nil {
			t.Subtotal = t.Subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return t
}

// Find returns the line for productID, or nil
func (c *Cart) Find(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
