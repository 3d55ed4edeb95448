// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Kind discriminates registered and guest orders
type Kind string

const (
	KindRegistered Kind = "registered"
	KindGuest      Kind = "guest"
)

// Order represents the order entity. Registered orders carry UserID, guest
// orders carry Guest contact details instead.
type Order struct {
	ID     string  `gorm:"type:uuid;primaryKey" json:"id"`
	Kind   Kind    `gorm:"size:20;not null;index" json:"kind"`
	UserID *string `gorm:"type:uuid;index" json:"userId"`
	User   *Buyer  `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Guest  Guest   `gorm:"embedded;embeddedPrefix:guest_" json:"-"`

	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	Taxes           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"taxes"`
	ShippingFee     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shippingFee"`
	Status          Status          `gorm:"size:30;not null;index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"size:20;not null;index" json:"paymentStatus"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shippingAddress"`
	PaymentMethod   string          `gorm:"size:30;not null" json:"paymentMethod"`

	// Shipping Information
	ShippingMethod    *ShippingMethod `gorm:"size:30" json:"shippingMethod"`
	TrackingID        *string         `gorm:"size:100" json:"trackingId"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Payment       *Payment        `gorm:"foreignKey:OrderID" json:"payment"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID" json:"statusHistory,omitempty"`
}

// Guest holds the contact details of an anonymous buyer
type Guest struct {
	Name     string  `gorm:"size:255" json:"name"`
	Email    string  `gorm:"size:255;index" json:"email"`
	Phone    *string `gorm:"size:30" json:"phone"`
	City     *string `gorm:"size:100" json:"city"`
	PostCode *string `gorm:"size:20" json:"postCode"`
	Country  *string `gorm:"size:100" json:"country"`
}

// Buyer is the registered account an order belongs to
type Buyer struct {
	ID             string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string  `json:"name"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	MobileNumber   *string `json:"mobileNumber"`
	ProfilePicture *string `json:"profilePicture"`
}

// OrderItem represents items in an order. Price is the unit price validated
// at placement time.
type OrderItem struct {
	ID        string           `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   string           `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductID string           `gorm:"type:uuid;not null;index" json:"productId"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int              `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
}

// Payment represents the payment record of an order
type Payment struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       string          `gorm:"type:uuid;not null;uniqueIndex" json:"orderId"`
	PaymentMethod string          `gorm:"size:30;not null" json:"paymentMethod"`
	Status        string          `gorm:"size:20;not null" json:"status"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	TransactionID *string         `gorm:"size:255" json:"transactionId"`
	PaymentProof  *string         `gorm:"size:500" json:"paymentProof"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// StatusHistory records every admin status update
type StatusHistory struct {
	ID            string         `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       string         `gorm:"type:uuid;not null;index" json:"orderId"`
	Status        Status         `gorm:"size:30;not null" json:"status"`
	PaymentStatus *PaymentStatus `gorm:"size:20" json:"paymentStatus,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (OrderItem) TableName() string     { return "order_items" }
func (Payment) TableName() string       { return "payments" }
func (StatusHistory) TableName() string { return "order_status_history" }
func (Buyer) TableName() string         { return "users" }

// BeforeCreate assigns identity
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	o.PrepareCreate(time.Now().UTC())
	return nil
}

// BeforeCreate assigns identity
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns identity
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns identity
func (h *StatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// PrepareCreate fills identity and lifecycle defaults of a new order and its
// children.
func (o *Order) PrepareCreate(now time.Time) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentStatusNotPaid
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = uuid.NewString()
		}
		o.Items[i].OrderID = o.ID
	}
	if o.Payment != nil {
		if o.Payment.ID == "" {
			o.Payment.ID = uuid.NewString()
		}
		o.Payment.OrderID = o.ID
	}
}

// IsGuest reports whether the order was placed without an account
func (o *Order) IsGuest() bool {
	return o.Kind == KindGuest
}

// Subtotal returns Σ price×quantity over the items
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// ContactEmail returns the address notifications for this order go to
func (o *Order) ContactEmail() string {
	if o.IsGuest() {
		return o.Guest.Email
	}
	if o.User != nil {
		return o.User.Email
	}
	return ""
}

// ContactName returns the buyer's display name
func (o *Order) ContactName() string {
	if o.IsGuest() {
		return o.Guest.Name
	}
	if o.User != nil {
		if o.User.LastName != "" {
			return o.User.Name + " " + o.User.LastName
		}
		return o.User.Name
	}
	return ""
}

// BelongsTo reports whether userID placed the order
func (o *Order) BelongsTo(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}
