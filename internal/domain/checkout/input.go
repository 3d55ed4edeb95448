package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/user"
)

// ItemInput is one requested order line. Price is the unit price the client
// saw; it must match the catalog.
type ItemInput struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

// Charges are the extra amounts added to the item subtotal
type Charges struct {
	Taxes       decimal.Decimal `json:"taxes"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
}

// CalculateInput asks for a checkout quote
type CalculateInput struct {
	Items []ItemInput `json:"items" validate:"required,min=1"`
	Charges
}

// PlaceOrderInput is a registered buyer's order with client prices and total
type PlaceOrderInput struct {
	ShippingAddress     string           `json:"shippingAddress" validate:"required,max=1000"`
	TotalPrice          *decimal.Decimal `json:"totalPrice" validate:"required"`
	Items               []ItemInput      `json:"items" validate:"required,min=1"`
	PaymentMethod       string           `json:"paymentMethod"`
	OnlinePaymentOption string           `json:"onlinePaymentOption"`
	Charges
}

// ProcessInput is a registered checkout from the cart page. Prices are taken
// from the catalog; any price the client sends is still checked.
type ProcessInput struct {
	Address             string      `json:"address" validate:"required,max=500"`
	City                string      `json:"city" validate:"required,max=100"`
	PostCode            string      `json:"postCode" validate:"required,max=20"`
	Country             string      `json:"country" validate:"required,max=100"`
	MobileNumber        string      `json:"mobileNumber" validate:"required,max=30"`
	SaveInfo            bool        `json:"saveInfo"`
	Items               []ItemInput `json:"items" validate:"required,min=1"`
	PaymentMethod       string      `json:"paymentMethod"`
	OnlinePaymentOption string      `json:"onlinePaymentOption"`
	Charges
}

// GuestOrderInput is an anonymous order
type GuestOrderInput struct {
	GuestName           string           `json:"guestName" validate:"required,max=255"`
	GuestEmail          string           `json:"guestEmail" validate:"required,email,max=255"`
	GuestPhone          string           `json:"guestPhone" validate:"omitempty,max=30"`
	ShippingAddress     string           `json:"shippingAddress" validate:"required,max=1000"`
	City                string           `json:"city" validate:"omitempty,max=100"`
	PostCode            string           `json:"postCode" validate:"omitempty,max=20"`
	Country             string           `json:"country" validate:"omitempty,max=100"`
	TotalPrice          *decimal.Decimal `json:"totalPrice" validate:"required"`
	Items               []ItemInput      `json:"items" validate:"required,min=1"`
	PaymentMethod       string           `json:"paymentMethod"`
	OnlinePaymentOption string           `json:"onlinePaymentOption"`
	Charges
}

// Quote is the priced result of Calculate
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Taxes       decimal.Decimal `json:"taxes"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
	Items       []QuoteItem     `json:"items"`
}

// QuoteItem is a priced line of a quote
type QuoteItem struct {
	ProductID     string           `json:"productId"`
	Quantity      int              `json:"quantity"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	ProductName   string           `json:"productName"`
	ProductImage  string           `json:"productImage"`
}

// Result is the outcome of an order placement
type Result struct {
	Order *order.Order
	// Replayed is set when an Idempotency-Key matched an earlier order
	Replayed bool
	// UpdatedUser is the profile after saveInfo, when requested
	UpdatedUser *user.User
}
