package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// View is the client-facing shape of an order, identical for both kinds
// except for IsGuest and which of User and Guest is set.
type View struct {
	ID                string          `json:"id"`
	IsGuest           bool            `json:"isGuest"`
	UserID            *string         `json:"userId"`
	User              *Buyer          `json:"user"`
	Guest             *Guest          `json:"guest"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Taxes             decimal.Decimal `json:"taxes"`
	ShippingFee       decimal.Decimal `json:"shippingFee"`
	Status            Status          `json:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	ShippingAddress   string          `json:"shippingAddress"`
	PaymentMethod     string          `json:"paymentMethod"`
	ShippingMethod    *ShippingMethod `json:"shippingMethod"`
	TrackingID        *string         `json:"trackingId"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery"`
	CreatedAt         time.Time       `json:"createdAt"`
	Items             []ItemView      `json:"items"`
	Payment           *Payment        `json:"payment"`
}

// ItemView is an order line with a short product summary
type ItemView struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *ProductSummary `json:"product"`
}

// ProductSummary identifies the product of an order line
type ProductSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// NewView normalizes o
func NewView(o *Order) View {
	v := View{
		ID:                o.ID,
		IsGuest:           o.IsGuest(),
		UserID:            o.UserID,
		TotalPrice:        o.TotalPrice,
		Subtotal:          o.Subtotal(),
		Taxes:             o.Taxes,
		ShippingFee:       o.ShippingFee,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		ShippingAddress:   o.ShippingAddress,
		PaymentMethod:     o.PaymentMethod,
		ShippingMethod:    o.ShippingMethod,
		TrackingID:        o.TrackingID,
		EstimatedDelivery: o.EstimatedDelivery,
		CreatedAt:         o.CreatedAt,
		Items:             make([]ItemView, 0, len(o.Items)),
		Payment:           o.Payment,
	}

	if o.IsGuest() {
		guest := o.Guest
		v.Guest = &guest
	} else {
		v.User = o.User
	}

	for _, item := range o.Items {
		iv := ItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if item.Product != nil {
			iv.Product = &ProductSummary{
				ID:    item.Product.ID,
				Name:  item.Product.Name,
				Image: item.Product.Image,
			}
		}
		v.Items = append(v.Items, iv)
	}

	return v
}

// NewViews normalizes a list of orders
func NewViews(orders []Order) []View {
	views := make([]View, 0, len(orders))
	for i := range orders {
		views = append(views, NewView(&orders[i]))
	}
	return views
}
