package pdf

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/order"
)

func TestRenderHTMLGuestOrder(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.CompanyName = "Corner Books"
	cfg.App.CompanyEmail = "hello@cornerbooks.test"

	svc := NewService(cfg)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	phone := "0300-1234567"
	o := &order.Order{
		ID:              "7f1c2a9e-0000-4000-8000-000000000001",
		Kind:            order.KindGuest,
		Guest:           order.Guest{Name: "Sara Khan", Email: "sara@example.com", Phone: &phone},
		TotalPrice:      decimal.RequireFromString("1150"),
		Taxes:           decimal.RequireFromString("50"),
		ShippingFee:     decimal.RequireFromString("100"),
		Status:          order.StatusPending,
		PaymentStatus:   order.PaymentStatusNotPaid,
		PaymentMethod:   "cod",
		ShippingAddress: "12 Mall Road, Lahore",
		CreatedAt:       time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC),
		Items: []order.OrderItem{{
			ID:        "i1",
			ProductID: "p1",
			Product:   &catalog.Product{ID: "p1", Name: "The Glass Bead Game"},
			Quantity:  2,
			Price:     decimal.RequireFromString("500"),
		}},
	}

	html, err := svc.RenderHTML(o)
	require.NoError(t, err)

	assert.Contains(t, html, "Corner Books")
	assert.Contains(t, html, "INV-7f1c2a9e")
	assert.Contains(t, html, "March 1, 2025")
	assert.Contains(t, html, "Sara Khan")
	assert.Contains(t, html, "(guest)")
	assert.Contains(t, html, "0300-1234567")
	assert.Contains(t, html, "The Glass Bead Game")
	assert.Contains(t, html, "1000.00")
	assert.Contains(t, html, "1150.00")
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-abc", InvoiceNumber("abc"))
	assert.Equal(t, "INV-12345678", InvoiceNumber("123456789abc"))
}
