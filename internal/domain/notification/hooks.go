// internal/domain/notification/hooks.go
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/pkg/email"
)

// Site describes the shop in outgoing mail
type Site struct {
	Name       string
	BaseURL    string
	AdminEmail string
}

// Renderer renders mail bodies
type Renderer interface {
	Render(name email.EmailType, data any) (string, error)
}

// OrderNotifier builds order mails and hands them to the dispatcher
type OrderNotifier struct {
	dispatcher *Dispatcher
	templates  Renderer
	site       Site
}

// NewOrderNotifier creates an order notifier
func NewOrderNotifier(d *Dispatcher, templates Renderer, site Site) *OrderNotifier {
	return &OrderNotifier{dispatcher: d, templates: templates, site: site}
}

// PlacedHooks mails the buyer a confirmation and the operator a new order
// alert. The two are separate hooks so each gets its own time budget.
func (n *OrderNotifier) PlacedHooks() []order.Hook {
	return []order.Hook{
		order.HookFunc{HookName: "notify_buyer_order_placed", Fn: n.buyerOrderPlaced},
		order.HookFunc{HookName: "notify_operator_order_placed", Fn: n.operatorOrderPlaced},
	}
}

// StatusChangedHook mails the buyer the new order status
func (n *OrderNotifier) StatusChangedHook() order.Hook {
	return order.HookFunc{HookName: "notify_status_changed", Fn: n.statusChanged}
}

func (n *OrderNotifier) buyerOrderPlaced(ctx context.Context, o *order.Order) error {
	to := o.ContactEmail()
	if to == "" {
		return nil
	}

	html, err := n.templates.Render(email.EmailTypeOrderConfirmation, n.orderData(o))
	if err != nil {
		return err
	}
	res := n.dispatcher.Send(ctx, Message{
		To:      to,
		Subject: fmt.Sprintf("Order Confirmation - %s", o.ID),
		HTML:    html,
		Type:    email.EmailTypeOrderConfirmation,
	})
	return resultErr("buyer confirmation", res)
}

func (n *OrderNotifier) operatorOrderPlaced(ctx context.Context, o *order.Order) error {
	if n.site.AdminEmail == "" {
		return nil
	}

	html, err := n.templates.Render(email.EmailTypeOrderAdmin, n.orderData(o))
	if err != nil {
		return err
	}
	res := n.dispatcher.Send(ctx, Message{
		To:      n.site.AdminEmail,
		Subject: AdminSubject(o),
		HTML:    html,
		Type:    email.EmailTypeOrderAdmin,
	})
	return resultErr("operator alert", res)
}

func (n *OrderNotifier) statusChanged(ctx context.Context, o *order.Order) error {
	to := o.ContactEmail()
	if to == "" {
		return nil
	}

	data := email.OrderStatusUpdateData{
		EmailTemplateData: email.GetBaseTemplateData(n.site.Name, n.site.BaseURL, o.ContactName(), to),
		OrderID:           o.ID,
		Status:            humanize(string(o.Status)),
		StatusMessage:     StatusMessage(o.Status),
		PaymentStatus:     humanize(string(o.PaymentStatus)),
		OrderURL:          n.orderURL(o),
	}
	if o.TrackingID != nil {
		data.TrackingNumber = *o.TrackingID
	}
	if o.ShippingMethod != nil {
		data.ShippingMethod = humanize(string(*o.ShippingMethod))
	}
	if o.EstimatedDelivery != nil {
		data.EstimatedDelivery = o.EstimatedDelivery.Format("02 Jan 2006")
	}

	html, err := n.templates.Render(email.EmailTypeOrderStatusUpdate, data)
	if err != nil {
		return err
	}

	res := n.dispatcher.Send(ctx, Message{
		To:      to,
		Subject: fmt.Sprintf("Order Update - %s", o.ID),
		HTML:    html,
		Type:    email.EmailTypeOrderStatusUpdate,
	})
	return resultErr("status update", res)
}

// AdminSubject is the operator alert subject for o
func AdminSubject(o *order.Order) string {
	if o.IsGuest() {
		return "[GUEST ORDER] New Order - " + o.ID
	}
	return "[USER ORDER] New Order - " + o.ID
}

// StatusMessage is the sentence shown to the buyer for status
func StatusMessage(status order.Status) string {
	switch status {
	case order.StatusConfirmed:
		return "Your order has been confirmed."
	case order.StatusProcessing:
		return "Your order is being processed."
	case order.StatusReadyForShipment:
		return "Your order is packed and ready for shipment."
	case order.StatusShipped:
		return "Your order has been shipped."
	case order.StatusOutForDelivery:
		return "Your order is out for delivery."
	case order.StatusDelivered:
		return "Your order has been delivered. Enjoy your books!"
	case order.StatusCancelled:
		return "Your order has been cancelled."
	case order.StatusRefunded, order.StatusPartiallyRefunded:
		return "Your order has been refunded."
	default:
		return "Your order status has been updated."
	}
}

func (n *OrderNotifier) orderData(o *order.Order) email.OrderData {
	items := make([]email.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		name := it.ProductID
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, email.OrderItem{
			Name:     name,
			Quantity: it.Quantity,
			Price:    money(it.Price),
			Total:    money(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		})
	}

	data := email.OrderData{
		EmailTemplateData: email.GetBaseTemplateData(n.site.Name, n.site.BaseURL, o.ContactName(), o.ContactEmail()),
		OrderID:           o.ID,
		OrderDate:         o.CreatedAt.Format("02 Jan 2006 15:04"),
		IsGuest:           o.IsGuest(),
		Items:             items,
		Subtotal:          money(o.Subtotal()),
		Taxes:             money(o.Taxes),
		ShippingFee:       money(o.ShippingFee),
		OrderTotal:        money(o.TotalPrice),
		ShippingAddress:   o.ShippingAddress,
		PaymentMethod:     humanize(o.PaymentMethod),
		OrderURL:          n.orderURL(o),
	}
	if o.IsGuest() && o.Guest.Phone != nil {
		data.CustomerPhone = *o.Guest.Phone
	}
	if !o.IsGuest() && o.User != nil && o.User.MobileNumber != nil {
		data.CustomerPhone = *o.User.MobileNumber
	}
	return data
}

func (n *OrderNotifier) orderURL(o *order.Order) string {
	if o.IsGuest() || n.site.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(n.site.BaseURL, "/") + "/orders"
}

func resultErr(what string, res Result) error {
	if res.Success {
		return nil
	}
	return fmt.Errorf("%s: %s", what, res.Error)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func humanize(v string) string {
	return strings.ReplaceAll(v, "_", " ")
}
