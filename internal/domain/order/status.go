// internal/domain/order/status.go
package order

import (
	"strings"

	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

// Status represents the order status
type Status string

const (
	StatusPending           Status = "pending"
	StatusConfirmed         Status = "confirmed"
	StatusProcessing        Status = "processing"
	StatusReadyForShipment  Status = "ready_for_shipment"
	StatusShipped           Status = "shipped"
	StatusOutForDelivery    Status = "out_for_delivery"
	StatusDelivered         Status = "delivered"
	StatusCancelled         Status = "cancelled"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

// Statuses lists every order status in lifecycle order
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusReadyForShipment,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
	StatusRefunded,
	StatusPartiallyRefunded,
}

// PaymentStatus is the order-level payment state
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusNotPaid PaymentStatus = "not_paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusFailed  PaymentStatus = "failed"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPaid,
	PaymentStatusNotPaid,
	PaymentStatusPending,
	PaymentStatusFailed,
}

// ShippingMethod is the courier used for delivery
type ShippingMethod string

const (
	ShippingTCS          ShippingMethod = "tcs"
	ShippingLeopard      ShippingMethod = "leopard"
	ShippingTrax         ShippingMethod = "trax"
	ShippingPostEx       ShippingMethod = "postex"
	ShippingPakistanPost ShippingMethod = "pakistan_post"
	ShippingOther        ShippingMethod = "other"
)

var ShippingMethods = []ShippingMethod{
	ShippingTCS,
	ShippingLeopard,
	ShippingTrax,
	ShippingPostEx,
	ShippingPakistanPost,
	ShippingOther,
}

// Payment record statuses
const (
	PaymentRecordPending   = "pending"
	PaymentRecordCompleted = "completed"
	PaymentRecordFailed    = "failed"
)

// Payment methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// OnlinePaymentOptions are the accepted sub-options of an online payment
var OnlinePaymentOptions = []string{"JazzCash", "EasyPaisa", "BankTransfer"}

var (
	ErrInvalidStatus         = apperror.Validation("Invalid status")
	ErrInvalidPaymentStatus  = apperror.Validation("Invalid payment status")
	ErrInvalidShippingMethod = apperror.Validation("Invalid shipping method")
	ErrInvalidPaymentMethod  = apperror.Validation(`Invalid payment method. Must be "cod" or "online"`)
	ErrInvalidOnlineOption   = apperror.Validation("Invalid online payment option. Must be one of: JazzCash, EasyPaisa, BankTransfer")
)

// ParseStatus validates an order status
func ParseStatus(s string) (Status, error) {
	for _, v := range Statuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", ErrInvalidStatus
}

// ParsePaymentStatus validates an order payment status
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, v := range PaymentStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", ErrInvalidPaymentStatus
}

// ParseShippingMethod validates a shipping method
func ParseShippingMethod(s string) (ShippingMethod, error) {
	for _, v := range ShippingMethods {
		if string(v) == s {
			return v, nil
		}
	}
	return "", ErrInvalidShippingMethod
}

// ResolvePaymentMethod turns the requested method and online sub-option into
// the stored payment method: "cod" or the online sub-option. A bare sub-option
// given as method is treated as online.
func ResolvePaymentMethod(method, option string) (string, error) {
	method = strings.TrimSpace(method)
	option = strings.TrimSpace(option)

	switch {
	case method == PaymentMethodCOD:
		return PaymentMethodCOD, nil
	case method == PaymentMethodOnline:
		if isOnlineOption(option) {
			return option, nil
		}
		return "", ErrInvalidOnlineOption
	case isOnlineOption(method):
		return method, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// RecordStatusFor maps an order payment status onto the payment record status
func RecordStatusFor(ps PaymentStatus) string {
	switch ps {
	case PaymentStatusPaid:
		return PaymentRecordCompleted
	case PaymentStatusFailed:
		return PaymentRecordFailed
	default:
		return string(ps)
	}
}

func isOnlineOption(s string) bool {
	for _, o := range OnlinePaymentOptions {
		if o == s {
			return true
		}
	}
	return false
}
