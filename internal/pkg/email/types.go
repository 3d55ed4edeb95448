// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeWelcome           EmailType = "welcome"
	EmailTypeVerifyOTP         EmailType = "verify_otp"
	EmailTypeResetOTP          EmailType = "reset_otp"
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderAdmin        EmailType = "order_admin"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
	EmailTypeTest              EmailType = "test"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	TextContent string    `json:"text_content,omitempty"`
	Type        EmailType `json:"type"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName   string `json:"site_name"`
	SiteURL    string `json:"site_url"`
	SupportURL string `json:"support_url"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`
	Year       int    `json:"year"`
}

// OTPData contains data for verification and password reset codes
type OTPData struct {
	EmailTemplateData
	Code       string `json:"code"`
	ExpiryTime string `json:"expiry_time"`
}

// WelcomeEmailData contains data for welcome email
type WelcomeEmailData struct {
	EmailTemplateData
	ShopURL string `json:"shop_url"`
}

// OrderData contains data for order confirmation and operator emails
type OrderData struct {
	EmailTemplateData
	OrderID         string      `json:"order_id"`
	OrderDate       string      `json:"order_date"`
	IsGuest         bool        `json:"is_guest"`
	CustomerPhone   string      `json:"customer_phone"`
	Items           []OrderItem `json:"items"`
	Subtotal        string      `json:"subtotal"`
	Taxes           string      `json:"taxes"`
	ShippingFee     string      `json:"shipping_fee"`
	OrderTotal      string      `json:"order_total"`
	ShippingAddress string      `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`
	OrderURL        string      `json:"order_url"`
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

// OrderStatusUpdateData contains data for order status updates
type OrderStatusUpdateData struct {
	EmailTemplateData
	OrderID           string `json:"order_id"`
	Status            string `json:"status"`
	StatusMessage     string `json:"status_message"`
	PaymentStatus     string `json:"payment_status"`
	TrackingNumber    string `json:"tracking_number,omitempty"`
	ShippingMethod    string `json:"shipping_method,omitempty"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
	OrderURL          string `json:"order_url"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userName, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:   siteName,
		SiteURL:    siteURL,
		SupportURL: siteURL + "/contact",
		UserName:   userName,
		UserEmail:  userEmail,
		Year:       time.Now().Year(),
	}
}
