// internal/pkg/email/templates.go
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Templates renders the html bodies of outgoing mail
type Templates struct {
	templates map[EmailType]*template.Template
}

// LoadTemplates parses <dir>/<type>.html for every email type and falls
// back to the built-in layout when a file is missing or broken.
func LoadTemplates(dir string, logger *logrus.Logger) *Templates {
	t := &Templates{templates: make(map[EmailType]*template.Template, len(builtinTemplates))}

	for name, body := range builtinTemplates {
		if dir != "" {
			path := filepath.Join(dir, string(name)+".html")
			if _, err := os.Stat(path); err == nil {
				tmpl, err := template.ParseFiles(path)
				if err == nil {
					t.templates[name] = tmpl
					continue
				}
				logger.WithError(err).WithField("template", name).Warn("could not load email template, using built-in")
			}
		}
		t.templates[name] = template.Must(template.New(string(name)).Parse(layoutStart + body + layoutEnd))
	}

	return t
}

// Render executes the template of name with data
func (t *Templates) Render(name EmailType, data any) (string, error) {
	tmpl, ok := t.templates[name]
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

const layoutStart = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.SiteName}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">{{.SiteName}}</h1>
`

const layoutEnd = `
        <p>Best regards,<br>{{.SiteName}} Team</p>
        <hr>
        <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}. All rights reserved.</p>
    </div>
</body>
</html>`

const orderItemsTable = `
        <table style="width: 100%; border-collapse: collapse;">
            <tr><th align="left">Book</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
            {{range .Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">{{.Price}}</td><td align="right">{{.Total}}</td></tr>
            {{end}}
        </table>
        <p>Subtotal: {{.Subtotal}}<br>Taxes: {{.Taxes}}<br>Shipping: {{.ShippingFee}}<br><strong>Total: {{.OrderTotal}}</strong></p>
        <p>Shipping address: {{.ShippingAddress}}<br>Payment method: {{.PaymentMethod}}</p>
`

var builtinTemplates = map[EmailType]string{
	EmailTypeVerifyOTP: `
        <p>Hello {{.UserName}},</p>
        <p>Your account verification code is:</p>
        <p style="font-size: 28px; letter-spacing: 6px;"><strong>{{.Code}}</strong></p>
        <p>The code expires in {{.ExpiryTime}}.</p>`,
	EmailTypeResetOTP: `
        <p>Hello {{.UserName}},</p>
        <p>Use this code to reset your password:</p>
        <p style="font-size: 28px; letter-spacing: 6px;"><strong>{{.Code}}</strong></p>
        <p>The code expires in {{.ExpiryTime}}. If you did not ask for a reset, ignore this email.</p>`,
	EmailTypeWelcome: `
        <p>Hello {{.UserName}},</p>
        <p>Your account is verified. Welcome to {{.SiteName}}!</p>
        <p><a href="{{.ShopURL}}">Start browsing</a></p>`,
	EmailTypeOrderConfirmation: `
        <p>Hello {{.UserName}},</p>
        <p>Thank you for your order <strong>{{.OrderID}}</strong> placed on {{.OrderDate}}.</p>` + orderItemsTable + `
        {{if .OrderURL}}<p><a href="{{.OrderURL}}">View your order</a></p>{{end}}`,
	EmailTypeOrderAdmin: `
        <p>A new {{if .IsGuest}}guest{{else}}customer{{end}} order <strong>{{.OrderID}}</strong> was placed on {{.OrderDate}}.</p>
        <p>Customer: {{.UserName}} &lt;{{.UserEmail}}&gt;{{if .CustomerPhone}}, {{.CustomerPhone}}{{end}}</p>` + orderItemsTable,
	EmailTypeOrderStatusUpdate: `
        <p>Hello {{.UserName}},</p>
        <p>{{.StatusMessage}}</p>
        <p>Order: <strong>{{.OrderID}}</strong><br>Status: {{.Status}}<br>Payment: {{.PaymentStatus}}</p>
        {{if .TrackingNumber}}<p>Tracking number: {{.TrackingNumber}}{{if .ShippingMethod}} ({{.ShippingMethod}}){{end}}</p>{{end}}
        {{if .EstimatedDelivery}}<p>Estimated delivery: {{.EstimatedDelivery}}</p>{{end}}
        {{if .OrderURL}}<p><a href="{{.OrderURL}}">View your order</a></p>{{end}}`,
	EmailTypeTest: `
        <p>This is a test message from {{.SiteName}}.</p>`,
}
