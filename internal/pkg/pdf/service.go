// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	company CompanyInfo
	now     func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		company: CompanyInfo{
			Name:    cfg.App.CompanyName,
			Address: cfg.App.CompanyAddress,
			Phone:   cfg.App.CompanyPhone,
			Email:   cfg.App.CompanyEmail,
			Website: cfg.App.CompanyWebsite,
		},
		now: time.Now,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         order.View
	Customer      Customer
	Lines         []Line
	Company       CompanyInfo
}

// Customer is the billed party of an invoice
type Customer struct {
	Name  string
	Email string
	Phone string
}

// Line is one printed invoice row
type Line struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// GenerateInvoice generates a PDF invoice for an order
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the invoice page of o
func (s *Service) RenderHTML(o *order.Order) (string, error) {
	data := s.invoiceData(o)

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (s *Service) invoiceData(o *order.Order) InvoiceData {
	view := order.NewView(o)

	customer := Customer{Name: o.ContactName(), Email: o.ContactEmail()}
	switch {
	case o.IsGuest() && o.Guest.Phone != nil:
		customer.Phone = *o.Guest.Phone
	case o.User != nil && o.User.MobileNumber != nil:
		customer.Phone = *o.User.MobileNumber
	}

	lines := make([]Line, 0, len(view.Items))
	for _, item := range view.Items {
		name := item.ProductID
		if item.Product != nil {
			name = item.Product.Name
		}
		lines = append(lines, Line{
			Name:     name,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
			Total:    item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2),
		})
	}

	return InvoiceData{
		InvoiceNumber: InvoiceNumber(o.ID),
		InvoiceDate:   s.now().Format("January 2, 2006"),
		Order:         view,
		Customer:      customer,
		Lines:         lines,
		Company:       s.company,
	}
}

// InvoiceNumber derives the printed invoice number from an order id
func InvoiceNumber(orderID string) string {
	short := orderID
	if len(short) > 8 {
		short = short[:8]
	}
	return "INV-" + short
}

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(invoiceTemplate))

// Invoice HTML template
const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { display: flex; justify-content: space-between; margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-info { text-align: right; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 12px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .num { text-align: right; width: 90px; }
        .totals { float: right; width: 300px; }
        .totals td { padding: 8px; border-bottom: 1px solid #eee; }
        .total-row { font-size: 18px; font-weight: bold; }
        .status-badge { display: inline-block; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold; text-transform: uppercase; }
        .status-paid { background-color: #dcfce7; color: #166534; }
        .status-pending { background-color: #fef3c7; color: #92400e; }
        .footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
            {{if .Company.Phone}}<p>Phone: {{.Company.Phone}}</p>{{end}}
            {{if .Company.Email}}<p>Email: {{.Company.Email}}</p>{{end}}
            {{if .Company.Website}}<p>{{.Company.Website}}</p>{{end}}
        </div>
        <div class="invoice-info">
            <div class="invoice-title">INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.Order.ID}}</p>
            <p><strong>Order Date:</strong> {{.Order.CreatedAt.Format "January 2, 2006"}}</p>
        </div>
    </div>

    <div>
        <div class="section-title">Bill To:</div>
        <p><strong>{{.Customer.Name}}</strong>{{if .Order.IsGuest}} (guest){{end}}</p>
        <p>{{.Order.ShippingAddress}}</p>
        {{if .Customer.Phone}}<p>Phone: {{.Customer.Phone}}</p>{{end}}
        <p>Email: {{.Customer.Email}}</p>
        <p>
            Order Status: {{.Order.Status}} &middot; Payment ({{.Order.PaymentMethod}}):
            <span class="status-badge {{if eq (print .Order.PaymentStatus) "paid"}}status-paid{{else}}status-pending{{end}}">{{.Order.PaymentStatus}}</span>
        </p>
    </div>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th class="num">Qty</th>
                <th class="num">Price</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Lines}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.Price}}</td>
                <td class="num">{{.Total}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr><td>Subtotal:</td><td class="num">{{money .Order.Subtotal}}</td></tr>
            <tr><td>Shipping:</td><td class="num">{{money .Order.ShippingFee}}</td></tr>
            <tr><td>Tax:</td><td class="num">{{money .Order.Taxes}}</td></tr>
            <tr class="total-row"><td>Total:</td><td class="num">{{money .Order.TotalPrice}}</td></tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for your order!</p>
        {{if .Company.Email}}<p>If you have any questions about this invoice, please contact us at {{.Company.Email}}</p>{{end}}
    </div>
</body>
</html>
`
