// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
	"github.com/your-org/bookstore-backend/internal/pkg/pdf"
)

// InvoiceRenderer turns an order into a PDF document
type InvoiceRenderer interface {
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
}

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	orders   *order.Service
	renderer InvoiceRenderer
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders *order.Service, renderer InvoiceRenderer) *InvoiceHandler {
	return &InvoiceHandler{
		orders:   orders,
		renderer: renderer,
	}
}

// GenerateInvoice handles GET /orders/:id/invoice. Admins may fetch any
// order's invoice; everyone else only their own.
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var (
		o   *order.Order
		err error
	)
	if middleware.IsAdminFromContext(c) {
		o, err = h.orders.Get(c.Request.Context(), c.Param("id"))
	} else {
		o, err = h.orders.GetForUser(c.Request.Context(), userID, c.Param("id"))
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	buf, err := h.renderer.GenerateInvoice(o)
	if err != nil {
		response.Error(c, fmt.Errorf("failed to generate invoice: %w", err))
		return
	}

	filename := fmt.Sprintf("%s.pdf", pdf.InvoiceNumber(o.ID))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
