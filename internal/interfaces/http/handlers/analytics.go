// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
)

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	analytics *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc}
}

// GetOrderStats handles GET /admin/order-stats
func (h *AnalyticsHandler) GetOrderStats(c *gin.Context) {
	stats, err := h.analytics.OrderStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{"stats": stats})
}

// GetSales handles GET /admin/analytics/sales?days=30
func (h *AnalyticsHandler) GetSales(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	sales, err := h.analytics.Sales(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{"sales": sales})
}
