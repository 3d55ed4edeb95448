// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	carts *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	view, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{"cart": view})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req cart.AddItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	view, err := h.carts.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added to cart", gin.H{"cart": view})
}

// UpdateItem handles PUT /cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req cart.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	view, err := h.carts.UpdateItem(c.Request.Context(), userID, c.Param("productId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart updated", gin.H{"cart": view})
}

// RemoveItem handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	view, err := h.carts.RemoveItem(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed from cart", gin.H{"cart": view})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart cleared", nil)
}
