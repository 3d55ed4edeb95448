// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlists *wishlist.Service
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlists *wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	w, err := h.wishlists.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{"wishlist": w})
}

// AddItem handles POST /wishlist/items
func (h *WishlistHandler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req wishlist.AddInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	w, err := h.wishlists.Add(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product added to wishlist", gin.H{"wishlist": w})
}

// RemoveItem handles DELETE /wishlist/items/:productId
func (h *WishlistHandler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	w, err := h.wishlists.Remove(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product removed from wishlist", gin.H{"wishlist": w})
}

// MoveToCart handles POST /wishlist/items/:productId/move-to-cart. The body
// is optional; quantity defaults to one.
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req wishlist.MoveToCartInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
	}

	view, err := h.wishlists.MoveToCart(c.Request.Context(), userID, c.Param("productId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product moved to cart", gin.H{"cart": view})
}
