// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
)

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	reviews *review.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *review.Service) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// AddReview handles POST /reviews
func (h *ReviewHandler) AddReview(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req review.AddInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	added, err := h.reviews.Add(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Review added", gin.H{
		"review":        added.Review,
		"averageRating": added.AverageRating,
	})
}

// ProductReviews handles GET /reviews/product/:productId
func (h *ReviewHandler) ProductReviews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.reviews.ListForProduct(c.Request.Context(), c.Param("productId"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{
		"reviews":       list.Reviews,
		"averageRating": list.AverageRating,
		"pagination":    list.Pagination,
	})
}
