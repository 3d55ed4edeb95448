// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/domain/checkout"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
)

// IdempotencyHeader lets a client retry an order placement safely
const IdempotencyHeader = "Idempotency-Key"

// CheckoutHandler handles checkout and order placement endpoints
type CheckoutHandler struct {
	checkout *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc}
}

// Calculate handles POST /checkout/calculate
func (h *CheckoutHandler) Calculate(c *gin.Context) {
	var req checkout.CalculateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	quote, err := h.checkout.Calculate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", gin.H{"calculation": quote})
}

// ProcessCheckout handles POST /checkout/process
func (h *CheckoutHandler) ProcessCheckout(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req checkout.ProcessInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.checkout.ProcessCheckout(c.Request.Context(), userID, c.GetHeader(IdempotencyHeader), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.placed(c, result)
}

// PlaceOrder handles POST /orders
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req checkout.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.checkout.PlaceOrder(c.Request.Context(), userID, c.GetHeader(IdempotencyHeader), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.placed(c, result)
}

// PlaceGuestOrder handles POST /orders/guest
func (h *CheckoutHandler) PlaceGuestOrder(c *gin.Context) {
	var req checkout.GuestOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.checkout.PlaceGuestOrder(c.Request.Context(), c.GetHeader(IdempotencyHeader), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.placed(c, result)
}

// UploadPaymentProof handles POST /checkout/payment-proof. The multipart form
// carries "orderId" and the "paymentProof" file.
func (h *CheckoutHandler) UploadPaymentProof(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	orderID := c.PostForm("orderId")
	if orderID == "" {
		response.Fail(c, http.StatusBadRequest, "Order ID is required")
		return
	}

	header, err := c.FormFile("paymentProof")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Payment proof file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	payment, err := h.checkout.UploadPaymentProof(c.Request.Context(), userID, orderID, file, header.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment proof uploaded successfully", gin.H{"payment": payment})
}

func (h *CheckoutHandler) placed(c *gin.Context, result *checkout.Result) {
	payload := gin.H{"order": order.NewView(result.Order)}
	if result.UpdatedUser != nil {
		payload["user"] = result.UpdatedUser
	}

	if result.Replayed {
		c.Header("Idempotent-Replayed", "true")
		response.OK(c, "Order already placed", payload)
		return
	}
	response.Created(c, "Order placed successfully", payload)
}
