package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/app"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
	"github.com/your-org/bookstore-backend/internal/pkg/auth"
	"github.com/your-org/bookstore-backend/internal/pkg/email"
)

type outbox struct {
	mu   sync.Mutex
	sent []*email.Email
}

func (o *outbox) Send(ctx context.Context, e *email.Email) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, e)
	return "msg-1", nil
}

func (o *outbox) types() []email.EmailType {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]email.EmailType, 0, len(o.sent))
	for _, e := range o.sent {
		out = append(out, e.Type)
	}
	return out
}

type invoices struct{}

func (invoices) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	return bytes.NewBufferString("%PDF-1.4 " + o.ID), nil
}

type harness struct {
	app    *app.App
	store  *database.Store
	outbox *outbox
	book   *catalog.Product
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		App:          config.AppConfig{Name: "bookstore-test", FrontendURL: "http://localhost:3000"},
		Server:       config.ServerConfig{RequestTimeout: 5 * time.Second},
		JWT:          config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour, CookieName: "token"},
		Security:     config.SecurityConfig{BcryptCost: 4},
		Email:        config.EmailConfig{AdminEmail: "ops@example.com"},
		Notification: config.NotificationConfig{Timeout: 5 * time.Second},
		Storage:      config.StorageConfig{LocalPath: t.TempDir(), PublicURL: "/uploads"},
		Upload:       config.UploadConfig{MaxSize: 1 << 20, AllowedExtensions: []string{"jpg", "png", "pdf"}},
		Shop: config.ShopConfig{
			WishlistCapacity: 10,
			PriceTolerance:   0.01,
			IdempotencyTTL:   time.Hour,
			DefaultPageSize:  10,
			ReviewPageSize:   3,
		},
	}

	h := &harness{store: memory.NewStore(), outbox: &outbox{}}
	h.app = app.New(cfg, logger, app.Infrastructure{
		Store:     h.store,
		Sender:    h.outbox,
		Invoices:  invoices{},
		SyncHooks: true,
	})

	book, err := h.app.Services.Catalog.Create(context.Background(), catalog.CreateInput{
		Name:        "The Hobbit",
		Description: "There and back again",
		Price:       decimal.NewFromInt(500),
		Category:    "Fiction",
		Author:      "J.R.R. Tolkien",
		Language:    "English",
	})
	require.NoError(t, err)
	h.book = book
	return h
}

// addUser stores a verified account and returns it with a bearer token
func (h *harness) addUser(t *testing.T, mail string, admin bool) (*user.User, string) {
	t.Helper()
	hash, err := auth.NewPasswordManager(4).HashPassword("secret123")
	require.NoError(t, err)

	u := &user.User{Name: "Sara", Email: mail, Password: &hash, IsAdmin: admin, IsAccountVerified: true}
	require.NoError(t, h.store.Users.Create(context.Background(), u))

	token, err := h.app.JWT.GenerateAccessToken(u.ID, u.Email, admin)
	require.NoError(t, err)
	return u, token
}

func (h *harness) do(t *testing.T, method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.app.Server.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func (h *harness) guestOrder() map[string]any {
	return map[string]any{
		"guestName":       "Bilal",
		"guestEmail":      "bilal@example.com",
		"shippingAddress": "12 Mall Road, Lahore",
		"paymentMethod":   "cod",
		"taxes":           "50",
		"shippingFee":     "100",
		"totalPrice":      "1150",
		"items":           []map[string]any{{"productId": h.book.ID, "quantity": 2, "price": "500"}},
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]any{"store": "healthy"}, body["components"])
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(t, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Route not found", body["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized. Login again", body["message"])

	rec, body = h.do(t, http.MethodGet, "/api/v1/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", body["message"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h := newHarness(t)
	_, shopper := h.addUser(t, "sara@example.com", false)
	_, admin := h.addUser(t, "ops@example.com", true)

	rec, body := h.do(t, http.MethodGet, "/api/v1/admin/orders", shopper, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", body["message"])

	rec, body = h.do(t, http.MethodGet, "/api/v1/admin/orders", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
}

func TestStorefrontListsProducts(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products, ok := body["products"].([]any)
	require.True(t, ok, body)
	assert.Len(t, products, 1)
}

func TestGuestOrderIsIdempotent(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(t, http.MethodPost, "/api/v1/orders/guest", "", h.guestOrder(), "Idempotency-Key", "guest-1")
	require.Equal(t, http.StatusCreated, rec.Code, body)
	assert.Equal(t, "Order placed successfully", body["message"])
	placed := body["order"].(map[string]any)
	assert.Equal(t, true, placed["isGuest"])
	assert.Equal(t, []email.EmailType{email.EmailTypeOrderConfirmation, email.EmailTypeOrderAdmin}, h.outbox.types())

	rec, body = h.do(t, http.MethodPost, "/api/v1/orders/guest", "", h.guestOrder(), "Idempotency-Key", "guest-1")
	require.Equal(t, http.StatusOK, rec.Code, body)
	assert.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, placed["id"], body["order"].(map[string]any)["id"])

	// No second order, no second round of mail
	assert.Len(t, h.outbox.types(), 2)
	list, err := h.app.Services.Orders.AdminList(context.Background(), order.AdminListQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 1)
}

func TestGuestOrderRejectsStaleTotal(t *testing.T) {
	h := newHarness(t)
	in := h.guestOrder()
	in["totalPrice"] = "1100"

	rec, body := h.do(t, http.MethodPost, "/api/v1/orders/guest", "", in)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, h.outbox.types())
}

func TestLoginMergesLocalCart(t *testing.T) {
	h := newHarness(t)
	u, _ := h.addUser(t, "sara@example.com", false)

	rec, body := h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":         "sara@example.com",
		"password":      "secret123",
		"localCart":     []map[string]any{{"productId": h.book.ID, "quantity": 2}},
		"localWishlist": []map[string]any{{"productId": h.book.ID}},
	})
	require.Equal(t, http.StatusOK, rec.Code, body)
	assert.Equal(t, "Login successful", body["message"])

	sync := body["syncResult"].(map[string]any)
	assert.Equal(t, true, sync["cartSynced"])
	assert.Equal(t, true, sync["wishlistSynced"])

	token, ok := body["token"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, rec.Result().Cookies())

	rec, body = h.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, body)
	totals := body["cart"].(map[string]any)["totals"].(map[string]any)
	assert.EqualValues(t, 2, totals["totalQuantity"])
	assert.Equal(t, "1000", totals["subtotal"])

	w, err := h.store.Wishlists.GetOrCreate(context.Background(), u.ID, 10)
	require.NoError(t, err)
	assert.True(t, w.Contains(h.book.ID))
}

func TestAdminStatusUpdateNotifiesBuyer(t *testing.T) {
	h := newHarness(t)
	_, admin := h.addUser(t, "ops@example.com", true)

	_, body := h.do(t, http.MethodPost, "/api/v1/orders/guest", "", h.guestOrder())
	id := body["order"].(map[string]any)["id"].(string)

	rec, body := h.do(t, http.MethodPut, "/api/v1/admin/orders/"+id+"/status", admin, map[string]any{
		"status":     "shipped",
		"trackingId": "TCS-9",
	})
	require.Equal(t, http.StatusOK, rec.Code, body)

	stored, err := h.store.Orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, stored.Status)
	assert.Len(t, stored.StatusHistory, 1)
	assert.Len(t, h.outbox.types(), 3)

	rec, _ = h.do(t, http.MethodGet, "/api/v1/admin/orders/"+id+"/invoice", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)
}
