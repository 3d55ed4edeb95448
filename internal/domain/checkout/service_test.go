package checkout

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/upload"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

type fakeFiles struct {
	folder   string
	publicID string
}

func (f *fakeFiles) Upload(ctx context.Context, r io.Reader, filename, folder, publicID string) (*upload.Result, error) {
	f.folder = folder
	f.publicID = publicID
	return &upload.Result{URL: "/uploads/" + folder + "/" + publicID + ".png", PublicID: folder + "/" + publicID}, nil
}

type fakeProfiles struct {
	saved *user.ShippingInfo
}

func (f *fakeProfiles) SaveShippingInfo(ctx context.Context, userID string, info user.ShippingInfo) (*user.User, error) {
	f.saved = &info
	address := info.FullAddress()
	return &user.User{ID: userID, ShippingAddress: &address}, nil
}

type fixture struct {
	store    *database.Store
	svc      *Service
	files    *fakeFiles
	profiles *fakeProfiles
	placed   []string
	buyer    *user.User
	book     *catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		store:    memory.NewStore(),
		files:    &fakeFiles{},
		profiles: &fakeProfiles{},
	}
	ctx := context.Background()

	f.buyer = &user.User{Name: "Ayesha", Email: "ayesha@example.com", IsAccountVerified: true}
	require.NoError(t, f.store.Users.Create(ctx, f.buyer))

	f.book = addProduct(t, f.store, "The Hobbit", "500", true)

	hook := order.HookFunc{HookName: "record", Fn: func(ctx context.Context, o *order.Order) error {
		f.placed = append(f.placed, o.ID)
		return nil
	}}

	f.svc = NewService(Dependencies{
		Products:    f.store.Products,
		Orders:      f.store.Orders,
		Users:       f.store.Users,
		Profiles:    f.profiles,
		Files:       f.files,
		Idempotency: memory.NewIdempotencyStore(),
		Runner:      order.NewSyncHookRunner(logger),
		Hooks:       []order.Hook{hook},
	}, Settings{}, logger)
	return f
}

func addProduct(t *testing.T, store *database.Store, name, price string, available bool) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:         name,
		Description:  name + " description",
		Price:        decimal.RequireFromString(price),
		Category:     "Fiction",
		Author:       "Author",
		Language:     "English",
		Availability: available,
	}
	require.NoError(t, store.Products.Create(context.Background(), p))
	return p
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func charges(taxes, shipping string) Charges {
	return Charges{Taxes: decimal.RequireFromString(taxes), ShippingFee: decimal.RequireFromString(shipping)}
}

func (f *fixture) guestInput(total string) GuestOrderInput {
	return GuestOrderInput{
		GuestName:       "Bilal",
		GuestEmail:      "Bilal@Example.com",
		ShippingAddress: "12 Mall Road, Lahore",
		TotalPrice:      dec(total),
		Items:           []ItemInput{{ProductID: f.book.ID, Quantity: 2, Price: dec("500")}},
		PaymentMethod:   order.PaymentMethodCOD,
		Charges:         charges("50", "100"),
	}
}

func TestCalculate(t *testing.T) {
	f := newFixture(t)

	quote, err := f.svc.Calculate(context.Background(), CalculateInput{
		Items:   []ItemInput{{ProductID: f.book.ID, Quantity: 2}},
		Charges: charges("50", "100"),
	})
	require.NoError(t, err)

	assert.True(t, quote.Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(1150)))
	require.Len(t, quote.Items, 1)
	assert.Equal(t, "The Hobbit", quote.Items[0].ProductName)
}

func TestCalculateRejectsNegativeCharges(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Calculate(context.Background(), CalculateInput{
		Items:   []ItemInput{{ProductID: f.book.ID, Quantity: 1}},
		Charges: charges("-1", "0"),
	})
	assert.ErrorIs(t, err, ErrInvalidCharges)
}

func TestPlaceGuestOrder(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.PlaceGuestOrder(context.Background(), "", f.guestInput("1150"))
	require.NoError(t, err)

	o := res.Order
	assert.False(t, res.Replayed)
	assert.Equal(t, order.KindGuest, o.Kind)
	assert.Nil(t, o.UserID)
	assert.Equal(t, "bilal@example.com", o.Guest.Email)
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(1150)))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentStatusNotPaid, o.PaymentStatus)
	assert.Equal(t, order.PaymentMethodCOD, o.PaymentMethod)
	assert.Nil(t, o.Payment)
	require.Len(t, o.Items, 1)
	assert.NotNil(t, o.Items[0].Product)
	assert.Equal(t, []string{o.ID}, f.placed)
}

func TestPlaceGuestOrderTotalMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceGuestOrder(context.Background(), "", f.guestInput("510"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "Total price mismatch")
	assert.Empty(t, f.placed)
}

func TestPlaceGuestOrderToleratesRounding(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceGuestOrder(context.Background(), "", f.guestInput("1150.01"))
	assert.NoError(t, err)
}

func TestPlaceGuestOrderIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	hidden := addProduct(t, f.store, "Out of Print", "300", false)

	in := f.guestInput("1450")
	in.Items = append(in.Items, ItemInput{ProductID: hidden.ID, Quantity: 1, Price: dec("300")})

	_, err := f.svc.PlaceGuestOrder(context.Background(), "", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")

	orders, total, err := f.store.Orders.List(context.Background(), order.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestPlaceGuestOrderItemErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		item ItemInput
		kind apperror.Kind
	}{
		{"missing price", ItemInput{ProductID: f.book.ID, Quantity: 1}, apperror.KindValidation},
		{"zero quantity", ItemInput{ProductID: f.book.ID, Quantity: 0, Price: dec("500")}, apperror.KindValidation},
		{"unknown product", ItemInput{ProductID: "5d1f3a52-6c0e-4d1b-9f5e-2a3b4c5d6e7f", Quantity: 1, Price: dec("500")}, apperror.KindNotFound},
		{"price mismatch", ItemInput{ProductID: f.book.ID, Quantity: 1, Price: dec("450")}, apperror.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.guestInput("650")
			in.Items = []ItemInput{tt.item}
			_, err := f.svc.PlaceGuestOrder(context.Background(), "", in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestPlaceOrderClearsCartAndRecordsPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.store.Carts.GetOrCreate(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.Carts.AddQuantity(ctx, c.ID, f.book.ID, 2))

	res, err := f.svc.PlaceOrder(ctx, f.buyer.ID, "", PlaceOrderInput{
		ShippingAddress:     "12 Mall Road, Lahore",
		TotalPrice:          dec("1150"),
		Items:               []ItemInput{{ProductID: f.book.ID, Quantity: 2, Price: dec("500")}},
		PaymentMethod:       order.PaymentMethodOnline,
		OnlinePaymentOption: "JazzCash",
		Charges:             charges("50", "100"),
	})
	require.NoError(t, err)

	o := res.Order
	assert.Equal(t, order.KindRegistered, o.Kind)
	require.NotNil(t, o.UserID)
	assert.Equal(t, f.buyer.ID, *o.UserID)
	assert.Equal(t, "JazzCash", o.PaymentMethod)
	require.NotNil(t, o.Payment)
	assert.Equal(t, order.PaymentRecordPending, o.Payment.Status)
	assert.True(t, o.Payment.Amount.Equal(o.TotalPrice))

	c, err = f.store.Carts.GetOrCreate(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestPlaceOrderInvalidPaymentMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), f.buyer.ID, "", PlaceOrderInput{
		ShippingAddress: "12 Mall Road",
		TotalPrice:      dec("650"),
		Items:           []ItemInput{{ProductID: f.book.ID, Quantity: 1, Price: dec("500")}},
		PaymentMethod:   "cheque",
		Charges:         charges("50", "100"),
	})
	assert.ErrorIs(t, err, order.ErrInvalidPaymentMethod)
}

func TestPlaceOrderUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "9b0c2b1e-1d4a-4a53-8f8e-0d7d5b6c4a21", "", PlaceOrderInput{
		ShippingAddress: "12 Mall Road",
		TotalPrice:      dec("500"),
		Items:           []ItemInput{{ProductID: f.book.ID, Quantity: 1, Price: dec("500")}},
		PaymentMethod:   order.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestIdempotencyKeyReplaysOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.PlaceGuestOrder(ctx, "key-1", f.guestInput("1150"))
	require.NoError(t, err)

	second, err := f.svc.PlaceGuestOrder(ctx, "key-1", f.guestInput("1150"))
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Len(t, f.placed, 1)

	_, total, err := f.store.Orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestIdempotencyKeyReleasedOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.PlaceGuestOrder(ctx, "key-2", f.guestInput("510"))
	require.Error(t, err)

	res, err := f.svc.PlaceGuestOrder(ctx, "key-2", f.guestInput("1150"))
	require.NoError(t, err)
	assert.False(t, res.Replayed)
}

func TestIdempotencyKeyInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, reserved, err := f.svc.deps.Idempotency.Reserve(ctx, "guest:bilal@example.com:key-3", time.Hour)
	require.NoError(t, err)
	require.True(t, reserved)

	_, err = f.svc.PlaceGuestOrder(ctx, "key-3", f.guestInput("1150"))
	assert.ErrorIs(t, err, ErrRequestInFlight)
}

func TestProcessCheckoutSavesShippingInfo(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.ProcessCheckout(context.Background(), f.buyer.ID, "", ProcessInput{
		Address:       "12 Mall Road",
		City:          "Lahore",
		PostCode:      "54000",
		Country:       "Pakistan",
		MobileNumber:  "+92 300 1234567",
		SaveInfo:      true,
		Items:         []ItemInput{{ProductID: f.book.ID, Quantity: 1}},
		PaymentMethod: order.PaymentMethodCOD,
	})
	require.NoError(t, err)

	assert.Equal(t, "12 Mall Road, Lahore, 54000, Pakistan", res.Order.ShippingAddress)
	assert.True(t, res.Order.TotalPrice.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, f.profiles.saved)
	assert.Equal(t, "Lahore", f.profiles.saved.City)
	require.NotNil(t, res.UpdatedUser)
}

func TestProcessCheckoutInvalidMobile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ProcessCheckout(context.Background(), f.buyer.ID, "", ProcessInput{
		Address:       "12 Mall Road",
		City:          "Lahore",
		PostCode:      "54000",
		Country:       "Pakistan",
		MobileNumber:  "call me",
		Items:         []ItemInput{{ProductID: f.book.ID, Quantity: 1}},
		PaymentMethod: order.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrInvalidMobile)
}

func TestUploadPaymentProof(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	res, err := f.svc.PlaceOrder(ctx, f.buyer.ID, "", PlaceOrderInput{
		ShippingAddress: "12 Mall Road",
		TotalPrice:      dec("500"),
		Items:           []ItemInput{{ProductID: f.book.ID, Quantity: 1, Price: dec("500")}},
		PaymentMethod:   "EasyPaisa",
	})
	require.NoError(t, err)

	payment, err := f.svc.UploadPaymentProof(ctx, f.buyer.ID, res.Order.ID, bytes.NewReader([]byte("png")), "proof.png")
	require.NoError(t, err)

	assert.Equal(t, "payment_proofs", f.files.folder)
	assert.Equal(t, "proof_"+res.Order.ID+"_1700000000", f.files.publicID)
	require.NotNil(t, payment.PaymentProof)
	assert.True(t, strings.HasSuffix(*payment.PaymentProof, ".png"))

	stored, err := f.store.Orders.FindByID(ctx, res.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Payment.PaymentProof)
}

func TestUploadPaymentProofErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cod, err := f.svc.PlaceOrder(ctx, f.buyer.ID, "", PlaceOrderInput{
		ShippingAddress: "12 Mall Road",
		TotalPrice:      dec("500"),
		Items:           []ItemInput{{ProductID: f.book.ID, Quantity: 1, Price: dec("500")}},
		PaymentMethod:   order.PaymentMethodCOD,
	})
	require.NoError(t, err)

	_, err = f.svc.UploadPaymentProof(ctx, f.buyer.ID, cod.Order.ID, strings.NewReader("x"), "p.png")
	assert.ErrorIs(t, err, order.ErrNoPayment)

	_, err = f.svc.UploadPaymentProof(ctx, "someone-else", cod.Order.ID, strings.NewReader("x"), "p.png")
	assert.ErrorIs(t, err, order.ErrForbidden)

	_, err = f.svc.UploadPaymentProof(ctx, f.buyer.ID, "not-a-uuid", strings.NewReader("x"), "p.png")
	assert.ErrorIs(t, err, order.ErrForbidden)

	_, err = f.svc.UploadPaymentProof(ctx, f.buyer.ID, "", strings.NewReader("x"), "p.png")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestValidMobile(t *testing.T) {
	assert.True(t, validMobile("03001234567"))
	assert.True(t, validMobile("+92 (300) 123-4567"))
	assert.False(t, validMobile("12345"))
	assert.False(t, validMobile("0300-CALL-ME"))
	assert.False(t, validMobile("92+3001234567"))
}

// ctxBoundIdempotency fails once its context is done, as a network-backed
// store would.
type ctxBoundIdempotency struct {
	IdempotencyStore
}

func (s ctxBoundIdempotency) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	return s.IdempotencyStore.Reserve(ctx, key, ttl)
}

func (s ctxBoundIdempotency) Complete(ctx context.Context, key, orderID string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.IdempotencyStore.Complete(ctx, key, orderID, ttl)
}

func (s ctxBoundIdempotency) Release(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.IdempotencyStore.Release(ctx, key)
}

// cancelOnCreate cancels the request right after the order write returns
type cancelOnCreate struct {
	order.Repository
	cancel context.CancelFunc
	fail   error
}

func (r *cancelOnCreate) Create(ctx context.Context, o *order.Order, opts order.CreateOptions) error {
	defer r.cancel()
	if r.fail != nil {
		return r.fail
	}
	return r.Repository.Create(ctx, o, opts)
}

// repriceOnCreate changes a product price between validation and commit
type repriceOnCreate struct {
	order.Repository
	products catalog.Repository
	id       string
	price    decimal.Decimal
}

func (r *repriceOnCreate) Create(ctx context.Context, o *order.Order, opts order.CreateOptions) error {
	p, err := r.products.FindByID(ctx, r.id)
	if err != nil {
		return err
	}
	p.Price = r.price
	if err := r.products.Save(ctx, p); err != nil {
		return err
	}
	return r.Repository.Create(ctx, o, opts)
}

func TestIdempotencyKeyCompletedAfterClientLeaves(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.svc.deps.Idempotency = ctxBoundIdempotency{memory.NewIdempotencyStore()}
	f.svc.deps.Orders = &cancelOnCreate{Repository: f.store.Orders, cancel: cancel}

	first, err := f.svc.PlaceGuestOrder(ctx, "retry-key", f.guestInput("1150"))
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	second, err := f.svc.PlaceGuestOrder(context.Background(), "retry-key", f.guestInput("1150"))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
}

func TestIdempotencyKeyReleasedAfterClientLeaves(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.svc.deps.Idempotency = ctxBoundIdempotency{memory.NewIdempotencyStore()}
	f.svc.deps.Orders = &cancelOnCreate{Repository: f.store.Orders, cancel: cancel, fail: order.ErrDuplicate}

	_, err := f.svc.PlaceGuestOrder(ctx, "retry-key", f.guestInput("1150"))
	require.ErrorIs(t, err, order.ErrDuplicate)

	f.svc.deps.Orders = f.store.Orders
	res, err := f.svc.PlaceGuestOrder(context.Background(), "retry-key", f.guestInput("1150"))
	require.NoError(t, err)
	assert.False(t, res.Replayed)
}

func TestPlaceOrderLeavesOtherCartsAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &user.User{Name: "Hamza", Email: "hamza@example.com", IsAccountVerified: true}
	require.NoError(t, f.store.Users.Create(ctx, other))
	oc, err := f.store.Carts.GetOrCreate(ctx, other.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.Carts.AddQuantity(ctx, oc.ID, f.book.ID, 1))

	bc, err := f.store.Carts.GetOrCreate(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.Carts.AddQuantity(ctx, bc.ID, f.book.ID, 2))

	_, err = f.svc.PlaceOrder(ctx, f.buyer.ID, "", PlaceOrderInput{
		ShippingAddress: "12 Mall Road, Lahore",
		TotalPrice:      dec("1000"),
		Items:           []ItemInput{{ProductID: f.book.ID, Quantity: 2, Price: dec("500")}},
		PaymentMethod:   order.PaymentMethodCOD,
	})
	require.NoError(t, err)

	oc, err = f.store.Carts.GetOrCreate(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, oc.Items, 1)
	assert.Equal(t, 1, oc.Items[0].Quantity)
}

func TestPlaceOrderRejectsPriceDriftAtCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.store.Carts.GetOrCreate(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.Carts.AddQuantity(ctx, c.ID, f.book.ID, 2))

	f.svc.deps.Orders = &repriceOnCreate{
		Repository: f.store.Orders,
		products:   f.store.Products,
		id:         f.book.ID,
		price:      decimal.NewFromInt(450),
	}

	_, err = f.svc.PlaceOrder(ctx, f.buyer.ID, "drift-key", PlaceOrderInput{
		ShippingAddress: "12 Mall Road, Lahore",
		TotalPrice:      dec("1000"),
		Items:           []ItemInput{{ProductID: f.book.ID, Quantity: 2, Price: dec("500")}},
		PaymentMethod:   order.PaymentMethodCOD,
	})
	require.ErrorIs(t, err, order.ErrPricesChanged)
	assert.Empty(t, f.placed)

	_, total, err := f.store.Orders.List(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	c, err = f.store.Carts.GetOrCreate(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)

	// The key is free again
	_, reserved, err := f.svc.deps.Idempotency.Reserve(ctx, "user:"+f.buyer.ID+":drift-key", time.Hour)
	require.NoError(t, err)
	assert.True(t, reserved)
}
