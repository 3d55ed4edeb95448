package order_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
)

const buyerID = "3f6c2a1b-8d4e-4c7a-9b2f-1e0d9c8b7a65"

type recorder struct {
	events []order.Status
}

func (r *recorder) hook() order.Hook {
	return order.HookFunc{HookName: "record", Fn: func(ctx context.Context, o *order.Order) error {
		r.events = append(r.events, o.Status)
		return nil
	}}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setup(t *testing.T) (*order.Service, *database.Store, *recorder) {
	t.Helper()
	store := memory.NewStore()
	rec := &recorder{}
	logger := quietLogger()
	svc := order.NewService(store.Orders, order.NewSyncHookRunner(logger), logger, rec.hook())
	return svc, store, rec
}

func seedOrder(t *testing.T, store *database.Store, o *order.Order) *order.Order {
	t.Helper()
	ctx := context.Background()

	p := &catalog.Product{
		Name:         "Book for " + o.ShippingAddress,
		Description:  "A book",
		Price:        decimal.NewFromInt(250),
		Category:     "Fiction",
		Author:       "Author",
		Language:     "English",
		Availability: true,
	}
	require.NoError(t, store.Products.Create(ctx, p))

	o.Items = []order.OrderItem{{ProductID: p.ID, Quantity: 2, Price: p.Price}}
	o.TotalPrice = decimal.NewFromInt(500)
	require.NoError(t, store.Orders.Create(ctx, o, order.CreateOptions{PriceTolerance: decimal.RequireFromString("0.01")}))
	return o
}

func registeredOrder(t *testing.T, store *database.Store, withPayment bool) *order.Order {
	uid := buyerID
	o := &order.Order{
		Kind:            order.KindRegistered,
		UserID:          &uid,
		ShippingAddress: "registered",
		PaymentMethod:   order.PaymentMethodCOD,
	}
	if withPayment {
		o.PaymentMethod = "BankTransfer"
		o.Payment = &order.Payment{PaymentMethod: "BankTransfer", Status: order.PaymentRecordPending, Amount: decimal.NewFromInt(500)}
	}
	return seedOrder(t, store, o)
}

func guestOrder(t *testing.T, store *database.Store) *order.Order {
	return seedOrder(t, store, &order.Order{
		Kind:            order.KindGuest,
		Guest:           order.Guest{Name: "Guest", Email: "guest@example.com"},
		ShippingAddress: "guest",
		PaymentMethod:   order.PaymentMethodCOD,
	})
}

func TestUpdateStatusAppliesChangeAndRecordsHistory(t *testing.T) {
	svc, store, rec := setup(t)
	o := registeredOrder(t, store, true)

	updated, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusUpdateInput{
		Status:            "shipped",
		TrackingID:        "TCS-123",
		ShippingMethod:    "tcs",
		EstimatedDelivery: "2026-11-02",
		PaymentStatus:     "paid",
	})
	require.NoError(t, err)

	assert.Equal(t, order.StatusShipped, updated.Status)
	assert.Equal(t, order.PaymentStatusPaid, updated.PaymentStatus)
	require.NotNil(t, updated.TrackingID)
	assert.Equal(t, "TCS-123", *updated.TrackingID)
	require.NotNil(t, updated.ShippingMethod)
	assert.Equal(t, order.ShippingTCS, *updated.ShippingMethod)
	require.NotNil(t, updated.EstimatedDelivery)
	assert.Equal(t, "2026-11-02", updated.EstimatedDelivery.Format("2006-01-02"))

	require.NotNil(t, updated.Payment)
	assert.Equal(t, order.PaymentRecordCompleted, updated.Payment.Status)

	require.Len(t, updated.StatusHistory, 1)
	assert.Equal(t, order.StatusShipped, updated.StatusHistory[0].Status)
	assert.Equal(t, []order.Status{order.StatusShipped}, rec.events)
}

func TestUpdateStatusFailedPaymentMarksRecordFailed(t *testing.T) {
	svc, store, _ := setup(t)
	o := registeredOrder(t, store, true)

	updated, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusUpdateInput{
		Status:        "cancelled",
		PaymentStatus: "failed",
	})
	require.NoError(t, err)
	assert.Equal(t, order.PaymentRecordFailed, updated.Payment.Status)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	svc, store, rec := setup(t)
	o := guestOrder(t, store)
	ctx := context.Background()

	for _, s := range []string{"delivered", "pending", "refunded"} {
		_, err := svc.UpdateStatus(ctx, o.ID, order.StatusUpdateInput{Status: s})
		require.NoError(t, err)
	}

	stored, err := store.Orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusRefunded, stored.Status)
	assert.Len(t, stored.StatusHistory, 3)
	assert.Len(t, rec.events, 3)
}

func TestUpdateStatusRejectsInvalidInput(t *testing.T) {
	svc, store, rec := setup(t)
	o := guestOrder(t, store)

	tests := []struct {
		name string
		in   order.StatusUpdateInput
		want error
	}{
		{"unknown status", order.StatusUpdateInput{Status: "lost"}, order.ErrInvalidStatus},
		{"unknown payment status", order.StatusUpdateInput{Status: "shipped", PaymentStatus: "maybe"}, order.ErrInvalidPaymentStatus},
		{"unknown courier", order.StatusUpdateInput{Status: "shipped", ShippingMethod: "pigeon"}, order.ErrInvalidShippingMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(context.Background(), o.ID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stored, err := store.Orders.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)
	assert.Empty(t, stored.StatusHistory)
	assert.Empty(t, rec.events)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _, rec := setup(t)

	_, err := svc.UpdateStatus(context.Background(), "0f1e2d3c-4b5a-4968-8776-655443322110", order.StatusUpdateInput{Status: "shipped"})
	assert.ErrorIs(t, err, order.ErrNotFound)
	assert.Empty(t, rec.events)
}

func TestGetForUser(t *testing.T) {
	svc, store, _ := setup(t)
	o := registeredOrder(t, store, false)
	ctx := context.Background()

	got, err := svc.GetForUser(ctx, buyerID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.GetForUser(ctx, "someone-else", o.ID)
	assert.ErrorIs(t, err, order.ErrForbidden)
}

func TestAdminListNormalizesBothKinds(t *testing.T) {
	svc, store, _ := setup(t)
	registeredOrder(t, store, false)
	guestOrder(t, store)

	list, err := svc.AdminList(context.Background(), order.AdminListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 2)
	assert.EqualValues(t, 2, list.Pagination.Total)

	guests := 0
	for _, v := range list.Orders {
		if v.IsGuest {
			guests++
			require.NotNil(t, v.Guest)
			assert.Equal(t, "guest@example.com", v.Guest.Email)
		}
		assert.True(t, v.Subtotal.Equal(decimal.NewFromInt(500)))
	}
	assert.Equal(t, 1, guests)

	_, err = svc.AdminList(context.Background(), order.AdminListQuery{Status: "lost"})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestDelete(t *testing.T) {
	svc, store, _ := setup(t)
	o := guestOrder(t, store)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, o.ID))
	_, err := svc.Get(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, o.ID), order.ErrNotFound)
}

func TestHookRunnerIsolatesFailures(t *testing.T) {
	runner := order.NewSyncHookRunner(quietLogger())
	ran := 0

	hooks := []order.Hook{
		order.HookFunc{HookName: "fails", Fn: func(ctx context.Context, o *order.Order) error {
			return errors.New("smtp down")
		}},
		order.HookFunc{HookName: "panics", Fn: func(ctx context.Context, o *order.Order) error {
			panic("boom")
		}},
		order.HookFunc{HookName: "works", Fn: func(ctx context.Context, o *order.Order) error {
			ran++
			return nil
		}},
	}

	runner.Run(context.Background(), "order.placed", &order.Order{ID: "o-1"}, hooks)
	assert.Equal(t, 1, ran)
}

func TestHookRunnerIgnoresRequestCancellation(t *testing.T) {
	logger := quietLogger()
	runner := order.NewHookRunner(logger, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var seen error
	runner.Run(ctx, "order.placed", &order.Order{ID: "o-2"}, []order.Hook{
		order.HookFunc{HookName: "check", Fn: func(ctx context.Context, o *order.Order) error {
			seen = ctx.Err()
			return nil
		}},
	})
	runner.Wait()

	assert.NoError(t, seen)
}

func TestParseStatusUpdateDates(t *testing.T) {
	upd, err := order.ParseStatusUpdate(order.StatusUpdateInput{Status: "shipped", EstimatedDelivery: "2026-11-02T10:00:00Z"})
	require.NoError(t, err)
	require.NotNil(t, upd.EstimatedDelivery)
	assert.Equal(t, 10, upd.EstimatedDelivery.Hour())

	_, err = order.ParseStatusUpdate(order.StatusUpdateInput{Status: "shipped", EstimatedDelivery: "next week"})
	assert.Error(t, err)
}

func TestResolvePaymentMethod(t *testing.T) {
	m, err := order.ResolvePaymentMethod("cod", "")
	require.NoError(t, err)
	assert.Equal(t, "cod", m)

	m, err = order.ResolvePaymentMethod("online", "JazzCash")
	require.NoError(t, err)
	assert.Equal(t, "JazzCash", m)

	m, err = order.ResolvePaymentMethod("BankTransfer", "")
	require.NoError(t, err)
	assert.Equal(t, "BankTransfer", m)

	_, err = order.ResolvePaymentMethod("online", "Cash")
	assert.ErrorIs(t, err, order.ErrInvalidOnlineOption)

	_, err = order.ResolvePaymentMethod("", "")
	assert.ErrorIs(t, err, order.ErrInvalidPaymentMethod)
}
