// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
	"github.com/your-org/bookstore-backend/internal/pkg/validation"
)

const proofFolder = "payment_proofs"

// Dependencies are the collaborators of the checkout service
type Dependencies struct {
	Products    catalog.Reader
	Orders      order.Repository
	Users       UserFinder
	Profiles    ProfileWriter
	Files       FileStore
	Idempotency IdempotencyStore
	Runner      *order.HookRunner
	Hooks       []order.Hook
}

// Settings tune checkout validation
type Settings struct {
	PriceTolerance decimal.Decimal
	IdempotencyTTL time.Duration
}

// Service handles checkout business logic
type Service struct {
	deps     Dependencies
	settings Settings
	logger   *logrus.Logger
	now      func() time.Time
}

// NewService creates a new checkout service
func NewService(deps Dependencies, settings Settings, logger *logrus.Logger) *Service {
	if settings.PriceTolerance.IsZero() {
		settings.PriceTolerance = decimal.RequireFromString("0.01")
	}
	if settings.IdempotencyTTL <= 0 {
		settings.IdempotencyTTL = 24 * time.Hour
	}
	return &Service{
		deps:     deps,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Calculate prices items against the catalog without creating anything
func (s *Service) Calculate(ctx context.Context, in CalculateInput) (*Quote, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := checkCharges(in.Charges); err != nil {
		return nil, err
	}

	lines, err := s.validateItems(ctx, in.Items, false)
	if err != nil {
		return nil, err
	}

	subtotal := subtotalOf(lines)
	quote := &Quote{
		Subtotal:    subtotal,
		Taxes:       in.Taxes,
		ShippingFee: in.ShippingFee,
		Total:       subtotal.Add(in.Taxes).Add(in.ShippingFee),
		Items:       make([]QuoteItem, 0, len(lines)),
	}
	for _, l := range lines {
		quote.Items = append(quote.Items, QuoteItem{
			ProductID:     l.product.ID,
			Quantity:      l.quantity,
			Price:         l.product.Price,
			OriginalPrice: l.product.OriginalPrice,
			ProductName:   l.product.Name,
			ProductImage:  l.product.Image,
		})
	}

	return quote, nil
}

// PlaceOrder creates a registered order and empties the buyer's cart
func (s *Service) PlaceOrder(ctx context.Context, userID, idempotencyKey string, in PlaceOrderInput) (*Result, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.place(ctx, placement{
		kind:            order.KindRegistered,
		userID:          userID,
		idempotencyKey:  idempotencyKey,
		shippingAddress: strings.TrimSpace(in.ShippingAddress),
		items:           in.Items,
		requirePrice:    true,
		declaredTotal:   in.TotalPrice,
		charges:         in.Charges,
		paymentMethod:   in.PaymentMethod,
		onlineOption:    in.OnlinePaymentOption,
		clearCart:       true,
	})
}

// ProcessCheckout creates a registered order from the checkout form,
// optionally saving the shipping details on the profile first.
func (s *Service) ProcessCheckout(ctx context.Context, userID, idempotencyKey string, in ProcessInput) (*Result, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !validMobile(in.MobileNumber) {
		return nil, ErrInvalidMobile
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	info := user.ShippingInfo{
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		PostCode:     strings.TrimSpace(in.PostCode),
		Country:      strings.TrimSpace(in.Country),
		MobileNumber: strings.TrimSpace(in.MobileNumber),
	}

	res, err := s.place(ctx, placement{
		kind:            order.KindRegistered,
		userID:          userID,
		idempotencyKey:  idempotencyKey,
		shippingAddress: info.FullAddress(),
		items:           in.Items,
		requirePrice:    false,
		charges:         in.Charges,
		paymentMethod:   in.PaymentMethod,
		onlineOption:    in.OnlinePaymentOption,
		clearCart:       true,
	})
	if err != nil {
		return nil, err
	}

	if in.SaveInfo && !res.Replayed && s.deps.Profiles != nil {
		updated, err := s.deps.Profiles.SaveShippingInfo(ctx, userID, info)
		if err != nil {
			// The order stands even when the profile write fails
			s.logger.WithError(err).WithField("user_id", userID).Warn("failed to save shipping info")
		} else {
			res.UpdatedUser = updated
		}
	}

	return res, nil
}

// PlaceGuestOrder creates an order for an anonymous buyer
func (s *Service) PlaceGuestOrder(ctx context.Context, idempotencyKey string, in GuestOrderInput) (*Result, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	guest := order.Guest{
		Name:     strings.TrimSpace(in.GuestName),
		Email:    strings.ToLower(strings.TrimSpace(in.GuestEmail)),
		Phone:    optional(in.GuestPhone),
		City:     optional(in.City),
		PostCode: optional(in.PostCode),
		Country:  optional(in.Country),
	}

	return s.place(ctx, placement{
		kind:            order.KindGuest,
		guest:           guest,
		idempotencyKey:  idempotencyKey,
		shippingAddress: strings.TrimSpace(in.ShippingAddress),
		items:           in.Items,
		requirePrice:    true,
		declaredTotal:   in.TotalPrice,
		charges:         in.Charges,
		paymentMethod:   in.PaymentMethod,
		onlineOption:    in.OnlinePaymentOption,
	})
}

// UploadPaymentProof attaches an image proving a manual online payment
func (s *Service) UploadPaymentProof(ctx context.Context, userID, orderID string, file io.Reader, filename string) (*order.Payment, error) {
	if strings.TrimSpace(orderID) == "" || file == nil {
		return nil, apperror.Validation("Order ID and proof file are required")
	}

	o, err := s.deps.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return nil, order.ErrForbidden
		}
		return nil, err
	}
	if !o.BelongsTo(userID) {
		return nil, order.ErrForbidden
	}
	if o.Payment == nil {
		return nil, order.ErrNoPayment
	}
	if o.Payment.Status != order.PaymentRecordPending {
		return nil, order.ErrPaymentNotPending
	}

	publicID := fmt.Sprintf("proof_%s_%d", o.ID, s.now().Unix())
	stored, err := s.deps.Files.Upload(ctx, file, filename, proofFolder, publicID)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Orders.SetPaymentProof(ctx, o.ID, stored.URL); err != nil {
		return nil, fmt.Errorf("failed to save payment proof: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":  o.ID,
		"public_id": stored.PublicID,
	}).Info("payment proof uploaded")

	payment := *o.Payment
	payment.PaymentProof = &stored.URL
	return &payment, nil
}

type placement struct {
	kind            order.Kind
	userID          string
	guest           order.Guest
	idempotencyKey  string
	shippingAddress string
	items           []ItemInput
	requirePrice    bool
	declaredTotal   *decimal.Decimal
	charges         Charges
	paymentMethod   string
	onlineOption    string
	clearCart       bool
}

type line struct {
	product  catalog.Product
	quantity int
}

// place is the single placement path shared by every order entry point:
// validate, write atomically, then run post-commit hooks.
func (s *Service) place(ctx context.Context, p placement) (*Result, error) {
	key := s.idempotencyKey(p)
	if key != "" {
		existing, reserved, err := s.deps.Idempotency.Reserve(ctx, key, s.settings.IdempotencyTTL)
		switch {
		case err != nil:
			s.logger.WithError(err).Warn("idempotency store unavailable, placing order without key")
			key = ""
		case !reserved && existing == "":
			return nil, ErrRequestInFlight
		case !reserved:
			o, err := s.deps.Orders.FindByID(ctx, existing)
			if err != nil {
				return nil, err
			}
			return &Result{Order: o, Replayed: true}, nil
		}
	}

	// Key bookkeeping must survive a client that went away after the commit
	persist := context.WithoutCancel(ctx)

	o, err := s.create(ctx, p)
	if err != nil {
		if key != "" {
			if rerr := s.deps.Idempotency.Release(persist, key); rerr != nil {
				s.logger.WithError(rerr).Warn("failed to release idempotency key")
			}
		}
		return nil, err
	}

	if key != "" {
		if err := s.deps.Idempotency.Complete(persist, key, o.ID, s.settings.IdempotencyTTL); err != nil {
			s.logger.WithError(err).WithField("order_id", o.ID).Warn("failed to record idempotency key")
		}
	}

	s.deps.Runner.Run(ctx, "order.placed", o, s.deps.Hooks)
	return &Result{Order: o}, nil
}

func (s *Service) create(ctx context.Context, p placement) (*order.Order, error) {
	if err := checkCharges(p.charges); err != nil {
		return nil, err
	}

	lines, err := s.validateItems(ctx, p.items, p.requirePrice)
	if err != nil {
		return nil, err
	}

	total := subtotalOf(lines).Add(p.charges.Taxes).Add(p.charges.ShippingFee)
	if p.declaredTotal != nil && !s.within(total, *p.declaredTotal) {
		return nil, apperror.Validationf("Total price mismatch. Calculated: %s, Received: %s",
			total.StringFixed(2), p.declaredTotal.String())
	}

	method, err := order.ResolvePaymentMethod(p.paymentMethod, p.onlineOption)
	if err != nil {
		return nil, err
	}

	o := &order.Order{
		Kind:            p.kind,
		TotalPrice:      total,
		Taxes:           p.charges.Taxes,
		ShippingFee:     p.charges.ShippingFee,
		Status:          order.StatusPending,
		PaymentStatus:   order.PaymentStatusNotPaid,
		ShippingAddress: p.shippingAddress,
		PaymentMethod:   method,
		Items:           make([]order.OrderItem, 0, len(lines)),
	}
	if p.kind == order.KindGuest {
		o.Guest = p.guest
	} else {
		userID := p.userID
		o.UserID = &userID
	}
	for _, l := range lines {
		o.Items = append(o.Items, order.OrderItem{
			ProductID: l.product.ID,
			Quantity:  l.quantity,
			Price:     l.product.Price,
		})
	}
	if method != order.PaymentMethodCOD {
		o.Payment = &order.Payment{
			PaymentMethod: method,
			Status:        order.PaymentRecordPending,
			Amount:        total,
		}
	}

	opts := order.CreateOptions{PriceTolerance: s.settings.PriceTolerance}
	if p.clearCart && p.kind == order.KindRegistered {
		opts.ClearCartOfUser = p.userID
	}

	if err := s.deps.Orders.Create(ctx, o, opts); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"kind":     o.Kind,
		"total":    o.TotalPrice.StringFixed(2),
		"items":    len(o.Items),
	}).Info("order placed")

	// Reload so the response and hooks see products and the buyer
	full, err := s.deps.Orders.FindByID(ctx, o.ID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).Warn("failed to reload placed order")
		return o, nil
	}
	return full, nil
}

// validateItems checks every line against the catalog, in input order, and
// returns the lines priced from the catalog.
func (s *Service) validateItems(ctx context.Context, items []ItemInput, requirePrice bool) ([]line, error) {
	if len(items) == 0 {
		return nil, apperror.Validation("Invalid or empty items")
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 || (requirePrice && item.Price == nil) {
			return nil, ErrInvalidItem
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.deps.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]line, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, apperror.NotFoundf("Product %s not found", item.ProductID)
		}
		if !product.Purchasable() {
			return nil, apperror.Validationf("Product %q is not available", product.Name)
		}
		if item.Price != nil && !s.within(*item.Price, product.Price) {
			return nil, apperror.Validationf("Price mismatch for product %q. Expected: %s, Received: %s",
				product.Name, product.Price.StringFixed(2), item.Price.String())
		}
		lines = append(lines, line{product: product, quantity: item.Quantity})
	}

	return lines, nil
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.Unauthorized("User ID is required")
	}
	if s.deps.Users == nil {
		return nil
	}
	_, err := s.deps.Users.FindByID(ctx, userID)
	return err
}

func (s *Service) idempotencyKey(p placement) string {
	key := strings.TrimSpace(p.idempotencyKey)
	if key == "" || s.deps.Idempotency == nil {
		return ""
	}
	if p.kind == order.KindGuest {
		return "guest:" + p.guest.Email + ":" + key
	}
	return "user:" + p.userID + ":" + key
}

func (s *Service) within(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(s.settings.PriceTolerance)
}

func subtotalOf(lines []line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.product.Price.Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	return sum
}

func checkCharges(c Charges) error {
	if c.Taxes.IsNegative() || c.ShippingFee.IsNegative() {
		return ErrInvalidCharges
	}
	return nil
}

func validMobile(v string) bool {
	digits := 0
	for i, r := range strings.TrimSpace(v) {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
