// Package app assembles services, handlers and the HTTP server from a store
// and the optional infrastructure around it.
package app

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/cart"
	"github.com/your-org/bookstore-backend/internal/domain/cartsync"
	"github.com/your-org/bookstore-backend/internal/domain/catalog"
	"github.com/your-org/bookstore-backend/internal/domain/checkout"
	"github.com/your-org/bookstore-backend/internal/domain/hero"
	"github.com/your-org/bookstore-backend/internal/domain/notification"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/domain/upload"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/domain/wishlist"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database"
	"github.com/your-org/bookstore-backend/internal/infrastructure/database/memory"
	httpserver "github.com/your-org/bookstore-backend/internal/interfaces/http"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/handlers"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/routes"
	"github.com/your-org/bookstore-backend/internal/pkg/auth"
	"github.com/your-org/bookstore-backend/internal/pkg/email"
	"github.com/your-org/bookstore-backend/internal/pkg/pdf"
)

// Infrastructure is what the process connected to before wiring. Store and
// Sender are required; the rest is optional.
type Infrastructure struct {
	Store  *database.Store
	Sender notification.Sender

	// Cache backs the product read-through cache
	Cache catalog.Cache
	// Idempotency defaults to an in-process store
	Idempotency checkout.IdempotencyStore
	Limiter     middleware.Limiter
	// Invoices defaults to the wkhtmltopdf renderer
	Invoices handlers.InvoiceRenderer
	Checks   map[string]httpserver.HealthCheck

	// SyncHooks runs post-commit hooks on the request goroutine
	SyncHooks bool
}

// Services are the domain services of a wired application
type Services struct {
	Catalog   *catalog.Service
	Reviews   *review.Service
	Carts     *cart.Service
	Wishlists *wishlist.Service
	Merger    *cartsync.Merger
	Checkout  *checkout.Service
	Orders    *order.Service
	Users     *user.Service
	Heroes    *hero.Service
	Analytics *analytics.Service
}

// App is a wired application
type App struct {
	Server   *httpserver.Server
	Services Services
	JWT      *auth.JWTManager
	// Hooks must be drained on shutdown so queued mail is not lost
	Hooks *order.HookRunner
}

// New wires every component on top of infra
func New(cfg *config.Config, logger *logrus.Logger, infra Infrastructure) *App {
	store := infra.Store

	passwords := auth.NewPasswordManager(cfg.Security.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg)
	files := upload.NewStore(cfg.Storage, cfg.Upload, logger)

	// Notifications
	dispatcher := notification.NewDispatcher(infra.Sender, cfg.Notification.Timeout, logger)
	templates := email.LoadTemplates(cfg.Email.TemplateDir, logger)
	site := notification.Site{
		Name:       cfg.App.Name,
		BaseURL:    cfg.App.FrontendURL,
		AdminEmail: cfg.Email.AdminEmail,
	}
	notifier := notification.NewOrderNotifier(dispatcher, templates, site)
	accountMailer := notification.NewAccountMailer(dispatcher, templates, site)

	runner := order.NewHookRunner(logger, cfg.Notification.Timeout)
	if infra.SyncHooks {
		runner = order.NewSyncHookRunner(logger)
	}

	// Domain services
	catalogOpts := []catalog.Option{
		catalog.WithImageRemover(files),
		catalog.WithDefaultPageSize(cfg.Shop.DefaultPageSize),
	}
	if infra.Cache != nil {
		catalogOpts = append(catalogOpts, catalog.WithCache(infra.Cache, cfg.Shop.ProductCacheTTL))
	}
	catalogSvc := catalog.NewService(store.Products, logger, catalogOpts...)

	users := user.NewService(store.Users, passwords, jwtManager, accountMailer, files, logger)
	carts := cart.NewService(store.Carts, catalogSvc)
	wishlists := wishlist.NewService(store.Wishlists, catalogSvc, carts, cfg.Shop.WishlistCapacity)
	merger := cartsync.NewMerger(store.Carts, store.Wishlists, catalogSvc, cfg.Shop.WishlistCapacity, logger)
	reviews := review.NewService(store.Reviews, catalogSvc, users, cfg.Shop.ReviewPageSize)
	orders := order.NewService(store.Orders, runner, logger, notifier.StatusChangedHook())

	idempotency := infra.Idempotency
	if idempotency == nil {
		idempotency = memory.NewIdempotencyStore()
	}
	checkoutSvc := checkout.NewService(checkout.Dependencies{
		Products:    catalogSvc,
		Orders:      store.Orders,
		Users:       users,
		Profiles:    users,
		Files:       files,
		Idempotency: idempotency,
		Runner:      runner,
		Hooks:       notifier.PlacedHooks(),
	}, checkout.Settings{
		PriceTolerance: decimal.NewFromFloat(cfg.Shop.PriceTolerance),
		IdempotencyTTL: cfg.Shop.IdempotencyTTL,
	}, logger)

	heroes := hero.NewService(store.Heroes, files, logger)
	analyticsSvc := analytics.NewService(store.Analytics)

	invoices := infra.Invoices
	if invoices == nil {
		invoices = pdf.NewService(cfg)
	}

	checks := map[string]httpserver.HealthCheck{"store": store.Health}
	for name, check := range infra.Checks {
		checks[name] = check
	}

	server := httpserver.NewServer(cfg, logger, httpserver.Dependencies{
		Handlers: routes.Handlers{
			Auth:      handlers.NewAuthHandler(users, merger, cfg, logger),
			Products:  handlers.NewProductHandler(catalogSvc, reviews, files),
			Reviews:   handlers.NewReviewHandler(reviews),
			Cart:      handlers.NewCartHandler(carts),
			Wishlist:  handlers.NewWishlistHandler(wishlists),
			Checkout:  handlers.NewCheckoutHandler(checkoutSvc),
			Orders:    handlers.NewOrderHandler(orders),
			Invoices:  handlers.NewInvoiceHandler(orders, invoices),
			Hero:      handlers.NewHeroHandler(heroes),
			Analytics: handlers.NewAnalyticsHandler(analyticsSvc),
			Uploads:   handlers.NewUploadHandler(files, logger),
		},
		JWT:     jwtManager,
		Limiter: infra.Limiter,
		Checks:  checks,
	})

	return &App{
		Server: server,
		Services: Services{
			Catalog:   catalogSvc,
			Reviews:   reviews,
			Carts:     carts,
			Wishlists: wishlists,
			Merger:    merger,
			Checkout:  checkoutSvc,
			Orders:    orders,
			Users:     users,
			Heroes:    heroes,
			Analytics: analyticsSvc,
		},
		JWT:   jwtManager,
		Hooks: runner,
	}
}
