// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/handlers"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
)

// Handlers holds every endpoint group
type Handlers struct {
	Auth      *handlers.AuthHandler
	Products  *handlers.ProductHandler
	Reviews   *handlers.ReviewHandler
	Cart      *handlers.CartHandler
	Wishlist  *handlers.WishlistHandler
	Checkout  *handlers.CheckoutHandler
	Orders    *handlers.OrderHandler
	Invoices  *handlers.InvoiceHandler
	Hero      *handlers.HeroHandler
	Analytics *handlers.AnalyticsHandler
	Uploads   *handlers.UploadHandler
}

// SetupRoutes mounts every API route under rg. requireAuth rejects requests
// without a valid access token.
func SetupRoutes(rg *gin.RouterGroup, h Handlers, requireAuth gin.HandlerFunc) {
	SetupAuthRoutes(rg, h.Auth, requireAuth)
	SetupCatalogRoutes(rg, h.Products, h.Reviews, h.Hero, requireAuth)
	SetupCartRoutes(rg, h.Cart, h.Wishlist, requireAuth)
	SetupOrderRoutes(rg, h.Checkout, h.Orders, h.Invoices, requireAuth)
	SetupAdminRoutes(rg, h, requireAuth)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler, requireAuth gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/verify-account", h.VerifyAccount)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/send-reset-otp", h.SendResetOTP)
		auth.POST("/verify-reset-otp", h.VerifyResetOTP)
		auth.POST("/reset-password", h.ResetPassword)

		protected := auth.Group("")
		protected.Use(requireAuth)
		{
			protected.POST("/send-verify-otp", h.SendVerifyOTP)
			protected.GET("/is-auth", h.IsAuthenticated)
			protected.POST("/sync", h.Sync)
			protected.POST("/google-sync", h.GoogleSync)
			protected.PUT("/profile", h.UpdateProfile)
			protected.DELETE("/profile/picture", h.RemoveProfilePicture)
			protected.DELETE("/account", h.DeleteAccount)
		}
	}
}

// SetupCatalogRoutes sets up the public storefront routes
func SetupCatalogRoutes(rg *gin.RouterGroup, products *handlers.ProductHandler, reviews *handlers.ReviewHandler, hero *handlers.HeroHandler, requireAuth gin.HandlerFunc) {
	rg.GET("/products", products.ListProducts)
	rg.GET("/products/:id", products.GetProduct)

	rg.GET("/reviews/product/:productId", reviews.ProductReviews)
	rg.POST("/reviews", requireAuth, reviews.AddReview)

	rg.GET("/hero", hero.ListActive)
}

// SetupCartRoutes sets up cart and wishlist routes
func SetupCartRoutes(rg *gin.RouterGroup, carts *handlers.CartHandler, wishlists *handlers.WishlistHandler, requireAuth gin.HandlerFunc) {
	cart := rg.Group("/cart")
	cart.Use(requireAuth)
	{
		cart.GET("", carts.GetCart)
		cart.DELETE("", carts.ClearCart)
		cart.POST("/items", carts.AddItem)
		cart.PUT("/items/:productId", carts.UpdateItem)
		cart.DELETE("/items/:productId", carts.RemoveItem)
	}

	wishlist := rg.Group("/wishlist")
	wishlist.Use(requireAuth)
	{
		wishlist.GET("", wishlists.GetWishlist)
		wishlist.POST("/items", wishlists.AddItem)
		wishlist.DELETE("/items/:productId", wishlists.RemoveItem)
		wishlist.POST("/items/:productId/move-to-cart", wishlists.MoveToCart)
	}
}

// SetupOrderRoutes sets up checkout and order routes
func SetupOrderRoutes(rg *gin.RouterGroup, checkout *handlers.CheckoutHandler, orders *handlers.OrderHandler, invoices *handlers.InvoiceHandler, requireAuth gin.HandlerFunc) {
	co := rg.Group("/checkout")
	co.Use(requireAuth)
	{
		co.POST("/calculate", checkout.Calculate)
		co.POST("/process", checkout.ProcessCheckout)
		co.POST("/payment-proof", checkout.UploadPaymentProof)
	}

	// Guest checkout needs no account
	rg.POST("/orders/guest", checkout.PlaceGuestOrder)

	o := rg.Group("/orders")
	o.Use(requireAuth)
	{
		o.POST("", checkout.PlaceOrder)
		o.GET("", orders.GetUserOrders)
		o.GET("/:id", orders.GetOrder)
		o.GET("/:id/invoice", invoices.GenerateInvoice)
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, h Handlers, requireAuth gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(requireAuth, middleware.AdminMiddleware())
	{
		products := admin.Group("/products")
		{
			products.GET("", h.Products.AdminListProducts)
			products.POST("", h.Products.CreateProduct)
			products.PUT("/:id", h.Products.UpdateProduct)
			products.DELETE("/:id", h.Products.RemoveProduct)
			products.PATCH("/:id/availability", h.Products.ToggleAvailability)
			products.PATCH("/:id/bestseller", h.Products.ToggleBestseller)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", h.Orders.AdminListOrders)
			orders.GET("/:id", h.Orders.AdminGetOrder)
			orders.PUT("/:id/status", h.Orders.UpdateOrderStatus)
			orders.DELETE("/:id", h.Orders.DeleteOrder)
			orders.GET("/:id/invoice", h.Invoices.GenerateInvoice)
		}

		admin.GET("/order-stats", h.Analytics.GetOrderStats)
		admin.GET("/analytics/sales", h.Analytics.GetSales)

		hero := admin.Group("/hero")
		{
			hero.GET("", h.Hero.ListAll)
			hero.POST("", h.Hero.Create)
			hero.PUT("/:id", h.Hero.Update)
			hero.PATCH("/:id/toggle", h.Hero.ToggleActive)
			hero.DELETE("/:id", h.Hero.Delete)
		}

		uploads := admin.Group("/uploads")
		{
			uploads.POST("/image", h.Uploads.UploadImage)
			uploads.DELETE("/*publicId", h.Uploads.DeleteFile)
		}
	}
}
