// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// Handlers bundles the wired handler set the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Address  *handlers.AddressHandler
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
	Invoice  *handlers.InvoiceHandler
}

// SetupRoutes mounts all API routes on the group.
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", h.Auth.GetProfile)
			protected.PUT("/profile", h.Auth.UpdateProfile)
		}
	}

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/addresses", h.Address.List)
		users.POST("/addresses", h.Address.Create)
		users.PUT("/addresses/:id", h.Address.Update)
		users.DELETE("/addresses/:id", h.Address.Delete)
	}

	products := rg.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
	}

	// Cart additions also serve guests via X-Session-ID; the other cart
	// operations need an authenticated user.
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", h.Cart.Get)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:id", h.Cart.UpdateItem)
		cart.DELETE("", h.Cart.Clear)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.GET("", h.Checkout.GetState)
		checkout.POST("", h.Checkout.Begin)
		checkout.POST("/address", h.Checkout.SubmitAddress)
		checkout.POST("/payment-method", h.Checkout.SelectPaymentMethod)
		checkout.POST("/coupon", h.Checkout.ApplyCoupon)
		checkout.DELETE("/coupon", h.Checkout.RemoveCoupon)
		checkout.POST("/proceed", h.Checkout.ProceedToPayment)
		checkout.POST("/gateway-result", h.Checkout.GatewayResult)
	}

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.GET("/:id/invoice", h.Invoice.Export)
	}
}
