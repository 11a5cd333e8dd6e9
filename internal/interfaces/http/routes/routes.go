// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/freshmilk-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/freshmilk-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/freshmilk-storefront/internal/pkg/auth"
)

// SetupCartRoutes sets up cart routes. Guests are identified by their session.
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, jwtManager *auth.JWTManager) {
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(jwtManager))
	{
		cart.GET("", h.GetCart)
		cart.GET("/count", h.GetCartCount)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items/:id", h.UpdateCartItem)
		cart.DELETE("/items/:id", h.RemoveFromCart)
		cart.PUT("/items/:id/selected", h.SelectItem)
		cart.PUT("/selection", h.SelectAll)
		cart.DELETE("/selected", h.ClearSelected)
	}

	merge := rg.Group("/cart")
	merge.Use(middleware.AuthMiddleware(jwtManager))
	{
		merge.POST("/merge", h.MergeGuestCart)
	}
}

// SetupCheckoutRoutes sets up coupon and checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *handlers.CheckoutHandler, jwtManager *auth.JWTManager) {
	rg.GET("/checkout/preview", middleware.OptionalAuthMiddleware(jwtManager), h.Preview)

	protected := rg.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))
	{
		protected.GET("/coupons", h.ListCoupons)
		protected.POST("/checkout", h.PlaceOrder)
		protected.GET("/checkout/receipts/:number", h.DownloadReceipt)
	}
}
