package api

import (
	"net/http"

	"craft-storefront/internal/api/middleware"
	"craft-storefront/internal/metrics"
	"craft-storefront/internal/modules/cart"
	"craft-storefront/internal/modules/catalog"
	order "craft-storefront/internal/modules/orders"
	"craft-storefront/internal/modules/user"

	"github.com/labstack/echo/v4"
)

// Handlers groups the module handlers the router mounts.
type Handlers struct {
	User    *user.Handler
	Catalog *catalog.Handler
	Cart    *cart.Handler
	Order   *order.Handler
}

// SetupRoutes sets up all the API endpoints for the application under /api.
// limiter may be nil. On protected routes it runs after the JWT check so each
// user gets a bucket; public routes are limited per client IP.
func SetupRoutes(e *echo.Echo, h Handlers, jwtSecret string, revoked middleware.RevocationChecker, limiter *middleware.RateLimiter) {
	authMiddleware := middleware.JWTMAuth(jwtSecret, revoked)
	var publicMiddleware []echo.MiddlewareFunc
	if limiter != nil {
		limit := limiter.Middleware()
		jwtOnly := authMiddleware
		authMiddleware = func(next echo.HandlerFunc) echo.HandlerFunc {
			return jwtOnly(limit(next))
		}
		publicMiddleware = append(publicMiddleware, limit)
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	apiGroup := e.Group("/api")

	// --- Auth & Profile ---
	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", h.User.Register, publicMiddleware...)
		authGroup.POST("/login", h.User.Login, publicMiddleware...)
		authGroup.POST("/logout", h.User.Logout, authMiddleware)
		authGroup.GET("/me", h.User.Me, authMiddleware)
		authGroup.PUT("/profile", h.User.UpdateProfile, authMiddleware)
		authGroup.PUT("/password", h.User.ChangePassword, authMiddleware)

		authGroup.POST("/addresses", h.User.AddAddress, authMiddleware)
		authGroup.PUT("/addresses/:addressId", h.User.UpdateAddress, authMiddleware)
		authGroup.DELETE("/addresses/:addressId", h.User.DeleteAddress, authMiddleware)
		authGroup.PUT("/addresses/:addressId/default", h.User.SetDefaultAddress, authMiddleware)
	}

	// --- Catalog (public) ---
	productGroup := apiGroup.Group("/products-enhanced", publicMiddleware...)
	{
		productGroup.GET("", h.Catalog.ListProducts)
		productGroup.GET("/featured", h.Catalog.Featured)
		productGroup.GET("/top/rated", h.Catalog.TopRated)
		productGroup.GET("/categories", h.Catalog.Categories)
		productGroup.GET("/:id", h.Catalog.GetProduct)
	}

	// --- Cart ---
	cartGroup := apiGroup.Group("/cart", authMiddleware)
	{
		cartGroup.GET("", h.Cart.GetCart)
		cartGroup.POST("/add", h.Cart.AddItem)
		cartGroup.PUT("/item/:itemId", h.Cart.UpdateItem)
		cartGroup.DELETE("/item/:itemId", h.Cart.RemoveItem)
		cartGroup.DELETE("/clear", h.Cart.Clear)
		cartGroup.GET("/count", h.Cart.Count)
	}

	// --- Orders ---
	orderGroup := apiGroup.Group("/orders", authMiddleware)
	{
		orderGroup.POST("", h.Order.CreateOrder)
		orderGroup.GET("/my", h.Order.ListMyOrders)
		orderGroup.GET("/:orderId", h.Order.GetOrder)
		orderGroup.PUT("/:orderId/pay", h.Order.PayOrder)
		orderGroup.PUT("/:orderId/cancel", h.Order.CancelOrder)
		orderGroup.GET("/:orderId/invoice", h.Order.Invoice)
	}
}
