package api

import (
	"errors"
	"net/http"

	"craft-storefront/internal/api/middleware"
	"craft-storefront/internal/config"
	"craft-storefront/internal/models"
	"craft-storefront/internal/modules/cart"
	"craft-storefront/internal/modules/catalog"
	order "craft-storefront/internal/modules/orders"
	"craft-storefront/internal/modules/user"
	emailSvc "craft-storefront/pkg/email"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Deps are the outside services the API server talks to.
type Deps struct {
	Emailer   emailSvc.ServiceInterface
	Templates *emailSvc.TemplateManager
	// Seed is the initial catalog; nil means catalog.SeedProducts.
	Seed []models.Product
	// RateLimiter is optional.
	RateLimiter *middleware.RateLimiter
}

// NewServer wires every module with in-memory storage and mounts the routes.
func NewServer(cfg *config.Config, deps Deps) (*echo.Echo, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("api: JWT_SECRET must be set")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.Metrics())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	seed := deps.Seed
	if seed == nil {
		seed = catalog.SeedProducts()
	}

	// --- Users Module ---
	userRepo := user.NewRepository()
	userService := user.NewService(userRepo, deps.Emailer, deps.Templates, cfg.JWTSecret, cfg.ClientOrigin, user.DefaultTokenTTL)
	userHandler := user.NewHandler(userService)

	// --- Catalog Module ---
	catalogService := catalog.NewService(catalog.NewRepository(seed))
	catalogHandler := catalog.NewHandler(catalogService)

	// --- Cart Module ---
	cartService := cart.NewService(cart.NewRepository(), catalogService)
	cartHandler := cart.NewHandler(cartService)

	// --- Orders Module ---
	orderService := order.NewService(order.NewRepository(), cartService, catalogService, userService,
		deps.Emailer, deps.Templates, cfg.ClientOrigin)
	orderHandler := order.NewHandler(orderService)

	SetupRoutes(e, Handlers{
		User:    userHandler,
		Catalog: catalogHandler,
		Cart:    cartHandler,
		Order:   orderHandler,
	}, cfg.JWTSecret, userService, deps.RateLimiter)
	return e, nil
}
