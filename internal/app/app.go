// Package app is the client-side composition root. It builds session storage, the
// API client and the four stores, and wires the cross-store side effects.
package app

import (
	"context"
	"fmt"
	"io"

	"craft-storefront/internal/client"
	"craft-storefront/internal/config"
	"craft-storefront/internal/models"
	"craft-storefront/internal/session"
	"craft-storefront/internal/stores"

	"github.com/sirupsen/logrus"
)

// Navigator is the view-side hook for forced navigation.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// App holds the wired stores for one storefront session.
type App struct {
	Client   *client.Client
	Storage  session.Storage
	Auth     *stores.AuthStore
	Cart     *stores.CartStore
	Products *stores.ProductStore
	Orders   *stores.OrderStore

	log    *logrus.Entry
	closer io.Closer
}

// Options override pieces of the default wiring, mostly for tests.
type Options struct {
	Storage   session.Storage
	Navigator Navigator
	Logger    *logrus.Entry
}

// New builds the application from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	a := &App{log: logger.WithField("component", "app")}

	storage := opts.Storage
	if storage == nil {
		var err error
		storage, a.closer, err = NewStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	a.Storage = storage

	c, err := client.New(client.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
		Storage: storage,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}
	a.Client = c

	a.Auth = stores.NewAuthStore(ctx, c.Auth(), storage, logger)
	a.Cart = stores.NewCartStore(c.Cart(), storage, logger)
	a.Products = stores.NewProductStore(c.Products(), logger)
	a.Orders = stores.NewOrderStore(c.Orders(), logger)

	nav := opts.Navigator
	c.SetOnUnauthorized(func() {
		a.log.Info("session expired, redirecting to login")
		a.Auth.HandleUnauthorized()
		if nav != nil {
			nav.ToLogin()
		}
	})

	a.Auth.OnLogout(func() {
		a.Cart.Reset()
		a.Orders.Reset()
	})

	// Placing an order empties the server cart.
	a.Orders.OnCreated(func(ctx context.Context, o *models.Order) {
		if err := a.Cart.FetchCart(ctx); err != nil {
			a.log.WithError(err).WithField("order_id", o.ID).Warn("could not refresh cart after checkout")
		}
	})

	return a, nil
}

// Start restores the persisted session and, when signed in, the cart.
func (a *App) Start(ctx context.Context) error {
	if err := a.Auth.Init(ctx); err != nil {
		return fmt.Errorf("app.Start: auth: %w", err)
	}
	if !a.Auth.Snapshot().IsAuthenticated {
		return nil
	}
	if err := a.Cart.Init(ctx); err != nil {
		// The cart store already shows the error.
		a.log.WithError(err).Warn("cart could not be loaded")
	}
	return nil
}

// Close releases the storage backend, if it holds a connection.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// NewStorage builds the session backend named by cfg.SessionBackend. The closer
// is nil for backends without a connection.
func NewStorage(ctx context.Context, cfg *config.Config) (session.Storage, io.Closer, error) {
	switch cfg.SessionBackend {
	case "memory":
		return session.NewMemoryStorage(), nil, nil
	case "file":
		return session.NewFileStorage(cfg.SessionFile), nil, nil
	case "redis":
		r, err := session.NewRedisStorage(ctx, cfg.RedisURL, "storefront", 0)
		if err != nil {
			return nil, nil, fmt.Errorf("app.NewStorage: %w", err)
		}
		return r, r, nil
	}
	return nil, nil, fmt.Errorf("app.NewStorage: unknown backend %q", cfg.SessionBackend)
}
