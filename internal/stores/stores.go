// Package stores holds the client-side state stores. Each store owns one slice of
// storefront state, is the only writer to it and hands out copies on read.
package stores

import (
	"context"
	"errors"

	"craft-storefront/internal/client"
	"craft-storefront/internal/models"

	"github.com/sirupsen/logrus"
)

// Status is the lifecycle of a single async operation.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ErrSuperseded is returned when a response arrived after a newer request for the
// same slice had been issued; the response was dropped.
var ErrSuperseded = errors.New("superseded by a newer request")

// AuthAPI is the part of the API client the auth store uses.
type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	AddAddress(ctx context.Context, req models.AddressRequest) ([]models.Address, error)
	UpdateAddress(ctx context.Context, id string, req models.AddressRequest) ([]models.Address, error)
	DeleteAddress(ctx context.Context, id string) ([]models.Address, error)
	SetDefaultAddress(ctx context.Context, id string) ([]models.Address, error)
}

// CartAPI is the part of the API client the cart store uses.
type CartAPI interface {
	Get(ctx context.Context) (*models.Cart, error)
	Add(ctx context.Context, req models.AddToCartRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, itemID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, itemID string) (*models.Cart, error)
	Clear(ctx context.Context) (*models.Cart, error)
	Count(ctx context.Context) (int, error)
}

// ProductAPI is the part of the API client the product store uses.
type ProductAPI interface {
	List(ctx context.Context, f models.ProductFilter) (*models.ProductListResponse, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	TopRated(ctx context.Context, limit int) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

// OrderAPI is the part of the API client the order store uses.
type OrderAPI interface {
	Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	Mine(ctx context.Context, page, limit int) (*models.OrderListResponse, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	Pay(ctx context.Context, id string, req models.PayOrderRequest) (*models.Order, error)
	Cancel(ctx context.Context, id string) (*models.Order, error)
	Invoice(ctx context.Context, id string) (*models.Invoice, error)
}

// errorSlot is the single error slot each store exposes.
type errorSlot struct {
	Message string
	Fields  []models.FieldError
}

// slotFor maps an operation error to what the store should show. A 401 that
// invalidated the session is handled globally and yields ok=false.
func slotFor(err error) (errorSlot, bool) {
	if errors.Is(err, client.ErrSessionExpired) {
		return errorSlot{}, false
	}
	return errorSlot{Message: client.Message(err), Fields: client.FieldErrors(err)}, true
}

func componentLogger(l *logrus.Entry, name string) *logrus.Entry {
	if l == nil {
		l = logrus.NewEntry(logrus.StandardLogger())
	}
	return l.WithField("component", name)
}
