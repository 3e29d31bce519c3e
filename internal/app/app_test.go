package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"craft-storefront/internal/api"
	"craft-storefront/internal/config"
	"craft-storefront/internal/models"
	"craft-storefront/internal/session"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	app     *App
	server  *httptest.Server
	storage *session.MemoryStorage
	navs    atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	e, err := api.NewServer(&config.Config{JWTSecret: "app-secret", ClientOrigin: "http://localhost:5173"}, api.Deps{})
	require.NoError(t, err)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := &harness{server: server, storage: session.NewMemoryStorage()}
	h.app, err = New(context.Background(), &config.Config{
		APIBaseURL:     server.URL + "/api",
		RequestTimeout: 5 * time.Second,
		SessionBackend: "memory",
	}, Options{
		Storage:   h.storage,
		Navigator: NavigatorFunc(func() { h.navs.Add(1) }),
		Logger:    logrus.NewEntry(logger),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.app.Close() })
	return h
}

func (h *harness) signUp(t *testing.T, ctx context.Context) {
	t.Helper()
	require.NoError(t, h.app.Auth.Register(ctx, models.RegisterRequest{
		Name: "Asha Rao", Email: "asha@example.com", Password: "handloom123",
	}))
	require.True(t, h.app.Auth.Snapshot().IsAuthenticated)
}

func (h *harness) addKurta(t *testing.T, ctx context.Context, qty int) {
	t.Helper()
	require.NoError(t, h.app.Products.FetchProduct(ctx, "p-kurta-indigo"))
	product := h.app.Products.Snapshot().Current
	require.NotNil(t, product)
	require.NoError(t, h.app.Cart.AddToCart(ctx, product, "M", qty))
}

var checkout = models.CreateOrderRequest{
	ShippingAddress: models.ShippingAddress{
		FullName: "Asha Rao", Phone: "9876543210", Street: "12 MG Road",
		City: "Bengaluru", State: "KA", PostalCode: "560001",
	},
	PaymentMethod: "cod",
}

func TestStartWithoutSession(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.app.Start(context.Background()))
	assert.False(t, h.app.Auth.Snapshot().IsAuthenticated)
	assert.Empty(t, h.app.Cart.Snapshot().Items)
}

func TestSessionSurvivesRestart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, ctx)
	h.addKurta(t, ctx, 2)

	restarted, err := New(ctx, &config.Config{
		APIBaseURL:     h.server.URL + "/api",
		RequestTimeout: 5 * time.Second,
	}, Options{Storage: h.storage})
	require.NoError(t, err)
	require.NoError(t, restarted.Start(ctx))

	assert.True(t, restarted.Auth.Snapshot().IsAuthenticated)
	assert.Equal(t, "asha@example.com", restarted.Auth.Snapshot().User.Email)
	assert.Equal(t, 2, restarted.Cart.Snapshot().TotalItems)
}

func TestCheckoutRefreshesCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, ctx)
	h.addKurta(t, ctx, 1)
	require.Equal(t, 1499.0, h.app.Cart.Snapshot().TotalPrice)

	order, err := h.app.Orders.CreateOrder(ctx, checkout)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, 1672.95, order.TotalPrice)

	assert.Empty(t, h.app.Cart.Snapshot().Items, "the cart is refetched after checkout")
	assert.Equal(t, order.ID, h.app.Orders.Snapshot().Current.ID)

	require.NoError(t, h.app.Orders.CancelOrder(ctx, order.ID))
	assert.Equal(t, models.OrderCancelled, h.app.Orders.Snapshot().Current.Status)
}

func TestLogoutResetsStores(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, ctx)
	h.addKurta(t, ctx, 1)
	require.NoError(t, h.app.Orders.FetchOrders(ctx, 1, 10))

	require.NoError(t, h.app.Auth.Logout(ctx))

	assert.False(t, h.app.Auth.Snapshot().IsAuthenticated)
	assert.Empty(t, h.app.Cart.Snapshot().Items)
	assert.Nil(t, h.app.Orders.Snapshot().Pagination)
	assert.Empty(t, session.Token(ctx, h.storage))
	assert.Zero(t, h.navs.Load(), "a voluntary logout does not force navigation")
}

func TestRevokedTokenForcesLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signUp(t, ctx)
	h.addKurta(t, ctx, 1)

	// Sign the token out behind the client's back.
	req, err := http.NewRequest(http.MethodPost, h.server.URL+"/api/auth/logout", bytes.NewReader(nil))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+session.Token(ctx, h.storage))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	err = h.app.Cart.FetchCart(ctx)
	require.Error(t, err)

	assert.Equal(t, int32(1), h.navs.Load())
	assert.False(t, h.app.Auth.Snapshot().IsAuthenticated)
	assert.Empty(t, h.app.Auth.Snapshot().Error, "a forced sign-out shows no error")
	assert.Empty(t, h.app.Cart.Snapshot().Items)
	assert.Empty(t, session.Token(ctx, h.storage))
}

func TestNewStorageRejectsUnknownBackend(t *testing.T) {
	_, _, err := NewStorage(context.Background(), &config.Config{SessionBackend: "carrier-pigeon"})
	assert.Error(t, err)
}
