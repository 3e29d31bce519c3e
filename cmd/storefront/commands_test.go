package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"craft-storefront/internal/api"
	"craft-storefront/internal/app"
	"craft-storefront/internal/config"
	"craft-storefront/internal/session"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCLI(t *testing.T) (*cli, *bytes.Buffer) {
	t.Helper()
	e, err := api.NewServer(&config.Config{JWTSecret: "cli-secret", ClientOrigin: "http://localhost:5173"}, api.Deps{})
	require.NoError(t, err)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	a, err := app.New(context.Background(), &config.Config{
		APIBaseURL:     server.URL + "/api",
		RequestTimeout: 5 * time.Second,
	}, app.Options{Storage: session.NewMemoryStorage(), Logger: logrus.NewEntry(logger)})
	require.NoError(t, err)

	var out bytes.Buffer
	return &cli{app: a, out: &out}, &out
}

func TestCatalogCommands(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, c.run(ctx, "products", []string{"sarees"}))
	assert.Contains(t, out.String(), "Chanderi Silk Cotton Saree")
	assert.Contains(t, out.String(), "page 1 of 1, 2 products")

	out.Reset()
	require.NoError(t, c.run(ctx, "product", []string{"p-kurta-indigo"}))
	assert.Contains(t, out.String(), "out of stock")
	assert.Contains(t, out.String(), "/upload/f_auto,q_auto,w_400,c_limit/")

	out.Reset()
	require.NoError(t, c.run(ctx, "search", []string{"no", "such", "thing"}))
	assert.Contains(t, out.String(), `Nothing matches "no such thing"`)

	assert.Error(t, c.run(ctx, "product", []string{"missing"}))
}

func TestSessionCommandsNeedLogin(t *testing.T) {
	c, _ := newTestCLI(t)
	assert.ErrorIs(t, c.run(context.Background(), "cart", nil), errSignedOut)
}

func TestUsageErrors(t *testing.T) {
	c, _ := newTestCLI(t)
	var ue usageError
	assert.ErrorAs(t, c.run(context.Background(), "frobnicate", nil), &ue)
	assert.ErrorAs(t, c.run(context.Background(), "login", []string{"only-email"}), &ue)
	assert.ErrorAs(t, c.run(context.Background(), "add", []string{"p", "M", "many"}), &ue)
}

func TestShoppingSession(t *testing.T) {
	c, out := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, c.run(ctx, "register", []string{"Asha Rao", "asha@example.com", "handloom123"}))
	assert.Contains(t, out.String(), "Welcome, Asha Rao!")

	require.NoError(t, c.run(ctx, "add", []string{"p-dupatta-ajrakh", "Free Size", "2"}))
	assert.Contains(t, out.String(), "2 items, total ₹2598.00")

	err := c.run(ctx, "checkout", []string{"upi"})
	assert.EqualError(t, err, "add a default address before checking out")

	out.Reset()
	require.NoError(t, c.run(ctx, "whoami", nil))
	assert.Contains(t, out.String(), "asha@example.com")

	require.NoError(t, c.run(ctx, "logout", nil))
	out.Reset()
	require.NoError(t, c.run(ctx, "whoami", nil))
	assert.Equal(t, "Not signed in\n", out.String())
}
