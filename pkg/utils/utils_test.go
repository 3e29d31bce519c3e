package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"craft-storefront/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeImageURL(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{
			name:  "cloudinary with width",
			in:    "https://res.cloudinary.com/demo/image/upload/v1/kurta.jpg",
			width: 600,
			want:  "https://res.cloudinary.com/demo/image/upload/f_auto,q_auto,w_600,c_limit/v1/kurta.jpg",
		},
		{
			name: "cloudinary without width",
			in:   "https://res.cloudinary.com/demo/image/upload/v1/kurta.jpg",
			want: "https://res.cloudinary.com/demo/image/upload/f_auto,q_auto/v1/kurta.jpg",
		},
		{
			name:  "already optimized",
			in:    "https://res.cloudinary.com/demo/image/upload/f_auto,q_auto/v1/kurta.jpg",
			width: 300,
			want:  "https://res.cloudinary.com/demo/image/upload/f_auto,q_auto/v1/kurta.jpg",
		},
		{
			name:  "other host",
			in:    "https://images.example.com/kurta.jpg",
			width: 300,
			want:  "https://images.example.com/kurta.jpg",
		},
		{
			name: "not a url",
			in:   "::",
			want: "::",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OptimizeImageURL(tt.in, tt.width))
		})
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := GetUserIDFromContext(c)
	assert.ErrorIs(t, err, ErrNoUserInContext)

	c.Set("userID", "u1")
	id, err := GetUserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-3F2A9C1B7D", InvoiceNumber("3f2a9c1b-7d44-4e0a-9a55-0d5f1c2b3a4e"))
	assert.Equal(t, "INV-ABC", InvoiceNumber("abc"))
}

func TestGenerateSecureToken(t *testing.T) {
	tok, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, tok, 32)
}

func TestHandleServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{fmt.Errorf("service.AddToCart: %w", models.ErrOutOfStock), http.StatusBadRequest, `"Product is out of stock"`},
		{models.ErrNotFound, http.StatusNotFound, `"Resource not found"`},
		{models.ErrInvalidCredentials, http.StatusUnauthorized, `"Invalid email or password"`},
		{&models.ValidationError{Fields: []models.FieldError{{Field: "email", Message: "is required"}}}, http.StatusBadRequest, `"field":"email"`},
		{errors.New("boom"), http.StatusInternalServerError, `"Internal server error"`},
	}
	e := echo.New()
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, HandleServiceError(c, tt.err))
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.Contains(t, rec.Body.String(), tt.body)
	}
}

func TestGetPageLimit(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=3&limit=500", nil), httptest.NewRecorder())
	page, limit := GetPageLimit(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageLimit, limit)

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=-1", nil), httptest.NewRecorder())
	page, limit = GetPageLimit(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageLimit, limit)
}
