package utils

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"craft-storefront/internal/models"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
)

func RespondWithJSON(c echo.Context, status int, payload any) error {
	return c.JSON(status, payload)
}

func RespondWithError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.ErrorResponse{Message: message})
}

// BindAndValidate binds the request body into req and runs its validate tags.
// On failure it writes the 400 response itself and returns ok=false.
func BindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := models.Validate(req); err != nil {
		return false, HandleServiceError(c, err)
	}
	return true, nil
}

// HandleServiceError maps service errors onto HTTP responses. Business-rule
// sentinels keep their message so clients can show it verbatim.
func HandleServiceError(c echo.Context, err error) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed", Errors: verr.Fields})
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, models.ErrConflict):
		return RespondWithError(c, http.StatusConflict, "Email address is already in use")
	case errors.Is(err, models.ErrInvalidCredentials):
		return RespondWithError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, models.ErrNotAuthenticated):
		return RespondWithError(c, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, models.ErrSizeNotAvailable),
		errors.Is(err, models.ErrOutOfStock),
		errors.Is(err, models.ErrQuantityExceedsStock),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrOrderCannotBeCancelled),
		errors.Is(err, models.ErrOrderCannotBePaid):
		return RespondWithError(c, http.StatusBadRequest, businessMessage(err))
	}
	c.Logger().Error(err)
	return RespondWithError(c, http.StatusInternalServerError, "Internal server error")
}

// businessMessage returns the sentinel's own text, without any wrapping context.
func businessMessage(err error) string {
	for _, s := range []error{
		models.ErrSizeNotAvailable, models.ErrOutOfStock, models.ErrQuantityExceedsStock,
		models.ErrInvalidQuantity, models.ErrEmptyCart, models.ErrOrderCannotBeCancelled,
		models.ErrOrderCannotBePaid,
	} {
		if errors.Is(err, s) {
			msg := s.Error()
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return err.Error()
}

// GetPageLimit reads page and limit query parameters with defaults and bounds.
func GetPageLimit(c echo.Context) (int, int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}
