package utils

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// ErrNoUserInContext means the auth middleware did not run or did not set a user.
var ErrNoUserInContext = errors.New("user ID not found in context")

// GetUserIDFromContext reads the user ID the auth middleware stored on c.
func GetUserIDFromContext(c echo.Context) (string, error) {
	userID, ok := c.Get("userID").(string)
	if !ok || userID == "" {
		return "", ErrNoUserInContext
	}
	return userID, nil
}

// GetRequestID returns the caller-supplied request id, if any.
func GetRequestID(c echo.Context) string {
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
