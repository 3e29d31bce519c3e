package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"craft-storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// RevocationChecker reports whether a token id has been signed out.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTMAuth configures Echo's JWT middleware and rejects tokens that were
// revoked by logout. revoked may be nil.
func JWTMAuth(jwtSecretKey string, revoked RevocationChecker) echo.MiddlewareFunc {
	config := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(models.JwtCustomClaims)
		},
		SigningKey: []byte(jwtSecretKey),

		// Put our claims into the context; "user" is echo-jwt's default key.
		SuccessHandler: func(c echo.Context) {
			userToken := c.Get("user").(*jwt.Token)
			claims := userToken.Claims.(*models.JwtCustomClaims)

			c.Set("userID", claims.UserID)
			c.Set("userEmail", claims.Email)
			c.Set("tokenID", claims.ID)
			if exp := claims.Expiry(); !exp.IsZero() {
				c.Set("tokenExpiresAt", exp)
			}
		},

		ErrorHandler: func(c echo.Context, err error) error {
			c.Logger().Debugf("JWT Error: %v", err)

			if errors.Is(err, echojwt.ErrJWTMissing) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Not authorized, no token"})
			}
			if errors.Is(err, jwt.ErrTokenMalformed) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Token is malformed"})
			} else if errors.Is(err, jwt.ErrTokenExpired) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Token has expired"})
			} else if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid token signature"})
			}
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Not authorized, token failed"})
		},
	}
	jwtMiddleware := echojwt.WithConfig(config)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(rejectRevoked(revoked, next))
	}
}

func rejectRevoked(revoked RevocationChecker, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if revoked == nil {
			return next(c)
		}
		tokenID, _ := c.Get("tokenID").(string)
		if tokenID == "" {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Not authorized, token failed"})
		}
		isRevoked, err := revoked.IsTokenRevoked(c.Request().Context(), tokenID)
		if err != nil {
			c.Logger().Errorf("token revocation lookup: %v", err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Internal server error"})
		}
		if isRevoked {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Session has been signed out"})
		}
		return next(c)
	}
}

// TokenExpiresAt reads the expiry the auth middleware stored on c.
func TokenExpiresAt(c echo.Context) (time.Time, bool) {
	t, ok := c.Get("tokenExpiresAt").(time.Time)
	return t, ok
}
