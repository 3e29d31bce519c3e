package models

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errClaimsIncomplete = errors.New("token is missing its user or token id")

// JwtCustomClaims are the access token claims. The registered ID (jti) is what
// logout revokes.
type JwtCustomClaims struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func NewAccessClaims(userID, email, tokenID string, issuedAt time.Time, ttl time.Duration) *JwtCustomClaims {
	return &JwtCustomClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
}

// Validate runs after the registered claims checks during parsing.
func (c *JwtCustomClaims) Validate() error {
	if c.UserID == "" || c.ID == "" {
		return errClaimsIncomplete
	}
	return nil
}

// Expiry returns the expiry time, or the zero time for a token without one.
func (c *JwtCustomClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
