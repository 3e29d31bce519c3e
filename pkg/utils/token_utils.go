package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateSecureToken returns length random bytes, hex encoded. Access token
// ids come from here.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read failed: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewID returns a fresh resource identifier.
func NewID() string {
	return uuid.NewString()
}

// InvoiceNumber derives a stable, human readable invoice number from an order id.
func InvoiceNumber(orderID string) string {
	short := strings.ToUpper(strings.ReplaceAll(orderID, "-", ""))
	if len(short) > 10 {
		short = short[:10]
	}
	return "INV-" + short
}
