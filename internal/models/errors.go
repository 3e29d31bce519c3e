package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a unique field (e.g. email) is already taken.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidCredentials is returned when email and password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotAuthenticated is returned by stores when an operation needs a session
	// and none is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSizeNotAvailable is returned when the requested size is not offered for the product.
	ErrSizeNotAvailable = errors.New("selected size is not available")

	// ErrOutOfStock is returned when the selected size has no stock left.
	ErrOutOfStock = errors.New("product is out of stock")

	// ErrQuantityExceedsStock is returned when more units are requested than are in stock.
	ErrQuantityExceedsStock = errors.New("requested quantity exceeds available stock")

	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrEmptyCart is returned when an order is placed from an empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderCannotBeCancelled is returned when an attempt is made to cancel an order
	// that is no longer in a cancellable state (e.g., 'shipped' or 'delivered').
	ErrOrderCannotBeCancelled = errors.New("order cannot be cancelled")

	// ErrOrderCannotBePaid is returned when an attempt is made to pay for an order
	// that is already paid or cancelled.
	ErrOrderCannotBePaid = errors.New("order is not in a state that can be paid for")
)

// FieldError is one field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}
