package client

import (
	"errors"
	"fmt"
	"net/http"

	"craft-storefront/internal/models"

	"github.com/tidwall/gjson"
)

// Generic messages shown when the server gives nothing better.
const (
	MsgNetwork  = "Unable to reach the store. Please check your connection and try again."
	MsgServer   = "Something went wrong on our side. Please try again."
	MsgFallback = "Request failed. Please try again."
)

// Kind classifies a failed API call.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindUnauthorized
	KindValidation
	KindNotFound
	KindBusiness
	KindServer
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBusiness:
		return "business"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

var (
	// ErrSessionExpired matches errors from a 401 that invalidated the local session.
	ErrSessionExpired = errors.New("session expired")

	// ErrNetwork matches transport failures, including the client timeout.
	ErrNetwork = errors.New("network error")
)

// APIError is returned for every failed call made through Client.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []models.FieldError
	// Body is the raw response body, kept so callers can read payloads out of it.
	Body []byte
	Err  error

	sessionExpired bool
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrSessionExpired:
		return e.sessionExpired
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

// Payload looks up a JSON path in the error body.
func (e *APIError) Payload(path string) gjson.Result {
	if len(e.Body) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(e.Body, path)
}

// parseError builds an APIError from a non-2xx response.
func parseError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: body}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthorized
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindBusiness
	}

	if gjson.ValidBytes(body) {
		e.Message = gjson.GetBytes(body, "message").String()
		if e.Message == "" {
			e.Message = gjson.GetBytes(body, "error").String()
		}
		// Accept both {field,message} and express-validator style {path|param,msg}.
		gjson.GetBytes(body, "errors").ForEach(func(_, v gjson.Result) bool {
			field := firstString(v, "field", "path", "param")
			msg := firstString(v, "message", "msg")
			if msg != "" {
				e.Fields = append(e.Fields, models.FieldError{Field: field, Message: msg})
			}
			return true
		})
	}
	if len(e.Fields) > 0 && status < 500 {
		e.Kind = KindValidation
	}

	if e.Message == "" {
		if e.Kind == KindServer {
			e.Message = MsgServer
		} else {
			e.Message = MsgFallback
		}
	}
	return e
}

func firstString(v gjson.Result, keys ...string) string {
	for _, k := range keys {
		if s := v.Get(k).String(); s != "" {
			return s
		}
	}
	return ""
}

// Message turns any error returned by the client or by request validation into
// the string a view should display.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return "Please correct the highlighted fields."
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgFallback
}

// FieldErrors extracts field-level messages from err, if it carries any.
func FieldErrors(err error) []models.FieldError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
