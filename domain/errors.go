package domain

import (
	"errors"
	"net/http"
)

// ErrNotFound is returned by stores when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrorKind is the machine-readable error string returned to callers
type ErrorKind string

const (
	KindMissingFields      ErrorKind = "missing_fields"
	KindInvalidURL         ErrorKind = "invalid_url"
	KindRouteNotFound      ErrorKind = "route_not_found"
	KindClientNotFound     ErrorKind = "client_not_found"
	KindPriceNotFound      ErrorKind = "price_not_found"
	KindMissingCredentials ErrorKind = "missing_credentials"
	KindOrderCreateFailed  ErrorKind = "order_create_failed"
	KindUnexpected         ErrorKind = "unexpected_error"
)

// Status returns the default HTTP status for the kind
func (k ErrorKind) Status() int {
	switch k {
	case KindMissingFields, KindInvalidURL, KindMissingCredentials:
		return http.StatusBadRequest
	case KindRouteNotFound, KindClientNotFound, KindPriceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure of an order-creation request
type Error struct {
	Kind            ErrorKind
	Status          int
	Detail          string
	Gateway         Gateway
	GatewayResponse any
}

// NewError creates an Error with the kind's default status
func NewError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Status: kind.Status(), Detail: detail}
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Detail
}
