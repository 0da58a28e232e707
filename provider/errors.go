package provider

import (
	"fmt"
	"net/http"

	"github.com/mstgnz/funnelpay/domain"
)

// Error is a failed order creation reported by a gateway, or refused before calling it
type Error struct {
	Gateway     domain.Gateway
	Status      int
	RawResponse any
	Message     string
}

func (e *Error) Error() string {
	return e.Message
}

// Reason returns the "error" string of the raw response, if it carries one
func (e *Error) Reason() string {
	if raw, ok := e.RawResponse.(map[string]any); ok {
		if reason, ok := raw["error"].(string); ok {
			return reason
		}
	}
	return ""
}

// MissingCredentials builds the error returned when a tenant has no usable
// credentials for the gateway
func MissingCredentials(gateway domain.Gateway) *Error {
	return &Error{
		Gateway:     gateway,
		Status:      http.StatusBadRequest,
		RawResponse: map[string]any{"error": string(domain.KindMissingCredentials)},
		Message:     fmt.Sprintf("%s credentials not configured for this client", gateway.Title()),
	}
}

// APIError builds the error for a rejected or unusable gateway response.
// A zero status becomes 500.
func APIError(gateway domain.Gateway, status int, raw any, detail string) *Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{
		Gateway:     gateway,
		Status:      status,
		RawResponse: raw,
		Message:     fmt.Sprintf("%s API error: %s", gateway.Title(), detail),
	}
}
