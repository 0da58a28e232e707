package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mstgnz/funnelpay/domain"
)

// Response is a standardized API response structure
type Response struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorBody is the error shape of the checkout API
type ErrorBody struct {
	Error           domain.ErrorKind `json:"error"`
	Detail          string           `json:"detail"`
	Gateway         domain.Gateway   `json:"gateway,omitempty"`
	GatewayResponse any              `json:"gateway_response,omitempty"`
}

// Success writes a successful response with data
func Success(w http.ResponseWriter, statusCode int, message string, data any) {
	WriteJSON(w, statusCode, Response{
		Code:    statusCode,
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error writes an error response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	resp := Response{
		Code:    statusCode,
		Success: false,
		Message: message,
	}

	if err != nil {
		resp.Error = err.Error()
	}

	WriteJSON(w, statusCode, resp)
}

// CheckoutError writes err in the checkout error shape. Anything that is not a
// *domain.Error is reported as unexpected_error.
func CheckoutError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.NewError(domain.KindUnexpected, err.Error())
	}

	WriteJSON(w, de.Status, ErrorBody{
		Error:           de.Kind,
		Detail:          de.Detail,
		Gateway:         de.Gateway,
		GatewayResponse: de.GatewayResponse,
	})
}

// WriteJSON writes v as a JSON body with the given status
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode failed: %v", err)
	}
}
