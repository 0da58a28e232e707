package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mstgnz/funnelpay/checkout"
	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/infra/response"
)

// OrderService creates gateway orders for checkout requests
type OrderService interface {
	CreateOrder(ctx context.Context, req checkout.Request) (*domain.OrderDescriptor, error)
}

// OrderHandler serves the public create-order endpoint
type OrderHandler struct {
	service OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// CreateOrder handles POST /create-order
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	allowCORS(w)

	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.CheckoutError(w, domain.NewError(domain.KindUnexpected, fmt.Sprintf("invalid JSON body: %v", err)))
		return
	}

	order, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		response.CheckoutError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, order)
}

// Preflight answers a bare OPTIONS /create-order. Real CORS preflights are
// answered by the CORS middleware before they get here.
func (h *OrderHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	allowCORS(w)
	response.WriteJSON(w, http.StatusOK, struct{}{})
}

// allowCORS sets the create-order CORS headers on every answer, whether or not the
// caller sent an Origin header
func allowCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}
