package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mstgnz/funnelpay/checkout"
	"github.com/mstgnz/funnelpay/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderService struct {
	order *domain.OrderDescriptor
	err   error
	got   *checkout.Request
}

func (f *fakeOrderService) CreateOrder(_ context.Context, req checkout.Request) (*domain.OrderDescriptor, error) {
	f.got = &req
	return f.order, f.err
}

func postOrder(h *OrderHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/create-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.CreateOrder(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOrderHandler_CreateOrder_Success(t *testing.T) {
	svc := &fakeOrderService{order: &domain.OrderDescriptor{
		Gateway:      domain.GatewayRazorpay,
		OrderID:      "order_abc",
		CheckoutData: map[string]any{"key": "rzp_test_key", "order_id": "order_abc"},
		ProductName:  "Course",
		ThankYouURL:  "https://shop.example/thanks",
		Prefill:      domain.Customer{Name: "Asha", Email: "asha@example.com", Contact: "98765"},
	}}

	w := postOrder(NewOrderHandler(svc), `{"page_url":"https://shop.example/checkout","name":"Asha","email":"asha@example.com","contact":"98765"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, checkout.Request{PageURL: "https://shop.example/checkout", Name: "Asha", Email: "asha@example.com", Contact: "98765"}, *svc.got)
	assert.JSONEq(t, `{
		"gateway": "razorpay",
		"order_id": "order_abc",
		"checkout_data": {"key": "rzp_test_key", "order_id": "order_abc"},
		"product_name": "Course",
		"thank_you_url": "https://shop.example/thanks",
		"prefill": {"name": "Asha", "email": "asha@example.com", "contact": "98765"}
	}`, w.Body.String())
}

func TestOrderHandler_CreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing_fields",
			err:        domain.NewError(domain.KindMissingFields, "page_url, name, email, and contact are required"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"missing_fields","detail":"page_url, name, email, and contact are required"}`,
		},
		{
			name:       "invalid_url",
			err:        domain.NewError(domain.KindInvalidURL, "page_url must be a valid URL"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid_url","detail":"page_url must be a valid URL"}`,
		},
		{
			name: "order_create_failed",
			err: &domain.Error{
				Kind:            domain.KindOrderCreateFailed,
				Status:          http.StatusBadRequest,
				Detail:          "Cashfree credentials not configured for this client (missing_credentials)",
				Gateway:         domain.GatewayCashfree,
				GatewayResponse: map[string]any{"error": "missing_credentials"},
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"order_create_failed","detail":"Cashfree credentials not configured for this client (missing_credentials)","gateway":"cashfree","gateway_response":{"error":"missing_credentials"}}`,
		},
		{
			name:       "unclassified",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"unexpected_error","detail":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postOrder(NewOrderHandler(&fakeOrderService{err: tt.err}), `{"page_url":"x","name":"a","email":"b","contact":"c"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assertCORSHeaders(t, w)
		})
	}
}

func TestOrderHandler_CreateOrder_InvalidJSON(t *testing.T) {
	svc := &fakeOrderService{}

	w := postOrder(NewOrderHandler(svc), `{"page_url":`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "unexpected_error", body["error"])
	assert.Contains(t, body["detail"], "invalid JSON body")
	assert.Nil(t, svc.got)
}

func TestOrderHandler_Preflight(t *testing.T) {
	w := httptest.NewRecorder()
	NewOrderHandler(&fakeOrderService{}).Preflight(w, httptest.NewRequest(http.MethodOptions, "/create-order", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
	assertCORSHeaders(t, w)
}

func assertCORSHeaders(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}
