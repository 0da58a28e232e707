package razorpay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method   string
	path     string
	user     string
	pass     string
	hasAuth  bool
	form     url.Values
	ctype    string
	requests int
}

func newGateway(t *testing.T, status int, body string) (*RazorpayProvider, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.requests++
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.ctype = r.Header.Get("Content-Type")
		captured.user, captured.pass, captured.hasAuth = r.BasicAuth()
		_ = r.ParseForm()
		captured.form = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	p := NewProvider().(*RazorpayProvider)
	require.NoError(t, p.Initialize(map[string]string{"baseURL": srv.URL, "timeoutMs": "2000"}))
	p.now = func() time.Time { return time.UnixMilli(1700000000123) }

	return p, captured
}

func orderParams() provider.OrderParams {
	return provider.OrderParams{
		Tenant: &domain.Tenant{
			ID:                "client_1",
			RazorpayKeyID:     "rzp_test_key",
			RazorpayKeySecret: "rzp_test_secret",
		},
		Price: &domain.Price{
			ID:          "price_1",
			TenantID:    "client_1",
			ProductName: "Masterclass",
			AmountPaise: 199900,
			Currency:    "inr",
			ThankYouURL: "https://shop.example/thanks",
		},
		Customer: domain.Customer{Name: "Asha", Email: "asha@example.com", Contact: "+91 98765-43210"},
	}
}

func TestRazorpayProvider_Initialize(t *testing.T) {
	p := NewProvider().(*RazorpayProvider)
	require.NoError(t, p.Initialize(nil))
	assert.Equal(t, apiURL, p.baseURL)

	require.NoError(t, p.Initialize(map[string]string{"baseURL": "http://mock.local/"}))
	assert.Equal(t, "http://mock.local", p.baseURL)

	assert.Error(t, p.Initialize(map[string]string{"timeoutMs": "soon"}))
}

func TestRazorpayProvider_CreateOrder_Success(t *testing.T) {
	p, captured := newGateway(t, http.StatusOK, `{"id":"order_abc","amount":199900,"status":"created"}`)

	order, err := p.CreateOrder(context.Background(), orderParams())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/v1/orders", captured.path)
	assert.Equal(t, "application/x-www-form-urlencoded", captured.ctype)
	assert.True(t, captured.hasAuth)
	assert.Equal(t, "rzp_test_key", captured.user)
	assert.Equal(t, "rzp_test_secret", captured.pass)

	assert.Equal(t, "199900", captured.form.Get("amount"))
	assert.Equal(t, "INR", captured.form.Get("currency"))
	assert.Equal(t, "rcpt_1700000000123", captured.form.Get("receipt"))
	assert.Equal(t, "1", captured.form.Get("payment_capture"))
	assert.Equal(t, "Asha", captured.form.Get("notes[name]"))
	assert.Equal(t, "asha@example.com", captured.form.Get("notes[email]"))
	assert.Equal(t, "919876543210", captured.form.Get("notes[contact]"))
	assert.Equal(t, "Masterclass", captured.form.Get("notes[product_name]"))

	assert.Equal(t, domain.GatewayRazorpay, order.Gateway)
	assert.Equal(t, "order_abc", order.OrderID)
	assert.Equal(t, "Masterclass", order.ProductName)
	assert.Equal(t, "https://shop.example/thanks", order.ThankYouURL)
	assert.Equal(t, "+91 98765-43210", order.Prefill.Contact)
	assert.Equal(t, map[string]any{
		"key":         "rzp_test_key",
		"order_id":    "order_abc",
		"name":        "Masterclass",
		"description": "Masterclass",
		"prefill": map[string]any{
			"name":    "Asha",
			"email":   "asha@example.com",
			"contact": "+91 98765-43210",
		},
	}, order.CheckoutData)
}

func TestRazorpayProvider_CreateOrder_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		tenant domain.Tenant
	}{
		{"no_key_id", domain.Tenant{ID: "c", RazorpayKeySecret: "secret"}},
		{"no_secret", domain.Tenant{ID: "c", RazorpayKeyID: "rzp_test_key"}},
		{"blank", domain.Tenant{ID: "c", RazorpayKeyID: "  ", RazorpayKeySecret: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, captured := newGateway(t, http.StatusOK, `{"id":"order_abc"}`)
			params := orderParams()
			params.Tenant = &tt.tenant

			_, err := p.CreateOrder(context.Background(), params)

			var pe *provider.Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, http.StatusBadRequest, pe.Status)
			assert.Equal(t, "missing_credentials", pe.Reason())
			assert.Equal(t, "Razorpay credentials not configured for this client", pe.Message)
			assert.Zero(t, captured.requests)
		})
	}
}

func TestRazorpayProvider_CreateOrder_Failures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "ok_without_id",
			status:      http.StatusOK,
			body:        `{"entity":"order"}`,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: `Razorpay API error: {"entity":"order"}`,
		},
		{
			name:        "description_preferred",
			status:      http.StatusBadRequest,
			body:        `{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00","reason":"input_validation_failed"}}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Razorpay API error: The amount must be atleast INR 1.00",
		},
		{
			name:        "reason_fallback",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"reason":"authentication_failed"}}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Razorpay API error: authentication_failed",
		},
		{
			name:        "non_json_body",
			status:      http.StatusBadGateway,
			body:        `upstream unavailable`,
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Razorpay API error: upstream unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newGateway(t, tt.status, tt.body)

			order, err := p.CreateOrder(context.Background(), orderParams())
			assert.Nil(t, order)

			var pe *provider.Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, domain.GatewayRazorpay, pe.Gateway)
			assert.Equal(t, tt.wantStatus, pe.Status)
			assert.Equal(t, tt.wantMessage, pe.Message)
			assert.NotNil(t, pe.RawResponse)
		})
	}
}

func TestRazorpayProvider_CreateOrder_TransportFailure(t *testing.T) {
	p := NewProvider().(*RazorpayProvider)
	require.NoError(t, p.Initialize(map[string]string{"baseURL": "http://127.0.0.1:1", "timeoutMs": "500"}))

	_, err := p.CreateOrder(context.Background(), orderParams())

	var pe *provider.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusInternalServerError, pe.Status)
	assert.Contains(t, pe.Message, "Razorpay API error: ")
}

func TestRazorpayProvider_Registered(t *testing.T) {
	factory, err := provider.Get(domain.GatewayRazorpay)
	require.NoError(t, err)
	assert.IsType(t, &RazorpayProvider{}, factory())
}
