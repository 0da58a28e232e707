package opensearch

import (
	"context"
	"testing"

	"github.com/mstgnz/funnelpay/infra/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LogCheckoutRequest(t *testing.T) {
	fc, srv := newFakeCluster(t, SystemLogIndex, CheckoutLogIndex)

	client, err := NewClient(&config.AppConfig{OpenSearchURL: srv.URL, EnableLogging: true})
	require.NoError(t, err)
	logger := NewLogger(client)

	err = logger.LogCheckoutRequest(context.Background(), CheckoutLog{
		TenantID: "client_1",
		Gateway:  "cashfree",
		Method:   "POST",
		Endpoint: "/create-order",
		Request:  RequestLog{PageURL: "https://shop.example.com/offer"},
		Response: ResponseLog{StatusCode: 200, ProcessingTimeMs: 120},
		Order:    &OrderInfo{OrderID: "cf_1", ProductName: "Course"},
	})
	require.NoError(t, err)

	assert.Contains(t, fc.seen(), "POST /"+CheckoutLogIndex+"/_doc")
	body := fc.bodies["/"+CheckoutLogIndex+"/_doc"]
	assert.Contains(t, body, `"tenant_id":"client_1"`)
	assert.Contains(t, body, `"order_id":"cf_1"`)
	assert.Contains(t, body, `"request_id":"`, "request id is generated when missing")
}

func TestLogger_LogSystemEvent(t *testing.T) {
	fc, srv := newFakeCluster(t, SystemLogIndex, CheckoutLogIndex)

	client, err := NewClient(&config.AppConfig{OpenSearchURL: srv.URL, EnableLogging: true})
	require.NoError(t, err)

	err = NewLogger(client).LogSystemEvent(context.Background(), map[string]any{"message": "started"})
	require.NoError(t, err)
	assert.Contains(t, fc.seen(), "POST /"+SystemLogIndex+"/_doc")
}

func TestLogger_DisabledLogging(t *testing.T) {
	fc, srv := newFakeCluster(t)

	client, err := NewClient(&config.AppConfig{OpenSearchURL: srv.URL, EnableLogging: false})
	require.NoError(t, err)
	logger := NewLogger(client)

	assert.NoError(t, logger.LogCheckoutRequest(context.Background(), CheckoutLog{Method: "POST"}))
	assert.NoError(t, logger.LogSystemEvent(context.Background(), map[string]any{}))
	assert.Empty(t, fc.seen())
}

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		shouldRedact bool
	}{
		{"razorpay_secret", `{"razorpay_key_secret": "rzp_secret"}`, true},
		{"cashfree_secret_header", `{"x-client-secret": "cf_secret"}`, true},
		{"camel_case_secret", `{"cashfreeSecretKey":"abc"}`, true},
		{"form_encoded_secret", `key_secret=abc123&amount=100`, true},
		{"password", `{"password": "hunter2"}`, true},
		{"no_sensitive_data", `{"amount": 49900, "currency": "INR"}`, false},
		{"empty_input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeForLog(tt.input)

			if tt.shouldRedact {
				assert.Contains(t, result, "***REDACTED***")
				assert.NotEqual(t, tt.input, result)
			} else {
				assert.Equal(t, tt.input, result)
			}
		})
	}
}
