package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type gatewayList []domain.Gateway

func (g gatewayList) Gateways() []domain.Gateway { return g }

type healthBody struct {
	Code    int          `json:"code"`
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    HealthStatus `json:"data"`
}

func checkHealth(t *testing.T, h *HealthHandler) (int, healthBody) {
	t.Helper()
	w := httptest.NewRecorder()
	h.CheckHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body healthBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestNewHealthHandler(t *testing.T) {
	handler := NewHealthHandler(nil, nil, "test", "1.0.0")
	require.NotNil(t, handler)
	assert.False(t, handler.startTime.IsZero())
}

func TestHealthHandler_CheckHealth(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		store      Pinger
		gateways   GatewayLister
		wantCode   int
		wantStatus string
	}{
		{"healthy", ok, gatewayList(domain.Gateways), http.StatusOK, "healthy"},
		{"one_gateway_missing", ok, gatewayList{domain.GatewayRazorpay}, http.StatusOK, "degraded"},
		{"store_down", down, gatewayList(domain.Gateways), http.StatusServiceUnavailable, "unhealthy"},
		{"no_gateways", ok, gatewayList{}, http.StatusServiceUnavailable, "unhealthy"},
		{"nothing_configured", nil, nil, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := checkHealth(t, NewHealthHandler(tt.store, tt.gateways, "test", "1.0.0"))

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantStatus, body.Data.Status)
			assert.Equal(t, tt.wantStatus != "unhealthy", body.Success)
			assert.Equal(t, "Service is "+tt.wantStatus, body.Message)
			assert.Len(t, body.Data.Gateways, len(domain.Gateways))
		})
	}
}

func TestHealthHandler_CheckHealth_Details(t *testing.T) {
	h := NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("disk I/O error") }), gatewayList{domain.GatewayCashfree}, "production", "2.1.0")

	_, body := checkHealth(t, h)

	assert.Equal(t, "production", body.Data.Environment)
	assert.Equal(t, "2.1.0", body.Data.Version)
	assert.Equal(t, "unhealthy", body.Data.Store.Status)
	assert.Equal(t, "disk I/O error", body.Data.Store.Error)
	assert.False(t, body.Data.Store.Connected)
	assert.True(t, body.Data.Gateways[domain.GatewayCashfree].Configured)
	assert.Equal(t, "not_available", body.Data.Gateways[domain.GatewayRazorpay].Status)
	assert.NotEmpty(t, body.Data.System.Alloc)
	assert.Positive(t, body.Data.System.GoRoutines)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(1536*1024))
}
