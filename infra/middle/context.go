package middle

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

type ctxKey string

const requestInfoKey ctxKey = "request_info"

// RequestInfo collects what the checkout learns about a request while serving it,
// so outer middleware can log it after the handler returns.
type RequestInfo struct {
	mu        sync.Mutex
	requestID string
	tenantID  string
	gateway   string
}

// WithRequestInfo attaches an empty RequestInfo to ctx
func WithRequestInfo(ctx context.Context, requestID string) (context.Context, *RequestInfo) {
	info := &RequestInfo{requestID: requestID}
	return context.WithValue(ctx, requestInfoKey, info), info
}

func requestInfoFrom(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(requestInfoKey).(*RequestInfo)
	return info
}

// SetTenant records the resolved tenant and gateway. No-op without a RequestInfo.
func SetTenant(ctx context.Context, tenantID, gateway string) {
	info := requestInfoFrom(ctx)
	if info == nil {
		return
	}
	info.mu.Lock()
	info.tenantID = tenantID
	info.gateway = gateway
	info.mu.Unlock()
}

// GetTenantIDFromContext returns the tenant recorded for the request, if any
func GetTenantIDFromContext(ctx context.Context) string {
	info := requestInfoFrom(ctx)
	if info == nil {
		return ""
	}
	info.mu.Lock()
	defer info.mu.Unlock()
	return info.tenantID
}

// GetRequestIDFromContext returns the request id assigned by the logging middleware
func GetRequestIDFromContext(ctx context.Context) string {
	info := requestInfoFrom(ctx)
	if info == nil {
		return ""
	}
	return info.requestID
}

func (ri *RequestInfo) snapshot() (tenantID, gateway string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	return ri.tenantID, ri.gateway
}

// GetClientIP extracts the real client IP
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	remoteAddr := r.RemoteAddr
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		ip := remoteAddr[:idx]
		if ip == "[::1]" {
			return "127.0.0.1"
		}
		return strings.Trim(ip, "[]")
	}

	return remoteAddr
}
