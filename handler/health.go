package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/infra/response"
)

const healthTimeout = 5 * time.Second

// Pinger checks that the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// GatewayLister reports the gateways that have an initialized provider
type GatewayLister interface {
	Gateways() []domain.Gateway
}

// HealthHandler handles health check requests
type HealthHandler struct {
	store       Pinger
	gateways    GatewayLister
	environment string
	version     string
	startTime   time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string                            `json:"status"`
	Version     string                            `json:"version"`
	Timestamp   time.Time                         `json:"timestamp"`
	Uptime      string                            `json:"uptime"`
	Environment string                            `json:"environment"`
	Store       *StoreHealth                      `json:"store"`
	Gateways    map[domain.Gateway]*GatewayHealth `json:"gateways"`
	System      *SystemHealth                     `json:"system"`
}

// StoreHealth represents store health status
type StoreHealth struct {
	Status         string `json:"status"`
	Connected      bool   `json:"connected"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Error          string `json:"error,omitempty"`
}

// GatewayHealth represents the readiness of one gateway provider
type GatewayHealth struct {
	Status     string `json:"status"`
	Configured bool   `json:"configured"`
}

// SystemHealth represents process resource usage
type SystemHealth struct {
	Alloc      string `json:"alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
	GoRoutines int    `json:"goroutines"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store Pinger, gateways GatewayLister, environment, version string) *HealthHandler {
	return &HealthHandler{
		store:       store,
		gateways:    gateways,
		environment: environment,
		version:     version,
		startTime:   time.Now(),
	}
}

// CheckHealth reports store connectivity and gateway readiness
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	health := &HealthStatus{
		Version:     h.version,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: h.environment,
		Store:       h.checkStore(ctx),
		Gateways:    h.checkGateways(),
		System:      checkSystem(),
	}
	health.Status = determineOverallStatus(health)

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	response.WriteJSON(w, statusCode, response.Response{
		Code:    statusCode,
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

func (h *HealthHandler) checkStore(ctx context.Context) *StoreHealth {
	if h.store == nil {
		return &StoreHealth{Status: "not_configured", Error: "Store not configured"}
	}

	start := time.Now()
	err := h.store.Ping(ctx)
	elapsed := time.Since(start)

	sh := &StoreHealth{ResponseTimeMs: elapsed.Milliseconds()}
	switch {
	case err != nil:
		sh.Status = "unhealthy"
		sh.Error = err.Error()
	case elapsed > time.Second:
		sh.Status = "degraded"
		sh.Connected = true
	default:
		sh.Status = "healthy"
		sh.Connected = true
	}
	return sh
}

func (h *HealthHandler) checkGateways() map[domain.Gateway]*GatewayHealth {
	ready := map[domain.Gateway]bool{}
	if h.gateways != nil {
		for _, g := range h.gateways.Gateways() {
			ready[g] = true
		}
	}

	gateways := make(map[domain.Gateway]*GatewayHealth, len(domain.Gateways))
	for _, g := range domain.Gateways {
		gh := &GatewayHealth{Status: "not_available"}
		if ready[g] {
			gh.Status = "healthy"
			gh.Configured = true
		}
		gateways[g] = gh
	}
	return gateways
}

func checkSystem() *SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemHealth{
		Alloc:      formatBytes(memStats.Alloc),
		Sys:        formatBytes(memStats.Sys),
		GCRuns:     memStats.NumGC,
		GoRoutines: runtime.NumGoroutine(),
	}
}

// determineOverallStatus: a down store or no ready gateway is unhealthy,
// a slow store or a missing gateway is degraded
func determineOverallStatus(health *HealthStatus) string {
	if health.Store == nil || !health.Store.Connected {
		return "unhealthy"
	}

	ready := 0
	for _, g := range health.Gateways {
		if g.Configured {
			ready++
		}
	}
	if ready == 0 {
		return "unhealthy"
	}

	if health.Store.Status == "degraded" || ready < len(health.Gateways) {
		return "degraded"
	}
	return "healthy"
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
