package config

import (
	"strconv"

	"github.com/mstgnz/funnelpay/domain"
)

// ProviderConfig holds process-level gateway settings: endpoint overrides and timeouts.
// Tenant credentials are not part of it; they come from the store per request.
type ProviderConfig struct {
	configs map[domain.Gateway]map[string]string
}

// NewProviderConfig builds gateway settings from the application configuration
func NewProviderConfig(cfg *AppConfig) *ProviderConfig {
	timeout := strconv.FormatInt(cfg.GatewayTimeout.Milliseconds(), 10)

	configs := map[domain.Gateway]map[string]string{
		domain.GatewayRazorpay: {
			"timeoutMs": timeout,
		},
		domain.GatewayCashfree: {
			"timeoutMs": timeout,
		},
	}

	if cfg.RazorpayBaseURL != "" {
		configs[domain.GatewayRazorpay]["baseURL"] = cfg.RazorpayBaseURL
	}
	if cfg.CashfreeSandboxURL != "" {
		configs[domain.GatewayCashfree]["sandboxURL"] = cfg.CashfreeSandboxURL
	}
	if cfg.CashfreeProductionURL != "" {
		configs[domain.GatewayCashfree]["productionURL"] = cfg.CashfreeProductionURL
	}

	return &ProviderConfig{configs: configs}
}

// GetConfig returns a copy of the settings for one gateway
func (c *ProviderConfig) GetConfig(gateway domain.Gateway) map[string]string {
	out := make(map[string]string, len(c.configs[gateway]))
	for k, v := range c.configs[gateway] {
		out[k] = v
	}
	return out
}
