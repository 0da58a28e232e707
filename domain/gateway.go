package domain

import "fmt"

// Gateway identifies a payment gateway a route can dispatch to
type Gateway string

const (
	GatewayRazorpay Gateway = "razorpay"
	GatewayCashfree Gateway = "cashfree"
)

// DefaultGateway is used for routes created before multi-gateway support existed
const DefaultGateway = GatewayRazorpay

// Gateways is the closed set of supported gateways
var Gateways = []Gateway{GatewayRazorpay, GatewayCashfree}

// Valid reports whether g is one of the supported gateways
func (g Gateway) Valid() bool {
	for _, known := range Gateways {
		if g == known {
			return true
		}
	}
	return false
}

// Title returns the display name used in operator-facing messages
func (g Gateway) Title() string {
	switch g {
	case GatewayRazorpay:
		return "Razorpay"
	case GatewayCashfree:
		return "Cashfree"
	default:
		return string(g)
	}
}

// ParseGateway converts a stored gateway value into a Gateway.
// An empty value yields DefaultGateway.
func ParseGateway(value string) (Gateway, error) {
	if value == "" {
		return DefaultGateway, nil
	}
	g := Gateway(value)
	if !g.Valid() {
		return "", fmt.Errorf("unsupported payment gateway: %s", value)
	}
	return g, nil
}
