package razorpay

import (
	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/provider"
)

// Register Razorpay provider with the gateway registry
func init() {
	provider.Register(domain.GatewayRazorpay, NewProvider)
}
