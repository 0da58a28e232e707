package cashfree

import (
	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/provider"
)

// Register Cashfree provider with the gateway registry
func init() {
	provider.Register(domain.GatewayCashfree, NewProvider)
}
