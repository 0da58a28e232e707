// Package provider abstracts the payment gateways an order can be created with.
//
// Each gateway lives in its own subpackage and registers a ProviderFactory with the
// DefaultRegistry from init:
//
//	func init() {
//	    provider.Register(domain.GatewayRazorpay, NewProvider)
//	}
//
// At startup NewDispatcher creates and initializes one provider per supported gateway.
// A gateway without a registration, or one whose Initialize fails, aborts startup.
// Providers are stateless after Initialize, so the Dispatcher is shared by all requests:
//
//	dispatcher, err := provider.NewDispatcher(provider.DefaultRegistry, config.NewProviderConfig(cfg))
//	p, err := dispatcher.GetProvider(route.Gateway)
//	order, err := p.CreateOrder(ctx, provider.OrderParams{Tenant: tenant, Price: price, Customer: customer})
//
// CreateOrder failures are *Error values carrying the gateway, the HTTP status to
// report and the raw gateway response. Tenant credentials are checked before any
// network call; a tenant without them gets MissingCredentials.
//
// Adding a gateway takes a domain.Gateway constant, a subpackage implementing
// PaymentProvider and its Register call.
package provider
