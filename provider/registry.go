package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mstgnz/funnelpay/domain"
)

// ErrUnsupportedGateway is returned when a route names a gateway without a provider
var ErrUnsupportedGateway = errors.New("unsupported payment gateway")

// ProviderRegistry manages all payment provider implementations
type ProviderRegistry struct {
	providers map[domain.Gateway]ProviderFactory
	mu        sync.RWMutex
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[domain.Gateway]ProviderFactory),
	}
}

// Register adds a payment provider factory to the registry
func (r *ProviderRegistry) Register(gateway domain.Gateway, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[gateway] = factory
}

// Get retrieves a payment provider factory by gateway
func (r *ProviderRegistry) Get(gateway domain.Gateway) (ProviderFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.providers[gateway]
	if !exists {
		return nil, fmt.Errorf("payment provider '%s' is not registered", gateway)
	}

	return factory, nil
}

// CreateProvider creates a new instance of a payment provider
func (r *ProviderRegistry) CreateProvider(gateway domain.Gateway) (PaymentProvider, error) {
	factory, err := r.Get(gateway)
	if err != nil {
		return nil, err
	}

	return factory(), nil
}

// GetAvailableProviders returns the registered gateways in sorted order
func (r *ProviderRegistry) GetAvailableProviders() []domain.Gateway {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gateways := make([]domain.Gateway, 0, len(r.providers))
	for g := range r.providers {
		gateways = append(gateways, g)
	}
	sort.Slice(gateways, func(i, j int) bool { return gateways[i] < gateways[j] })

	return gateways
}

// DefaultRegistry is the global default provider registry
var DefaultRegistry = NewProviderRegistry()

// Register registers a provider with the default registry
func Register(gateway domain.Gateway, factory ProviderFactory) {
	DefaultRegistry.Register(gateway, factory)
}

// Get retrieves a provider factory from the default registry
func Get(gateway domain.Gateway) (ProviderFactory, error) {
	return DefaultRegistry.Get(gateway)
}

// ConfigSource supplies process-level settings per gateway
type ConfigSource interface {
	GetConfig(gateway domain.Gateway) map[string]string
}

// Dispatcher is the gateway to provider table, built once at startup and read-only afterwards
type Dispatcher struct {
	providers map[domain.Gateway]PaymentProvider
}

// NewDispatcher creates and initializes a provider for every supported gateway.
// A gateway without a registered factory, or one that fails to initialize, is a
// startup error.
func NewDispatcher(registry *ProviderRegistry, configs ConfigSource) (*Dispatcher, error) {
	providers := make(map[domain.Gateway]PaymentProvider, len(domain.Gateways))

	for _, gateway := range domain.Gateways {
		p, err := registry.CreateProvider(gateway)
		if err != nil {
			return nil, fmt.Errorf("%w (registered: %v)", err, registry.GetAvailableProviders())
		}

		var conf map[string]string
		if configs != nil {
			conf = configs.GetConfig(gateway)
		}
		if err := p.Initialize(conf); err != nil {
			return nil, fmt.Errorf("failed to initialize %s provider: %w", gateway, err)
		}

		providers[gateway] = p
	}

	return &Dispatcher{providers: providers}, nil
}

// GetProvider returns the provider for gateway
func (d *Dispatcher) GetProvider(gateway domain.Gateway) (PaymentProvider, error) {
	p, ok := d.providers[gateway]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGateway, gateway)
	}
	return p, nil
}

// Gateways returns the gateways the dispatcher serves
func (d *Dispatcher) Gateways() []domain.Gateway {
	gateways := make([]domain.Gateway, 0, len(d.providers))
	for _, g := range domain.Gateways {
		if _, ok := d.providers[g]; ok {
			gateways = append(gateways, g)
		}
	}
	return gateways
}
