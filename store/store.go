// Package store reads the tenant, price and route tables that the admin tooling maintains.
package store

import (
	"context"
	"fmt"

	"github.com/mstgnz/funnelpay/domain"
)

// Store is the read side used while serving a checkout
type Store interface {
	GetTenant(ctx context.Context, id string) (*domain.Tenant, error)
	GetPrice(ctx context.Context, id string) (*domain.Price, error)
	// FindActiveRoute returns the active route with exactly this hostname and path prefix.
	// When several rows match, the lowest id wins.
	FindActiveRoute(ctx context.Context, hostname, pathPrefix string) (*domain.Route, error)
	Ping(ctx context.Context) error
	Close() error
}

// Writer seeds the tables. The service itself never writes; tests and local setups do.
type Writer interface {
	SaveTenant(ctx context.Context, t *domain.Tenant) error
	SavePrice(ctx context.Context, p *domain.Price) error
	SaveRoute(ctx context.Context, r *domain.Route) error
}

func notFound(entity, key string) error {
	return fmt.Errorf("%s %q: %w", entity, key, domain.ErrNotFound)
}
