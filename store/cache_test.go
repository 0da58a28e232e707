package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mstgnz/funnelpay/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts the lookups that reach the underlying store
type countingStore struct {
	seedableStore
	tenants, prices, routes int
}

func (c *countingStore) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	c.tenants++
	return c.seedableStore.GetTenant(ctx, id)
}

func (c *countingStore) GetPrice(ctx context.Context, id string) (*domain.Price, error) {
	c.prices++
	return c.seedableStore.GetPrice(ctx, id)
}

func (c *countingStore) FindActiveRoute(ctx context.Context, hostname, pathPrefix string) (*domain.Route, error) {
	c.routes++
	return c.seedableStore.FindActiveRoute(ctx, hostname, pathPrefix)
}

func newCached(t *testing.T) (*CachedStore, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingStore{seedableStore: newSQLite(t)}
	seed(t, inner)
	return NewCachedStore(inner, rdb, time.Minute), inner, mr
}

func TestCachedStore_ReadThrough(t *testing.T) {
	cs, inner, mr := newCached(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tenant, err := cs.GetTenant(ctx, "client_1")
		require.NoError(t, err)
		assert.Equal(t, "rzp_secret", tenant.RazorpayKeySecret)
		assert.Equal(t, "cf_secret", tenant.CashfreeSecretKey)

		price, err := cs.GetPrice(ctx, "price_1")
		require.NoError(t, err)
		assert.Equal(t, int64(49900), price.AmountPaise)

		route, err := cs.FindActiveRoute(ctx, "acme.example.com", "/offer")
		require.NoError(t, err)
		assert.Equal(t, domain.GatewayCashfree, route.Gateway)
	}

	assert.Equal(t, 1, inner.prices)
	assert.Equal(t, time.Minute, mr.TTL("funnelpay:price:price_1"))
}

func TestCachedStore_RoutesAndTenantsBypassCache(t *testing.T) {
	cs, inner, mr := newCached(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := cs.GetTenant(ctx, "client_1")
		require.NoError(t, err)
		_, err = cs.FindActiveRoute(ctx, "acme.example.com", "/offer")
		require.NoError(t, err)
	}

	assert.Equal(t, 2, inner.tenants)
	assert.Equal(t, 2, inner.routes)
	assert.Empty(t, mr.Keys(), "tenant secrets and routes are not written to redis")
}

func TestCachedStore_DeactivatedRouteStopsResolving(t *testing.T) {
	cs, inner, _ := newCached(t)
	ctx := context.Background()

	route, err := cs.FindActiveRoute(ctx, "acme.example.com", "/offer")
	require.NoError(t, err)

	route.IsActive = false
	require.NoError(t, inner.SaveRoute(ctx, route))

	_, err = cs.FindActiveRoute(ctx, "acme.example.com", "/offer")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCachedStore_RotatedCredentialsSeenImmediately(t *testing.T) {
	cs, inner, _ := newCached(t)
	ctx := context.Background()

	tenant, err := cs.GetTenant(ctx, "client_1")
	require.NoError(t, err)

	tenant.RazorpayKeySecret = "rzp_rotated"
	require.NoError(t, inner.SaveTenant(ctx, tenant))

	tenant, err = cs.GetTenant(ctx, "client_1")
	require.NoError(t, err)
	assert.Equal(t, "rzp_rotated", tenant.RazorpayKeySecret)
}

func TestCachedStore_MissesAreNotCached(t *testing.T) {
	cs, inner, mr := newCached(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := cs.GetPrice(ctx, "price_missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}

	assert.Equal(t, 2, inner.prices)
	assert.False(t, mr.Exists("funnelpay:price:price_missing"))
}

func TestCachedStore_ExpiredEntryIsReloaded(t *testing.T) {
	cs, inner, mr := newCached(t)
	ctx := context.Background()

	_, err := cs.GetPrice(ctx, "price_1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = cs.GetPrice(ctx, "price_1")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.prices)
}

func TestCachedStore_RedisDownFallsThrough(t *testing.T) {
	cs, inner, mr := newCached(t)
	mr.Close()

	price, err := cs.GetPrice(context.Background(), "price_1")
	require.NoError(t, err)
	assert.Equal(t, "Masterclass", price.ProductName)
	assert.Equal(t, 1, inner.prices)
	assert.NoError(t, cs.Ping(context.Background()))
}

func TestCachedStore_CorruptEntryFallsThrough(t *testing.T) {
	cs, inner, mr := newCached(t)
	require.NoError(t, mr.Set("funnelpay:price:price_1", "{not json"))

	price, err := cs.GetPrice(context.Background(), "price_1")
	require.NoError(t, err)
	assert.Equal(t, "Masterclass", price.ProductName)
	assert.Equal(t, 1, inner.prices)
}
