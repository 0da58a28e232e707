package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/infra/logger"
	"github.com/redis/go-redis/v9"
)

const cachePrefix = "funnelpay:"

// CachedStore is a Redis read-through cache in front of another Store. Only prices
// are cached. Route lookups and tenants always go to the inner store, so a deactivated
// route or a rotated credential takes effect on the next request and gateway secrets
// never leave the database. Misses are not cached, and a Redis failure falls through.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedStore wraps inner with a cache entry lifetime of ttl
func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl}
}

func (s *CachedStore) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.inner.GetTenant(ctx, id)
}

func (s *CachedStore) GetPrice(ctx context.Context, id string) (*domain.Price, error) {
	key := cachePrefix + "price:" + id

	var p domain.Price
	if s.get(ctx, key, &p) {
		return &p, nil
	}

	price, err := s.inner.GetPrice(ctx, id)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, price)
	return price, nil
}

func (s *CachedStore) FindActiveRoute(ctx context.Context, hostname, pathPrefix string) (*domain.Route, error) {
	return s.inner.FindActiveRoute(ctx, hostname, pathPrefix)
}

func (s *CachedStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the inner store. The Redis client is owned by the caller.
func (s *CachedStore) Close() error {
	return s.inner.Close()
}

func (s *CachedStore) get(ctx context.Context, key string, dst any) bool {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache read failed, using store", logger.LogContext{
				Fields: map[string]any{"key": key, "error": err.Error()},
			})
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("cache entry unreadable, using store", logger.LogContext{
			Fields: map[string]any{"key": key, "error": err.Error()},
		})
		return false
	}
	return true
}

func (s *CachedStore) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		logger.Warn("cache write failed", logger.LogContext{
			Fields: map[string]any{"key": key, "error": err.Error()},
		})
	}
}
