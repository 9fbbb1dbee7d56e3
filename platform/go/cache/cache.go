// Package cache holds the read-through cache used for public slug lookups.
package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache: miss")

// Cache stores values of type V. A zero TTL on Set means the implementation default.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// GetOrLoad serves key from c, falling back to load on a miss and storing the result.
// Cache failures are logged and never fail the read; load errors are returned as-is
// and nothing is stored.
func GetOrLoad[V any](ctx context.Context, c Cache[V], logger *zap.Logger, key string, load func(context.Context) (V, error)) (V, error) {
	value, err := c.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrMiss) && logger != nil {
		logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err = load(ctx)
	if err != nil {
		return value, err
	}

	if setErr := c.Set(ctx, key, value, 0); setErr != nil && logger != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(setErr))
	}
	return value, nil
}

// Invalidate deletes keys, logging instead of failing so writes are never blocked by the cache.
func Invalidate[V any](ctx context.Context, c Cache[V], logger *zap.Logger, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil && logger != nil {
		logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Noop never stores anything; every Get misses.
type Noop[V any] struct{}

func (Noop[V]) Get(context.Context, string) (V, error) {
	var zero V
	return zero, ErrMiss
}

func (Noop[V]) Set(context.Context, string, V, time.Duration) error { return nil }

func (Noop[V]) Delete(context.Context, ...string) error { return nil }
