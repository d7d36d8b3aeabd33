package decorator

import (
	"context"
	"sync/atomic"
	"time"
)

type (
	// CacheStatus represents the status of a cache operation.
	CacheStatus string

	cacheStatusKey struct{}

	// CacheConfig holds configuration for the caching decorator.
	CacheConfig struct {
		Enabled bool
		TTL     time.Duration
	}

	// Cache stores query results keyed by the query value.
	Cache[Q Query, R Result] interface {
		Get(ctx context.Context, query Q) (R, bool, error)
		Set(ctx context.Context, query Q, result R, ttl time.Duration) error
	}

	// Bypasser lets a query opt out of caching, e.g. on an explicit refresh.
	Bypasser interface {
		BypassCache() bool
	}

	queryCachingDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		cache  Cache[Q, R]
		config CacheConfig
		onSet  func(error)
	}

	// CachingOption customises NewQueryCachingDecorator.
	CachingOption func(*cachingOptions)

	cachingOptions struct {
		onSet func(error)
	}
)

const (
	CacheStatusHit    CacheStatus = "HIT"
	CacheStatusMiss   CacheStatus = "MISS"
	CacheStatusBypass CacheStatus = "BYPASS"
	CacheStatusError  CacheStatus = "ERROR"
)

// WithCacheStatusRecorder returns a context the caching decorator reports
// into, and a function reading the recorded status (BYPASS when unset).
func WithCacheStatusRecorder(ctx context.Context) (context.Context, func() CacheStatus) {
	holder := &atomic.Value{}

	return context.WithValue(ctx, cacheStatusKey{}, holder), func() CacheStatus {
		if status, ok := holder.Load().(CacheStatus); ok {
			return status
		}

		return CacheStatusBypass
	}
}

func recordCacheStatus(ctx context.Context, status CacheStatus) {
	if holder, ok := ctx.Value(cacheStatusKey{}).(*atomic.Value); ok {
		holder.Store(status)
	}
}

// WithSetErrorHandler reports the outcome of background cache writes.
func WithSetErrorHandler(fn func(error)) CachingOption {
	return func(o *cachingOptions) {
		o.onSet = fn
	}
}

// NewQueryCachingDecorator creates a new caching decorator for queries.
func NewQueryCachingDecorator[Q Query, R Result](
	base QueryHandler[Q, R],
	cache Cache[Q, R],
	config CacheConfig,
	opts ...CachingOption,
) QueryHandler[Q, R] {
	options := cachingOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	return queryCachingDecorator[Q, R]{
		base:   base,
		cache:  cache,
		config: config,
		onSet:  options.onSet,
	}
}

func (d queryCachingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	if !d.config.Enabled || d.cache == nil || bypassed(query) {
		recordCacheStatus(ctx, CacheStatusBypass)

		return d.base.Execute(ctx, query)
	}

	cached, hit, err := d.cache.Get(ctx, query)
	if err == nil && hit {
		recordCacheStatus(ctx, CacheStatusHit)

		return cached, nil
	}

	status := CacheStatusMiss
	if err != nil {
		status = CacheStatusError
	}

	recordCacheStatus(ctx, status)

	result, err := d.base.Execute(ctx, query)
	if err != nil {
		var zero R

		return zero, err
	}

	go func(setCtx context.Context) {
		setErr := d.cache.Set(setCtx, query, result, d.config.TTL)
		if d.onSet != nil {
			d.onSet(setErr)
		}
	}(context.WithoutCancel(ctx))

	return result, nil
}

func bypassed(query any) bool {
	b, ok := query.(Bypasser)

	return ok && b.BypassCache()
}
