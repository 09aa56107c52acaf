// Package cache provides the read-through query cache that backs entity
// list and detail reads, plus cross-instance invalidation over Redis.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// QueryCache is the injectable read-through cache used by the application
// services. A pass-through implementation must leave call semantics
// identical, only slower.
type QueryCache interface {
	// GetOrLoad returns the cached value for key, or runs loader and caches
	// its result. Concurrent calls for the same key share a single load.
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error)
	// InvalidateScope drops every key belonging to a collection scope
	InvalidateScope(scope string)
	// InvalidateAll drops everything
	InvalidateAll()
	// Stats returns cache statistics
	Stats() Stats
	// Close releases background resources
	Close() error
}

// Stats contains cache statistics
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Loads         int64 `json:"loads"`
	Invalidations int64 `json:"invalidations"`
	Size          int   `json:"size"`
}

// Key builds a cache key from a collection scope and discriminator parts.
// The scope is everything before the first separator.
func Key(scope string, parts ...string) string {
	if len(parts) == 0 {
		return scope
	}
	return scope + ":" + strings.Join(parts, ":")
}

// ScopeOf extracts the collection scope from a key
func ScopeOf(key string) string {
	if idx := strings.Index(key, ":"); idx >= 0 {
		return key[:idx]
	}
	return key
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

func (e *cacheEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

type inflightCall struct {
	done  chan struct{}
	value any
	err   error
}

// InMemoryQueryCache is a TTL cache with in-flight load de-duplication
type InMemoryQueryCache struct {
	entries sync.Map // key -> *cacheEntry

	mu       sync.Mutex
	inflight map[string]*inflightCall

	ttl             time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	loads         atomic.Int64
	invalidations atomic.Int64

	stopCh  chan struct{}
	stopped atomic.Bool
}

// InMemoryOption is a functional option for InMemoryQueryCache
type InMemoryOption func(*InMemoryQueryCache)

// WithTTL sets the entry time-to-live
func WithTTL(ttl time.Duration) InMemoryOption {
	return func(c *InMemoryQueryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often expired entries are swept
func WithCleanupInterval(interval time.Duration) InMemoryOption {
	return func(c *InMemoryQueryCache) {
		if interval > 0 {
			c.cleanupInterval = interval
		}
	}
}

// WithLogger sets the cache logger
func WithLogger(logger *zap.Logger) InMemoryOption {
	return func(c *InMemoryQueryCache) {
		c.logger = logger
	}
}

// NewInMemoryQueryCache creates a query cache and starts its sweeper
func NewInMemoryQueryCache(opts ...InMemoryOption) *InMemoryQueryCache {
	c := &InMemoryQueryCache{
		inflight:        make(map[string]*inflightCall),
		ttl:             5 * time.Minute,
		cleanupInterval: time.Minute,
		logger:          zap.NewNop(),
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupLoop()
	return c
}

// GetOrLoad implements QueryCache
func (c *InMemoryQueryCache) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if v, ok := c.entries.Load(key); ok {
		entry := v.(*cacheEntry)
		if !entry.expired(time.Now()) {
			c.hits.Add(1)
			return entry.value, nil
		}
		c.entries.Delete(key)
	}
	c.misses.Add(1)

	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.value, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	c.loads.Add(1)
	call.value, call.err = loader(ctx)
	if call.err == nil {
		c.entries.Store(key, &cacheEntry{
			value:     call.value,
			expiresAt: time.Now().Add(c.ttl),
		})
	}

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(call.done)

	return call.value, call.err
}

// InvalidateScope implements QueryCache
func (c *InMemoryQueryCache) InvalidateScope(scope string) {
	removed := 0
	c.entries.Range(func(k, _ any) bool {
		if ScopeOf(k.(string)) == scope {
			c.entries.Delete(k)
			removed++
		}
		return true
	})
	c.invalidations.Add(1)
	c.logger.Debug("cache scope invalidated",
		zap.String("scope", scope),
		zap.Int("removed", removed))
}

// InvalidateAll implements QueryCache
func (c *InMemoryQueryCache) InvalidateAll() {
	c.entries.Range(func(k, _ any) bool {
		c.entries.Delete(k)
		return true
	})
	c.invalidations.Add(1)
}

// Stats implements QueryCache
func (c *InMemoryQueryCache) Stats() Stats {
	size := 0
	c.entries.Range(func(_, _ any) bool {
		size++
		return true
	})
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Loads:         c.loads.Load(),
		Invalidations: c.invalidations.Load(),
		Size:          size,
	}
}

// Close stops the sweeper. Safe to call more than once.
func (c *InMemoryQueryCache) Close() error {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

func (c *InMemoryQueryCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			c.entries.Range(func(k, v any) bool {
				if v.(*cacheEntry).expired(now) {
					c.entries.Delete(k)
				}
				return true
			})
		}
	}
}

// PassthroughCache loads on every call and never stores. It exists so a
// deployment can disable caching without changing any service code.
type PassthroughCache struct{}

// GetOrLoad implements QueryCache
func (PassthroughCache) GetOrLoad(ctx context.Context, _ string, loader func(context.Context) (any, error)) (any, error) {
	return loader(ctx)
}

// InvalidateScope implements QueryCache
func (PassthroughCache) InvalidateScope(string) {}

// InvalidateAll implements QueryCache
func (PassthroughCache) InvalidateAll() {}

// Stats implements QueryCache
func (PassthroughCache) Stats() Stats { return Stats{} }

// Close implements QueryCache
func (PassthroughCache) Close() error { return nil }

// GetTyped is a typed convenience wrapper over QueryCache.GetOrLoad.
// A cached value of the wrong type falls through to the loader.
func GetTyped[T any](ctx context.Context, c QueryCache, key string, loader func(context.Context) (T, error)) (T, error) {
	v, err := c.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return loader(ctx)
	}
	return typed, nil
}

// Compile-time interface checks
var (
	_ QueryCache = (*InMemoryQueryCache)(nil)
	_ QueryCache = PassthroughCache{}
)
