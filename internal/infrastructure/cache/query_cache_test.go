package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, opts ...InMemoryOption) *InMemoryQueryCache {
	t.Helper()
	c := NewInMemoryQueryCache(opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("caches the loaded value", func(t *testing.T) {
		c := newTestCache(t)
		calls := 0
		loader := func(context.Context) (any, error) {
			calls++
			return "contacts-page-1", nil
		}

		v1, err := c.GetOrLoad(ctx, "contacts:list", loader)
		require.NoError(t, err)
		v2, err := c.GetOrLoad(ctx, "contacts:list", loader)
		require.NoError(t, err)

		assert.Equal(t, v1, v2)
		assert.Equal(t, 1, calls)

		stats := c.Stats()
		assert.Equal(t, int64(1), stats.Hits)
		assert.Equal(t, int64(1), stats.Misses)
	})

	t.Run("load errors are not cached", func(t *testing.T) {
		c := newTestCache(t)
		calls := 0
		boom := errors.New("db down")
		loader := func(context.Context) (any, error) {
			calls++
			if calls == 1 {
				return nil, boom
			}
			return "ok", nil
		}

		_, err := c.GetOrLoad(ctx, "deals:list", loader)
		require.ErrorIs(t, err, boom)

		v, err := c.GetOrLoad(ctx, "deals:list", loader)
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.Equal(t, 2, calls)
	})

	t.Run("expired entries reload", func(t *testing.T) {
		c := newTestCache(t, WithTTL(10*time.Millisecond), WithCleanupInterval(time.Hour))
		calls := 0
		loader := func(context.Context) (any, error) {
			calls++
			return calls, nil
		}

		_, err := c.GetOrLoad(ctx, "tasks:list", loader)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)
		v, err := c.GetOrLoad(ctx, "tasks:list", loader)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})
}

func TestConcurrentLoadDeduplication(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var loads atomic.Int64
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		<-release
		return "shared", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]any, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad(ctx, "tasks:list", loader)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give every worker time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), loads.Load())
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestInvalidation(t *testing.T) {
	ctx := context.Background()

	t.Run("scope invalidation drops only that collection", func(t *testing.T) {
		c := newTestCache(t)
		calls := map[string]int{}
		load := func(key string) func(context.Context) (any, error) {
			return func(context.Context) (any, error) {
				calls[key]++
				return calls[key], nil
			}
		}

		_, err := c.GetOrLoad(ctx, Key("contacts", "list"), load("contacts"))
		require.NoError(t, err)
		_, err = c.GetOrLoad(ctx, Key("deals", "list"), load("deals"))
		require.NoError(t, err)

		c.InvalidateScope("contacts")

		v, err := c.GetOrLoad(ctx, Key("contacts", "list"), load("contacts"))
		require.NoError(t, err)
		assert.Equal(t, 2, v)

		v, err = c.GetOrLoad(ctx, Key("deals", "list"), load("deals"))
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("invalidate all empties the cache", func(t *testing.T) {
		c := newTestCache(t)
		_, err := c.GetOrLoad(ctx, "a:1", func(context.Context) (any, error) { return 1, nil })
		require.NoError(t, err)
		_, err = c.GetOrLoad(ctx, "b:1", func(context.Context) (any, error) { return 2, nil })
		require.NoError(t, err)

		c.InvalidateAll()
		assert.Equal(t, 0, c.Stats().Size)
	})
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "tasks", Key("tasks"))
	assert.Equal(t, "tasks:list:1:20", Key("tasks", "list", "1", "20"))
	assert.Equal(t, "tasks", ScopeOf("tasks:list:1:20"))
	assert.Equal(t, "tasks", ScopeOf("tasks"))
}

func TestGetTyped(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	v, err := GetTyped(ctx, c, "contacts:count", func(context.Context) (int64, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	// Second call hits the cache with the right type
	v, err = GetTyped(ctx, c, "contacts:count", func(context.Context) (int64, error) {
		return 0, errors.New("should not load")
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestPassthroughCache(t *testing.T) {
	c := PassthroughCache{}
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	_, err := c.GetOrLoad(ctx, "k", loader)
	require.NoError(t, err)
	v, err := c.GetOrLoad(ctx, "k", loader)
	require.NoError(t, err)

	assert.Equal(t, 2, v)
}

func TestClose(t *testing.T) {
	c := NewInMemoryQueryCache()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
