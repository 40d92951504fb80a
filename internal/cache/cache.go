// Package cache implements the memoizing read cache that sits between the
// service layer and the ledger. Entries carry the timestamp of their last
// successful fetch and an effective per-call TTL; an expired entry is kept
// around so that a transiently failing refresh can fall back to the stale
// value instead of surfacing an error (graceful degradation). Any
// non-transient failure propagates and evicts the key.
//
// The clock is injected so TTL behavior is deterministic under test. The
// cache is a process-wide value: any component may read or invalidate
// entries, but by convention only the component that issued a state-changing
// write invalidates the keys it knows it dirtied; everyone else relies on
// TTL expiry.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-skillshare-backend/internal/chain"
)

var cacheOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "memo_cache_operations_total",
		Help: "Memo cache lookups by outcome (hit, miss, stale_fallback, error).",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(cacheOps)
}

// entry is one cached value with the time of its last successful compute.
type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache memoizes computed values by string key with per-call TTLs and
// stale-value fallback on transient refresh failures. Safe for concurrent
// use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// New returns an empty Cache reading time from the real clock.
func New() *Cache { return NewWithClock(time.Now) }

// NewWithClock returns an empty Cache with an injected clock, for
// deterministic TTL tests.
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// GetOrCompute returns the cached value for key if its age is below ttl.
// Otherwise it invokes compute and stores the fresh value with a new
// timestamp. If compute fails with a transient classification (network
// failure, rate limit) and a previous value exists, the stale value is
// returned instead of the error; any other failure evicts the key and
// propagates.
//
// compute runs outside the cache lock, so concurrent callers of distinct
// keys never serialize on each other's fetches.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	hit, ok := c.entries[key]
	now := c.now()
	if ok && now.Sub(hit.fetchedAt) < ttl {
		c.mu.Unlock()
		cacheOps.WithLabelValues("hit").Inc()
		return hit.value, nil
	}
	c.mu.Unlock()

	value, err := compute(ctx)
	if err != nil {
		if ok && chain.IsTransient(err) {
			cacheOps.WithLabelValues("stale_fallback").Inc()
			return hit.value, nil
		}
		cacheOps.WithLabelValues("error").Inc()
		c.Invalidate(key)
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
	cacheOps.WithLabelValues("miss").Inc()
	return value, nil
}

// Invalidate removes the entry for key, if present. Callers that just issued
// a write use this on the keys they know are now stale.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of live entries (fresh or stale).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrCompute is the typed convenience wrapper around Cache.GetOrCompute.
// The zero T is returned alongside any propagated error.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return compute(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
