// Package memcache is the in-process result cache backend. Entries are
// lost on restart, which is fine: results are cheap to regenerate and
// correctness never depends on cache retention.
package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/gamepoint/travel-api/internal/core/domain"
	"github.com/gamepoint/travel-api/internal/core/ports"
	"github.com/gamepoint/travel-api/internal/pkg/metrics"
)

const (
	// DefaultTTL bounds how stale a served estimate can be.
	DefaultTTL = 5 * time.Minute

	// DefaultKeyPrecision is the coordinate rounding for cache keys,
	// in decimal degrees. Three decimals is roughly 100 m.
	DefaultKeyPrecision = 3
)

type entry struct {
	result   *domain.TravelResult
	expireAt time.Time
}

// Cache implements ports.ResultCache with a TTL map. Expired entries are
// evicted on read; there is no background sweep.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	ttl       time.Duration
	precision int

	now func() time.Time
}

// New creates a memory cache. Non-positive ttl or precision fall back to
// the defaults.
func New(ttl time.Duration, precision int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if precision <= 0 {
		precision = DefaultKeyPrecision
	}
	return &Cache{
		entries:   make(map[string]entry),
		ttl:       ttl,
		precision: precision,
		now:       time.Now,
	}
}

// Get returns a live cached result, evicting the entry if it has expired.
func (c *Cache) Get(ctx context.Context, origin domain.GeoPoint, venueID string) (*domain.TravelResult, bool) {
	key := ports.ResultCacheKey(venueID, origin, c.precision)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return nil, false
	}
	if c.now().After(e.expireAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have
		// refreshed the entry.
		if cur, still := c.entries[key]; still && c.now().After(cur.expireAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("memory").Inc()
	return e.result, true
}

// Put stores a result under its rounded-origin key. Concurrent writers
// for the same logical key are last-write-wins.
func (c *Cache) Put(ctx context.Context, result *domain.TravelResult) {
	key := ports.ResultCacheKey(result.VenueID, result.Origin, c.precision)

	c.mu.Lock()
	c.entries[key] = entry{result: result, expireAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// EvictExpired removes all expired entries. Get already evicts on read,
// so this exists for housekeeping callers only.
func (c *Cache) EvictExpired(ctx context.Context) {
	now := c.now()

	c.mu.Lock()
	for key, e := range c.entries {
		if now.After(e.expireAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of entries, live or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
