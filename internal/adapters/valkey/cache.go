// Package valkey is the externalized result cache backend, for
// deployments that want estimates shared across replicas.
package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/gamepoint/travel-api/internal/core/domain"
	"github.com/gamepoint/travel-api/internal/core/ports"
	"github.com/gamepoint/travel-api/internal/pkg/metrics"
)

// Cache implements ports.ResultCache on a Valkey (Redis-compatible)
// server. Keys follow the same rounding as the memory backend; expiry is
// server-side via EX.
type Cache struct {
	client    valkey.Client
	ttl       time.Duration
	precision int
}

// New connects to Valkey.
func New(addr string, ttl time.Duration, precision int) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Cache{client: client, ttl: ttl, precision: precision}, nil
}

// Get retrieves a cached result. Any server or decode error counts as a
// miss; the caller re-fetches.
func (c *Cache) Get(ctx context.Context, origin domain.GeoPoint, venueID string) (*domain.TravelResult, bool) {
	key := ports.ResultCacheKey(venueID, origin, c.precision)

	cmd := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if cmd.Error() != nil {
		metrics.CacheMisses.WithLabelValues("valkey").Inc()
		return nil, false
	}
	data, err := cmd.AsBytes()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("valkey").Inc()
		return nil, false
	}

	var result domain.TravelResult
	if err := json.Unmarshal(data, &result); err != nil {
		metrics.CacheMisses.WithLabelValues("valkey").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("valkey").Inc()
	return &result, true
}

// Put stores a result with the configured TTL. Write failures are
// silently dropped; the cache is an optimization, not a store of record.
func (c *Cache) Put(ctx context.Context, result *domain.TravelResult) {
	key := ports.ResultCacheKey(result.VenueID, result.Origin, c.precision)

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = c.client.Do(ctx,
		c.client.B().Set().Key(key).Value(string(data)).Ex(c.ttl).Build(),
	).Error()
}

// EvictExpired is a no-op: the server expires keys itself.
func (c *Cache) EvictExpired(ctx context.Context) {}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}
