package ports

import (
	"context"
	"strconv"

	"github.com/gamepoint/travel-api/internal/core/domain"
)

// RouteProvider fetches one mode's travel estimate from the upstream
// routing API. Any failure (transport error, non-2xx status, response
// without a route) is reported as an error and treated by callers as
// "no estimate for this mode", never as a fatal condition.
type RouteProvider interface {
	FetchEstimate(ctx context.Context, origin, destination domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error)
}

// ResultCache deduplicates travel estimations for near-identical origins.
// Implementations key entries by ResultCacheKey and expire them after a
// TTL; Get must treat expired entries as misses.
type ResultCache interface {
	Get(ctx context.Context, origin domain.GeoPoint, venueID string) (*domain.TravelResult, bool)
	Put(ctx context.Context, result *domain.TravelResult)
	EvictExpired(ctx context.Context)
}

// EventPublisher publishes computed estimates to a message broker for
// downstream consumers (analytics, realtime relay).
type EventPublisher interface {
	PublishEstimateComputed(ctx context.Context, result *domain.TravelResult) error
}

// VenueRepository loads the venue registry from storage.
type VenueRepository interface {
	ListAll(ctx context.Context) ([]domain.Venue, error)
}

// ResultCacheKey derives the shared cache key: venue id plus the origin
// rounded to `precision` decimal degrees. Three decimals is roughly 100 m,
// a deliberate precision loss that lets GPS-jittered repeat queries hit.
func ResultCacheKey(venueID string, origin domain.GeoPoint, precision int) string {
	return "travel:" + venueID +
		":" + strconv.FormatFloat(origin.Lat, 'f', precision, 64) +
		":" + strconv.FormatFloat(origin.Lon, 'f', precision, 64)
}
