package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gamepoint/travel-api/internal/core/domain"
	"github.com/gamepoint/travel-api/internal/core/ports"
	"github.com/gamepoint/travel-api/internal/pkg/metrics"
)

// EstimateService orchestrates multi-modal travel estimation: cache
// lookup, concurrent per-mode fetches against the routing provider, and
// assembly of partial results.
type EstimateService struct {
	registry *VenueRegistry
	provider ports.RouteProvider
	cache    ports.ResultCache
	events   ports.EventPublisher
}

// NewEstimateService creates an EstimateService. provider may be nil when
// the upstream is unconfigured; cache and events may be nil.
func NewEstimateService(registry *VenueRegistry, provider ports.RouteProvider, cache ports.ResultCache, events ports.EventPublisher) *EstimateService {
	return &EstimateService{registry: registry, provider: provider, cache: cache, events: events}
}

// GetEstimates returns travel estimates from origin to a venue.
//
// A mode whose fetch fails is silently absent from the result; partial
// results are expected, not an error. When no mode succeeds (including
// the unconfigured-provider case) it returns domain.ErrNoEstimates and
// the caller substitutes the fallback estimator.
func (s *EstimateService) GetEstimates(ctx context.Context, origin domain.GeoPoint, venueID string) (*domain.TravelResult, error) {
	venue, ok := s.registry.Lookup(venueID)
	if !ok {
		return nil, domain.ErrVenueNotFound
	}

	if s.cache != nil {
		if cached, hit := s.cache.Get(ctx, origin, venueID); hit {
			return cached, nil
		}
	}

	if s.provider == nil {
		return nil, domain.ErrNoEstimates
	}

	// Fan out one fetch per mode and wait for all of them. Slots keep
	// the fixed mode order independent of completion order.
	var slots [len(domain.Modes)]*domain.TravelEstimate
	var wg sync.WaitGroup
	for i, mode := range domain.Modes {
		wg.Add(1)
		go func(i int, mode domain.Mode) {
			defer wg.Done()
			est, err := s.provider.FetchEstimate(ctx, origin, venue.Location, mode)
			if err != nil {
				slog.Debug("mode fetch failed", "venue", venueID, "mode", mode, "error", err)
				return
			}
			slots[i] = est
		}(i, mode)
	}
	wg.Wait()

	estimates := make([]domain.TravelEstimate, 0, len(slots))
	for _, est := range slots {
		if est != nil {
			estimates = append(estimates, *est)
		}
	}
	if len(estimates) == 0 {
		return nil, domain.ErrNoEstimates
	}

	result := &domain.TravelResult{
		VenueID:   venueID,
		Origin:    origin,
		Estimates: estimates,
		Links:     domain.BuildDeepLinks(origin, venue),
		CreatedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		s.cache.Put(ctx, result)
	}

	if s.events != nil {
		if err := s.events.PublishEstimateComputed(ctx, result); err != nil {
			slog.Warn("publish estimate event", "venue", venueID, "error", err)
		}
	}

	metrics.EstimatesComputed.WithLabelValues(venueID).Inc()
	return result, nil
}

// DeepLinks returns the deep-link bundle for a venue without issuing any
// upstream requests.
func (s *EstimateService) DeepLinks(origin domain.GeoPoint, venueID string) (domain.DeepLinks, error) {
	venue, ok := s.registry.Lookup(venueID)
	if !ok {
		return domain.DeepLinks{}, domain.ErrVenueNotFound
	}
	return domain.BuildDeepLinks(origin, venue), nil
}
