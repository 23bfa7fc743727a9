package usecases

import (
	"math"
	"time"

	"github.com/gamepoint/travel-api/internal/core/domain"
	"github.com/gamepoint/travel-api/internal/pkg/geospatial"
	"github.com/gamepoint/travel-api/internal/pkg/metrics"
)

// Assumed average speeds and fixed overheads per mode. The indirection
// multipliers scale straight-line distance to approximate real road and
// path lengths; all of these are heuristics tuned on Prague geometry,
// not measured constants.
const (
	walkSpeedKmh    = 5.0
	transitSpeedKmh = 25.0
	driveSpeedKmh   = 35.0

	transitWaitMin  = 5.0 // average wait for the first connection
	driveParkingMin = 3.0 // parking and garage exit

	walkDetour    = 1.2
	transitDetour = 1.0
	driveDetour   = 1.3
)

// FallbackService produces geometric travel estimates when the routing
// provider is unavailable. It performs no I/O and, given a known venue,
// cannot fail: it is the guaranteed-available degraded mode.
type FallbackService struct {
	registry *VenueRegistry
}

// NewFallbackService creates a FallbackService.
func NewFallbackService(registry *VenueRegistry) *FallbackService {
	return &FallbackService{registry: registry}
}

// Estimate computes a fully-populated three-mode result from great-circle
// distance. Results are marked approximate so clients can badge them.
func (s *FallbackService) Estimate(origin domain.GeoPoint, venueID string) (*domain.TravelResult, error) {
	venue, ok := s.registry.Lookup(venueID)
	if !ok {
		return nil, domain.ErrVenueNotFound
	}

	lineKm := geospatial.Haversine(origin.Lat, origin.Lon, venue.Location.Lat, venue.Location.Lon) / 1000

	estimates := []domain.TravelEstimate{
		geometricEstimate(domain.ModeWalking, lineKm, walkDetour, walkSpeedKmh, 0),
		geometricEstimate(domain.ModeTransit, lineKm, transitDetour, transitSpeedKmh, transitWaitMin),
		geometricEstimate(domain.ModeDriving, lineKm, driveDetour, driveSpeedKmh, driveParkingMin),
	}

	metrics.FallbackEstimates.WithLabelValues(venueID).Inc()

	return &domain.TravelResult{
		VenueID:     venueID,
		Origin:      origin,
		Estimates:   estimates,
		Links:       domain.BuildDeepLinks(origin, venue),
		Approximate: true,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func geometricEstimate(mode domain.Mode, lineKm, detour, speedKmh, overheadMin float64) domain.TravelEstimate {
	distKm := lineKm * detour
	seconds := int(math.Round(distKm/speedKmh*3600 + overheadMin*60))
	if seconds < 60 {
		seconds = 60
	}
	meters := int(math.Round(distKm * 1000))

	return domain.TravelEstimate{
		Mode:            mode,
		DurationMinutes: domain.DurationMinutes(seconds),
		DurationText:    domain.FormatDuration(seconds),
		DistanceKm:      domain.DistanceKm(meters),
		DistanceText:    domain.FormatDistance(meters),
	}
}
