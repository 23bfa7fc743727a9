package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gamepoint/travel-api/internal/adapters/memcache"
	"github.com/gamepoint/travel-api/internal/core/domain"
	"github.com/gamepoint/travel-api/internal/core/usecases"
)

// --- Mock RouteProvider ---

type mockProvider struct {
	mu      sync.Mutex
	calls   int
	byMode  map[domain.Mode]int
	fetchFn func(ctx context.Context, origin, dest domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error)
}

func (m *mockProvider) FetchEstimate(ctx context.Context, origin, dest domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error) {
	m.mu.Lock()
	m.calls++
	if m.byMode == nil {
		m.byMode = make(map[domain.Mode]int)
	}
	m.byMode[mode]++
	m.mu.Unlock()

	if m.fetchFn != nil {
		return m.fetchFn(ctx, origin, dest, mode)
	}
	return okEstimate(mode), nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func okEstimate(mode domain.Mode) *domain.TravelEstimate {
	return &domain.TravelEstimate{
		Mode:            mode,
		DurationMinutes: 12,
		DurationText:    "12 min",
		DistanceKm:      3.4,
		DistanceText:    "3.4 km",
	}
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	published []*domain.TravelResult
}

func (m *mockPublisher) PublishEstimateComputed(ctx context.Context, result *domain.TravelResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, result)
	return nil
}

func testRegistry() *usecases.VenueRegistry {
	return usecases.NewVenueRegistry(domain.DefaultVenues())
}

var testOrigin = domain.GeoPoint{Lat: 50.08, Lon: 14.43}

// --- Tests ---

func TestGetEstimates_UnknownVenue(t *testing.T) {
	provider := &mockProvider{}
	svc := usecases.NewEstimateService(testRegistry(), provider, nil, nil)

	_, err := svc.GetEstimates(context.Background(), testOrigin, "ostrava")
	if !errors.Is(err, domain.ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}
	if provider.callCount() != 0 {
		t.Errorf("provider should not be called for unknown venue")
	}
}

func TestGetEstimates_AllModesInOrder(t *testing.T) {
	svc := usecases.NewEstimateService(testRegistry(), &mockProvider{}, nil, nil)

	result, err := svc.GetEstimates(context.Background(), testOrigin, "haje")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Estimates) != 3 {
		t.Fatalf("expected 3 estimates, got %d", len(result.Estimates))
	}
	for i, want := range domain.Modes {
		if result.Estimates[i].Mode != want {
			t.Errorf("estimate %d: mode %s, want %s", i, result.Estimates[i].Mode, want)
		}
	}
	if result.VenueID != "haje" || result.Origin != testOrigin {
		t.Errorf("result identity wrong: %+v", result)
	}
	if result.Links.Maps == "" || result.Links.Uber == "" || result.Links.Bolt == "" {
		t.Errorf("deep links not populated: %+v", result.Links)
	}
	if result.CreatedAt.IsZero() {
		t.Error("creation timestamp not set")
	}
}

func TestGetEstimates_PartialFailure(t *testing.T) {
	provider := &mockProvider{
		fetchFn: func(ctx context.Context, origin, dest domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error) {
			if mode == domain.ModeTransit {
				return nil, fmt.Errorf("routes status 503")
			}
			return okEstimate(mode), nil
		},
	}
	svc := usecases.NewEstimateService(testRegistry(), provider, nil, nil)

	result, err := svc.GetEstimates(context.Background(), testOrigin, "haje")
	if err != nil {
		t.Fatalf("partial failure must not error: %v", err)
	}
	if len(result.Estimates) != 2 {
		t.Fatalf("expected 2 estimates, got %d", len(result.Estimates))
	}
	if result.Estimates[0].Mode != domain.ModeWalking || result.Estimates[1].Mode != domain.ModeDriving {
		t.Errorf("expected [walking driving], got [%s %s]",
			result.Estimates[0].Mode, result.Estimates[1].Mode)
	}
}

func TestGetEstimates_TotalFailure(t *testing.T) {
	provider := &mockProvider{
		fetchFn: func(ctx context.Context, origin, dest domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	svc := usecases.NewEstimateService(testRegistry(), provider, nil, nil)

	_, err := svc.GetEstimates(context.Background(), testOrigin, "haje")
	if !errors.Is(err, domain.ErrNoEstimates) {
		t.Fatalf("expected ErrNoEstimates, got %v", err)
	}
}

func TestGetEstimates_UnconfiguredProvider(t *testing.T) {
	svc := usecases.NewEstimateService(testRegistry(), nil, nil, nil)

	_, err := svc.GetEstimates(context.Background(), testOrigin, "haje")
	if !errors.Is(err, domain.ErrNoEstimates) {
		t.Fatalf("expected ErrNoEstimates, got %v", err)
	}
}

func TestGetEstimates_CacheDeduplicatesNearbyOrigins(t *testing.T) {
	provider := &mockProvider{}
	cache := memcache.New(5*time.Minute, memcache.DefaultKeyPrecision)
	svc := usecases.NewEstimateService(testRegistry(), provider, cache, nil)

	if _, err := svc.GetEstimates(context.Background(), testOrigin, "haje"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if provider.callCount() != 3 {
		t.Fatalf("expected 3 fetches after first call, got %d", provider.callCount())
	}

	// ~30 m of GPS jitter rounds to the same cache key.
	jittered := domain.GeoPoint{Lat: 50.0801, Lon: 14.4302}
	result, err := svc.GetEstimates(context.Background(), jittered, "haje")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if provider.callCount() != 3 {
		t.Errorf("cached call issued upstream requests: %d fetches", provider.callCount())
	}
	if len(result.Estimates) != 3 {
		t.Errorf("cached result corrupted: %+v", result)
	}

	// A genuinely different origin misses.
	far := domain.GeoPoint{Lat: 50.1, Lon: 14.5}
	if _, err := svc.GetEstimates(context.Background(), far, "haje"); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if provider.callCount() != 6 {
		t.Errorf("expected fresh fetches for distant origin, got %d total", provider.callCount())
	}
}

func TestGetEstimates_PublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	svc := usecases.NewEstimateService(testRegistry(), &mockProvider{}, nil, pub)

	if _, err := svc.GetEstimates(context.Background(), testOrigin, "andel"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0].VenueID != "andel" {
		t.Errorf("expected one published result for andel, got %+v", pub.published)
	}
}

func TestDeepLinks(t *testing.T) {
	svc := usecases.NewEstimateService(testRegistry(), nil, nil, nil)

	links, err := svc.DeepLinks(testOrigin, "haje")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if links.Maps == "" {
		t.Error("expected maps link")
	}

	if _, err := svc.DeepLinks(testOrigin, "nope"); !errors.Is(err, domain.ErrVenueNotFound) {
		t.Errorf("expected ErrVenueNotFound, got %v", err)
	}
}
