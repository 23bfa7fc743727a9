package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	apihttp "github.com/gamepoint/travel-api/internal/adapters/http"
	"github.com/gamepoint/travel-api/internal/core/domain"
	"github.com/gamepoint/travel-api/internal/core/usecases"
)

type stubProvider struct {
	fetchFn func(ctx context.Context, origin, dest domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error)
}

func (s *stubProvider) FetchEstimate(ctx context.Context, origin, dest domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error) {
	if s.fetchFn != nil {
		return s.fetchFn(ctx, origin, dest, mode)
	}
	return &domain.TravelEstimate{
		Mode:            mode,
		DurationMinutes: 20,
		DurationText:    "20 min",
		DistanceKm:      5.2,
		DistanceText:    "5.2 km",
	}, nil
}

func newTestApp(provider *stubProvider) *fiber.App {
	registry := usecases.NewVenueRegistry(domain.DefaultVenues())
	deps := &apihttp.Dependencies{
		Registry: registry,
		Fallback: usecases.NewFallbackService(registry),
	}
	if provider != nil {
		deps.Estimates = usecases.NewEstimateService(registry, provider, nil, nil)
	} else {
		deps.Estimates = usecases.NewEstimateService(registry, nil, nil, nil)
	}
	app := fiber.New()
	apihttp.SetupRoutes(app, deps)
	return app
}

func doRequest(t *testing.T, app *fiber.App, path string) (*nethttp.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(nethttp.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp, body
}

func TestListVenues(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, body := doRequest(t, app, "/v1/venues")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var venues []domain.Venue
	if err := json.Unmarshal(body, &venues); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(venues) != 3 {
		t.Fatalf("expected 3 venues, got %d", len(venues))
	}
	if venues[0].ID != "haje" {
		t.Errorf("unexpected first venue: %+v", venues[0])
	}
}

func TestGetVenue_NotFound(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, _ := doRequest(t, app, "/v1/venues/liberec")
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("status %d, want 404", resp.StatusCode)
	}
}

func TestTravelEstimates_MissingOrigin(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, _ := doRequest(t, app, "/v1/venues/haje/travel")
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, "/v1/venues/haje/travel?lat=95&lon=14.43")
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("out-of-range lat: status %d, want 400", resp.StatusCode)
	}
}

func TestTravelEstimates_Success(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, body := doRequest(t, app, "/v1/venues/haje/travel?lat=50.08&lon=14.43")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status %d, want 200, body %s", resp.StatusCode, body)
	}

	var result domain.TravelResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Estimates) != 3 {
		t.Fatalf("expected 3 estimates, got %d", len(result.Estimates))
	}
	if result.Approximate {
		t.Error("upstream-backed result marked approximate")
	}
	if result.Links.Maps == "" {
		t.Error("deep links missing")
	}
}

func TestTravelEstimates_PartialUpstream(t *testing.T) {
	app := newTestApp(&stubProvider{
		fetchFn: func(ctx context.Context, origin, dest domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error) {
			if mode == domain.ModeDriving {
				return nil, fmt.Errorf("routes status 503")
			}
			return &domain.TravelEstimate{Mode: mode, DurationMinutes: 15, DurationText: "15 min", DistanceKm: 4, DistanceText: "4.0 km"}, nil
		},
	})

	resp, body := doRequest(t, app, "/v1/venues/andel/travel?lat=50.08&lon=14.43")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var result domain.TravelResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Estimates) != 2 {
		t.Fatalf("expected 2 estimates, got %d", len(result.Estimates))
	}
	if result.Estimates[0].Mode != domain.ModeWalking || result.Estimates[1].Mode != domain.ModeTransit {
		t.Errorf("unexpected mode order: %+v", result.Estimates)
	}
	if result.Approximate {
		t.Error("partial upstream result marked approximate")
	}
}

func TestTravelEstimates_FallbackSubstitution(t *testing.T) {
	app := newTestApp(&stubProvider{
		fetchFn: func(ctx context.Context, origin, dest domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error) {
			return nil, fmt.Errorf("connection refused")
		},
	})

	resp, body := doRequest(t, app, "/v1/venues/haje/travel?lat=50.08&lon=14.43")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var result domain.TravelResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Estimates) != 3 {
		t.Fatalf("fallback must supply all 3 modes, got %d", len(result.Estimates))
	}
	if !result.Approximate {
		t.Error("fallback result not marked approximate")
	}
}

func TestTravelEstimates_NoProviderConfigured(t *testing.T) {
	app := newTestApp(nil)

	resp, body := doRequest(t, app, "/v1/venues/flora/travel?lat=50.08&lon=14.43")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var result domain.TravelResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Approximate || len(result.Estimates) != 3 {
		t.Errorf("expected approximate 3-mode fallback, got %+v", result)
	}
}

func TestDeepLinks(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, body := doRequest(t, app, "/v1/venues/haje/links?lat=50.08&lon=14.43")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var links domain.DeepLinks
	if err := json.Unmarshal(body, &links); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if links.Maps == "" || links.Uber == "" || links.Bolt == "" {
		t.Errorf("incomplete link bundle: %+v", links)
	}

	resp, _ = doRequest(t, app, "/v1/venues/liberec/links?lat=50.08&lon=14.43")
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("unknown venue: status %d, want 404", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, body := doRequest(t, app, "/v1/health")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	var health map[string]any
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("unexpected health payload: %v", health)
	}
	if health["venues"] != float64(3) {
		t.Errorf("expected 3 venues in health payload, got %v", health["venues"])
	}
}

func TestReady_NoOptionalCollaborators(t *testing.T) {
	app := newTestApp(&stubProvider{})

	resp, body := doRequest(t, app, "/v1/ready")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("status %d, want 200, body %s", resp.StatusCode, body)
	}

	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(body, &ready); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ready.Status != "ready" {
		t.Errorf("status %q, want ready", ready.Status)
	}
	if ready.Checks["database"] != "not configured" || ready.Checks["nats"] != "not configured" {
		t.Errorf("unexpected checks: %v", ready.Checks)
	}
}
