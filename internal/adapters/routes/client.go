// Package routes implements ports.RouteProvider against the Google
// Routes API (directions/v2:computeRoutes).
package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gamepoint/travel-api/internal/core/domain"
	"github.com/gamepoint/travel-api/internal/pkg/metrics"
	"github.com/gamepoint/travel-api/internal/pkg/ratelimit"
)

const (
	defaultEndpoint = "https://routes.googleapis.com"
	computePath     = "/directions/v2:computeRoutes"

	// The API bills by response field; ask only for what the estimate needs.
	fieldMask = "routes.duration,routes.distanceMeters,routes.legs.steps.transitDetails"
)

// Client calls the routing upstream, one request per travel mode. Every
// request is gated by the shared limiter before the network call.
type Client struct {
	endpoint string
	apiKey   string
	limiter  ratelimit.Limiter
	http     *http.Client
}

// New creates a routing client. The limiter must be the process-wide
// instance: the upstream quota is account-wide, not per-client.
func New(endpoint, apiKey string, limiter ratelimit.Limiter, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		limiter:  limiter,
		http:     &http.Client{Timeout: timeout},
	}
}

var apiModes = map[domain.Mode]string{
	domain.ModeWalking: "WALK",
	domain.ModeTransit: "TRANSIT",
	domain.ModeDriving: "DRIVE",
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type waypoint struct {
	Location struct {
		LatLng latLng `json:"latLng"`
	} `json:"location"`
}

type computeRequest struct {
	Origin      waypoint `json:"origin"`
	Destination waypoint `json:"destination"`
	TravelMode  string   `json:"travelMode"`
}

type computeResponse struct {
	Routes []struct {
		Duration       string `json:"duration"` // seconds with "s" suffix, e.g. "1234s"
		DistanceMeters int    `json:"distanceMeters"`
		Legs           []struct {
			Steps []struct {
				TransitDetails *struct {
					TransitLine struct {
						NameShort string `json:"nameShort"`
						Vehicle   struct {
							Type string `json:"type"`
						} `json:"vehicle"`
					} `json:"transitLine"`
				} `json:"transitDetails,omitempty"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// FetchEstimate requests a route for a single mode and normalizes it into
// a TravelEstimate. All failure classes come back as errors; the caller
// treats them as "no estimate for this mode".
func (c *Client) FetchEstimate(ctx context.Context, origin, destination domain.GeoPoint, mode domain.Mode) (*domain.TravelEstimate, error) {
	apiMode, ok := apiModes[mode]
	if !ok {
		return nil, fmt.Errorf("unsupported mode %q", mode)
	}

	waitStart := time.Now()
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("throttle: %w", err)
	}
	metrics.RateLimitWait.Observe(time.Since(waitStart).Seconds())

	var reqBody computeRequest
	reqBody.Origin.Location.LatLng = latLng{Latitude: origin.Lat, Longitude: origin.Lon}
	reqBody.Destination.Location.LatLng = latLng{Latitude: destination.Lat, Longitude: destination.Lon}
	reqBody.TravelMode = apiMode

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+computePath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RouteFetchDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RouteFetches.WithLabelValues(string(mode), "transport_error").Inc()
		return nil, fmt.Errorf("routes request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RouteFetches.WithLabelValues(string(mode), strconv.Itoa(resp.StatusCode)).Inc()
		return nil, fmt.Errorf("routes status %d", resp.StatusCode)
	}

	var out computeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.RouteFetches.WithLabelValues(string(mode), "bad_body").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Routes) == 0 {
		metrics.RouteFetches.WithLabelValues(string(mode), "no_route").Inc()
		return nil, fmt.Errorf("no route for mode %s", mode)
	}
	route := out.Routes[0]

	seconds, err := parseDurationSeconds(route.Duration)
	if err != nil {
		metrics.RouteFetches.WithLabelValues(string(mode), "bad_body").Inc()
		return nil, err
	}

	est := &domain.TravelEstimate{
		Mode:            mode,
		DurationMinutes: domain.DurationMinutes(seconds),
		DurationText:    domain.FormatDuration(seconds),
		DistanceKm:      domain.DistanceKm(route.DistanceMeters),
		DistanceText:    domain.FormatDistance(route.DistanceMeters),
	}

	if mode == domain.ModeTransit {
		var segments []string
		for _, leg := range route.Legs {
			for _, step := range leg.Steps {
				if step.TransitDetails == nil {
					continue
				}
				line := step.TransitDetails.TransitLine
				segments = append(segments, transitSegment(line.Vehicle.Type, line.NameShort))
			}
		}
		est.Detail = strings.Join(segments, " → ")
	}

	metrics.RouteFetches.WithLabelValues(string(mode), "ok").Inc()
	return est, nil
}

// parseDurationSeconds parses the upstream duration format "1234s".
func parseDurationSeconds(s string) (int, error) {
	trimmed := strings.TrimSuffix(s, "s")
	if trimmed == s || trimmed == "" {
		return 0, fmt.Errorf("malformed duration %q", s)
	}
	secs, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed duration %q", s)
	}
	return int(secs), nil
}

// transitSegment maps an upstream vehicle type to a short label plus the
// line's short name, e.g. ("SUBWAY", "C") → "Metro C".
func transitSegment(vehicleType, nameShort string) string {
	var label string
	switch vehicleType {
	case "SUBWAY", "METRO_RAIL":
		label = "Metro"
	case "TRAM", "LIGHT_RAIL":
		label = "Tram"
	case "BUS", "TROLLEYBUS", "INTERCITY_BUS":
		label = "Bus"
	case "HEAVY_RAIL", "RAIL", "COMMUTER_TRAIN", "HIGH_SPEED_TRAIN":
		label = "Train"
	case "FERRY":
		label = "Ferry"
	case "FUNICULAR", "CABLE_CAR", "GONDOLA_LIFT":
		label = "Funicular"
	default:
		label = "Line"
	}
	if nameShort == "" {
		return label
	}
	return label + " " + nameShort
}
