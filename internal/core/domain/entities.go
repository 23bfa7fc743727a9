package domain

import (
	"errors"
	"time"
)

// ErrVenueNotFound is returned when a venue id is not in the registry.
// This is a caller configuration error, not a transient condition.
var ErrVenueNotFound = errors.New("venue not found")

// ErrNoEstimates is returned when no travel mode produced an estimate.
// Callers are expected to substitute a fallback result.
var ErrNoEstimates = errors.New("no estimates available")

// Mode is a manner of travel.
type Mode string

const (
	ModeWalking Mode = "walking"
	ModeTransit Mode = "transit"
	ModeDriving Mode = "driving"
)

// Modes lists all travel modes in presentation order. Results always
// follow this order regardless of fetch completion order.
var Modes = [3]Mode{ModeWalking, ModeTransit, ModeDriving}

// Venue is a club location. Registry data: created at startup, never mutated.
type Venue struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Location GeoPoint `json:"location"`
}

// TravelEstimate is one mode's travel estimate to a venue.
type TravelEstimate struct {
	Mode            Mode    `json:"mode"`
	DurationMinutes int     `json:"duration_minutes"`
	DurationText    string  `json:"duration_text"`
	DistanceKm      float64 `json:"distance_km"`
	DistanceText    string  `json:"distance_text"`
	// Detail carries the transit line composition, e.g. "Metro C → Bus 177".
	// Empty for walking and driving, and for transit routes with no
	// transit-vehicle segments.
	Detail string `json:"detail,omitempty"`
}

// TravelResult aggregates the estimates for one origin/venue pair.
// Estimates holds between one and three entries in Modes order; a mode
// whose fetch failed is absent rather than zero-valued.
type TravelResult struct {
	VenueID     string           `json:"venue_id"`
	Origin      GeoPoint         `json:"origin"`
	Estimates   []TravelEstimate `json:"estimates"`
	Links       DeepLinks        `json:"links"`
	Approximate bool             `json:"approximate,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// DeepLinks bundles app URIs pre-populated with pickup and drop-off data.
type DeepLinks struct {
	Maps string `json:"maps_uri"`
	Uber string `json:"uber_uri"`
	Bolt string `json:"bolt_uri"`
}
