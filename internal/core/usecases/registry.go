package usecases

import (
	"github.com/gamepoint/travel-api/internal/core/domain"
)

// VenueRegistry is the static venue lookup. It is built once at startup
// and never mutated, so reads need no locking.
type VenueRegistry struct {
	byID  map[string]domain.Venue
	order []string
}

// NewVenueRegistry builds a registry from a venue list, preserving order.
func NewVenueRegistry(venues []domain.Venue) *VenueRegistry {
	r := &VenueRegistry{byID: make(map[string]domain.Venue, len(venues))}
	for _, v := range venues {
		if _, dup := r.byID[v.ID]; dup {
			continue
		}
		r.byID[v.ID] = v
		r.order = append(r.order, v.ID)
	}
	return r
}

// Lookup returns the venue for an id. A miss is a permanent configuration
// error on the caller's side and is never retried.
func (r *VenueRegistry) Lookup(id string) (*domain.Venue, bool) {
	v, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return &v, true
}

// List returns all venues in registration order.
func (r *VenueRegistry) List() []domain.Venue {
	out := make([]domain.Venue, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
