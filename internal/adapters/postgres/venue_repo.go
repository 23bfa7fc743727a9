package postgres

import (
	"context"
	"fmt"

	"github.com/gamepoint/travel-api/internal/core/domain"
)

// VenueRepo implements ports.VenueRepository. Venues are read once at
// startup into the registry; there is no per-request database access.
type VenueRepo struct {
	db *DB
}

// NewVenueRepo creates a VenueRepo.
func NewVenueRepo(db *DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// ListAll returns every venue in display order.
func (r *VenueRepo) ListAll(ctx context.Context) ([]domain.Venue, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, address, lat, lon
		FROM venues
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query venues: %w", err)
	}
	defer rows.Close()

	var venues []domain.Venue
	for rows.Next() {
		var v domain.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Location.Lat, &v.Location.Lon); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venues: %w", err)
	}
	return venues, nil
}
