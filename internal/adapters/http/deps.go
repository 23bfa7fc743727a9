package http

import (
	"github.com/nats-io/nats.go"

	"github.com/gamepoint/travel-api/internal/adapters/postgres"
	"github.com/gamepoint/travel-api/internal/core/ports"
	"github.com/gamepoint/travel-api/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Registry  *usecases.VenueRegistry
	Estimates *usecases.EstimateService
	Fallback  *usecases.FallbackService
	Cache     ports.ResultCache
	NATS      *nats.Conn
	DB        *postgres.DB
}
