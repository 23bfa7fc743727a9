package http

import (
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/gamepoint/travel-api/internal/core/domain"
)

// ListVenuesHandler returns all registered venues.
func ListVenuesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(deps.Registry.List())
	}
}

// GetVenueHandler returns a single venue by id.
func GetVenueHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		venue, ok := deps.Registry.Lookup(c.Params("id"))
		if !ok {
			return errNotFound(c, "unknown venue: "+c.Params("id"))
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(venue)
	}
}

// TravelEstimatesHandler returns multi-modal travel estimates from the
// caller's position to a venue. When the routing upstream produces
// nothing at all, it transparently substitutes the geometric fallback so
// the client always gets numbers; those carry approximate=true.
func TravelEstimatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, err := parseOrigin(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		venueID := c.Params("id")

		result, err := deps.Estimates.GetEstimates(c.UserContext(), origin, venueID)
		switch {
		case errors.Is(err, domain.ErrVenueNotFound):
			return errNotFound(c, "unknown venue: "+venueID)
		case errors.Is(err, domain.ErrNoEstimates):
			result, err = deps.Fallback.Estimate(origin, venueID)
			if err != nil {
				return errInternal(c, err.Error())
			}
		case err != nil:
			return errInternal(c, err.Error())
		}

		return c.JSON(result)
	}
}

// DeepLinksHandler returns only the deep-link bundle for a venue.
func DeepLinksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin, err := parseOrigin(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		links, err := deps.Estimates.DeepLinks(origin, c.Params("id"))
		if errors.Is(err, domain.ErrVenueNotFound) {
			return errNotFound(c, "unknown venue: "+c.Params("id"))
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(links)
	}
}

// parseOrigin reads and bounds-checks lat/lon query parameters.
func parseOrigin(c *fiber.Ctx) (domain.GeoPoint, error) {
	lat := c.QueryFloat("lat", math.NaN())
	lon := c.QueryFloat("lon", math.NaN())

	if math.IsNaN(lat) || math.IsNaN(lon) {
		return domain.GeoPoint{}, errors.New("lat and lon are required")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.GeoPoint{}, errors.New("lat/lon out of range")
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, nil
}
