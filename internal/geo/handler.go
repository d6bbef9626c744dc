package geo

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GET /api/geo/geocode?address=...
func GeocodeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		address := strings.TrimSpace(c.Query("address"))
		if address == "" {
			return fiber.NewError(fiber.StatusBadRequest, "address query parameter is required")
		}

		result, err := GeocodeAddress(address)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Address could not be geocoded")
		}
		return c.JSON(result)
	}
}

// GET /api/geo/reverse?lat=&lng=
func ReverseGeocodeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng query parameters are required")
		}

		address, err := ReverseGeocode(lat, lng)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Coordinates could not be reverse geocoded")
		}
		return c.JSON(fiber.Map{"address": address, "lat": lat, "lng": lng})
	}
}
