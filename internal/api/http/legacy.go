package httpapi

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weatherfo/internal/weather"
)

// legacyWeather serves /api/weather?lat&lon or ?q with the raw upstream payloads.
func (h *handlers) legacyWeather(c *fiber.Ctx) error {
	if !h.Weather.Configured() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Missing OpenWeather key"})
	}

	ctx := c.UserContext()
	lat, lon := c.Query("lat"), c.Query("lon")
	q := strings.TrimSpace(utils.CopyString(c.Query("q")))

	switch {
	case lat != "" && lon != "":
		coords, err := parseCoordinates(lat, lon)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid coordinates"})
		}
		bundle, err := h.Weather.FetchRaw(ctx, coords)
		if err != nil {
			return legacyFailure(c, err)
		}
		return c.JSON(fiber.Map{
			"current":  bundle.Current.JSON(),
			"forecast": bundle.Forecast.JSON(),
		})

	case q != "":
		place, _, err := h.Weather.Resolve(ctx, q)
		if errors.Is(err, weather.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "City not found"})
		}
		if err != nil {
			return legacyFailure(c, err)
		}
		bundle, err := h.Weather.FetchRaw(ctx, place.Coordinates)
		if err != nil {
			return legacyFailure(c, err)
		}
		return c.JSON(fiber.Map{
			"current":  bundle.Current.JSON(),
			"forecast": bundle.Forecast.JSON(),
			"city":     place.Name,
		})
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing parameters"})
}

// legacyFailure forwards an upstream answer as is; anything else becomes a 500.
func legacyFailure(c *fiber.Ctx, err error) error {
	var upErr *weather.UpstreamError
	if errors.As(err, &upErr) && upErr.StatusCode != 0 {
		log.Printf("WARN: Weather API Error: %v", err)
		p := weather.Payload{StatusCode: upErr.StatusCode, Body: upErr.Body}
		c.Status(upErr.StatusCode)
		if p.IsJSON() {
			c.Type("json")
		}
		return c.Send(upErr.Body)
	}

	log.Printf("ERROR: Weather API Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

func (h *handlers) openMeteoPassthrough(c *fiber.Ctx) error {
	lat, lon := c.Query("lat"), c.Query("lon")
	if lat == "" || lon == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat & lon required"})
	}
	coords, err := parseCoordinates(lat, lon)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat & lon required"})
	}

	p, err := h.OpenMeteo.Forecast(c.UserContext(), coords)
	if err != nil {
		log.Printf("ERROR: open-meteo: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
	}
	return c.Type("json").Send(p.JSON())
}

func (h *handlers) openWeatherPassthrough(c *fiber.Ctx) error {
	lat, lon := c.Query("lat"), c.Query("lon")
	if lat == "" || lon == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat & lon required"})
	}
	if !h.Weather.Configured() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Missing OPENWEATHER_API_KEY in .env"})
	}
	coords, err := parseCoordinates(lat, lon)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat & lon required"})
	}

	p, err := h.Weather.CurrentRaw(c.UserContext(), coords)
	if err != nil {
		log.Printf("ERROR: openweather: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
	}
	return c.Type("json").Send(p.JSON())
}
