package httpapi

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weatherfo/internal/radar"
	"github.com/i474232898/weatherfo/internal/store"
	"github.com/i474232898/weatherfo/internal/weather"
)

var validate = validator.New()

// LookupLister reads back the lookup history.
type LookupLister interface {
	Recent(ctx context.Context, limit int) ([]weather.Lookup, error)
}

// ForecastSource is a raw forecast passthrough (Open-Meteo).
type ForecastSource interface {
	Forecast(ctx context.Context, c weather.Coordinates) (weather.Payload, error)
}

// Deps are the components the handlers use. Weather is required; routes for the
// other components are only registered when they are set.
type Deps struct {
	Weather   *weather.Service
	Sessions  *store.MemoryStore
	Radar     *radar.Catalog
	Lookups   LookupLister
	OpenMeteo ForecastSource
}

type handlers struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	h := &handlers{Deps: d}

	// Proxy endpoints kept compatible with the browser client.
	app.Get("/api/weather", h.legacyWeather)
	app.Get("/api/weather/openweather", h.openWeatherPassthrough)
	if d.OpenMeteo != nil {
		app.Get("/api/weather/open-meteo", h.openMeteoPassthrough)
	}

	v1 := app.Group("/api/v1")
	v1.Get("/view", h.view)

	if d.Sessions != nil {
		v1.Post("/sessions", h.createSession)
		v1.Get("/sessions/:id", h.getSession)
		v1.Get("/sessions/:id/view", h.sessionView)
	}
	if d.Radar != nil {
		v1.Get("/radar", h.radar)
	}
	if d.Lookups != nil {
		v1.Get("/lookups", h.lookups)
	}
}

func (h *handlers) view(c *fiber.Ctx) error {
	q, err := parseViewQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if q.empty() {
		return fiber.NewError(fiber.StatusBadRequest, "q or lat & lon required")
	}

	vm, err := h.runView(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vm)
}

func (h *handlers) createSession(c *fiber.Ctx) error {
	sess := h.Sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(sess)
}

func (h *handlers) getSession(c *fiber.Ctx) error {
	sess, err := h.Sessions.Latest(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sess)
}

// sessionView runs the pipeline on behalf of a session. Only the newest request a
// session started may replace its view; an older one finishing late gets 409.
func (h *handlers) sessionView(c *fiber.Ctx) error {
	id := c.Params("id")

	q, err := parseViewQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if q.empty() {
		// Blank search: keep whatever the session already shows.
		sess, err := h.Sessions.Latest(id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sess)
	}

	gen, err := h.Sessions.Begin(id)
	if err != nil {
		return respondError(c, err)
	}

	vm, err := h.runView(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.Sessions.Commit(id, gen, vm); err != nil {
		log.Printf("INFO: session %s: dropped result of generation %d: %v", id, gen, err)
		return respondError(c, err)
	}
	vm.Generation = gen
	return c.JSON(vm)
}

func (h *handlers) radar(c *fiber.Ctx) error {
	snap, err := h.Radar.Snapshot(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

func (h *handlers) lookups(c *fiber.Ctx) error {
	var req lookupsQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	items, err := h.Lookups.Recent(c.UserContext(), req.Limit)
	if err != nil {
		log.Printf("ERROR: failed to read lookup history: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read lookup history")
	}
	if items == nil {
		items = []weather.Lookup{}
	}
	return c.JSON(fiber.Map{"lookups": items})
}

func (h *handlers) runView(ctx context.Context, q viewQuery) (weather.ViewModel, error) {
	opts := q.options(h.Weather.Defaults())

	if q.Query != "" {
		vm, _, err := h.Weather.ByQuery(ctx, q.Query, opts)
		return vm, err
	}
	return h.Weather.ByCoordinates(ctx, weather.Place{Coordinates: q.coordinates()}, opts)
}

// respondError maps pipeline failures to HTTP responses. Upstream failures carry
// the failing endpoint and what it answered.
func respondError(c *fiber.Ctx, err error) error {
	var upErr *weather.UpstreamError

	switch {
	case errors.Is(err, weather.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrInvalidCoordinates):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrMissingCredential):
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	case errors.Is(err, weather.ErrStaleResult):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.As(err, &upErr):
		log.Printf("ERROR: %v", err)
		body := fiber.Map{
			"error":    true,
			"message":  err.Error(),
			"endpoint": upErr.Endpoint,
		}
		if upErr.StatusCode != 0 {
			body["upstreamStatus"] = upErr.StatusCode
		}
		if len(upErr.Body) > 0 {
			body["upstreamBody"] = weather.Payload{Body: upErr.Body}.JSON()
		}
		return c.Status(fiber.StatusBadGateway).JSON(body)
	case errors.Is(err, weather.ErrLocationResolutionFailed),
		errors.Is(err, weather.ErrInvalidForecastData),
		errors.Is(err, radar.ErrNoFrames):
		log.Printf("ERROR: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		log.Printf("ERROR: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
