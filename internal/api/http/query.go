package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weatherfo/internal/repository"
	"github.com/i474232898/weatherfo/internal/weather"
)

// viewQuery holds the query parameters of the view endpoints. Strings are copied
// out of the request buffer since they outlive the handler.
type viewQuery struct {
	Query string
	Lat   string `validate:"required_with=Lon,omitempty,latitude"`
	Lon   string `validate:"required_with=Lat,omitempty,longitude"`
	Days  int    `validate:"omitempty,min=1,max=7"`
	Lang  string
	Month *bool
	Air   *bool
}

func parseViewQuery(c *fiber.Ctx) (viewQuery, error) {
	q := viewQuery{
		Query: strings.TrimSpace(utils.CopyString(c.Query("q"))),
		Lat:   strings.TrimSpace(utils.CopyString(c.Query("lat"))),
		Lon:   strings.TrimSpace(utils.CopyString(c.Query("lon"))),
		Lang:  utils.CopyString(c.Query("lang")),
	}
	if q.Lang == "" {
		q.Lang = utils.CopyString(c.Get(fiber.HeaderAcceptLanguage))
	}

	if s := c.Query("days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return q, errors.New("days must be an integer")
		}
		if days < 1 || days > weather.MaxForecastDays {
			return q, fmt.Errorf("days must be between 1 and %d", weather.MaxForecastDays)
		}
		q.Days = days
	}

	var err error
	if q.Month, err = optionalBool(c, "month"); err != nil {
		return q, err
	}
	if q.Air, err = optionalBool(c, "air"); err != nil {
		return q, err
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// empty reports whether the request names no location at all.
func (q viewQuery) empty() bool {
	return q.Query == "" && q.Lat == "" && q.Lon == ""
}

// coordinates is only meaningful after validation.
func (q viewQuery) coordinates() weather.Coordinates {
	lat, _ := strconv.ParseFloat(q.Lat, 64)
	lon, _ := strconv.ParseFloat(q.Lon, 64)
	return weather.Coordinates{Lat: lat, Lon: lon}
}

func (q viewQuery) options(defaults weather.Options) weather.Options {
	opts := defaults
	if q.Days > 0 {
		opts.Days = q.Days
	}
	if q.Lang != "" {
		opts.Locale = q.Lang
	}
	if q.Month != nil {
		opts.IncludeMonth = *q.Month
	}
	if q.Air != nil {
		opts.AirQuality = *q.Air
	}
	return opts
}

func optionalBool(c *fiber.Ctx, key string) (*bool, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean", key)
	}
	return &v, nil
}

// lookupsQuery holds query parameters for the lookup history endpoint.
type lookupsQuery struct {
	Limit int `validate:"min=1,max=100"`
}

func (l *lookupsQuery) bind(c *fiber.Ctx) error {
	l.Limit = repository.DefaultRecentLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		l.Limit = n
	}
	return validate.Struct(l)
}

// parseCoordinates parses a raw lat/lon pair from the proxy endpoints.
func parseCoordinates(lat, lon string) (weather.Coordinates, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: lat %q", weather.ErrInvalidCoordinates, lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: lon %q", weather.ErrInvalidCoordinates, lon)
	}
	c := weather.Coordinates{Lat: la, Lon: lo}
	if !c.Valid() {
		return weather.Coordinates{}, fmt.Errorf("%w: %s", weather.ErrInvalidCoordinates, c.Key())
	}
	return c, nil
}
