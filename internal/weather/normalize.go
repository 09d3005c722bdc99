package weather

import (
	"errors"
	"fmt"
)

var errMalformedPayload = errors.New("malformed JSON payload")

// NormalizeCurrent extracts CurrentConditions from a raw current-weather payload.
// Each field is read on its own, so a missing or mistyped block only blanks that
// field. A body that is not a JSON object fails as an UpstreamError.
func NormalizeCurrent(p Payload) (CurrentConditions, error) {
	root, ok := parseObject(p.Body)
	if !ok {
		return CurrentConditions{}, &UpstreamError{
			Endpoint:   EndpointCurrent,
			StatusCode: p.StatusCode,
			Body:       p.Body,
			Err:        errMalformedPayload,
		}
	}

	main := root.child("main")
	wind := root.child("wind")
	sys := root.child("sys")
	cond := root.firstObject("weather")

	cur := CurrentConditions{
		Temperature:   main.measure("temp"),
		FeelsLike:     main.measure("feels_like"),
		Humidity:      main.measure("humidity"),
		Pressure:      main.measure("pressure"),
		WindSpeed:     wind.measure("speed"),
		Visibility:    root.measure("visibility"),
		ConditionMain: cond.str("main"),
		ConditionIcon: cond.str("icon"),
		Description:   cond.str("description"),
		City:          root.str("name"),
	}

	// Zero is never a real sunrise; treat it as absent.
	if v, ok := sys.integer("sunrise"); ok && v > 0 {
		cur.Sunrise = &v
	}
	if v, ok := sys.integer("sunset"); ok && v > 0 {
		cur.Sunset = &v
	}

	cur.Condition = ClassifyCondition(cur.ConditionMain)
	cur.Theme = ThemeFor(cur.ConditionMain)
	return cur, nil
}

// ParseAirQuality returns the 1..5 index from an air_pollution payload.
func ParseAirQuality(p Payload) (int, error) {
	root, ok := parseObject(p.Body)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrAirQualityUnavailable, errMalformedPayload)
	}
	aqi, ok := root.firstObject("list").child("main").integer("aqi")
	if !ok {
		return 0, fmt.Errorf("%w: aqi missing", ErrAirQualityUnavailable)
	}
	if aqi < 1 || aqi > 5 {
		return 0, fmt.Errorf("%w: aqi %d out of range", ErrAirQualityUnavailable, aqi)
	}
	return int(aqi), nil
}

// ParseForecast decodes the list of 3-hour samples from a forecast payload.
// Missing timestamps or temperatures are errors, not zeros: a zero-filled sample
// would read as legitimate freezing weather.
func ParseForecast(p Payload) ([]ForecastSample, error) {
	root, ok := parseObject(p.Body)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrInvalidForecastData, errMalformedPayload)
	}
	items, ok := root.array("list")
	if !ok {
		return nil, fmt.Errorf("%w: list is missing", ErrInvalidForecastData)
	}

	samples := make([]ForecastSample, 0, len(items))
	for i, raw := range items {
		entry, ok := parseObject(raw)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is not an object", ErrInvalidForecastData, i)
		}
		dt, ok := entry.integer("dt")
		if !ok {
			return nil, fmt.Errorf("%w: entry %d has no dt", ErrInvalidForecastData, i)
		}
		temp, ok := entry.child("main").number("temp")
		if !ok {
			return nil, fmt.Errorf("%w: entry %d has no main.temp", ErrInvalidForecastData, i)
		}
		cond := entry.firstObject("weather")
		samples = append(samples, ForecastSample{
			Timestamp:    dt,
			TemperatureC: temp,
			Icon:         cond.str("icon"),
			Description:  cond.str("description"),
		})
	}
	return samples, nil
}
