package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when geocoding yields no match.
	ErrNotFound = errors.New("location not found")
	// ErrLocationResolutionFailed wraps transport or decoding failures while geocoding.
	ErrLocationResolutionFailed = errors.New("location resolution failed")
	// ErrUpstreamFetchFailed marks a failed call to a fatal upstream endpoint.
	ErrUpstreamFetchFailed = errors.New("upstream fetch failed")
	// ErrAirQualityUnavailable is logged, never returned from the pipeline.
	ErrAirQualityUnavailable = errors.New("air quality unavailable")
	// ErrInvalidForecastData is returned for malformed forecast input.
	ErrInvalidForecastData = errors.New("invalid forecast data")
	// ErrMissingCredential is returned before any network call when no API key is configured.
	ErrMissingCredential = errors.New("missing api credential")
	// ErrInvalidCoordinates is returned for a coordinate pair outside the valid ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrStaleResult is returned when a newer request superseded the one being committed.
	ErrStaleResult = errors.New("result superseded by a newer request")
)

// Upstream endpoint names used in errors and logs.
const (
	EndpointGeocode    = "geocode"
	EndpointCurrent    = "current"
	EndpointForecast   = "forecast"
	EndpointAirQuality = "air_pollution"
	EndpointOpenMeteo  = "open_meteo"
	EndpointRadar      = "radar"
)

// UpstreamError describes a failed upstream call. StatusCode and Body are set when
// the endpoint answered; Err is set for transport failures.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s endpoint: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s endpoint: status %d", e.Endpoint, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s endpoint: %v", e.Endpoint, e.Err)
	default:
		return e.Endpoint + " endpoint failed"
	}
}

// Unwrap exposes both ErrUpstreamFetchFailed and the underlying cause to errors.Is.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamFetchFailed}
	}
	return []error{ErrUpstreamFetchFailed, e.Err}
}
