package weather

import "context"

// Geocoder turns a free-text place name into candidate places, best match first.
// An empty slice with a nil error means nothing matched.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Place, error)
}

// Upstream abstracts the weather provider endpoints for one coordinate pair.
// Non-2xx answers come back as *UpstreamError carrying status and body.
type Upstream interface {
	Name() string
	Configured() bool
	Current(ctx context.Context, c Coordinates) (Payload, error)
	Forecast(ctx context.Context, c Coordinates) (Payload, error)
	AirPollution(ctx context.Context, c Coordinates) (Payload, error)
}

// LookupRecorder stores resolved place-name lookups. Failures are never fatal.
type LookupRecorder interface {
	RecordLookup(ctx context.Context, l Lookup) error
}
