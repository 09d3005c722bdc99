// Package repository stores the history of resolved place-name lookups.
// The history is informational only and never served back as weather data.
package repository

import (
	"context"

	"github.com/i474232898/weatherfo/internal/weather"
)

// DefaultRecentLimit is the page size used when callers pass a non-positive limit.
const DefaultRecentLimit = 20

// Lookups is implemented by every lookup history backend.
type Lookups interface {
	weather.LookupRecorder
	Recent(ctx context.Context, limit int) ([]weather.Lookup, error)
}
