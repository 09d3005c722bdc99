package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weatherfo/internal/common"
	"github.com/i474232898/weatherfo/internal/weather"
)

// GoogleGeocoder resolves place names through the Google Maps Geocoding API.
type GoogleGeocoder struct {
	apiKey string

	// geocoder.ApiKey is package state; calls are serialized.
	mu     sync.Mutex
	lookup func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey: apiKey,
		lookup: geocoder.Geocoding,
	}
}

// Geocode returns at most one place. Zero results yield an empty slice.
func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) ([]weather.Place, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("google geocoder: %w", weather.ErrMissingCredential)
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	ch := make(chan result, 1)

	// The library has no context support; the call is abandoned on cancellation.
	go func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		geocoder.ApiKey = g.apiKey
		loc, err := g.lookup(geocoder.Address{City: query})
		ch <- result{loc: loc, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}

	if r.err != nil {
		if common.HasAnyFold(r.err.Error(), "no results", "zero_results", "not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("google geocoder: %w", r.err)
	}

	return []weather.Place{{
		Coordinates: weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude},
		Name:        strings.Clone(strings.TrimSpace(query)),
	}}, nil
}
