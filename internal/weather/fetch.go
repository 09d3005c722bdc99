package weather

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Bundle holds the joined results of one fan-out.
type Bundle struct {
	Current         Payload
	Forecast        Payload
	AirQualityIndex *int
}

// Fetcher issues the current, forecast and air-quality calls concurrently.
// It never retries and never caches.
type Fetcher struct {
	upstream Upstream
}

// NewFetcher creates a Fetcher.
func NewFetcher(u Upstream) *Fetcher {
	return &Fetcher{upstream: u}
}

// Fetch calls all endpoints for c in parallel and waits for every one of them.
// Current and forecast failures are fatal, current first. Air quality failures
// only leave AirQualityIndex nil.
func (f *Fetcher) Fetch(ctx context.Context, c Coordinates, withAirQuality bool) (Bundle, error) {
	var (
		wg                      sync.WaitGroup
		current, forecast       Payload
		currentErr, forecastErr error
		aqi                     *int
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = f.upstream.Current(ctx, c)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = f.upstream.Forecast(ctx, c)
	}()

	if withAirQuality {
		wg.Add(1)
		go func() {
			defer wg.Done()
			aqi = f.airQuality(ctx, c)
		}()
	}

	wg.Wait()

	if currentErr != nil {
		return Bundle{}, fatal(EndpointCurrent, currentErr)
	}
	if forecastErr != nil {
		return Bundle{}, fatal(EndpointForecast, forecastErr)
	}

	return Bundle{Current: current, Forecast: forecast, AirQualityIndex: aqi}, nil
}

func (f *Fetcher) airQuality(ctx context.Context, c Coordinates) (idx *int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARN: %v for %s: panic: %v", ErrAirQualityUnavailable, c.Key(), r)
			idx = nil
		}
	}()

	p, err := f.upstream.AirPollution(ctx, c)
	if err != nil {
		log.Printf("WARN: %v for %s: %v", ErrAirQualityUnavailable, c.Key(), err)
		return nil
	}
	v, err := ParseAirQuality(p)
	if err != nil {
		log.Printf("WARN: %v for %s", err, c.Key())
		return nil
	}
	return &v
}

// fatal makes sure a failure on a fatal endpoint matches ErrUpstreamFetchFailed.
func fatal(endpoint string, err error) error {
	if errors.Is(err, ErrUpstreamFetchFailed) || errors.Is(err, ErrMissingCredential) {
		return err
	}
	return &UpstreamError{Endpoint: endpoint, Err: err}
}
