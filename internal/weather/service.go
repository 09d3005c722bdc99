package weather

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// Options tune a single pipeline run.
type Options struct {
	Days         int
	Locale       string
	IncludeMonth bool
	AirQuality   bool
}

// Service runs the resolve → fetch → normalize/aggregate pipeline.
// It holds no per-request state; every run builds a fresh ViewModel.
type Service struct {
	resolver *Resolver
	fetcher  *Fetcher
	upstream Upstream
	lookups  LookupRecorder
	defaults Options
	now      func() time.Time

	wgBg sync.WaitGroup // lookup history writes
}

// NewService creates a new Service. lookups may be nil.
func NewService(geocoder Geocoder, upstream Upstream, lookups LookupRecorder, defaults Options) *Service {
	if defaults.Days <= 0 {
		defaults.Days = DefaultForecastDays
	}
	return &Service{
		resolver: NewResolver(geocoder),
		fetcher:  NewFetcher(upstream),
		upstream: upstream,
		lookups:  lookups,
		defaults: defaults,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Defaults returns the configured default options.
func (s *Service) Defaults() Options {
	return s.defaults
}

// Configured reports whether the upstream provider has a credential.
func (s *Service) Configured() bool {
	return s.upstream != nil && s.upstream.Configured()
}

// WaitBackground blocks until pending lookup history writes finish.
func (s *Service) WaitBackground() {
	s.wgBg.Wait()
}

// Resolve geocodes a place name and records the lookup. ok is false for a blank query.
func (s *Service) Resolve(ctx context.Context, query string) (Place, bool, error) {
	if !s.Configured() {
		return Place{}, false, ErrMissingCredential
	}
	place, ok, err := s.resolver.Resolve(ctx, query)
	if err != nil || !ok {
		return place, ok, err
	}
	s.record(query, place)
	return place, true, nil
}

// FetchRaw fetches the current and forecast payloads without interpreting them.
func (s *Service) FetchRaw(ctx context.Context, c Coordinates) (Bundle, error) {
	if !s.Configured() {
		return Bundle{}, ErrMissingCredential
	}
	if !c.Valid() {
		return Bundle{}, fmt.Errorf("%w: %s", ErrInvalidCoordinates, c.Key())
	}
	return s.fetcher.Fetch(ctx, c, false)
}

// CurrentRaw fetches only the current weather payload.
func (s *Service) CurrentRaw(ctx context.Context, c Coordinates) (Payload, error) {
	if !s.Configured() {
		return Payload{}, ErrMissingCredential
	}
	if !c.Valid() {
		return Payload{}, fmt.Errorf("%w: %s", ErrInvalidCoordinates, c.Key())
	}
	return s.upstream.Current(ctx, c)
}

// ByQuery resolves query and builds the view model for the first match.
// A blank query is a no-op and returns ok=false with no network call.
func (s *Service) ByQuery(ctx context.Context, query string, opts Options) (ViewModel, bool, error) {
	place, ok, err := s.Resolve(ctx, query)
	if err != nil || !ok {
		return ViewModel{}, ok, err
	}
	vm, err := s.ByCoordinates(ctx, place, opts)
	if err != nil {
		return ViewModel{}, true, err
	}
	return vm, true, nil
}

// ByCoordinates builds the view model for a place. Either a complete ViewModel
// or an error is returned, never a partial one.
func (s *Service) ByCoordinates(ctx context.Context, place Place, opts Options) (ViewModel, error) {
	if !s.Configured() {
		return ViewModel{}, ErrMissingCredential
	}
	if !place.Valid() {
		return ViewModel{}, fmt.Errorf("%w: %s", ErrInvalidCoordinates, place.Key())
	}
	if opts.Days <= 0 {
		opts.Days = s.defaults.Days
	}

	log.Printf("DEBUG: building view for %s (%d days, air=%t)", place.Key(), opts.Days, opts.AirQuality)

	bundle, err := s.fetcher.Fetch(ctx, place.Coordinates, opts.AirQuality)
	if err != nil {
		return ViewModel{}, err
	}

	current, err := NormalizeCurrent(bundle.Current)
	if err != nil {
		return ViewModel{}, err
	}
	current.AirQualityIndex = bundle.AirQualityIndex

	samples, err := ParseForecast(bundle.Forecast)
	if err != nil {
		return ViewModel{}, err
	}
	forecast, err := AggregateForecast(samples, AggregateOptions{
		Days:   opts.Days,
		Labels: NewLabelFormatter(opts.Locale, opts.IncludeMonth),
	})
	if err != nil {
		return ViewModel{}, err
	}

	if place.Name == "" {
		place.Name = current.City
	}

	return ViewModel{
		Location:  place,
		Current:   current,
		Daily:     forecast.Daily,
		Hourly:    forecast.Hourly,
		FetchedAt: s.now(),
	}, nil
}

func (s *Service) record(query string, place Place) {
	if s.lookups == nil {
		return
	}
	// The write outlives the request; keep no references into its buffers.
	place.Name = strings.Clone(place.Name)
	place.Country = strings.Clone(place.Country)
	l := Lookup{Query: strings.Clone(query), Place: place, ResolvedAt: s.now()}

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.lookups.RecordLookup(ctx, l); err != nil {
			log.Printf("WARN: failed to record lookup for %q: %v", query, err)
		}
	}()
}
