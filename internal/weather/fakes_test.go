package weather

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeGeocoder struct {
	places []Place
	err    error
	calls  atomic.Int32
}

func (g *fakeGeocoder) Geocode(_ context.Context, _ string) ([]Place, error) {
	g.calls.Add(1)
	return g.places, g.err
}

type fakeUpstream struct {
	noKey bool

	current, forecast, air          Payload
	currentErr, forecastErr, airErr error
	airPanic                        bool

	currentCalls, forecastCalls, airCalls atomic.Int32
}

func (u *fakeUpstream) Name() string     { return "fake" }
func (u *fakeUpstream) Configured() bool { return !u.noKey }

func (u *fakeUpstream) Current(_ context.Context, _ Coordinates) (Payload, error) {
	u.currentCalls.Add(1)
	return u.current, u.currentErr
}

func (u *fakeUpstream) Forecast(_ context.Context, _ Coordinates) (Payload, error) {
	u.forecastCalls.Add(1)
	return u.forecast, u.forecastErr
}

func (u *fakeUpstream) AirPollution(_ context.Context, _ Coordinates) (Payload, error) {
	u.airCalls.Add(1)
	if u.airPanic {
		panic("boom")
	}
	return u.air, u.airErr
}

func (u *fakeUpstream) calls() int32 {
	return u.currentCalls.Load() + u.forecastCalls.Load() + u.airCalls.Load()
}

type fakeRecorder struct {
	mu      sync.Mutex
	lookups []Lookup
	err     error
}

func (r *fakeRecorder) RecordLookup(_ context.Context, l Lookup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, l)
	return r.err
}

func (r *fakeRecorder) all() []Lookup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Lookup(nil), r.lookups...)
}

const threeSampleForecast = `{"list":[
	{"dt":1704067200,"main":{"temp":20},"weather":[{"icon":"01d","description":"clear sky"}]},
	{"dt":1704078000,"main":{"temp":25},"weather":[{"icon":"02d","description":"few clouds"}]},
	{"dt":1704088800,"main":{"temp":18},"weather":[{"icon":"03d","description":"scattered clouds"}]}
]}`

func okUpstream() *fakeUpstream {
	return &fakeUpstream{
		current:  Payload{StatusCode: 200, Body: []byte(fullCurrent)},
		forecast: Payload{StatusCode: 200, Body: []byte(threeSampleForecast)},
		air:      Payload{StatusCode: 200, Body: []byte(`{"list":[{"main":{"aqi":2}}]}`)},
	}
}
