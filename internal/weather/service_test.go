package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = Place{Coordinates: Coordinates{Lat: -6.2, Lon: 106.8}, Name: "Jakarta", Country: "ID"}

func newTestService(g Geocoder, u Upstream, r LookupRecorder) *Service {
	s := NewService(g, u, r, Options{AirQuality: true})
	s.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestByQueryBuildsViewModel(t *testing.T) {
	u := okUpstream()
	rec := &fakeRecorder{}
	svc := newTestService(&fakeGeocoder{places: []Place{jakarta}}, u, rec)

	vm, ok, err := svc.ByQuery(context.Background(), "Jakarta", svc.Defaults())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, jakarta, vm.Location)
	assert.Equal(t, 29.6, vm.Current.Temperature.Value)
	require.NotNil(t, vm.Current.AirQualityIndex)
	assert.Equal(t, 2, *vm.Current.AirQualityIndex)
	require.Len(t, vm.Daily, 1)
	assert.Equal(t, 22.0, vm.Daily[0].TemperatureAvg)
	assert.Len(t, vm.Hourly, 3)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), vm.FetchedAt)

	svc.WaitBackground()
	lookups := rec.all()
	require.Len(t, lookups, 1)
	assert.Equal(t, "Jakarta", lookups[0].Query)
	assert.Equal(t, jakarta, lookups[0].Place)
}

func TestByQueryNotFoundSkipsFetch(t *testing.T) {
	u := okUpstream()
	rec := &fakeRecorder{}
	svc := newTestService(&fakeGeocoder{}, u, rec)

	_, _, err := svc.ByQuery(context.Background(), "Nonexistent City Name", svc.Defaults())
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	assert.Zero(t, u.calls())

	svc.WaitBackground()
	assert.Empty(t, rec.all())
}

func TestByQueryBlankIsNoop(t *testing.T) {
	g := &fakeGeocoder{}
	u := okUpstream()
	svc := newTestService(g, u, nil)

	vm, ok, err := svc.ByQuery(context.Background(), "  ", svc.Defaults())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, ViewModel{}, vm)
	assert.Zero(t, g.calls.Load())
	assert.Zero(t, u.calls())
}

func TestMissingCredentialBeforeNetwork(t *testing.T) {
	g := &fakeGeocoder{places: []Place{jakarta}}
	u := okUpstream()
	u.noKey = true
	svc := newTestService(g, u, nil)

	_, _, err := svc.ByQuery(context.Background(), "Jakarta", svc.Defaults())
	assert.True(t, errors.Is(err, ErrMissingCredential))

	_, err = svc.ByCoordinates(context.Background(), jakarta, svc.Defaults())
	assert.True(t, errors.Is(err, ErrMissingCredential))

	_, err = svc.FetchRaw(context.Background(), jakarta.Coordinates)
	assert.True(t, errors.Is(err, ErrMissingCredential))

	assert.Zero(t, g.calls.Load())
	assert.Zero(t, u.calls())
}

func TestCurrentUnauthorizedIsFatal(t *testing.T) {
	u := okUpstream()
	u.currentErr = &UpstreamError{
		Endpoint:   EndpointCurrent,
		StatusCode: 401,
		Body:       []byte(`{"cod":401,"message":"Invalid API key"}`),
	}
	svc := newTestService(nil, u, nil)

	vm, err := svc.ByCoordinates(context.Background(), jakarta, svc.Defaults())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamFetchFailed))

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, 401, upErr.StatusCode)
	assert.Equal(t, EndpointCurrent, upErr.Endpoint)
	assert.Contains(t, string(upErr.Body), "Invalid API key")

	assert.Equal(t, ViewModel{}, vm)
	assert.Equal(t, int32(1), u.forecastCalls.Load())
}

func TestForecastTransportFailureIsTagged(t *testing.T) {
	u := okUpstream()
	u.forecastErr = errors.New("connection reset by peer")
	svc := newTestService(nil, u, nil)

	_, err := svc.ByCoordinates(context.Background(), jakarta, svc.Defaults())

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, EndpointForecast, upErr.Endpoint)
	assert.Zero(t, upErr.StatusCode)
}

func TestAirQualityFailureDowngrades(t *testing.T) {
	tests := map[string]func(u *fakeUpstream){
		"network error": func(u *fakeUpstream) { u.airErr = errors.New("i/o timeout") },
		"out of range":  func(u *fakeUpstream) { u.air = Payload{Body: []byte(`{"list":[{"main":{"aqi":9}}]}`)} },
		"panic":         func(u *fakeUpstream) { u.airPanic = true },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			u := okUpstream()
			mutate(u)
			svc := newTestService(nil, u, nil)

			vm, err := svc.ByCoordinates(context.Background(), jakarta, svc.Defaults())
			require.NoError(t, err)
			assert.Nil(t, vm.Current.AirQualityIndex)
			assert.Len(t, vm.Daily, 1)
		})
	}
}

func TestAirQualityDisabledSkipsCall(t *testing.T) {
	u := okUpstream()
	svc := newTestService(nil, u, nil)

	opts := svc.Defaults()
	opts.AirQuality = false
	vm, err := svc.ByCoordinates(context.Background(), jakarta, opts)
	require.NoError(t, err)
	assert.Nil(t, vm.Current.AirQualityIndex)
	assert.Zero(t, u.airCalls.Load())
}

func TestMalformedForecastYieldsNoView(t *testing.T) {
	u := okUpstream()
	u.forecast = Payload{StatusCode: 200, Body: []byte(`{"list":[{"main":{"temp":3}}]}`)}
	svc := newTestService(nil, u, nil)

	vm, err := svc.ByCoordinates(context.Background(), jakarta, svc.Defaults())
	assert.True(t, errors.Is(err, ErrInvalidForecastData))
	assert.Equal(t, ViewModel{}, vm)
}

func TestByCoordinatesValidation(t *testing.T) {
	u := okUpstream()
	svc := newTestService(nil, u, nil)

	_, err := svc.ByCoordinates(context.Background(), Place{Coordinates: Coordinates{Lat: 100}}, svc.Defaults())
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))
	assert.Zero(t, u.calls())
}

func TestByCoordinatesNameFromCurrent(t *testing.T) {
	svc := newTestService(nil, okUpstream(), nil)

	vm, err := svc.ByCoordinates(context.Background(), Place{Coordinates: jakarta.Coordinates}, svc.Defaults())
	require.NoError(t, err)
	assert.Equal(t, "Jakarta", vm.Location.Name)
}

func TestLookupRecordFailureIsNotFatal(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("database is down")}
	svc := newTestService(&fakeGeocoder{places: []Place{jakarta}}, okUpstream(), rec)

	_, ok, err := svc.ByQuery(context.Background(), "Jakarta", svc.Defaults())
	require.NoError(t, err)
	assert.True(t, ok)

	svc.WaitBackground()
	assert.Len(t, rec.all(), 1)
}
