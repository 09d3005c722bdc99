package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherfo/internal/weather"
)

func TestLegacyWeatherByCoordinates(t *testing.T) {
	env := newTestEnv(t)

	status, body := do(t, env.app, http.MethodGet, "/api/weather?lat=-6.2&lon=106.8")
	require.Equal(t, http.StatusOK, status, string(body))

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &out))
	assert.JSONEq(t, currentBody, string(out["current"]))
	assert.JSONEq(t, forecastBody, string(out["forecast"]))
	_, hasCity := out["city"]
	assert.False(t, hasCity)
	assert.Zero(t, env.geocoder.calls.Load())
}

func TestLegacyWeatherByQuery(t *testing.T) {
	env := newTestEnv(t)

	status, body := do(t, env.app, http.MethodGet, "/api/weather?q=Jakarta")
	require.Equal(t, http.StatusOK, status, string(body))

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &out))
	assert.JSONEq(t, `"Jakarta"`, string(out["city"]))
	assert.Contains(t, out, "current")
	assert.Contains(t, out, "forecast")
}

func TestLegacyWeatherErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream.noKey = true

		status, body := do(t, env.app, http.MethodGet, "/api/weather?lat=1&lon=2")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.JSONEq(t, `{"error":"Missing OpenWeather key"}`, string(body))
		assert.Zero(t, env.upstream.calls.Load())
	})

	t.Run("missing parameters", func(t *testing.T) {
		env := newTestEnv(t)

		status, body := do(t, env.app, http.MethodGet, "/api/weather?lat=1")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.JSONEq(t, `{"error":"Missing parameters"}`, string(body))
	})

	t.Run("city not found", func(t *testing.T) {
		env := newTestEnv(t)
		env.geocoder.places = nil

		status, body := do(t, env.app, http.MethodGet, "/api/weather?q=Atlantis")
		assert.Equal(t, http.StatusNotFound, status)
		assert.JSONEq(t, `{"error":"City not found"}`, string(body))
		assert.Zero(t, env.upstream.calls.Load())
	})

	t.Run("upstream status forwarded", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream.currentErr = &weather.UpstreamError{
			Endpoint:   weather.EndpointCurrent,
			StatusCode: http.StatusUnauthorized,
			Body:       []byte(`{"cod":401,"message":"Invalid API key"}`),
		}

		status, body := do(t, env.app, http.MethodGet, "/api/weather?lat=1&lon=2")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.JSONEq(t, `{"cod":401,"message":"Invalid API key"}`, string(body))
	})

	t.Run("transport failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.upstream.currentErr = errors.New("dial tcp: i/o timeout")

		status, body := do(t, env.app, http.MethodGet, "/api/weather?lat=1&lon=2")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.JSONEq(t, `{"error":"Internal server error"}`, string(body))
	})
}

func TestLegacyWeatherWrapsRawText(t *testing.T) {
	env := newTestEnv(t)
	env.upstream.current = weather.Payload{StatusCode: 200, Body: []byte("Service Unavailable")}

	status, body := do(t, env.app, http.MethodGet, "/api/weather?lat=1&lon=2")
	require.Equal(t, http.StatusOK, status)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &out))
	assert.JSONEq(t, `{"raw":"Service Unavailable"}`, string(out["current"]))
}

func TestPassthroughs(t *testing.T) {
	env := newTestEnv(t)

	status, body := do(t, env.app, http.MethodGet, "/api/weather/open-meteo?lat=-6.2")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"lat & lon required"}`, string(body))

	status, body = do(t, env.app, http.MethodGet, "/api/weather/open-meteo?lat=-6.2&lon=106.8")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"current_weather":{"temperature":27.5}}`, string(body))

	status, body = do(t, env.app, http.MethodGet, "/api/weather/openweather?lat=-6.2&lon=106.8")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, currentBody, string(body))

	env.upstream.noKey = true
	status, body = do(t, env.app, http.MethodGet, "/api/weather/openweather?lat=-6.2&lon=106.8")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"Missing OPENWEATHER_API_KEY in .env"}`, string(body))
}

func TestOpenMeteoPassthroughFailure(t *testing.T) {
	env := newTestEnv(t)
	// Re-register with a failing source on a fresh app.
	env.app = newAppWithOpenMeteo(env, fakeOpenMeteo{err: errors.New("timeout")})

	status, body := do(t, env.app, http.MethodGet, "/api/weather/open-meteo?lat=1&lon=2")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"Server error"}`, string(body))
}
