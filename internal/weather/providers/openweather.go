package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherfo/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"

// OpenWeatherClient talks to the OpenWeatherMap geocoding, weather, forecast and
// air pollution endpoints. It implements weather.Upstream and weather.Geocoder.
type OpenWeatherClient struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker

	// Air quality is optional; its failures must not open the weather circuit.
	airCircuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient creates a client. An empty baseURL selects the public API.
// Calls are never retried.
func NewOpenWeatherClient(client *http.Client, apiKey, baseURL string) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeatherClient{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newCircuitBreaker("openweather"),

		airCircuit: newCircuitBreaker("openweather-air"),
	}
}

func (p *OpenWeatherClient) Name() string {
	return p.name
}

// Configured reports whether an API key is set.
func (p *OpenWeatherClient) Configured() bool {
	return p.apiKey != ""
}

type geocodeResult struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
}

// Geocode calls /geo/1.0/direct with limit=1.
func (p *OpenWeatherClient) Geocode(ctx context.Context, query string) ([]weather.Place, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", "1")

	payload, err := p.get(ctx, weather.EndpointGeocode, "/geo/1.0/direct", values)
	if err != nil {
		return nil, err
	}

	var results []geocodeResult
	if err := json.Unmarshal(payload.Body, &results); err != nil {
		return nil, fmt.Errorf("openweather: decode geocoding response: %w", err)
	}

	places := make([]weather.Place, 0, len(results))
	for _, r := range results {
		places = append(places, weather.Place{
			Coordinates: weather.Coordinates{Lat: r.Lat, Lon: r.Lon},
			Name:        r.Name,
			Country:     r.Country,
		})
	}
	return places, nil
}

// Current calls /data/2.5/weather.
func (p *OpenWeatherClient) Current(ctx context.Context, c weather.Coordinates) (weather.Payload, error) {
	return p.get(ctx, weather.EndpointCurrent, "/data/2.5/weather", coordinateValues(c))
}

// Forecast calls /data/2.5/forecast (5 days at 3-hour resolution).
func (p *OpenWeatherClient) Forecast(ctx context.Context, c weather.Coordinates) (weather.Payload, error) {
	return p.get(ctx, weather.EndpointForecast, "/data/2.5/forecast", coordinateValues(c))
}

// AirPollution calls /data/2.5/air_pollution.
func (p *OpenWeatherClient) AirPollution(ctx context.Context, c weather.Coordinates) (weather.Payload, error) {
	return p.get(ctx, weather.EndpointAirQuality, "/data/2.5/air_pollution", coordinateValues(c))
}

func (p *OpenWeatherClient) get(ctx context.Context, endpoint, path string, values url.Values) (weather.Payload, error) {
	if p.apiKey == "" {
		return weather.Payload{}, fmt.Errorf("openweather: %w", weather.ErrMissingCredential)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, q.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	cb := p.circuit
	if endpoint == weather.EndpointAirQuality {
		cb = p.airCircuit
	}
	return doRequest(ctx, endpoint, p.httpCfg, cb, buildRequest)
}

func coordinateValues(c weather.Coordinates) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	values.Set("units", "metric")
	return values
}
