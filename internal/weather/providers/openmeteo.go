package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherfo/internal/weather"
)

// DefaultOpenMeteoURL is the Open-Meteo forecast endpoint. It needs no API key.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoClient fetches raw Open-Meteo forecasts for the passthrough endpoint.
type OpenMeteoClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoClient(client *http.Client, baseURL string) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteoClient{
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 250 * time.Millisecond,
				MaxInterval:     time.Second,
			},
		},
		circuit: newCircuitBreaker("openmeteo"),
	}
}

// Forecast returns current weather plus hourly temperature and humidity.
func (p *OpenMeteoClient) Forecast(ctx context.Context, c weather.Coordinates) (weather.Payload, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(c.Lat, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(c.Lon, 'f', -1, 64))
		values.Set("current_weather", "true")
		values.Set("hourly", "temperature_2m,relativehumidity_2m")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	return doRequest(ctx, weather.EndpointOpenMeteo, p.httpCfg, p.circuit, buildRequest)
}
