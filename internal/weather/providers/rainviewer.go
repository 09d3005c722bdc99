package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherfo/internal/radar"
	"github.com/i474232898/weatherfo/internal/weather"
)

// DefaultRainViewerURL is the public radar frame index.
const DefaultRainViewerURL = "https://api.rainviewer.com/public/weather-maps.json"

// RainViewerClient implements radar.Source.
type RainViewerClient struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewRainViewerClient(client *http.Client, url string) *RainViewerClient {
	if url == "" {
		url = DefaultRainViewerURL
	}
	return &RainViewerClient{
		url: url,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("rainviewer"),
	}
}

// Maps fetches and decodes weather-maps.json.
func (p *RainViewerClient) Maps(ctx context.Context) (radar.Maps, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	}

	payload, err := doRequest(ctx, weather.EndpointRadar, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return radar.Maps{}, err
	}

	var m radar.Maps
	if err := json.Unmarshal(payload.Body, &m); err != nil {
		return radar.Maps{}, fmt.Errorf("rainviewer: decode index: %w", err)
	}
	return m, nil
}
