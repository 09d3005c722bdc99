package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherfo/internal/weather"
)

// maxBodyBytes bounds how much of an upstream body is read.
const maxBodyBytes = 4 << 20

// BackoffConfig controls exponential backoff behaviour. MaxRetries 0 disables retries.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// response is what the breaker sees. 4xx answers are successful calls from the
// breaker's point of view; only transport errors, 429 and 5xx count as failures.
type response struct {
	status int
	body   []byte
}

// doRequest executes the request behind the circuit breaker, retrying with
// exponential backoff when cfg allows it. Every failure comes back as
// *weather.UpstreamError tagged with endpoint.
func doRequest(
	ctx context.Context,
	endpoint string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (weather.Payload, error) {
	fail := func(status int, body []byte, err error) (weather.Payload, error) {
		return weather.Payload{}, &weather.UpstreamError{Endpoint: endpoint, StatusCode: status, Body: body, Err: err}
	}

	if cfg.Client == nil {
		return fail(0, nil, errNoHTTPClient)
	}
	if cfg.Backoff.MaxRetries < 0 || (cfg.Backoff.MaxRetries > 0 && cfg.Backoff.InitialInterval <= 0) {
		return fail(0, nil, errInvalidConfig)
	}

	var attempt int
	for {
		if ctx.Err() != nil {
			return fail(0, nil, ctx.Err())
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return fail(0, nil, err)
		}

		var last response
		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			defer resp.Body.Close()

			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if readErr != nil {
				return nil, readErr
			}
			last = response{status: resp.StatusCode, body: body}

			// Handle rate limiting and server errors explicitly.
			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				return nil, errServerError
			}
			return last, nil
		})

		if err == nil {
			r, ok := result.(response)
			if !ok {
				return fail(0, nil, fmt.Errorf("unexpected result type from circuit breaker"))
			}
			if r.status < 200 || r.status >= 300 {
				return fail(r.status, r.body, nil)
			}
			return weather.Payload{StatusCode: r.status, Body: r.body}, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fail(0, nil, fmt.Errorf("%w: %v", errCircuitOpen, err))
		}

		if attempt >= cfg.Backoff.MaxRetries {
			return fail(last.status, last.body, err)
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fail(0, nil, ctx.Err())
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}
