package requests

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (compatible; investgame/1.0)"

// ExternalAPIService performs outbound HTTP calls bounded by a per-call timeout
// and an optional shared rate limiter.
type ExternalAPIService struct {
	client  *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewExternalAPIService creates a new instance of ExternalAPIService.
// A nil limiter disables rate limiting.
func NewExternalAPIService(timeout time.Duration, limiter *rate.Limiter) *ExternalAPIService {
	return &ExternalAPIService{
		client:  &http.Client{},
		limiter: limiter,
		timeout: timeout,
	}
}

// Get makes a GET request, accepting optional query parameters. The returned
// cancel func must be called once the body has been consumed.
func (s *ExternalAPIService) Get(ctx context.Context, endpoint string, params url.Values) (*http.Response, context.CancelFunc, error) {
	if params != nil {
		endpoint = endpoint + "?" + params.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			cancel()
			return nil, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return resp, cancel, nil
}
