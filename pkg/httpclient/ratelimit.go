package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// Doer is the request-executing capability shared by Client and
// CircuitBreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// RateLimitedClient wraps a Doer with a token-bucket rate limiter so a large
// poll fan-out cannot exceed one upstream provider's rate limits. Waiting for
// a token respects context cancellation.
type RateLimitedClient struct {
	inner   Doer
	limiter *rate.Limiter
}

// NewRateLimitedClient creates a rate-limited wrapper allowing rps requests
// per second with the given burst.
func NewRateLimitedClient(inner Doer, rps float64, burst int) *RateLimitedClient {
	return &RateLimitedClient{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Do waits for a rate-limit token and then executes the request.
func (c *RateLimitedClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return c.inner.Do(ctx, req)
}

// Get performs a rate-limited HTTP GET request.
func (c *RateLimitedClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// Post performs a rate-limited HTTP POST request.
func (c *RateLimitedClient) Post(ctx context.Context, url string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create POST request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}
