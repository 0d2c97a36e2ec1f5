// Package transport provides the shared JSON-over-HTTP client used by every
// backend adapter. It centralizes request building, host-supplied header
// injection, client-side rate limiting, and Prometheus instrumentation.
// Retry and backoff are deliberately absent: a failed request surfaces
// immediately to the adapter, which owns the error semantics.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/vecthare/vecthare-go/internal/metrics"
)

// defaultTimeout bounds each backend request. Long enough for server-side
// embedding of a large insert batch.
const defaultTimeout = 120 * time.Second

// Config holds the settings for constructing a Client.
type Config struct {
	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
	// RateLimit is the sustained outbound request rate toward the backend
	// host (requests/second). Zero disables rate limiting.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst when RateLimit is set.
	// Defaults to 1 if zero.
	RateBurst int
	// Headers are attached to every request. The host application supplies
	// these for authentication; this layer never manages credentials itself.
	Headers map[string]string
	// Metrics receives per-request observations. Optional.
	Metrics *metrics.BackendMetrics
}

// Client is a shared HTTP client for backend adapters. It is safe for
// concurrent use.
type Client struct {
	// http is the underlying HTTP client.
	http *http.Client
	// limiter throttles outbound requests; nil when disabled.
	limiter *rate.Limiter
	// headers are injected into every request.
	headers map[string]string
	// metrics receives per-request observations; nil when disabled.
	metrics *metrics.BackendMetrics
}

// New constructs a Client from the given config. A nil config yields a
// client with defaults and no rate limiting.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		headers: cfg.Headers,
		metrics: cfg.Metrics,
	}
}

// Call describes one backend request. Backend and Op are metric labels;
// Body, when non-nil, is JSON-encoded into the request.
type Call struct {
	// Backend is the backend discriminator ("vectra", "chroma", ...).
	Backend string
	// Op is the logical operation name ("insert", "query", ...).
	Op string
	// Method is the HTTP method.
	Method string
	// URL is the full request URL.
	URL string
	// Body is the request payload; nil sends an empty body.
	Body any
}

// Response is the raw outcome of a Call. The adapter decides which statuses
// are errors — some backends assign meaning to non-2xx codes (a 500 on the
// native list path means "collection not yet created").
type Response struct {
	// Status is the HTTP status code.
	Status int
	// Body is the fully-read response body.
	Body []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the response body into out.
func (r *Response) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("transport: decode response: %w", err)
	}
	return nil
}

// Do executes one backend request. It returns an error only for transport
// failures (marshalling, network, context cancellation); any HTTP response,
// success or not, is returned as a Response for the adapter to interpret.
func (c *Client) Do(ctx context.Context, call Call) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("transport: rate limiter: %w", err)
		}
	}

	var reqBody io.Reader
	if call.Body != nil {
		payload, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("transport: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("transport: create request: %w", err)
	}
	if call.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.Observe(call.Backend, call.Op, 0, time.Since(start))
		return nil, fmt.Errorf("transport: %s %s: %w", call.Method, call.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.Observe(call.Backend, call.Op, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("transport: read response: %w", err)
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}
