package vatsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultURL is the public v3 data endpoint
	DefaultURL = "https://data.vatsim.net/v3/vatsim-data.json"

	// DefaultTimeout for feed requests
	DefaultTimeout = 10 * time.Second

	// maxErrorBody bounds how much of an error response is quoted
	maxErrorBody = 512
)

// ClientConfig contains configuration for the feed client.
type ClientConfig struct {
	// URL is the feed endpoint (default: DefaultURL)
	URL string

	// Timeout bounds each HTTP request (default: DefaultTimeout)
	Timeout time.Duration

	// MinInterval is the minimum spacing between requests
	// 0 = no rate limit
	MinInterval time.Duration
}

// Client implements the DataSource interface for the VATSIM data feed.
type Client struct {
	// url is the feed endpoint
	url string

	// httpClient is the HTTP client used for feed requests
	httpClient *http.Client

	// limiter spaces requests so the feed is not polled faster than it updates
	limiter *rate.Limiter

	// now is replaceable in tests
	now func() time.Time
}

// NewClient creates a new feed client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	return &Client{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

// Fetch downloads and parses one feed snapshot.
// Blocks until the rate limiter allows a request or ctx is done.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	// Check for rate limit (HTTP 429)
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header, c.now()),
			Message:    "Rate limit exceeded",
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var data DataResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse feed response: %w", err)
	}

	return &Snapshot{
		Pilots:    data.Pilots,
		UpdatedAt: data.General.UpdateTimestamp,
		FetchedAt: c.now(),
	}, nil
}

// Close cleanly shuts down the client.
// There are no persistent connections, so this only releases idle ones.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// RateLimitError represents an HTTP 429 rate limit error with retry information.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// IsRateLimitError checks if an error is, or wraps, a rate limit error.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter extracts the Retry-After header value.
// Supports both delay-seconds and HTTP-date formats; returns 0 if absent or past.
//
// Examples:
//
//	Retry-After: 30                            -> 30 seconds
//	Retry-After: Wed, 21 Oct 2015 07:28:00 GMT -> duration until that time
func parseRetryAfter(headers http.Header, now time.Time) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if retryTime, err := http.ParseTime(retryAfter); err == nil {
		if d := retryTime.Sub(now); d > 0 {
			return d
		}
	}

	return 0
}
