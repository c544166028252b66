// Package bmrs is the HTTP client for the BMRS Insights API. Every GET is
// retried on rate limiting and transient server errors with a linear backoff.
package bmrs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"elexon"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxAttempts = 5
	DefaultTimeout     = 30 * time.Second
)

// retryable statuses, anything else at or above 400 fails at once
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Observer is told about every attempt. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveAttempt(path string, status int, elapsed time.Duration)
	ObserveRetry(path string, status int)
}

type Response struct {
	StatusCode int
	URL        string
	Header     http.Header
	Body       []byte
	Attempts   int
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	sleep       Sleeper
	limiter     *rate.Limiter
	observer    Observer
	logger      zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepContext,
		logger:      elexon.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from the application configuration.
func NewClientFromConfig(cfg elexon.AppConfig, opts ...Option) *Client {
	base := []Option{
		WithTimeout(cfg.BMRS.Timeout),
		WithMaxAttempts(cfg.BMRS.MaxAttempts),
		WithRateLimit(cfg.BMRS.RateLimit),
	}
	baseURL := cfg.BMRS.BaseURL
	if baseURL == "" {
		baseURL = elexon.DefaultBaseURL
	}
	return NewClient(baseURL, append(base, opts...)...)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get requests path with query. Statuses 429, 500, 502 and 503 are retried,
// sleeping attempt+1 seconds between attempts. Other statuses of 400 and above
// return an *HTTPError at once; exhausting every attempt returns a
// *RetryExhaustedError. Transport failures are returned without retrying.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var last *HTTPError
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		status, header, body, err := c.do(ctx, u)
		if err != nil {
			return nil, err
		}
		if c.observer != nil {
			c.observer.ObserveAttempt(path, status, time.Since(start))
		}

		c.logger.Debug().
			Str("url", u).
			Int("status", status).
			Int("attempt", attempt+1).
			Msg("BMRS request")

		if status < http.StatusBadRequest {
			return &Response{StatusCode: status, URL: u, Header: header, Body: body, Attempts: attempt + 1}, nil
		}

		last = newHTTPError(status, u, body)
		if !retryStatuses[status] {
			return nil, last
		}
		if attempt == c.maxAttempts-1 {
			break
		}

		if c.observer != nil {
			c.observer.ObserveRetry(path, status)
		}
		wait := time.Duration(attempt+1) * time.Second
		c.logger.Warn().
			Str("url", u).
			Int("status", status).
			Dur("backoff", wait).
			Msgf("Retrying (%d/%d)", attempt+2, c.maxAttempts)

		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, &RetryExhaustedError{Attempts: c.maxAttempts, Last: last}
}

func (c *Client) do(ctx context.Context, u string) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, resp.Header, body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
