package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://wiki.facepunch.com"

	maxResponseSize = 16 << 20
)

// ClientConfig configures the HTTP wiki client.
type ClientConfig struct {
	BaseURL string

	// Timeout bounds one HTTP round trip.
	Timeout time.Duration

	// RequestsPerSecond and Burst shape outgoing traffic. Zero disables
	// rate limiting.
	RequestsPerSecond float64
	Burst             int

	// Retries is the number of extra attempts for transient failures
	// (network errors, 429 and 5xx).
	Retries int

	// RetryBackoff is the delay before the first retry; it doubles on each
	// attempt.
	RetryBackoff time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client reads pages from the wiki's JSON endpoints.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		limiter: limiter,
		retries: cfg.Retries,
		backoff: backoff,
		logger:  logger,
	}, nil
}

// GetPage fetches "<base><path>?format=json".
func (c *Client) GetPage(ctx context.Context, path string) (Page, error) {
	body, err := c.get(ctx, path, url.Values{"format": {"json"}})
	if err != nil {
		return Page{}, err
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return Page{}, fmt.Errorf("decode page %s: %w", path, err)
	}
	if page.Address == "" {
		page.Address = strings.TrimPrefix(unescapePath(path), "/gmod/")
	}
	return page, nil
}

// GetPagesInCategory lists a category through the wiki's page list
// endpoint and returns "/gmod/<address>" paths.
func (c *Client) GetPagesInCategory(ctx context.Context, category string) ([]string, error) {
	body, err := c.get(ctx, "/gmod/~pagelist", url.Values{
		"category": {category},
		"format":   {"json"},
	})
	if err != nil {
		return nil, err
	}

	var entries []struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode page list for %s: %w", category, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Address == "" {
			continue
		}
		paths = append(paths, "/gmod/"+strings.TrimPrefix(e.Address, "/"))
	}
	return paths, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + unescapePath(path)
	u.RawQuery = query.Encode()
	target := u.String()

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := c.backoff << (attempt - 1)
			c.logger.Debug("retrying wiki request", "url", target, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.do(ctx, target)
		if err == nil {
			return body, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wiki request %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}

	var ne net.Error
	return errors.As(err, &ne)
}

// unescapePath decodes paths handed back escaped, such as "/gmod/GM%3AThink".
func unescapePath(path string) string {
	if unescaped, err := url.PathUnescape(path); err == nil {
		return unescaped
	}
	return path
}
