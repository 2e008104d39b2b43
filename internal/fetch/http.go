package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/listenupapp/catalog-scraper/internal/ratelimit"
)

const (
	// Rate limit: 1 request per second per host, burst of 3.
	defaultRPS   = 1.0
	defaultBurst = 3

	defaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a page is read.
	maxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// HTTPOptions configures an HTTPFetcher. Zero values fall back to defaults.
type HTTPOptions struct {
	Timeout   time.Duration
	UserAgent string
	RPS       float64
	Burst     int
}

// HTTPFetcher fetches pages over HTTP with per-host rate limiting.
type HTTPFetcher struct {
	http      *http.Client
	limiter   *ratelimit.KeyedRateLimiter
	userAgent string
	logger    *slog.Logger
}

// NewHTTPFetcher creates an HTTP fetcher.
func NewHTTPFetcher(opts HTTPOptions, logger *slog.Logger) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}

	return &HTTPFetcher{
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter:   ratelimit.New(opts.RPS, opts.Burst),
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

// Close releases resources held by the fetcher.
func (f *HTTPFetcher) Close() {
	f.limiter.Stop()
}

// Fetch GETs rawURL and returns the body as a string.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("parse URL: %w", err)}
	}

	// Wait for rate limit
	if err := f.limiter.Wait(ctx, u.Host); err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}

	// Set headers to appear as a browser
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", f.userAgent)

	f.logger.Debug("fetch request", "url", rawURL)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	// Read one byte past the cap so oversized pages are detected, not truncated.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	f.logger.Debug("fetch response",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(body),
	)

	switch {
	case resp.StatusCode == http.StatusOK:
		if len(body) > maxBodySize {
			return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrTooLarge}
		}
		return string(body), nil
	case resp.StatusCode == http.StatusNotFound:
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrNotFound}
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrRateLimited}
	case resp.StatusCode >= 500:
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrServer}
	default:
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
}
