// Package fetch retrieves raw HTML pages for metadata providers.
//
// Providers only depend on the Fetcher interface. Transport concerns (rate
// limiting, response size caps, status mapping) live in HTTPFetcher, and
// caching is layered on top with CachingFetcher, so extraction code stays
// unaware of either.
package fetch

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher returns the raw HTML body served at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Evicter is implemented by caching fetchers that can forget a page, e.g.
// one that a provider could not extract.
type Evicter interface {
	Evict(ctx context.Context, url string) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Sentinel errors for transport failures.
var (
	ErrNotFound    = errors.New("fetch: not found")
	ErrRateLimited = errors.New("fetch: rate limited by server")
	ErrServer      = errors.New("fetch: server error")
	ErrTooLarge    = errors.New("fetch: response too large")
)

// FetchError describes a failed fetch. Callers propagate it without
// interpretation; errors.Is against the sentinels above tells them apart.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s [%d]: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
