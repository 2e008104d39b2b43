package fetch

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/listenupapp/catalog-scraper/internal/store"
)

// MemoryCache is a bounded in-process page cache with LRU eviction.
type MemoryCache struct {
	pages *lru.Cache[string, string]
}

// NewMemoryCache creates a cache holding at most size pages.
func NewMemoryCache(size int) (*MemoryCache, error) {
	pages, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	return &MemoryCache{pages: pages}, nil
}

// Get returns the cached body for url.
func (c *MemoryCache) Get(url string) (string, bool) {
	return c.pages.Get(url)
}

// Add stores body for url, evicting the least recently used page when full.
func (c *MemoryCache) Add(url, body string) {
	c.pages.Add(url, body)
}

// Remove drops url from the cache.
func (c *MemoryCache) Remove(url string) {
	c.pages.Remove(url)
}

// Len returns the number of cached pages.
func (c *MemoryCache) Len() int {
	return c.pages.Len()
}

// Purge drops every cached page.
func (c *MemoryCache) Purge() {
	c.pages.Purge()
}

// PageStore is a persistent page cache tier. GetCachedPage returns nil, nil
// on a miss or an expired entry.
type PageStore interface {
	GetCachedPage(ctx context.Context, url string) (*store.CachedPage, error)
	SetCachedPage(ctx context.Context, url, body string) error
	DeleteCachedPage(ctx context.Context, url string) error
}

// CachingFetcher serves pages from the memory tier, then the persistent tier,
// and only then from the wrapped fetcher. Concurrent requests for the same
// URL share a single upstream fetch, which outlives any one caller giving up:
// it runs detached from the callers' cancellation and is bounded by the
// wrapped fetcher's own timeout. Failures are never cached.
type CachingFetcher struct {
	next   Fetcher
	memory *MemoryCache
	pages  PageStore
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachingFetcher wraps next. Either tier may be nil to disable it.
func NewCachingFetcher(next Fetcher, memory *MemoryCache, pages PageStore, logger *slog.Logger) *CachingFetcher {
	return &CachingFetcher{
		next:   next,
		memory: memory,
		pages:  pages,
		logger: logger,
	}
}

// Fetch implements Fetcher.
func (f *CachingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.memory != nil {
		if body, ok := f.memory.Get(url); ok {
			f.logger.Debug("page cache hit", "url", url, "tier", "memory")
			return body, nil
		}
	}

	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(url, func() (any, error) {
		return f.load(shared, url)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Evict drops url from both tiers, so the next Fetch goes upstream.
func (f *CachingFetcher) Evict(ctx context.Context, url string) error {
	if f.memory != nil {
		f.memory.Remove(url)
	}
	if f.pages != nil {
		if err := f.pages.DeleteCachedPage(ctx, url); err != nil {
			return fmt.Errorf("evict %s: %w", url, err)
		}
	}
	return nil
}

func (f *CachingFetcher) load(ctx context.Context, url string) (string, error) {
	if f.pages != nil {
		cached, err := f.pages.GetCachedPage(ctx, url)
		if err != nil {
			f.logger.Warn("page cache lookup failed",
				"error", err,
				"url", url,
			)
			// Continue to fetch fresh
		}
		if cached != nil {
			f.logger.Debug("page cache hit", "url", url, "tier", "store", "fetched_at", cached.FetchedAt)
			f.remember(url, cached.Body)
			return cached.Body, nil
		}
	}

	f.logger.Debug("page cache miss", "url", url)

	body, err := f.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	f.remember(url, body)
	if f.pages != nil {
		if err := f.pages.SetCachedPage(ctx, url, body); err != nil {
			f.logger.Warn("failed to persist page",
				"error", err,
				"url", url,
			)
		}
	}

	return body, nil
}

func (f *CachingFetcher) remember(url, body string) {
	if f.memory != nil {
		f.memory.Add(url, body)
	}
}
