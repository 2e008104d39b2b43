package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-scraper/internal/config"
	"github.com/listenupapp/catalog-scraper/internal/fetch"
	"github.com/listenupapp/catalog-scraper/internal/logger"
	"github.com/listenupapp/catalog-scraper/internal/metadata"
	"github.com/listenupapp/catalog-scraper/internal/metadata/goodreads"
)

// FetcherHandle is the cached, rate-limited page fetcher shared by providers.
type FetcherHandle struct {
	fetch.Fetcher
	http   *fetch.HTTPFetcher
	memory *fetch.MemoryCache
}

// Shutdown implements do.Shutdownable.
func (h *FetcherHandle) Shutdown() error {
	h.http.Close()
	if h.memory != nil {
		h.memory.Purge()
	}
	return nil
}

// ProvideFetcher provides the page fetcher: HTTP behind an in-memory LRU and,
// when configured, the persistent page cache.
func ProvideFetcher(i do.Injector) (*FetcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	pagesHandle := do.MustInvoke[*PageStoreHandle](i)

	httpFetcher := fetch.NewHTTPFetcher(fetch.HTTPOptions{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		RPS:       cfg.Fetch.RPS,
		Burst:     cfg.Fetch.Burst,
	}, log.Component("fetch"))

	var memory *fetch.MemoryCache
	if cfg.Cache.Size > 0 {
		var err error
		if memory, err = fetch.NewMemoryCache(cfg.Cache.Size); err != nil {
			httpFetcher.Close()
			return nil, err
		}
	}

	// A nil *store.Store must not become a non-nil PageStore interface.
	var pages fetch.PageStore
	if pagesHandle.Store != nil {
		pages = pagesHandle.Store
	}

	handle := &FetcherHandle{
		Fetcher: httpFetcher,
		http:    httpFetcher,
		memory:  memory,
	}
	if memory != nil || pages != nil {
		handle.Fetcher = fetch.NewCachingFetcher(httpFetcher, memory, pages, log.Component("fetch"))
	}

	log.Info("Page fetcher initialized",
		"rps", cfg.Fetch.RPS,
		"burst", cfg.Fetch.Burst,
		"memory_cache", cfg.Cache.Size,
		"persistent_cache", pages != nil,
	)

	return handle, nil
}

// ProvideRegistry provides the metadata provider registry.
func ProvideRegistry(i do.Injector) (*metadata.Registry, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	fetcher := do.MustInvoke[*FetcherHandle](i)

	client := goodreads.New(fetcher.Fetcher, goodreads.Options{
		BaseURL:     cfg.Provider.BaseURL,
		Concurrency: cfg.Bulk.Concurrency,
	}, log.Component("goodreads"))

	registry, err := metadata.NewRegistry(client)
	if err != nil {
		return nil, err
	}

	log.Info("Metadata providers registered", "providers", registry.Names())

	return registry, nil
}
