package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-scraper/internal/config"
	"github.com/listenupapp/catalog-scraper/internal/logger"
	"github.com/listenupapp/catalog-scraper/internal/store"
	"github.com/listenupapp/catalog-scraper/internal/store/sqlite"
)

// PageStoreHandle wraps the persistent page cache with shutdown capability.
// Store is nil when no cache path is configured.
type PageStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *PageStoreHandle) Shutdown() error {
	if h.Store == nil {
		return nil
	}
	return h.Close()
}

// ProvidePageStore provides the Badger-backed page cache.
func ProvidePageStore(i do.Injector) (*PageStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Cache.Path == "" {
		log.Debug("Persistent page cache disabled")
		return &PageStoreHandle{}, nil
	}

	pages, err := store.New(cfg.Cache.Path, cfg.Cache.TTL, log.Component("page_cache"))
	if err != nil {
		return nil, err
	}

	log.Info("Page cache opened", "path", cfg.Cache.Path, "ttl", cfg.Cache.TTL)

	return &PageStoreHandle{Store: pages}, nil
}

// RecordStoreHandle wraps the SQLite record store with shutdown capability.
// Store is nil when no records database is configured.
type RecordStoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *RecordStoreHandle) Shutdown() error {
	if h.Store == nil {
		return nil
	}
	return h.Close()
}

// ProvideRecordStore provides the database scraped records are saved to.
func ProvideRecordStore(i do.Injector) (*RecordStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Records.Path == "" {
		return &RecordStoreHandle{}, nil
	}

	db, err := sqlite.Open(cfg.Records.Path, log.Component("records"))
	if err != nil {
		return nil, err
	}

	log.Info("Records database opened", "path", cfg.Records.Path)

	return &RecordStoreHandle{Store: db}, nil
}
