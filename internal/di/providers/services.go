package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-scraper/internal/config"
	"github.com/listenupapp/catalog-scraper/internal/logger"
	"github.com/listenupapp/catalog-scraper/internal/metadata"
	"github.com/listenupapp/catalog-scraper/internal/service"
	"github.com/listenupapp/catalog-scraper/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCatalogService provides the catalog service. The configured provider
// must be registered.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	registry := do.MustInvoke[*metadata.Registry](i)
	validator := do.MustInvoke[*validation.Validator](i)
	records := do.MustInvoke[*RecordStoreHandle](i)

	if _, err := registry.Get(cfg.Provider.Name); err != nil {
		return nil, err
	}

	var sink service.RecordSink
	if records.Store != nil {
		sink = records.Store
	}

	return service.NewCatalogService(registry, cfg.Provider.Name, validator, sink, log.Component("catalog")), nil
}
