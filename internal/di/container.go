// Package di provides dependency injection configuration for the catalog scraper.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-scraper/internal/config"
	"github.com/listenupapp/catalog-scraper/internal/di/providers"
	"github.com/listenupapp/catalog-scraper/internal/logger"
	"github.com/listenupapp/catalog-scraper/internal/metadata"
	"github.com/listenupapp/catalog-scraper/internal/service"
)

// NewContainer creates the DI container with configuration loaded from the
// process arguments and environment.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	registerProviders(injector)
	return injector
}

// NewContainerWithConfig creates the DI container around an already loaded
// configuration.
func NewContainerWithConfig(cfg *config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	registerProviders(injector)
	return injector
}

func registerProviders(injector *do.RootScope) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvidePageStore)
	do.Provide(injector, providers.ProvideRecordStore)

	// Metadata layer
	do.Provide(injector, providers.ProvideFetcher)
	do.Provide(injector, providers.ProvideRegistry)

	// Business services
	do.Provide(injector, providers.ProvideCatalogService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// BootstrapCatalog initializes everything the catalog service needs and
// returns it.
func BootstrapCatalog(injector *do.RootScope) (*service.CatalogService, error) {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*metadata.Registry](injector); err != nil {
		return nil, err
	}
	return do.Invoke[*service.CatalogService](injector)
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := BootstrapCatalog(injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
