// Package providers contains dependency injection providers for the catalog scraper.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-scraper/internal/config"
	"github.com/listenupapp/catalog-scraper/internal/logger"
)

// ProvideConfig provides the application configuration from the process
// arguments.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig(os.Args[1:])
}

// ProvideLogger provides the structured logger. Logs go to stderr so command
// output on stdout stays machine-readable.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Format:      cfg.Logger.Format,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("Configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"provider", cfg.Provider.Name,
		"base_url", cfg.Provider.BaseURL,
		"cache_size", cfg.Cache.Size,
		"cache_path", cfg.Cache.Path,
		"records_db", cfg.Records.Path,
	)

	return log, nil
}
