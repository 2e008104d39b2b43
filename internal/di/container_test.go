package di

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-scraper/internal/config"
	"github.com/listenupapp/catalog-scraper/internal/di/providers"
	domainerrors "github.com/listenupapp/catalog-scraper/internal/errors"
	"github.com/listenupapp/catalog-scraper/internal/metadata"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		App:      config.AppConfig{Environment: "development"},
		Logger:   config.LoggerConfig{Level: "error", Format: "text"},
		Provider: config.ProviderConfig{Name: "goodreads", BaseURL: baseURL},
		Fetch:    config.FetchConfig{Timeout: 5 * time.Second, RPS: 1000, Burst: 100},
		Cache:    config.CacheConfig{Size: 10, Path: filepath.Join(dir, "pages"), TTL: time.Hour},
		Bulk:     config.BulkConfig{Concurrency: 2},
		Records:  config.RecordsConfig{Path: filepath.Join(dir, "records.db")},
		Server:   config.ServerConfig{Port: "0"},
	}
}

func TestBootstrapCatalog(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/author/show/6560" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><head><link rel="canonical" href="/author/show/6560"></head>`+
			`<body><h1 class="authorName">Richard Howard</h1></body></html>`)
	}))
	defer upstream.Close()

	injector := NewContainerWithConfig(testConfig(t, upstream.URL))
	defer func() { _ = injector.Shutdown() }()

	catalog, err := BootstrapCatalog(injector)
	require.NoError(t, err)
	assert.Equal(t, []string{"goodreads"}, catalog.Providers())

	ctx := context.Background()
	author, err := catalog.GetAuthor(ctx, "", 6560)
	require.NoError(t, err)
	assert.Equal(t, "Richard Howard", author.Name)

	// Second lookup is served from the memory tier.
	_, err = catalog.GetAuthor(ctx, "", 6560)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	records := do.MustInvoke[*providers.RecordStoreHandle](injector)
	saved, err := records.GetAuthor(ctx, 6560)
	require.NoError(t, err)
	assert.Equal(t, "Richard Howard", saved.Name)

	pages := do.MustInvoke[*providers.PageStoreHandle](injector)
	page, err := pages.GetCachedPage(ctx, upstream.URL+"/author/show/6560")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Contains(t, page.Body, "Richard Howard")
}

func TestBootstrapCatalog_UnextractablePagesAreNotCached(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `<html><head><link rel="canonical" href="/author/show/7"></head><body></body></html>`)
	}))
	defer upstream.Close()

	injector := NewContainerWithConfig(testConfig(t, upstream.URL))
	defer func() { _ = injector.Shutdown() }()

	catalog, err := BootstrapCatalog(injector)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = catalog.GetAuthor(ctx, "", 7)
	require.ErrorIs(t, err, domainerrors.ErrExtraction)

	pages := do.MustInvoke[*providers.PageStoreHandle](injector)
	page, err := pages.GetCachedPage(ctx, upstream.URL+"/author/show/7")
	require.NoError(t, err)
	assert.Nil(t, page)

	// Neither tier serves the bad page, so the retry goes upstream.
	_, err = catalog.GetAuthor(ctx, "", 7)
	require.ErrorIs(t, err, domainerrors.ErrExtraction)
	assert.Equal(t, int32(2), hits.Load())
}

func TestBootstrapCatalog_UnknownProvider(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Provider.Name = "openlibrary"
	cfg.Cache.Path = ""
	cfg.Records.Path = ""

	injector := NewContainerWithConfig(cfg)
	defer func() { _ = injector.Shutdown() }()

	_, err := BootstrapCatalog(injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), metadata.ErrUnknownProvider.Error())
}

func TestBootstrapCatalog_NoPersistence(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Cache.Path = ""
	cfg.Cache.Size = 0
	cfg.Records.Path = ""

	injector := NewContainerWithConfig(cfg)
	defer func() { _ = injector.Shutdown() }()

	_, err := BootstrapCatalog(injector)
	require.NoError(t, err)

	assert.Nil(t, do.MustInvoke[*providers.PageStoreHandle](injector).Store)
	assert.Nil(t, do.MustInvoke[*providers.RecordStoreHandle](injector).Store)
}
