package goodreads

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/catalog-scraper/internal/domain"
	"github.com/listenupapp/catalog-scraper/internal/fetch"
	"github.com/listenupapp/catalog-scraper/internal/metadata"
)

// ProviderName identifies this provider in the registry.
const ProviderName = "goodreads"

const (
	// DefaultBaseURL is the public site.
	DefaultBaseURL = "https://www.goodreads.com"

	// DefaultConcurrency bounds parallel fetches in bulk operations.
	DefaultConcurrency = 4
)

// URL templates, relative to the base URL.
const (
	searchPath       = "/search?q=%s"
	workEditionsPath = "/work/editions/%d?utf8=%%E2%%9C%%93&per_page=100"
	editionPath      = "/book/show/%d"
	authorPath       = "/author/show/%d"
)

var _ metadata.Provider = (*Client)(nil)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	Concurrency int
}

// Client fetches provider pages and hands them to the extractors.
type Client struct {
	fetcher     fetch.Fetcher
	baseURL     string
	concurrency int
	logger      *slog.Logger
}

// New creates a Client that retrieves pages through fetcher.
func New(fetcher fetch.Fetcher, opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		fetcher:     fetcher,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		concurrency: opts.Concurrency,
		logger:      logger,
	}
}

// Name returns the registry name of the provider.
func (c *Client) Name() string {
	return ProviderName
}

// SearchURL returns the search page URL for an ISBN. The site redirects an
// exact ISBN hit to the edition page.
func (c *Client) SearchURL(isbn string) string {
	return c.baseURL + fmt.Sprintf(searchPath, url.QueryEscape(isbn))
}

// WorkURL returns the first page of a work's edition listing.
func (c *Client) WorkURL(workID int) string {
	return c.baseURL + fmt.Sprintf(workEditionsPath, workID)
}

// EditionURL returns an edition detail page URL.
func (c *Client) EditionURL(editionID int) string {
	return c.baseURL + fmt.Sprintf(editionPath, editionID)
}

// AuthorURL returns an author profile page URL.
func (c *Client) AuthorURL(authorID int) string {
	return c.baseURL + fmt.Sprintf(authorPath, authorID)
}

// GetEditionByISBN resolves an ISBN to the edition it identifies.
func (c *Client) GetEditionByISBN(ctx context.Context, isbn string) (*domain.Edition, error) {
	edition, err := fetchAndExtract(ctx, c, c.SearchURL(isbn), ExtractEdition)
	if err != nil {
		return nil, wrapError("getEditionByISBN", isbn, err)
	}
	return edition, nil
}

// GetEdition fetches an edition by id.
func (c *Client) GetEdition(ctx context.Context, editionID int) (*domain.Edition, error) {
	edition, err := fetchAndExtract(ctx, c, c.EditionURL(editionID), ExtractEdition)
	if err != nil {
		return nil, wrapError("getEdition", strconv.Itoa(editionID), err)
	}
	return edition, nil
}

// GetWork fetches a work by id. Only the first page of its edition listing
// is read.
func (c *Client) GetWork(ctx context.Context, workID int) (*domain.Work, error) {
	work, err := fetchAndExtract(ctx, c, c.WorkURL(workID), ExtractWork)
	if err != nil {
		return nil, wrapError("getWork", strconv.Itoa(workID), err)
	}
	return work, nil
}

// GetAuthor fetches an author by id.
func (c *Client) GetAuthor(ctx context.Context, authorID int) (*domain.Author, error) {
	author, err := fetchAndExtract(ctx, c, c.AuthorURL(authorID), ExtractAuthor)
	if err != nil {
		return nil, wrapError("getAuthor", strconv.Itoa(authorID), err)
	}
	return author, nil
}

// BulkFetchEditions fetches editions in input order. The first failure
// cancels the outstanding fetches and is returned without partial results.
func (c *Client) BulkFetchEditions(ctx context.Context, editionIDs []int) ([]*domain.Edition, error) {
	return bulkFetch(ctx, c.concurrency, editionIDs, c.GetEdition)
}

// BulkFetchAuthors fetches authors in input order, with the same failure
// semantics as BulkFetchEditions.
func (c *Client) BulkFetchAuthors(ctx context.Context, authorIDs []int) ([]*domain.Author, error) {
	return bulkFetch(ctx, c.concurrency, authorIDs, c.GetAuthor)
}

func fetchAndExtract[T any](ctx context.Context, c *Client, pageURL string, extract func(string) (*T, error)) (*T, error) {
	raw, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	record, err := extract(raw)
	if err != nil {
		c.logger.Debug("extraction failed", "url", pageURL, "error", err)
		if ev, ok := c.fetcher.(fetch.Evicter); ok {
			if evictErr := ev.Evict(ctx, pageURL); evictErr != nil {
				c.logger.Warn("failed to evict unextractable page", "url", pageURL, "error", evictErr)
			}
		}
		return nil, err
	}
	return record, nil
}

func bulkFetch[T any](ctx context.Context, limit int, ids []int, get func(context.Context, int) (*T, error)) ([]*T, error) {
	results := make([]*T, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, id := range ids {
		g.Go(func() error {
			record, err := get(gctx, id)
			if err != nil {
				return err
			}
			results[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
