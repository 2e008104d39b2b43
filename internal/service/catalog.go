package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/listenupapp/catalog-scraper/internal/domain"
	domainerrors "github.com/listenupapp/catalog-scraper/internal/errors"
	"github.com/listenupapp/catalog-scraper/internal/fetch"
	"github.com/listenupapp/catalog-scraper/internal/metadata"
	"github.com/listenupapp/catalog-scraper/internal/metadata/goodreads"
	"github.com/listenupapp/catalog-scraper/internal/validation"
)

// MaxBulkIDs caps how many records one bulk request may ask for.
const MaxBulkIDs = 100

// RecordSink persists records as they are fetched.
type RecordSink interface {
	SaveWork(ctx context.Context, w *domain.Work) error
	SaveEdition(ctx context.Context, e *domain.Edition) error
	SaveAuthor(ctx context.Context, a *domain.Author) error
}

type isbnInput struct {
	ISBN string `json:"isbn" validate:"required,isbn"`
}

type idInput struct {
	ID int `json:"id" validate:"gt=0"`
}

type idsInput struct {
	IDs []int `json:"ids" validate:"required,min=1,max=100,dive,gt=0"`
}

// CatalogService looks up bibliographic records through a registered provider.
type CatalogService struct {
	registry        *metadata.Registry
	defaultProvider string
	validator       *validation.Validator
	sink            RecordSink
	logger          *slog.Logger
}

// NewCatalogService creates a catalog service. Lookups that name no provider
// use defaultProvider. sink may be nil.
func NewCatalogService(
	registry *metadata.Registry,
	defaultProvider string,
	validator *validation.Validator,
	sink RecordSink,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		registry:        registry,
		defaultProvider: defaultProvider,
		validator:       validator,
		sink:            sink,
		logger:          logger,
	}
}

// GetEditionByISBN resolves an ISBN-10 or ISBN-13 to an edition.
func (s *CatalogService) GetEditionByISBN(ctx context.Context, providerName, isbn string) (*domain.Edition, error) {
	isbn = validation.NormalizeISBN(isbn)
	if err := s.validator.Validate(isbnInput{ISBN: isbn}); err != nil {
		return nil, err
	}

	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("looking up edition by ISBN", "provider", p.Name(), "isbn", isbn)

	edition, err := p.GetEditionByISBN(ctx, isbn)
	if err != nil {
		// A search page that does not identify itself as an edition means
		// no exact hit. Any other extraction failure is a markup mismatch.
		var extractErr *goodreads.ExtractError
		if errors.As(err, &extractErr) && extractErr.Field == goodreads.FieldCanonicalLink {
			return nil, domainerrors.NotFoundf("no edition found for ISBN %s", isbn)
		}
		return nil, s.mapError(err, "edition", isbn)
	}

	if err := s.persistEditions(ctx, edition); err != nil {
		return nil, err
	}
	return edition, nil
}

// GetEdition fetches an edition by provider id.
func (s *CatalogService) GetEdition(ctx context.Context, providerName string, editionID int) (*domain.Edition, error) {
	if err := s.validator.Validate(idInput{ID: editionID}); err != nil {
		return nil, err
	}
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	edition, err := p.GetEdition(ctx, editionID)
	if err != nil {
		return nil, s.mapError(err, "edition", strconv.Itoa(editionID))
	}
	if err := s.persistEditions(ctx, edition); err != nil {
		return nil, err
	}
	return edition, nil
}

// GetWork fetches a work by provider id.
func (s *CatalogService) GetWork(ctx context.Context, providerName string, workID int) (*domain.Work, error) {
	if err := s.validator.Validate(idInput{ID: workID}); err != nil {
		return nil, err
	}
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	work, err := p.GetWork(ctx, workID)
	if err != nil {
		return nil, s.mapError(err, "work", strconv.Itoa(workID))
	}
	if s.sink != nil {
		if err := s.sink.SaveWork(ctx, work); err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeInternal, "save work %d", work.ProviderID)
		}
	}
	return work, nil
}

// GetAuthor fetches an author by provider id.
func (s *CatalogService) GetAuthor(ctx context.Context, providerName string, authorID int) (*domain.Author, error) {
	if err := s.validator.Validate(idInput{ID: authorID}); err != nil {
		return nil, err
	}
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	author, err := p.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, s.mapError(err, "author", strconv.Itoa(authorID))
	}
	if err := s.persistAuthors(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

// BulkEditions fetches editions in input order; any failure fails the batch.
func (s *CatalogService) BulkEditions(ctx context.Context, providerName string, editionIDs []int) ([]*domain.Edition, error) {
	if err := s.validator.Validate(idsInput{IDs: editionIDs}); err != nil {
		return nil, err
	}
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	editions, err := p.BulkFetchEditions(ctx, editionIDs)
	if err != nil {
		return nil, s.mapError(err, "edition", "bulk")
	}
	if err := s.persistEditions(ctx, editions...); err != nil {
		return nil, err
	}
	return editions, nil
}

// BulkAuthors fetches authors in input order; any failure fails the batch.
func (s *CatalogService) BulkAuthors(ctx context.Context, providerName string, authorIDs []int) ([]*domain.Author, error) {
	if err := s.validator.Validate(idsInput{IDs: authorIDs}); err != nil {
		return nil, err
	}
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	authors, err := p.BulkFetchAuthors(ctx, authorIDs)
	if err != nil {
		return nil, s.mapError(err, "author", "bulk")
	}
	if err := s.persistAuthors(ctx, authors...); err != nil {
		return nil, err
	}
	return authors, nil
}

// ExpandISBN walks from an ISBN to its work, every edition on the work's
// listing page, and the contributors of each of those editions. Each author
// is fetched once even when credited on several editions.
func (s *CatalogService) ExpandISBN(ctx context.Context, providerName, isbn string) (*domain.Expansion, error) {
	seed, err := s.GetEditionByISBN(ctx, providerName, isbn)
	if err != nil {
		return nil, err
	}

	work, err := s.GetWork(ctx, providerName, seed.ProviderWorkID)
	if err != nil {
		return nil, err
	}

	expansion := &domain.Expansion{Work: work, Editions: []domain.ExpandedEdition{}}
	if len(work.EditionIDs) == 0 {
		return expansion, nil
	}

	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	editions, err := p.BulkFetchEditions(ctx, work.EditionIDs)
	if err != nil {
		return nil, s.mapError(err, "edition", "bulk")
	}

	var authorIDs []int
	seen := make(map[int]bool)
	for _, e := range editions {
		for _, id := range e.AuthorIDs() {
			if !seen[id] {
				seen[id] = true
				authorIDs = append(authorIDs, id)
			}
		}
	}

	byID := make(map[int]*domain.Author, len(authorIDs))
	if len(authorIDs) > 0 {
		authors, err := p.BulkFetchAuthors(ctx, authorIDs)
		if err != nil {
			return nil, s.mapError(err, "author", "bulk")
		}
		for _, a := range authors {
			byID[a.ProviderID] = a
		}
		if err := s.persistAuthors(ctx, authors...); err != nil {
			return nil, err
		}
	}
	if err := s.persistEditions(ctx, editions...); err != nil {
		return nil, err
	}

	for _, e := range editions {
		expanded := domain.ExpandedEdition{
			Data:        e,
			AuthorsInfo: make([]domain.ExpandedAuthor, 0, len(e.EditorAuthorsInfo)),
		}
		for _, credit := range e.EditorAuthorsInfo {
			expanded.AuthorsInfo = append(expanded.AuthorsInfo, domain.ExpandedAuthor{
				Data:    byID[credit.AuthorID],
				Comment: credit.Comment,
			})
		}
		expansion.Editions = append(expansion.Editions, expanded)
	}

	s.logger.Info("expanded ISBN",
		"isbn", isbn,
		"work_id", work.ProviderID,
		"editions", len(editions),
		"authors", len(authorIDs),
	)

	return expansion, nil
}

// Providers returns the names of the registered providers.
func (s *CatalogService) Providers() []string {
	return s.registry.Names()
}

func (s *CatalogService) provider(name string) (metadata.Provider, error) {
	if name == "" {
		name = s.defaultProvider
	}
	p, err := s.registry.Get(name)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeUnknownProvider, "unknown provider %q", name)
	}
	return p, nil
}

func (s *CatalogService) persistEditions(ctx context.Context, editions ...*domain.Edition) error {
	if s.sink == nil {
		return nil
	}
	for _, e := range editions {
		if err := s.sink.SaveEdition(ctx, e); err != nil {
			return domainerrors.Wrapf(err, domainerrors.CodeInternal, "save edition %d", e.ProviderID)
		}
	}
	return nil
}

func (s *CatalogService) persistAuthors(ctx context.Context, authors ...*domain.Author) error {
	if s.sink == nil {
		return nil
	}
	for _, a := range authors {
		if err := s.sink.SaveAuthor(ctx, a); err != nil {
			return domainerrors.Wrapf(err, domainerrors.CodeInternal, "save author %d", a.ProviderID)
		}
	}
	return nil
}

// mapError converts provider and transport failures into domain errors.
func (s *CatalogService) mapError(err error, kind, id string) error {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	var (
		fetchErr   *fetch.FetchError
		extractErr *goodreads.ExtractError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainerrors.Wrapf(err, domainerrors.CodeUpstream, "%s %s: request cancelled", kind, id)
	case errors.Is(err, fetch.ErrNotFound):
		return domainerrors.Wrapf(err, domainerrors.CodeNotFound, "%s %s not found", kind, id)
	case errors.Is(err, fetch.ErrRateLimited):
		return domainerrors.Wrapf(err, domainerrors.CodeRateLimited, "%s %s: provider is rate limiting", kind, id)
	case errors.As(err, &fetchErr):
		s.logger.Warn("provider fetch failed", "kind", kind, "id", id, "url", fetchErr.URL, "error", err)
		return domainerrors.Wrapf(err, domainerrors.CodeUpstream, "%s %s: provider request failed", kind, id)
	case errors.As(err, &extractErr):
		s.logger.Warn("page extraction failed", "kind", kind, "id", id, "field", extractErr.Field, "error", err)
		return domainerrors.Wrapf(err, domainerrors.CodeExtraction, "%s %s: unexpected page layout", kind, id)
	default:
		s.logger.Error("catalog lookup failed", "kind", kind, "id", id, "error", err)
		return domainerrors.Wrapf(err, domainerrors.CodeInternal, "%s %s: lookup failed", kind, id)
	}
}
