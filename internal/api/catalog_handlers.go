package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-scraper/internal/domain"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getEditionByISBN",
		Method:      http.MethodGet,
		Path:        "/api/v1/editions/isbn/{isbn}",
		Summary:     "Get edition by ISBN",
		Description: "Resolves an ISBN-10 or ISBN-13 to the provider's edition",
		Tags:        []string{"Editions"},
	}, s.handleGetEditionByISBN)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEdition",
		Method:      http.MethodGet,
		Path:        "/api/v1/editions/{id}",
		Summary:     "Get edition",
		Description: "Returns an edition by provider id",
		Tags:        []string{"Editions"},
	}, s.handleGetEdition)

	huma.Register(s.api, huma.Operation{
		OperationID: "bulkEditions",
		Method:      http.MethodPost,
		Path:        "/api/v1/editions/bulk",
		Summary:     "Bulk fetch editions",
		Description: "Returns editions in request order. Any failure fails the whole batch.",
		Tags:        []string{"Editions"},
	}, s.handleBulkEditions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWork",
		Method:      http.MethodGet,
		Path:        "/api/v1/works/{id}",
		Summary:     "Get work",
		Description: "Returns a work and the first page of its edition ids",
		Tags:        []string{"Works"},
	}, s.handleGetWork)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Description: "Returns an author by provider id",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "bulkAuthors",
		Method:      http.MethodPost,
		Path:        "/api/v1/authors/bulk",
		Summary:     "Bulk fetch authors",
		Description: "Returns authors in request order. Any failure fails the whole batch.",
		Tags:        []string{"Authors"},
	}, s.handleBulkAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "expandISBN",
		Method:      http.MethodGet,
		Path:        "/api/v1/expand/{isbn}",
		Summary:     "Expand ISBN",
		Description: "Walks from an ISBN to its work, the work's editions and their authors",
		Tags:        []string{"Catalog"},
	}, s.handleExpandISBN)

	huma.Register(s.api, huma.Operation{
		OperationID: "listProviders",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers",
		Summary:     "List providers",
		Description: "Returns the names of the registered metadata providers",
		Tags:        []string{"Catalog"},
	}, s.handleListProviders)
}

// === DTOs ===

// ISBNInput addresses an edition by ISBN.
type ISBNInput struct {
	ISBN     string `path:"isbn" doc:"ISBN-10 or ISBN-13, hyphens allowed"`
	Provider string `query:"provider" doc:"Provider name; the configured default when empty"`
}

// IDInput addresses a record by provider id.
type IDInput struct {
	ID       int    `path:"id" doc:"Provider record id"`
	Provider string `query:"provider" doc:"Provider name; the configured default when empty"`
}

// BulkRequest lists provider ids to fetch.
type BulkRequest struct {
	IDs []int `json:"ids" doc:"Provider ids, at most 100"`
}

// BulkInput wraps the bulk request for Huma.
type BulkInput struct {
	Provider string `query:"provider" doc:"Provider name; the configured default when empty"`
	Body     BulkRequest
}

// EditionOutput wraps an edition for Huma.
type EditionOutput struct {
	Body *domain.Edition
}

// WorkOutput wraps a work for Huma.
type WorkOutput struct {
	Body *domain.Work
}

// AuthorOutput wraps an author for Huma.
type AuthorOutput struct {
	Body *domain.Author
}

// BulkEditionsResponse contains editions in request order.
type BulkEditionsResponse struct {
	Editions []*domain.Edition `json:"editions" doc:"Editions in request order"`
}

// BulkEditionsOutput wraps the bulk editions response for Huma.
type BulkEditionsOutput struct {
	Body BulkEditionsResponse
}

// BulkAuthorsResponse contains authors in request order.
type BulkAuthorsResponse struct {
	Authors []*domain.Author `json:"authors" doc:"Authors in request order"`
}

// BulkAuthorsOutput wraps the bulk authors response for Huma.
type BulkAuthorsOutput struct {
	Body BulkAuthorsResponse
}

// ExpansionOutput wraps an ISBN expansion for Huma.
type ExpansionOutput struct {
	Body *domain.Expansion
}

// ProvidersResponse lists registered providers.
type ProvidersResponse struct {
	Providers []string `json:"providers" doc:"Registered provider names"`
}

// ProvidersOutput wraps the providers response for Huma.
type ProvidersOutput struct {
	Body ProvidersResponse
}

// === Handlers ===

func (s *Server) handleGetEditionByISBN(ctx context.Context, input *ISBNInput) (*EditionOutput, error) {
	edition, err := s.catalog.GetEditionByISBN(ctx, input.Provider, input.ISBN)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &EditionOutput{Body: edition}, nil
}

func (s *Server) handleGetEdition(ctx context.Context, input *IDInput) (*EditionOutput, error) {
	edition, err := s.catalog.GetEdition(ctx, input.Provider, input.ID)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &EditionOutput{Body: edition}, nil
}

func (s *Server) handleBulkEditions(ctx context.Context, input *BulkInput) (*BulkEditionsOutput, error) {
	editions, err := s.catalog.BulkEditions(ctx, input.Provider, input.Body.IDs)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &BulkEditionsOutput{Body: BulkEditionsResponse{Editions: editions}}, nil
}

func (s *Server) handleGetWork(ctx context.Context, input *IDInput) (*WorkOutput, error) {
	work, err := s.catalog.GetWork(ctx, input.Provider, input.ID)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &WorkOutput{Body: work}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *IDInput) (*AuthorOutput, error) {
	author, err := s.catalog.GetAuthor(ctx, input.Provider, input.ID)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &AuthorOutput{Body: author}, nil
}

func (s *Server) handleBulkAuthors(ctx context.Context, input *BulkInput) (*BulkAuthorsOutput, error) {
	authors, err := s.catalog.BulkAuthors(ctx, input.Provider, input.Body.IDs)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &BulkAuthorsOutput{Body: BulkAuthorsResponse{Authors: authors}}, nil
}

func (s *Server) handleExpandISBN(ctx context.Context, input *ISBNInput) (*ExpansionOutput, error) {
	expansion, err := s.catalog.ExpandISBN(ctx, input.Provider, input.ISBN)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &ExpansionOutput{Body: expansion}, nil
}

func (s *Server) handleListProviders(_ context.Context, _ *struct{}) (*ProvidersOutput, error) {
	return &ProvidersOutput{Body: ProvidersResponse{Providers: s.catalog.Providers()}}, nil
}
