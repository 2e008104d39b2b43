package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-scraper/internal/domain"
	domainerrors "github.com/listenupapp/catalog-scraper/internal/errors"
	"github.com/listenupapp/catalog-scraper/internal/fetch"
	"github.com/listenupapp/catalog-scraper/internal/metadata"
	"github.com/listenupapp/catalog-scraper/internal/metadata/goodreads"
	"github.com/listenupapp/catalog-scraper/internal/validation"
)

// fakeProvider serves records from maps and counts author lookups.
type fakeProvider struct {
	mu          sync.Mutex
	byISBN      map[string]*domain.Edition
	editions    map[int]*domain.Edition
	works       map[int]*domain.Work
	authors     map[int]*domain.Author
	authorCalls map[int]int
	err         error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		byISBN:      map[string]*domain.Edition{},
		editions:    map[int]*domain.Edition{},
		works:       map[int]*domain.Work{},
		authors:     map[int]*domain.Author{},
		authorCalls: map[int]int{},
	}
}

func notFound(url string) error {
	return &fetch.FetchError{URL: url, StatusCode: 404, Err: fetch.ErrNotFound}
}

func (f *fakeProvider) Name() string { return "goodreads" }

func (f *fakeProvider) GetEditionByISBN(_ context.Context, isbn string) (*domain.Edition, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byISBN[isbn]; ok {
		return e, nil
	}
	return nil, notFound("/search?q=" + isbn)
}

func (f *fakeProvider) GetEdition(_ context.Context, id int) (*domain.Edition, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.editions[id]; ok {
		return e, nil
	}
	return nil, notFound(fmt.Sprintf("/book/show/%d", id))
}

func (f *fakeProvider) GetWork(_ context.Context, id int) (*domain.Work, error) {
	if f.err != nil {
		return nil, f.err
	}
	if w, ok := f.works[id]; ok {
		return w, nil
	}
	return nil, notFound(fmt.Sprintf("/work/editions/%d", id))
}

func (f *fakeProvider) GetAuthor(_ context.Context, id int) (*domain.Author, error) {
	f.mu.Lock()
	f.authorCalls[id]++
	f.mu.Unlock()
	if a, ok := f.authors[id]; ok {
		return a, nil
	}
	return nil, notFound(fmt.Sprintf("/author/show/%d", id))
}

func (f *fakeProvider) BulkFetchEditions(ctx context.Context, ids []int) ([]*domain.Edition, error) {
	out := make([]*domain.Edition, 0, len(ids))
	for _, id := range ids {
		e, err := f.GetEdition(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeProvider) BulkFetchAuthors(ctx context.Context, ids []int) ([]*domain.Author, error) {
	out := make([]*domain.Author, 0, len(ids))
	for _, id := range ids {
		a, err := f.GetAuthor(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

type recordingSink struct {
	works    []int
	editions []int
	authors  []int
	err      error
}

func (r *recordingSink) SaveWork(_ context.Context, w *domain.Work) error {
	r.works = append(r.works, w.ProviderID)
	return r.err
}

func (r *recordingSink) SaveEdition(_ context.Context, e *domain.Edition) error {
	r.editions = append(r.editions, e.ProviderID)
	return r.err
}

func (r *recordingSink) SaveAuthor(_ context.Context, a *domain.Author) error {
	r.authors = append(r.authors, a.ProviderID)
	return r.err
}

func strPtr(s string) *string { return &s }

// littlePrince seeds a work with two editions that share an author.
func littlePrince() *fakeProvider {
	p := newFakeProvider()

	first := &domain.Edition{
		ProviderID:     157993,
		ProviderWorkID: 3204327,
		Title:          "The Little Prince",
		EditorAuthorsInfo: []domain.EditionAuthorInfo{
			{Name: "Antoine de Saint-Exupéry", AuthorID: 1020792},
			{Name: "Richard Howard", AuthorID: 6560, Comment: strPtr("Translator")},
		},
	}
	second := &domain.Edition{
		ProviderID:     6310,
		ProviderWorkID: 3204327,
		Title:          "Le Petit Prince",
		EditorAuthorsInfo: []domain.EditionAuthorInfo{
			{Name: "Antoine de Saint-Exupéry", AuthorID: 1020792},
		},
	}

	p.byISBN["0156012197"] = first
	p.editions[first.ProviderID] = first
	p.editions[second.ProviderID] = second
	p.works[3204327] = &domain.Work{
		ProviderID: 3204327,
		Title:      "The Little Prince",
		Authors:    []domain.WorkAuthorInfo{{Name: "Antoine de Saint-Exupéry", ProviderAuthorID: 1020792}},
		EditionIDs: []int{157993, 6310},
	}
	p.authors[1020792] = &domain.Author{ProviderID: 1020792, Name: "Antoine de Saint-Exupéry", Links: []domain.ExternalLink{}}
	p.authors[6560] = &domain.Author{ProviderID: 6560, Name: "Richard Howard", Links: []domain.ExternalLink{}}
	return p
}

func newTestService(t *testing.T, p metadata.Provider, sink RecordSink) *CatalogService {
	t.Helper()
	registry, err := metadata.NewRegistry(p)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCatalogService(registry, "goodreads", validation.New(), sink, logger)
}

func TestCatalogService_GetEditionByISBN(t *testing.T) {
	svc := newTestService(t, littlePrince(), nil)

	edition, err := svc.GetEditionByISBN(context.Background(), "", "0-15-601219-7")
	require.NoError(t, err)
	assert.Equal(t, 157993, edition.ProviderID)
}

func TestCatalogService_InvalidInput(t *testing.T) {
	svc := newTestService(t, littlePrince(), nil)
	ctx := context.Background()

	_, err := svc.GetEditionByISBN(ctx, "", "1234")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.GetEdition(ctx, "", 0)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.GetAuthor(ctx, "", -4)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.BulkEditions(ctx, "", nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	tooMany := make([]int, MaxBulkIDs+1)
	for i := range tooMany {
		tooMany[i] = i + 1
	}
	_, err = svc.BulkAuthors(ctx, "", tooMany)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCatalogService_UnknownProvider(t *testing.T) {
	svc := newTestService(t, littlePrince(), nil)

	_, err := svc.GetWork(context.Background(), "openlibrary", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUnknownProvider)
	assert.ErrorIs(t, err, metadata.ErrUnknownProvider)
}

func TestCatalogService_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *domainerrors.Error
	}{
		{"not found", notFound("/book/show/1"), domainerrors.ErrNotFound},
		{"rate limited", &fetch.FetchError{URL: "u", StatusCode: 429, Err: fetch.ErrRateLimited}, domainerrors.ErrRateLimited},
		{"server", &fetch.FetchError{URL: "u", StatusCode: 503, Err: fetch.ErrServer}, domainerrors.ErrUpstream},
		{"extraction", &goodreads.ExtractError{Op: "edition", Field: "title", Err: goodreads.ErrMissingTitle}, domainerrors.ErrExtraction},
		{"cancelled", context.Canceled, domainerrors.ErrUpstream},
		{"unknown", errors.New("boom"), domainerrors.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := littlePrince()
			p.err = tt.err
			svc := newTestService(t, p, nil)

			_, err := svc.GetEdition(context.Background(), "", 157993)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err, "cause is kept")
		})
	}
}

func TestCatalogService_ISBNWithoutExactHit(t *testing.T) {
	p := littlePrince()
	p.err = &goodreads.Error{Op: "getEditionByISBN", ID: "9780000000002", Err: &goodreads.ExtractError{
		Op: "edition", Field: goodreads.FieldCanonicalLink, Err: goodreads.ErrMissingCanonicalLink,
	}}
	svc := newTestService(t, p, nil)

	_, err := svc.GetEditionByISBN(context.Background(), "", "9780000000002")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

// goodreadsService serves every request with page through a real provider.
func goodreadsService(t *testing.T, page string) *CatalogService {
	t.Helper()
	fetcher := fetch.FetcherFunc(func(context.Context, string) (string, error) {
		return page, nil
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newTestService(t, goodreads.New(fetcher, goodreads.Options{}, logger), nil)
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "metadata", "goodreads", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestCatalogService_ISBNSearchPageClassification(t *testing.T) {
	edition := loadFixture(t, "edition.html")
	brokenAuthor := strings.Replace(edition, "/author/show/6560.Richard_Howard", "/author/show/Richard_Howard", 1)
	require.NotEqual(t, edition, brokenAuthor)

	tests := []struct {
		name string
		page string
		want *domainerrors.Error
	}{
		{"search results page", loadFixture(t, "no_canonical.html"), domainerrors.ErrNotFound},
		{"edition with broken author link", brokenAuthor, domainerrors.ErrExtraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := goodreadsService(t, tt.page)

			_, err := svc.GetEditionByISBN(context.Background(), "", "0156012197")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := goodreadsService(t, brokenAuthor).GetEditionByISBN(context.Background(), "", "0156012197")
	assert.ErrorIs(t, err, goodreads.ErrMalformedURL)
	assert.NotErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalogService_ExpandISBN(t *testing.T) {
	p := littlePrince()
	sink := &recordingSink{}
	svc := newTestService(t, p, sink)

	expansion, err := svc.ExpandISBN(context.Background(), "", "0156012197")
	require.NoError(t, err)

	assert.Equal(t, 3204327, expansion.Work.ProviderID)
	require.Len(t, expansion.Editions, 2)

	first := expansion.Editions[0]
	assert.Equal(t, 157993, first.Data.ProviderID)
	require.Len(t, first.AuthorsInfo, 2)
	assert.Equal(t, "Antoine de Saint-Exupéry", first.AuthorsInfo[0].Data.Name)
	assert.Nil(t, first.AuthorsInfo[0].Comment)
	assert.Equal(t, "Richard Howard", first.AuthorsInfo[1].Data.Name)
	assert.Equal(t, "Translator", *first.AuthorsInfo[1].Comment)

	second := expansion.Editions[1]
	assert.Equal(t, 6310, second.Data.ProviderID)
	require.Len(t, second.AuthorsInfo, 1)
	assert.Same(t, first.AuthorsInfo[0].Data, second.AuthorsInfo[0].Data)

	// Shared author fetched once.
	assert.Equal(t, 1, p.authorCalls[1020792])
	assert.Equal(t, 1, p.authorCalls[6560])

	assert.Equal(t, []int{3204327}, sink.works)
	assert.ElementsMatch(t, []int{1020792, 6560}, sink.authors)
	assert.Contains(t, sink.editions, 6310)
}

func TestCatalogService_ExpandISBN_EmptyWork(t *testing.T) {
	p := littlePrince()
	p.works[3204327].EditionIDs = []int{}
	svc := newTestService(t, p, nil)

	expansion, err := svc.ExpandISBN(context.Background(), "", "0156012197")
	require.NoError(t, err)
	assert.NotNil(t, expansion.Editions)
	assert.Empty(t, expansion.Editions)
}

func TestCatalogService_ExpandISBN_AuthorFailureAbortsBatch(t *testing.T) {
	p := littlePrince()
	delete(p.authors, 6560)
	svc := newTestService(t, p, nil)

	_, err := svc.ExpandISBN(context.Background(), "", "0156012197")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCatalogService_SinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	svc := newTestService(t, littlePrince(), sink)

	_, err := svc.GetAuthor(context.Background(), "", 6560)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInternal)
}

func TestCatalogService_Bulk(t *testing.T) {
	svc := newTestService(t, littlePrince(), nil)
	ctx := context.Background()

	editions, err := svc.BulkEditions(ctx, "", []int{6310, 157993})
	require.NoError(t, err)
	assert.Equal(t, 6310, editions[0].ProviderID)
	assert.Equal(t, 157993, editions[1].ProviderID)

	_, err = svc.BulkAuthors(ctx, "", []int{6560, 404})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	assert.Equal(t, []string{"goodreads"}, svc.Providers())
}
