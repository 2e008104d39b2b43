package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listenupapp/catalog-scraper/internal/domain"
	"github.com/listenupapp/catalog-scraper/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWork_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := &domain.Work{
		ProviderID: 3204327,
		Title:      "The Little Prince",
		Authors: []domain.WorkAuthorInfo{
			{Name: "Antoine de Saint-Exupéry", ProviderAuthorID: 1020792},
		},
		EditionIDs: []int{157993, 6310, 1022302},
	}
	require.NoError(t, s.SaveWork(ctx, w))

	got, err := s.GetWork(ctx, w.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, w, got)
}

func TestSaveWork_ReplacesAuthors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := &domain.Work{
		ProviderID: 1,
		Title:      "Draft",
		Authors: []domain.WorkAuthorInfo{
			{Name: "A", ProviderAuthorID: 10},
			{Name: "B", ProviderAuthorID: 11},
		},
	}
	require.NoError(t, s.SaveWork(ctx, w))

	w.Title = "Final"
	w.Authors = []domain.WorkAuthorInfo{{Name: "B", ProviderAuthorID: 11}}
	require.NoError(t, s.SaveWork(ctx, w))

	got, err := s.GetWork(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, []domain.WorkAuthorInfo{{Name: "B", ProviderAuthorID: 11}}, got.Authors)
	assert.Empty(t, got.EditionIDs)
}

func TestSaveEdition_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := &domain.Edition{
		ProviderID:     157993,
		ProviderWorkID: 3204327,
		Title:          "The Little Prince",
		Description:    strPtr("A pilot stranded in the desert..."),
		EditorAuthorsInfo: []domain.EditionAuthorInfo{
			{Name: "Antoine de Saint-Exupéry", AuthorID: 1020792},
			{Name: "Richard Howard", AuthorID: 6560, Comment: strPtr("Translator")},
		},
		BookFormat: strPtr("Paperback"),
		Languages:  []string{"English"},
		ISBN10:     strPtr("0156012197"),
		ISBN13:     strPtr("9780156012195"),
		CoverURL:   strPtr("https://images.example.com/157993.jpg"),
	}
	require.NoError(t, s.SaveEdition(ctx, e))

	got, err := s.GetEdition(ctx, e.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	byISBN, err := s.GetEditionByISBN13(ctx, "9780156012195")
	require.NoError(t, err)
	assert.Equal(t, e.ProviderID, byISBN.ProviderID)
}

func TestSaveEdition_AbsentFieldsStayNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEdition(ctx, &domain.Edition{
		ProviderID:     5,
		ProviderWorkID: 6,
		Title:          "Bare",
	}))

	got, err := s.GetEdition(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.ISBN10)
	assert.Nil(t, got.ASIN)
	assert.Nil(t, got.Languages)
	assert.Empty(t, got.EditorAuthorsInfo)
}

func TestSaveAuthor_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	born := time.Date(1900, 6, 29, 0, 0, 0, 0, time.UTC)
	a := &domain.Author{
		ProviderID: 1020792,
		Name:       "Antoine de Saint-Exupéry",
		Bio:        strPtr("French writer and aviator."),
		Website:    strPtr("http://www.saint-exupery.org"),
		BornTime:   &born,
		Genres:     []string{"Classics"},
		Links:      []domain.ExternalLink{{Name: "Wikipedia", URL: "https://wikipedia.org"}},
	}
	require.NoError(t, s.SaveAuthor(ctx, a))

	got, err := s.GetAuthor(ctx, a.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetWork(ctx, 404)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.GetEdition(ctx, 404)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.GetAuthor(ctx, 404)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestSave_RejectsMissingID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.SaveWork(ctx, &domain.Work{Title: "x"}), store.ErrInvalidInput)
	assert.ErrorIs(t, s.SaveEdition(ctx, nil), store.ErrInvalidInput)
	assert.ErrorIs(t, s.SaveAuthor(ctx, &domain.Author{ProviderID: -1}), store.ErrInvalidInput)
}
