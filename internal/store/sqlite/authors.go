package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/catalog-scraper/internal/domain"
	"github.com/listenupapp/catalog-scraper/internal/store"
)

// SaveAuthor upserts an author.
func (s *Store) SaveAuthor(ctx context.Context, a *domain.Author) error {
	if a == nil || a.ProviderID <= 0 {
		return store.ErrInvalidInput
	}

	genres, err := encodeList(a.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	links, err := encodeList(a.Links)
	if err != nil {
		return fmt.Errorf("encode links: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO authors (
			provider_id, name, bio, website, born_place, born_time,
			twitter_handle, genres, links, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider_id) DO UPDATE SET
			name = excluded.name,
			bio = excluded.bio,
			website = excluded.website,
			born_place = excluded.born_place,
			born_time = excluded.born_time,
			twitter_handle = excluded.twitter_handle,
			genres = excluded.genres,
			links = excluded.links,
			fetched_at = excluded.fetched_at`,
		a.ProviderID,
		a.Name,
		nullableString(a.Bio),
		nullableString(a.Website),
		nullableString(a.BornPlace),
		nullTimeString(a.BornTime),
		nullableString(a.TwitterHandle),
		genres,
		links,
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("upsert author %d: %w", a.ProviderID, err)
	}
	return nil
}

// GetAuthor retrieves an author by provider id.
// Returns store.ErrNotFound if it was never saved.
func (s *Store) GetAuthor(ctx context.Context, providerID int) (*domain.Author, error) {
	var (
		a         domain.Author
		bio       sql.NullString
		website   sql.NullString
		bornPlace sql.NullString
		bornTime  sql.NullString
		twitter   sql.NullString
		genres    string
		links     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT provider_id, name, bio, website, born_place, born_time,
			twitter_handle, genres, links
		FROM authors WHERE provider_id = ?`, providerID,
	).Scan(&a.ProviderID, &a.Name, &bio, &website, &bornPlace, &bornTime, &twitter, &genres, &links)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.Bio = stringPtr(bio)
	a.Website = stringPtr(website)
	a.BornPlace = stringPtr(bornPlace)
	a.TwitterHandle = stringPtr(twitter)
	if a.BornTime, err = parseNullableTime(bornTime); err != nil {
		return nil, fmt.Errorf("parse born_time: %w", err)
	}
	if a.Genres, err = decodeList[string](genres); err != nil {
		return nil, fmt.Errorf("decode genres: %w", err)
	}
	if a.Links, err = decodeList[domain.ExternalLink](links); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}
	return &a, nil
}
