package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/catalog-scraper/internal/domain"
	"github.com/listenupapp/catalog-scraper/internal/store"
)

const editionColumns = `provider_id, provider_work_id, title, description, book_format,
	languages, isbn_10, isbn_13, asin, cover_url`

// SaveEdition upserts an edition and replaces its contributor credits.
func (s *Store) SaveEdition(ctx context.Context, e *domain.Edition) error {
	if e == nil || e.ProviderID <= 0 {
		return store.ErrInvalidInput
	}

	languages, err := encodeList(e.Languages)
	if err != nil {
		return fmt.Errorf("encode languages: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO editions (`+editionColumns+`, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider_id) DO UPDATE SET
			provider_work_id = excluded.provider_work_id,
			title = excluded.title,
			description = excluded.description,
			book_format = excluded.book_format,
			languages = excluded.languages,
			isbn_10 = excluded.isbn_10,
			isbn_13 = excluded.isbn_13,
			asin = excluded.asin,
			cover_url = excluded.cover_url,
			fetched_at = excluded.fetched_at`,
		e.ProviderID,
		e.ProviderWorkID,
		e.Title,
		nullableString(e.Description),
		nullableString(e.BookFormat),
		languages,
		nullableString(e.ISBN10),
		nullableString(e.ISBN13),
		nullableString(e.ASIN),
		nullableString(e.CoverURL),
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("upsert edition %d: %w", e.ProviderID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM edition_authors WHERE edition_id = ?`, e.ProviderID); err != nil {
		return fmt.Errorf("clear edition authors: %w", err)
	}
	for i, a := range e.EditorAuthorsInfo {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO edition_authors (edition_id, position, name, author_id, comment)
			VALUES (?, ?, ?, ?, ?)`,
			e.ProviderID, i, a.Name, a.AuthorID, nullableString(a.Comment),
		)
		if err != nil {
			return fmt.Errorf("insert edition author: %w", err)
		}
	}

	return tx.Commit()
}

// GetEdition retrieves an edition by provider id.
// Returns store.ErrNotFound if it was never saved.
func (s *Store) GetEdition(ctx context.Context, providerID int) (*domain.Edition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+editionColumns+` FROM editions WHERE provider_id = ?`, providerID)
	return s.loadEdition(ctx, row)
}

// GetEditionByISBN13 retrieves a previously saved edition by its ISBN-13.
func (s *Store) GetEditionByISBN13(ctx context.Context, isbn13 string) (*domain.Edition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+editionColumns+` FROM editions WHERE isbn_13 = ? LIMIT 1`, isbn13)
	return s.loadEdition(ctx, row)
}

func (s *Store) loadEdition(ctx context.Context, row *sql.Row) (*domain.Edition, error) {
	var (
		e           domain.Edition
		description sql.NullString
		bookFormat  sql.NullString
		isbn10      sql.NullString
		isbn13      sql.NullString
		asin        sql.NullString
		coverURL    sql.NullString
		languages   string
	)
	err := row.Scan(
		&e.ProviderID,
		&e.ProviderWorkID,
		&e.Title,
		&description,
		&bookFormat,
		&languages,
		&isbn10,
		&isbn13,
		&asin,
		&coverURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	e.Description = stringPtr(description)
	e.BookFormat = stringPtr(bookFormat)
	e.ISBN10 = stringPtr(isbn10)
	e.ISBN13 = stringPtr(isbn13)
	e.ASIN = stringPtr(asin)
	e.CoverURL = stringPtr(coverURL)

	langs, err := decodeList[string](languages)
	if err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}
	if len(langs) > 0 {
		e.Languages = langs
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, author_id, comment FROM edition_authors
		WHERE edition_id = ? ORDER BY position`, e.ProviderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	e.EditorAuthorsInfo = []domain.EditionAuthorInfo{}
	for rows.Next() {
		var (
			a       domain.EditionAuthorInfo
			comment sql.NullString
		)
		if err := rows.Scan(&a.Name, &a.AuthorID, &comment); err != nil {
			return nil, err
		}
		a.Comment = stringPtr(comment)
		e.EditorAuthorsInfo = append(e.EditorAuthorsInfo, a)
	}
	return &e, rows.Err()
}
