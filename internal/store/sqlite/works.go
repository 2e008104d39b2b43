package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/catalog-scraper/internal/domain"
	"github.com/listenupapp/catalog-scraper/internal/store"
)

// SaveWork upserts a work and replaces its author credits.
func (s *Store) SaveWork(ctx context.Context, w *domain.Work) error {
	if w == nil || w.ProviderID <= 0 {
		return store.ErrInvalidInput
	}

	editionIDs, err := encodeList(w.EditionIDs)
	if err != nil {
		return fmt.Errorf("encode edition ids: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO works (provider_id, title, edition_ids, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider_id) DO UPDATE SET
			title = excluded.title,
			edition_ids = excluded.edition_ids,
			fetched_at = excluded.fetched_at`,
		w.ProviderID, w.Title, editionIDs, formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("upsert work %d: %w", w.ProviderID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM work_authors WHERE work_id = ?`, w.ProviderID); err != nil {
		return fmt.Errorf("clear work authors: %w", err)
	}
	for i, a := range w.Authors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO work_authors (work_id, position, name, provider_author_id)
			VALUES (?, ?, ?, ?)`,
			w.ProviderID, i, a.Name, a.ProviderAuthorID,
		)
		if err != nil {
			return fmt.Errorf("insert work author: %w", err)
		}
	}

	return tx.Commit()
}

// GetWork retrieves a work by provider id.
// Returns store.ErrNotFound if it was never saved.
func (s *Store) GetWork(ctx context.Context, providerID int) (*domain.Work, error) {
	var (
		w          domain.Work
		editionIDs string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT provider_id, title, edition_ids FROM works WHERE provider_id = ?`, providerID,
	).Scan(&w.ProviderID, &w.Title, &editionIDs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if w.EditionIDs, err = decodeList[int](editionIDs); err != nil {
		return nil, fmt.Errorf("decode edition ids: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, provider_author_id FROM work_authors
		WHERE work_id = ? ORDER BY position`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	w.Authors = []domain.WorkAuthorInfo{}
	for rows.Next() {
		var a domain.WorkAuthorInfo
		if err := rows.Scan(&a.Name, &a.ProviderAuthorID); err != nil {
			return nil, err
		}
		w.Authors = append(w.Authors, a)
	}
	return &w, rows.Err()
}
