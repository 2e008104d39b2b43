package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const pagePrefix = "page:"

// CachedPage wraps a fetched page body with cache info.
type CachedPage struct {
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// pageKey hashes the URL so long query strings stay within key limits.
func pageKey(url string) []byte {
	hash := sha256.Sum256([]byte(url))
	return fmt.Appendf(nil, "%s%s", pagePrefix, hex.EncodeToString(hash[:]))
}

// GetCachedPage retrieves a cached page.
// Returns nil, nil if not found or expired.
func (s *Store) GetCachedPage(ctx context.Context, url string) (*CachedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cached CachedPage
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pageKey(url))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cached)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached page: %w", err)
	}

	// Check if expired
	if s.now().Sub(cached.FetchedAt) > s.pageTTL {
		return nil, nil // Treat as cache miss
	}

	return &cached, nil
}

// SetCachedPage stores a page body. Badger drops the entry on its own once
// the TTL has passed.
func (s *Store) SetCachedPage(ctx context.Context, url, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cached := CachedPage{
		URL:       url,
		Body:      body,
		FetchedAt: s.now(),
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal cached page: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(pageKey(url), data).WithTTL(s.pageTTL))
	})
}

// DeleteCachedPage removes a cached page.
func (s *Store) DeleteCachedPage(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(pageKey(url))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Idempotent
		}
		return err
	})
}
