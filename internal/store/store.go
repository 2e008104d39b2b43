// Package store provides a persistent page cache backed by Badger.
package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultPageTTL is how long a cached page is served before it is refetched.
const DefaultPageTTL = 24 * time.Hour

// Store wraps a Badger database instance.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	pageTTL time.Duration
	now     func() time.Time
}

// New opens (or creates) the Badger database at path.
// A non-positive pageTTL selects DefaultPageTTL.
func New(path string, pageTTL time.Duration, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	return open(opts, pageTTL, logger)
}

// NewInMemory opens a Badger database that lives only in memory.
func NewInMemory(pageTTL time.Duration, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts, pageTTL, logger)
}

func open(opts badger.Options, pageTTL time.Duration, logger *slog.Logger) (*Store, error) {
	if pageTTL <= 0 {
		pageTTL = DefaultPageTTL
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Page cache opened", "path", opts.Dir, "ttl", pageTTL)
	}

	return &Store{
		db:      db,
		logger:  logger,
		pageTTL: pageTTL,
		now:     time.Now,
	}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing page cache")
	}
	return s.db.Close()
}
