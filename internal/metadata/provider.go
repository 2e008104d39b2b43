// Package metadata defines the contract every bibliographic metadata
// provider implements and the registry services look providers up in.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/listenupapp/catalog-scraper/internal/domain"
)

// Provider turns identifiers into provider-agnostic records.
type Provider interface {
	Name() string
	GetEditionByISBN(ctx context.Context, isbn string) (*domain.Edition, error)
	GetEdition(ctx context.Context, editionID int) (*domain.Edition, error)
	GetWork(ctx context.Context, workID int) (*domain.Work, error)
	GetAuthor(ctx context.Context, authorID int) (*domain.Author, error)
	BulkFetchEditions(ctx context.Context, editionIDs []int) ([]*domain.Edition, error)
	BulkFetchAuthors(ctx context.Context, authorIDs []int) ([]*domain.Author, error)
}

var (
	// ErrUnknownProvider is returned when no provider is registered under a name.
	ErrUnknownProvider = errors.New("unknown metadata provider")

	// ErrDuplicateProvider is returned when a name is registered twice.
	ErrDuplicateProvider = errors.New("metadata provider already registered")
)

// Registry maps provider names to providers. Providers are registered
// explicitly at startup.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry pre-populated with providers.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds p under p.Name().
func (r *Registry) Register(p Provider) error {
	name := p.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, name)
	}
	r.providers[name] = p
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
