// Package domain contains the provider-agnostic bibliographic records produced by metadata providers.
package domain

// WorkAuthorInfo credits an author on a work.
type WorkAuthorInfo struct {
	Name             string `json:"name" yaml:"name"`
	ProviderAuthorID int    `json:"provider_author_id" yaml:"provider_author_id"`
}

// Work is the abstract book that groups every edition of it.
//
// EditionIDs only covers the first page of the provider's edition listing,
// so it can be incomplete for works with many editions.
type Work struct {
	ProviderID int              `json:"provider_id" yaml:"provider_id"`
	Title      string           `json:"title" yaml:"title"`
	Authors    []WorkAuthorInfo `json:"authors" yaml:"authors"`
	EditionIDs []int            `json:"edition_ids" yaml:"edition_ids"`
}
