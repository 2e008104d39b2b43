package domain

import "time"

// ExternalLink points at an author's presence elsewhere on the web.
type ExternalLink struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Author is a person credited on works and editions.
//
// BornPlace, BornTime, TwitterHandle, Genres and Links are part of the schema
// for richer providers; the scraping provider never fills them.
type Author struct {
	ProviderID    int            `json:"provider_id" yaml:"provider_id"`
	Name          string         `json:"name" yaml:"name"`
	Bio           *string        `json:"bio" yaml:"bio"`
	Website       *string        `json:"website" yaml:"website"`
	BornPlace     *string        `json:"born_place" yaml:"born_place"`
	BornTime      *time.Time     `json:"born_time" yaml:"born_time"`
	TwitterHandle *string        `json:"twitter_handle" yaml:"twitter_handle"`
	Genres        []string       `json:"genres" yaml:"genres"`
	Links         []ExternalLink `json:"links" yaml:"links"`
}
