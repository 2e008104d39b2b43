package domain

import "time"

// yaml.v3 renders a nil slice as [], so optional lists go through a pointer
// to come out as null like every other absent field.

// MarshalYAML implements yaml.Marshaler.
func (e Edition) MarshalYAML() (any, error) {
	return struct {
		ProviderID        int                 `yaml:"provider_id"`
		ProviderWorkID    int                 `yaml:"provider_work_id"`
		Title             string              `yaml:"title"`
		Description       *string             `yaml:"description"`
		EditorAuthorsInfo []EditionAuthorInfo `yaml:"editor_authors_info"`
		BookFormat        *string             `yaml:"book_format"`
		Languages         *[]string           `yaml:"languages"`
		ISBN10            *string             `yaml:"isbn_10"`
		ISBN13            *string             `yaml:"isbn_13"`
		ASIN              *string             `yaml:"asin"`
		CoverURL          *string             `yaml:"cover_url"`
	}{
		ProviderID:        e.ProviderID,
		ProviderWorkID:    e.ProviderWorkID,
		Title:             e.Title,
		Description:       e.Description,
		EditorAuthorsInfo: e.EditorAuthorsInfo,
		BookFormat:        e.BookFormat,
		Languages:         optionalList(e.Languages),
		ISBN10:            e.ISBN10,
		ISBN13:            e.ISBN13,
		ASIN:              e.ASIN,
		CoverURL:          e.CoverURL,
	}, nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Author) MarshalYAML() (any, error) {
	return struct {
		ProviderID    int            `yaml:"provider_id"`
		Name          string         `yaml:"name"`
		Bio           *string        `yaml:"bio"`
		Website       *string        `yaml:"website"`
		BornPlace     *string        `yaml:"born_place"`
		BornTime      *time.Time     `yaml:"born_time"`
		TwitterHandle *string        `yaml:"twitter_handle"`
		Genres        *[]string      `yaml:"genres"`
		Links         []ExternalLink `yaml:"links"`
	}{
		ProviderID:    a.ProviderID,
		Name:          a.Name,
		Bio:           a.Bio,
		Website:       a.Website,
		BornPlace:     a.BornPlace,
		BornTime:      a.BornTime,
		TwitterHandle: a.TwitterHandle,
		Genres:        optionalList(a.Genres),
		Links:         a.Links,
	}, nil
}

func optionalList[T any](v []T) *[]T {
	if v == nil {
		return nil
	}
	return &v
}
