package goodreads

import (
	"strings"

	"github.com/listenupapp/catalog-scraper/internal/domain"
)

// Selectors for the author profile page.
const (
	selAuthorName  = "h1.authorName"
	selAuthorBio   = "div.aboutAuthorInfo"
	selAuthorLabel = "div.dataTitle"
	selAuthorValue = "div.dataItem"

	websiteLabel = "Website"
)

// bioBoilerplate is template text injected into the biography block.
var bioBoilerplate = []string{"edit data", "..more"}

// ExtractAuthor parses an author profile page. A page without an author name
// is rejected rather than returned as a nameless record.
func ExtractAuthor(raw string) (*domain.Author, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, extractErr("author", "document", err)
	}

	authorID, err := ResolveCanonicalID(doc)
	if err != nil {
		return nil, extractErr("author", FieldCanonicalLink, err)
	}

	var name string
	if node, ok := doc.FindFirst(selAuthorName); ok {
		name = strings.TrimSpace(node.Text())
	}
	if name == "" {
		return nil, extractErr("author", "name", ErrMissingAuthorName)
	}

	return &domain.Author{
		ProviderID: authorID,
		Name:       name,
		Bio:        extractBio(doc),
		Website:    extractWebsite(doc),
		Links:      []domain.ExternalLink{},
	}, nil
}

func extractBio(doc *Document) *string {
	node, ok := doc.FindFirst(selAuthorBio)
	if !ok {
		return nil
	}
	bio := node.Text()
	for _, junk := range bioBoilerplate {
		bio = strings.ReplaceAll(bio, junk, "")
	}
	return optional(bio)
}

func extractWebsite(doc *Document) *string {
	pairs := ExtractLabelValuePairs(doc, selAuthorLabel, selAuthorValue)
	value, ok := lookupValue(pairs, func(label string) bool {
		return strings.TrimSpace(label) == websiteLabel
	})
	if !ok {
		return nil
	}
	return optional(value)
}
