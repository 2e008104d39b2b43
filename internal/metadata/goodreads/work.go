package goodreads

import (
	"strings"

	"github.com/listenupapp/catalog-scraper/internal/domain"
)

// Selectors for the work "all editions" listing page.
const (
	selWorkTitle       = "h1"
	selWorkAuthorBlock = "h2"
	selWorkAuthorLinks = "a"
	selWorkEditions    = "a.bookTitle"

	workTitleSuffix = "> Editions"
)

// ExtractWork parses a work's edition listing page.
//
// Pagination is not followed: EditionIDs holds the editions of the page that
// was fetched, which for large works is only a prefix of the full list.
func ExtractWork(raw string) (*domain.Work, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, extractErr("work", "document", err)
	}

	workID, err := ResolveCanonicalID(doc)
	if err != nil {
		return nil, extractErr("work", FieldCanonicalLink, err)
	}

	authors, err := extractWorkAuthors(doc)
	if err != nil {
		return nil, extractErr("work", "authors", err)
	}

	heading, ok := doc.FindFirst(selWorkTitle)
	if !ok {
		return nil, extractErr("work", "title", ErrMissingTitle)
	}
	title := strings.TrimSpace(strings.ReplaceAll(heading.Text(), workTitleSuffix, ""))

	links := doc.FindAll(selWorkEditions)
	editionIDs := make([]int, 0, len(links))
	for _, link := range links {
		href, _ := link.Attr("href")
		id, err := ResolveIDFromURL(href)
		if err != nil {
			return nil, extractErr("work", "edition_ids", err)
		}
		editionIDs = append(editionIDs, id)
	}

	return &domain.Work{
		ProviderID: workID,
		Title:      title,
		Authors:    authors,
		EditionIDs: editionIDs,
	}, nil
}

// extractWorkAuthors reads the links of the first secondary heading that has any.
func extractWorkAuthors(doc *Document) ([]domain.WorkAuthorInfo, error) {
	var links []Node
	for _, block := range doc.FindAll(selWorkAuthorBlock) {
		if links = block.FindAll(selWorkAuthorLinks); len(links) > 0 {
			break
		}
	}

	authors := make([]domain.WorkAuthorInfo, 0, len(links))
	for _, link := range links {
		href, _ := link.Attr("href")
		id, err := ResolveIDFromURL(href)
		if err != nil {
			return nil, err
		}
		authors = append(authors, domain.WorkAuthorInfo{
			Name:             strings.TrimSpace(link.Text()),
			ProviderAuthorID: id,
		})
	}
	return authors, nil
}
