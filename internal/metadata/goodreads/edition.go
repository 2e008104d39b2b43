package goodreads

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/listenupapp/catalog-scraper/internal/domain"
)

// Selectors for the edition (book detail) page.
const (
	selOtherEditions   = "div.otherEditionsActions"
	selEditionLinks    = "a"
	selEditionTitle    = "#bookTitle"
	selDescription     = "#description"
	selDescriptionPart = "span"
	selAuthorContainer = "div.authorName__container"
	selAuthorLink      = "a"
	selAuthorRole      = "span.greyText"
	selBookFormat      = `span[itemprop="bookFormat"]`
	selLanguages       = `div[itemprop="inLanguage"]`
	selInfoBoxLabel    = "div.infoBoxRowTitle"
	selInfoBoxValue    = "div.infoBoxRowItem"
	selCoverImage      = "img#coverImage"

	allEditionsLinkText = "All Editions"
	isbnLabel           = "isbn"
)

var (
	// isbnPair matches the ISBN info row: "1402894105 (ISBN13: 9781402894101)".
	isbnPair = regexp.MustCompile(`(\d{10})\D+13: (\d{13})`)

	// asinToken matches the ASIN the page embeds in inline script data.
	asinToken = regexp.MustCompile(`asin: (\S{10})`)
)

// ExtractEdition parses an edition detail page.
//
// The canonical link, the work reference, the title and every author profile
// link are required; any other field that is missing comes back nil.
func ExtractEdition(raw string) (*domain.Edition, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, extractErr("edition", "document", err)
	}

	editionID, err := ResolveCanonicalID(doc)
	if err != nil {
		return nil, extractErr("edition", FieldCanonicalLink, err)
	}

	workID, err := extractWorkReference(doc)
	if err != nil {
		return nil, extractErr("edition", "work_reference", err)
	}

	titleNode, ok := doc.FindFirst(selEditionTitle)
	if !ok {
		return nil, extractErr("edition", "title", ErrMissingTitle)
	}

	description, err := extractDescription(doc)
	if err != nil {
		return nil, extractErr("edition", "description", err)
	}

	authors, err := extractEditionAuthors(doc)
	if err != nil {
		return nil, extractErr("edition", "editor_authors_info", err)
	}

	isbn10, isbn13 := extractISBN(doc)

	return &domain.Edition{
		ProviderID:        editionID,
		ProviderWorkID:    workID,
		Title:             strings.TrimSpace(titleNode.Text()),
		Description:       description,
		EditorAuthorsInfo: authors,
		BookFormat:        extractBookFormat(doc),
		Languages:         extractLanguages(doc),
		ISBN10:            isbn10,
		ISBN13:            isbn13,
		ASIN:              ParseASIN(doc.Raw()),
		CoverURL:          extractCoverURL(doc),
	}, nil
}

// extractWorkReference resolves the parent work from the "All Editions" link.
func extractWorkReference(doc *Document) (int, error) {
	container, ok := doc.FindFirst(selOtherEditions)
	if !ok {
		return 0, ErrMissingWorkReference
	}

	for _, link := range container.FindAll(selEditionLinks) {
		if strings.TrimSpace(link.Text()) != allEditionsLinkText {
			continue
		}
		href, _ := link.Attr("href")
		if strings.TrimSpace(href) == "" {
			return 0, ErrMissingWorkReference
		}
		return ResolveIDFromURL(href)
	}

	return 0, ErrMissingWorkReference
}

// extractDescription prefers the second text segment: the first one is a
// truncated preview and the second the full text.
func extractDescription(doc *Document) (*string, error) {
	container, ok := doc.FindFirst(selDescription)
	if !ok {
		return nil, nil
	}

	parts := container.FindAll(selDescriptionPart)
	switch len(parts) {
	case 0:
		return nil, ErrMalformedDescription
	case 1:
		return optional(parts[0].Text()), nil
	default:
		return optional(parts[1].Text()), nil
	}
}

func extractEditionAuthors(doc *Document) ([]domain.EditionAuthorInfo, error) {
	containers := doc.FindAll(selAuthorContainer)
	authors := make([]domain.EditionAuthorInfo, 0, len(containers))

	for _, c := range containers {
		link, ok := c.FindFirst(selAuthorLink)
		if !ok {
			return nil, fmt.Errorf("author container has no profile link: %w", ErrMalformedURL)
		}

		href, _ := link.Attr("href")
		authorID, err := ResolveIDFromURL(href)
		if err != nil {
			return nil, err
		}

		var comment *string
		if role, ok := c.FindFirst(selAuthorRole); ok {
			comment = parseRole(role.Text())
		}

		authors = append(authors, domain.EditionAuthorInfo{
			Name:     strings.TrimSpace(link.Text()),
			AuthorID: authorID,
			Comment:  comment,
		})
	}

	return authors, nil
}

// parseRole turns "(Illustrator)" into "Illustrator".
func parseRole(s string) *string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return optional(s)
}

func extractBookFormat(doc *Document) *string {
	node, ok := doc.FindFirst(selBookFormat)
	if !ok {
		return nil
	}
	return optional(node.Text())
}

// extractLanguages splits the comma separated language list.
func extractLanguages(doc *Document) []string {
	node, ok := doc.FindFirst(selLanguages)
	if !ok {
		return nil
	}

	var languages []string
	for _, lang := range strings.Split(node.Text(), ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			languages = append(languages, lang)
		}
	}
	return languages
}

// extractISBN reads the ISBN row of the info box. Editions without an ISBN,
// or with one in another shape, yield nil for both codes.
func extractISBN(doc *Document) (isbn10, isbn13 *string) {
	pairs := ExtractLabelValuePairs(doc, selInfoBoxLabel, selInfoBoxValue)
	value, ok := lookupValue(pairs, func(label string) bool {
		return strings.ToLower(strings.TrimSpace(label)) == isbnLabel
	})
	if !ok {
		return nil, nil
	}
	return ParseISBN(value)
}

// ParseISBN extracts the ISBN-10 and ISBN-13 from an info row value such as
// "1402894105 (ISBN13: 9781402894101)". Both are nil when the text does not
// match.
func ParseISBN(value string) (isbn10, isbn13 *string) {
	m := isbnPair.FindStringSubmatch(value)
	if m == nil {
		return nil, nil
	}
	return &m[1], &m[2]
}

// ParseASIN scans raw, unparsed HTML for the embedded ASIN token. The value
// sits in inline script data rather than in element text, so it is matched
// on the markup itself.
func ParseASIN(raw string) *string {
	m := asinToken.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	return &m[1]
}

func extractCoverURL(doc *Document) *string {
	img, ok := doc.FindFirst(selCoverImage)
	if !ok {
		return nil
	}
	src, _ := img.Attr("src")
	return optional(src)
}
