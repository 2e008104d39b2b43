package goodreads

import (
	"regexp"
	"strconv"
	"strings"
)

// firstIDInURL matches the first run of digits that directly follows a slash,
// e.g. "123" in "/book/show/123.Title" or "/work/editions/123?page=2".
var firstIDInURL = regexp.MustCompile(`/(\d+)`)

// ResolveIDFromURL extracts the numeric entity id embedded in an absolute or
// relative provider URL. It never defaults: a URL without an id is an error,
// since a wrong id silently corrupts every cross-reference built on it.
func ResolveIDFromURL(rawURL string) (int, error) {
	m := firstIDInURL.FindStringSubmatch(stripAuthority(rawURL))
	if m == nil {
		return 0, &ExtractError{Op: "resolveID", Field: "url", URL: rawURL, Err: ErrMalformedURL}
	}

	id, err := strconv.Atoi(m[1])
	if err != nil || id <= 0 {
		return 0, &ExtractError{Op: "resolveID", Field: "url", URL: rawURL, Err: ErrMalformedURL}
	}
	return id, nil
}

// stripAuthority drops the scheme and host of an absolute or
// protocol-relative URL so digits in a host or port are never taken for an
// id. The path and query are kept.
func stripAuthority(rawURL string) string {
	rest, ok := strings.CutPrefix(rawURL, "//")
	if !ok {
		i := strings.Index(rawURL, "://")
		if i < 0 {
			return rawURL
		}
		rest = rawURL[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		return rest[i:]
	}
	return ""
}

// ResolveCanonicalID returns the id of the entity a page describes, read from
// its canonical link. Every real provider page carries one; a page without it
// is an error or redirect page.
func ResolveCanonicalID(doc *Document) (int, error) {
	link, ok := doc.FindFirst(`link[rel="canonical"]`)
	if !ok {
		return 0, ErrMissingCanonicalLink
	}

	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return 0, ErrMissingCanonicalLink
	}

	return ResolveIDFromURL(href)
}
