package goodreads

import (
	"errors"
	"fmt"
)

// Sentinel errors for page extraction. Each one means the page did not have
// the shape the extractors were written against.
var (
	ErrMalformedURL         = errors.New("goodreads: no numeric id in url")
	ErrMissingCanonicalLink = errors.New("goodreads: page has no canonical link")
	ErrMissingWorkReference = errors.New("goodreads: edition has no work reference")
	ErrMissingTitle         = errors.New("goodreads: page has no title")
	ErrMissingAuthorName    = errors.New("goodreads: author page has no name")
	ErrMalformedDescription = errors.New("goodreads: description container has no text segments")
)

// FieldCanonicalLink is the ExtractError field reported when a page cannot be
// identified. For a search URL it means the search had no exact hit.
const FieldCanonicalLink = "canonical_link"

// ExtractError wraps an extraction failure with the field and URL involved.
type ExtractError struct {
	Op    string // "edition", "work", "author"
	Field string // Field being extracted, e.g. "canonical_link"
	URL   string // Offending URL, if one was involved
	Err   error
}

func (e *ExtractError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("goodreads %s [%s %q]: %v", e.Op, e.Field, e.URL, e.Err)
	}
	return fmt.Sprintf("goodreads %s [%s]: %v", e.Op, e.Field, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// extractErr builds an ExtractError. URL context already carried by a nested
// ExtractError is kept.
func extractErr(op, field string, err error) error {
	var inner *ExtractError
	if errors.As(err, &inner) {
		return &ExtractError{Op: op, Field: field, URL: inner.URL, Err: inner.Err}
	}
	return &ExtractError{Op: op, Field: field, Err: err}
}

// Error wraps a façade failure with the operation and the requested identifier.
type Error struct {
	Op  string // "getEdition", "getEditionByISBN", "getWork", "getAuthor"
	ID  string // Edition/work/author id or ISBN
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("goodreads %s [%s]: %v", e.Op, e.ID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, id string, err error) error {
	return &Error{Op: op, ID: id, Err: err}
}
