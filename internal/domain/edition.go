package domain

// EditionAuthorInfo credits a contributor on a specific edition.
// A nil Comment means the primary or unspecified role.
type EditionAuthorInfo struct {
	Name     string  `json:"name" yaml:"name"`
	AuthorID int     `json:"author_id" yaml:"author_id"`
	Comment  *string `json:"comment" yaml:"comment"` // "Illustrator", "Translator", ...
}

// Edition is one published manifestation of a work.
// Optional fields are nil when the provider page does not carry them.
type Edition struct {
	ProviderID        int                 `json:"provider_id" yaml:"provider_id"`
	ProviderWorkID    int                 `json:"provider_work_id" yaml:"provider_work_id"`
	Title             string              `json:"title" yaml:"title"`
	Description       *string             `json:"description" yaml:"description"`
	EditorAuthorsInfo []EditionAuthorInfo `json:"editor_authors_info" yaml:"editor_authors_info"`
	BookFormat        *string             `json:"book_format" yaml:"book_format"`
	Languages         []string            `json:"languages" yaml:"languages"`
	ISBN10            *string             `json:"isbn_10" yaml:"isbn_10"`
	ISBN13            *string             `json:"isbn_13" yaml:"isbn_13"`
	ASIN              *string             `json:"asin" yaml:"asin"`
	CoverURL          *string             `json:"cover_url" yaml:"cover_url"`
}

// AuthorIDs returns the author IDs credited on the edition in document order.
func (e *Edition) AuthorIDs() []int {
	ids := make([]int, 0, len(e.EditorAuthorsInfo))
	for _, a := range e.EditorAuthorsInfo {
		ids = append(ids, a.AuthorID)
	}
	return ids
}
