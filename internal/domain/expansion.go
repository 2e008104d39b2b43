package domain

// Expansion is everything reachable from one ISBN: the work it belongs to,
// every edition listed for that work, and the contributors of each edition.
type Expansion struct {
	Work     *Work             `json:"work" yaml:"work"`
	Editions []ExpandedEdition `json:"editions" yaml:"editions"`
}

// ExpandedEdition pairs an edition with its resolved contributors.
type ExpandedEdition struct {
	Data        *Edition         `json:"data" yaml:"data"`
	AuthorsInfo []ExpandedAuthor `json:"authors_info" yaml:"authors_info"`
}

// ExpandedAuthor is a resolved author with the role they have on one edition.
type ExpandedAuthor struct {
	Data    *Author `json:"data" yaml:"data"`
	Comment *string `json:"comment" yaml:"comment"`
}
