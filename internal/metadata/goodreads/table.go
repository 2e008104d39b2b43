package goodreads

import "strings"

// LabelValue is one row of a label/value info table.
type LabelValue struct {
	Label string
	Value string
}

// ExtractLabelValuePairs pairs the i-th node matching labelSelector with the
// i-th node matching valueSelector. The provider renders labels and values as
// two parallel lists of sibling divs, so the rows are only linked by position.
//
// When the counts differ the result is truncated to the shorter list; this
// never fails.
func ExtractLabelValuePairs(doc *Document, labelSelector, valueSelector string) []LabelValue {
	labels := doc.FindAll(labelSelector)
	values := doc.FindAll(valueSelector)

	n := min(len(labels), len(values))
	pairs := make([]LabelValue, 0, n)
	for i := range n {
		pairs = append(pairs, LabelValue{
			Label: labels[i].Text(),
			Value: values[i].Text(),
		})
	}
	return pairs
}

// lookupValue returns the value of the first pair whose label satisfies match.
func lookupValue(pairs []LabelValue, match func(label string) bool) (string, bool) {
	for _, p := range pairs {
		if match(p.Label) {
			return p.Value, true
		}
	}
	return "", false
}

// optional returns nil for blank strings and a pointer to the trimmed value otherwise.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
