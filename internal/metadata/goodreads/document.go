package goodreads

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed page that extractors query by CSS selector.
// It keeps the raw markup around for the few values that live outside
// parseable tags.
type Document struct {
	raw string
	doc *goquery.Document
}

// Node is a single element of a Document.
type Node struct {
	sel *goquery.Selection
}

// ParseDocument parses raw HTML into a Document.
func ParseDocument(raw string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return &Document{raw: raw, doc: doc}, nil
}

// Raw returns the unparsed HTML the document was built from.
func (d *Document) Raw() string {
	return d.raw
}

// FindFirst returns the first element matching selector.
func (d *Document) FindFirst(selector string) (Node, bool) {
	return findFirst(d.doc.Selection, selector)
}

// FindAll returns every element matching selector in document order.
func (d *Document) FindAll(selector string) []Node {
	return findAll(d.doc.Selection, selector)
}

// FindFirst returns the first descendant matching selector.
func (n Node) FindFirst(selector string) (Node, bool) {
	return findFirst(n.sel, selector)
}

// FindAll returns every descendant matching selector in document order.
func (n Node) FindAll(selector string) []Node {
	return findAll(n.sel, selector)
}

// Text returns the concatenated text of the node and its descendants.
// Line breaks (<br>) are kept as newlines; scripts and styles are skipped.
func (n Node) Text() string {
	var buf strings.Builder
	for _, node := range n.sel.Nodes {
		writeText(node, &buf)
	}
	return buf.String()
}

// Attr returns the named attribute, reporting whether it was present.
func (n Node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func findFirst(s *goquery.Selection, selector string) (Node, bool) {
	match := s.Find(selector).First()
	if match.Length() == 0 {
		return Node{}, false
	}
	return Node{sel: match}, true
}

func findAll(s *goquery.Selection, selector string) []Node {
	matches := s.Find(selector)
	nodes := make([]Node, 0, matches.Length())
	matches.Each(func(_ int, sel *goquery.Selection) {
		nodes = append(nodes, Node{sel: sel})
	})
	return nodes
}

// writeText recursively collects text content below n.
func writeText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "br":
			buf.WriteByte('\n')
			return
		case "script", "style":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, buf)
	}
}
