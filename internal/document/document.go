// Package document holds the hierarchical model of a parsed source document:
// a tree of sections, each owning its elements and subsections. Parsers in
// internal/parser produce these trees; the chunking engine consumes them.
package document

import "strings"

// ElementKind classifies a leaf content unit.
type ElementKind string

const (
	KindHeading   ElementKind = "heading"
	KindParagraph ElementKind = "paragraph"
	KindTable     ElementKind = "table"
)

// Element is a leaf content unit. Immutable once parsed.
type Element struct {
	Kind  ElementKind
	Text  string
	Level int            // Heading level (1-6) or list nesting; 0 otherwise.
	Style map[string]any // Source style attributes, if any.
}

// Section is a node in the document tree. Sections exclusively own their
// subsections; there are no back-references, so the tree is acyclic by
// construction.
type Section struct {
	Title       string
	Level       int
	Tab         string // Source tab title, when the document has tabs.
	TabID       string // Source tab identifier, used for deep links.
	Elements    []*Element
	Subsections []*Section
}

// maxDepth bounds recursive traversal. Parsers never produce trees anywhere
// near this deep; the guard exists so a malformed tree cannot recurse forever.
const maxDepth = 100

// FullText returns the title, element text, and recursive subsection text of
// this section, joined by blank lines.
func (s *Section) FullText() string {
	return s.fullText(0)
}

func (s *Section) fullText(depth int) string {
	if depth >= maxDepth {
		return ""
	}

	var parts []string
	if s.Title != "" {
		parts = append(parts, s.Title)
	}
	for _, el := range s.Elements {
		if t := strings.TrimSpace(el.Text); t != "" {
			parts = append(parts, t)
		}
	}
	for _, sub := range s.Subsections {
		if t := strings.TrimSpace(sub.fullText(depth + 1)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ParsedDocument is the root of a parsed document. Produced once per fetch,
// immutable afterward.
type ParsedDocument struct {
	Title      string
	DocumentID string
	Sections   []*Section
}

// FullText returns the document title plus the full text of every section.
func (d *ParsedDocument) FullText() string {
	var parts []string
	if d.Title != "" {
		parts = append(parts, d.Title)
	}
	for _, sec := range d.Sections {
		if t := strings.TrimSpace(sec.FullText()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
