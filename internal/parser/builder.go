package parser

import (
	"strings"

	"github.com/jdmorrow/docqa/internal/document"
)

// sectionBuilder assembles a section tree from a linear stream of headings
// and content blocks. Headings open sections at their level; content blocks
// attach to the most recent section. Content before the first heading lands
// in an untitled preamble section.
type sectionBuilder struct {
	root  document.Section
	stack []*document.Section
}

func newSectionBuilder() *sectionBuilder {
	b := &sectionBuilder{}
	b.stack = []*document.Section{&b.root}
	return b
}

// Heading opens a new section nested under the nearest section of a lower
// level.
func (b *sectionBuilder) Heading(title string, level int) {
	sec := &document.Section{Title: title, Level: level}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].Level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1]
	parent.Subsections = append(parent.Subsections, sec)
	b.stack = append(b.stack, sec)
}

// Element appends a content element to the current section. Empty text is
// dropped.
func (b *sectionBuilder) Element(kind document.ElementKind, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	top := b.stack[len(b.stack)-1]
	top.Elements = append(top.Elements, &document.Element{Kind: kind, Text: text})
}

// Sections returns the completed top-level sections. Preamble content with no
// heading becomes a leading untitled section.
func (b *sectionBuilder) Sections() []*document.Section {
	sections := b.root.Subsections
	if len(b.root.Elements) > 0 {
		preamble := &document.Section{Elements: b.root.Elements}
		sections = append([]*document.Section{preamble}, sections...)
	}
	return sections
}
