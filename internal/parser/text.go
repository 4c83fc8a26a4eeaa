package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/jdmorrow/docqa/internal/document"
)

// TextParser handles plain text files. Each blank-line-separated paragraph
// becomes one element in a single untitled section.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.ParsedDocument, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	title := baseName(filename)
	doc := &document.ParsedDocument{
		Title:      title,
		DocumentID: title,
	}

	sec := &document.Section{}
	for _, para := range paragraphs {
		sec.Elements = append(sec.Elements, &document.Element{
			Kind: document.KindParagraph,
			Text: para,
		})
	}
	if len(sec.Elements) > 0 {
		doc.Sections = append(doc.Sections, sec)
	}

	return doc, nil
}
