package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jdmorrow/docqa/internal/document"
)

// CSVParser handles CSV files. Rows are grouped into sections of 20 so each
// yields a manageable table element labeled with its header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.ParsedDocument, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := baseName(filename)
	doc := &document.ParsedDocument{
		Title:      title,
		DocumentID: title,
	}
	if len(records) == 0 {
		return doc, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	const batchSize = 20
	for i := 0; i < len(dataRows); i += batchSize {
		end := i + batchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}
		batch := dataRows[i:end]

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n\n")
		for _, row := range batch {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		doc.Sections = append(doc.Sections, &document.Section{
			Title: fmt.Sprintf("Rows %d-%d", i+2, end+1), // 1-indexed, skip header
			Level: 1,
			Elements: []*document.Element{{
				Kind: document.KindTable,
				Text: strings.TrimSpace(text.String()),
			}},
		})
	}

	return doc, nil
}
