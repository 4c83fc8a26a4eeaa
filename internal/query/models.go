// Package query implements the retrieval half of the pipeline: cleaning a
// user question, searching the vector store, scoring confidence, and
// composing a final answer.
package query

import "time"

// SearchResult is one retrieved chunk with its similarity to the query.
// Similarity is 1 minus the store's distance, clamped to [0, 1] by the
// minimum-similarity filter.
type SearchResult struct {
	Content       string         `json:"content"`
	Similarity    float64        `json:"similarity"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	SourceSection string         `json:"source_section"`
	SourceTab     string         `json:"source_tab"`
	DocumentURL   string         `json:"document_url,omitempty"`
}

// QueryResult is the complete outcome of one query.
type QueryResult struct {
	Query          string         `json:"query"`
	Answer         string         `json:"answer"`
	SearchResults  []SearchResult `json:"search_results"`
	Confidence     float64        `json:"confidence"`
	ProcessingTime time.Duration  `json:"processing_time"`
	SourcesUsed    int            `json:"sources_used"`
}
