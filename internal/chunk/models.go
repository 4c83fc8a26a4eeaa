// Package chunk splits parsed documents into bounded, overlap-aware chunks
// ready for embedding and retrieval. Two strategies are provided: a size-based
// splitter and an LLM-assisted splitter that degrades to the size-based one.
package chunk

import "strings"

// Metadata describes where a chunk came from and how it was cut. The fixed
// fields are strongly typed; Custom carries anything else a caller attaches.
type Metadata struct {
	SourceDocumentID string
	SourceTab        string
	SourceTabID      string
	SourceSection    string
	ChunkIndex       int
	TotalChunks      int
	StartPosition    int
	EndPosition      int
	OverlapBefore    int
	OverlapAfter     int
	HeadingLevel     int
	ContainsQuestion bool
	EstimatedTokens  int
	Custom           map[string]any
}

// Chunk is a bounded slice of document text plus metadata. The embedding is
// attached later by the indexer; the summary is attached by the smart
// strategy when enabled.
type Chunk struct {
	Content   string
	Summary   string
	Embedding []float32
	Metadata  Metadata
}

// TokenCount estimates tokens at roughly 4 characters per token.
func (c *Chunk) TokenCount() int {
	return len(c.Content) / 4
}

// WordCount returns the whitespace-separated word count of the content.
func (c *Chunk) WordCount() int {
	return len(strings.Fields(c.Content))
}

// EmbedText returns the text the chunk should be embedded as: the summary
// prepended to the content when one exists, the content alone otherwise.
func (c *Chunk) EmbedText() string {
	if c.Summary != "" {
		return c.Summary + "\n\n" + c.Content
	}
	return c.Content
}
