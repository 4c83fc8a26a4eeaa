package chunk

import (
	"context"
	"regexp"
	"strings"

	"github.com/jdmorrow/docqa/internal/document"
)

// Strategy turns a parsed document into an ordered sequence of chunks.
type Strategy interface {
	ChunkDocument(ctx context.Context, doc *document.ParsedDocument) ([]Chunk, error)
}

// BasicStrategy splits each top-level section by size with character overlap.
// It is deterministic for a given document and configuration.
type BasicStrategy struct {
	maxChunkSize int
	overlapSize  int
}

// NewBasicStrategy creates a size-based splitter. Non-positive arguments fall
// back to 1000/100.
func NewBasicStrategy(maxChunkSize, overlapSize int) *BasicStrategy {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlapSize < 0 {
		overlapSize = 100
	}
	return &BasicStrategy{maxChunkSize: maxChunkSize, overlapSize: overlapSize}
}

// ChunkDocument walks the top-level sections in document order and splits
// each one. TotalChunks is stamped once all chunks are known.
func (s *BasicStrategy) ChunkDocument(_ context.Context, doc *document.ParsedDocument) ([]Chunk, error) {
	var chunks []Chunk
	for _, sec := range doc.Sections {
		chunks = append(chunks, s.chunkSection(sec, doc.DocumentID, len(chunks))...)
	}
	for i := range chunks {
		chunks[i].Metadata.TotalChunks = len(chunks)
	}
	return chunks, nil
}

// chunkSection splits a single section. Small sections become one chunk;
// large ones are split with overlap.
func (s *BasicStrategy) chunkSection(sec *document.Section, documentID string, startIndex int) []Chunk {
	text := sec.FullText()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if len(text) <= s.maxChunkSize {
		return []Chunk{{
			Content: text,
			Metadata: Metadata{
				SourceDocumentID: documentID,
				SourceTab:        sec.Tab,
				SourceTabID:      sec.TabID,
				SourceSection:    sec.Title,
				ChunkIndex:       startIndex,
				StartPosition:    0,
				EndPosition:      len(text),
				HeadingLevel:     sec.Level,
				ContainsQuestion: containsQuestion(text),
				EstimatedTokens:  len(text) / 4,
			},
		}}
	}

	pieces := s.splitWithOverlap(text)
	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		overlapBefore, overlapAfter := 0, 0
		if i > 0 {
			overlapBefore = s.overlapSize
		}
		if i < len(pieces)-1 {
			overlapAfter = s.overlapSize
		}
		chunks = append(chunks, Chunk{
			Content: piece,
			Metadata: Metadata{
				SourceDocumentID: documentID,
				SourceTab:        sec.Tab,
				SourceTabID:      sec.TabID,
				SourceSection:    sec.Title,
				ChunkIndex:       startIndex + i,
				StartPosition:    0,
				EndPosition:      len(piece),
				OverlapBefore:    overlapBefore,
				OverlapAfter:     overlapAfter,
				HeadingLevel:     sec.Level,
				ContainsQuestion: containsQuestion(piece),
				EstimatedTokens:  len(piece) / 4,
			},
		})
	}
	return chunks
}

// splitWithOverlap walks a cursor through the text. The window is cut back to
// the last space when one exists in the final 20% of the window, so words are
// not severed mid-way. The cursor advance of max(start+size-overlap, end)
// guarantees forward progress even when overlap >= chunk size.
func (s *BasicStrategy) splitWithOverlap(text string) []string {
	var pieces []string
	start := 0

	for start < len(text) {
		end := start + s.maxChunkSize
		if end > len(text) {
			end = len(text)
		}

		if end < len(text) {
			lastSpace := strings.LastIndex(text[start:end], " ")
			if lastSpace >= 0 {
				abs := start + lastSpace
				if float64(abs) > float64(start)+float64(s.maxChunkSize)*0.8 {
					end = abs
				}
			}
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			pieces = append(pieces, piece)
		}

		next := start + s.maxChunkSize - s.overlapSize
		if next < end {
			next = end
		}
		start = next
	}

	return pieces
}

// questionRe matches a question mark or common interrogative words anywhere
// in the text, with no word-boundary anchoring. Substrings like "how" inside
// "show" count on purpose; downstream data depends on this exact behavior.
var questionRe = regexp.MustCompile(`(?i)\?|what|how|why|when|where|who`)

func containsQuestion(text string) bool {
	return questionRe.MatchString(text)
}
