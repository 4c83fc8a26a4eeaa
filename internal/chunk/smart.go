package chunk

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jdmorrow/docqa/internal/document"
	"github.com/jdmorrow/docqa/internal/llm"
)

// SmartStrategy asks the completion service for semantic break points and
// splits large sections there. Every failure short of a cancelled context
// degrades to a cheaper mechanism: break-point detection falls back to
// paragraph breaks, paragraph-less text falls back to the size splitter, and
// summaries are simply skipped.
type SmartStrategy struct {
	completer    llm.CompletionService
	maxChunkSize int
	overlapSize  int
	useSummaries bool
	basic        *BasicStrategy
	log          *slog.Logger
}

func NewSmartStrategy(completer llm.CompletionService, maxChunkSize, overlapSize int, useSummaries bool, log *slog.Logger) *SmartStrategy {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlapSize < 0 {
		overlapSize = 100
	}
	if log == nil {
		log = slog.Default()
	}
	return &SmartStrategy{
		completer:    completer,
		maxChunkSize: maxChunkSize,
		overlapSize:  overlapSize,
		useSummaries: useSummaries,
		basic:        NewBasicStrategy(maxChunkSize, overlapSize),
		log:          log,
	}
}

// ChunkDocument chunks every top-level section semantically. An error is only
// returned when the context is cancelled; the caller's fallback strategy
// takes over from there.
func (s *SmartStrategy) ChunkDocument(ctx context.Context, doc *document.ParsedDocument) ([]Chunk, error) {
	var chunks []Chunk
	for _, sec := range doc.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		secChunks := s.chunkSectionSemantically(ctx, sec, doc.DocumentID, len(chunks))

		if s.useSummaries {
			for i := range secChunks {
				if len(secChunks[i].Content) > 200 {
					secChunks[i].Summary = s.generateSummary(ctx, secChunks[i].Content)
				}
			}
		}

		chunks = append(chunks, secChunks...)
	}
	for i := range chunks {
		chunks[i].Metadata.TotalChunks = len(chunks)
	}
	return chunks, nil
}

func (s *SmartStrategy) chunkSectionSemantically(ctx context.Context, sec *document.Section, documentID string, startIndex int) []Chunk {
	text := sec.FullText()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// Small sections gain nothing from an LLM round trip.
	if len(text) <= s.maxChunkSize {
		return s.basic.chunkSection(sec, documentID, startIndex)
	}

	breaks := s.findSemanticBreaks(ctx, text)
	pieces := s.splitAtBreakPoints(text, breaks)

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		piece = strings.TrimSpace(piece)
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
				HeadingLevel:     sec.Level,
				ContainsQuestion: containsQuestion(piece),
				EstimatedTokens:  len(piece) / 4,
			},
		})
	}
	return chunks
}

var digitsRe = regexp.MustCompile(`\d+`)

// findSemanticBreaks asks the completion service for character offsets where
// natural breaks occur. Offsets outside (0, len(text)) are discarded. On
// failure it falls back to structural paragraph breaks; a successful response
// with no usable offsets returns none, leaving the split to the size splitter.
func (s *SmartStrategy) findSemanticBreaks(ctx context.Context, text string) []int {
	excerpt := text
	suffix := ""
	if len(text) > 2000 {
		excerpt = text[:2000]
		suffix = "..."
	}

	prompt := fmt.Sprintf(`Analyze this text and identify good break points for chunking into semantic units.

Text length: %d characters
Target chunk size: %d characters

Text:
%s%s

Return positions (character indices) where natural breaks occur, such as:
- Topic transitions
- End of examples or lists
- Paragraph boundaries
- Logical conclusion points

Return only numbers separated by commas, e.g.: 150, 450, 750`, len(text), s.maxChunkSize, excerpt, suffix)

	response, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.log.Warn("semantic break detection failed, using paragraph breaks", "error", err)
		return findParagraphBreaks(text)
	}

	var breaks []int
	for _, m := range digitsRe.FindAllString(response, -1) {
		pos, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if pos > 0 && pos < len(text) {
			breaks = append(breaks, pos)
		}
	}
	sort.Ints(breaks)
	return breaks
}

var paragraphBreakRe = regexp.MustCompile(`\n\s*\n`)

// findParagraphBreaks returns the offsets of blank-line gaps.
func findParagraphBreaks(text string) []int {
	var breaks []int
	for _, loc := range paragraphBreakRe.FindAllStringIndex(text, -1) {
		breaks = append(breaks, loc[0])
	}
	return breaks
}

// splitAtBreakPoints cuts at the given break points, skipping any closer than
// half a chunk to the previous cut, and backs the next start up by the
// overlap size. With no break points at all it defers to the size splitter.
func (s *SmartStrategy) splitAtBreakPoints(text string, breaks []int) []string {
	if len(breaks) == 0 {
		return s.basic.splitWithOverlap(text)
	}

	var pieces []string
	start := 0
	for _, bp := range breaks {
		if float64(bp-start) > float64(s.maxChunkSize)*0.5 {
			if piece := strings.TrimSpace(text[start:bp]); piece != "" {
				pieces = append(pieces, piece)
			}
			start = bp - s.overlapSize
			if start < 0 {
				start = 0
			}
		}
	}
	if start < len(text) {
		if piece := strings.TrimSpace(text[start:]); piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}

// generateSummary returns a short summary, or "" when the completion service
// fails. Summary failures never affect the chunk itself.
func (s *SmartStrategy) generateSummary(ctx context.Context, content string) string {
	summary, err := s.completer.Summarize(ctx, content, 100)
	if err != nil {
		s.log.Warn("chunk summary generation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(summary)
}
