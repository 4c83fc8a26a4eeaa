package chunk

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jdmorrow/docqa/internal/document"
	"github.com/jdmorrow/docqa/internal/llm"
)

// Config controls chunking behavior. Sizes are in characters.
type Config struct {
	MaxChunkSize     int
	OverlapSize      int
	UseSmartChunking bool
	UseSummaries     bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize: 1000,
		OverlapSize:  100,
	}
}

// FallbackStrategy runs a primary strategy and falls back to a secondary one
// when the primary fails for the whole document. The fallback path is a
// first-class strategy of its own, not error-driven control flow, so it can
// be tested in isolation.
type FallbackStrategy struct {
	Primary  Strategy
	Fallback Strategy
	Log      *slog.Logger
}

func (f *FallbackStrategy) ChunkDocument(ctx context.Context, doc *document.ParsedDocument) ([]Chunk, error) {
	chunks, err := f.Primary.ChunkDocument(ctx, doc)
	if err != nil {
		if f.Log != nil {
			f.Log.Warn("smart chunking failed, falling back to basic strategy", "doc_id", doc.DocumentID, "error", err)
		}
		return f.Fallback.ChunkDocument(ctx, doc)
	}
	return chunks, nil
}

// Chunker is the entry point for turning documents into post-processed
// chunks. Strategy selection happens once at construction.
type Chunker struct {
	cfg      Config
	strategy Strategy
	log      *slog.Logger
}

// New builds a chunker. Smart chunking requires a completion service; without
// one the size-based strategy is used regardless of the flag.
func New(cfg Config, completer llm.CompletionService, log *slog.Logger) *Chunker {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 1000
	}
	if cfg.OverlapSize < 0 {
		cfg.OverlapSize = 100
	}
	if log == nil {
		log = slog.Default()
	}

	basic := NewBasicStrategy(cfg.MaxChunkSize, cfg.OverlapSize)
	var strategy Strategy = basic
	if cfg.UseSmartChunking && completer != nil {
		strategy = &FallbackStrategy{
			Primary:  NewSmartStrategy(completer, cfg.MaxChunkSize, cfg.OverlapSize, cfg.UseSummaries, log),
			Fallback: basic,
			Log:      log,
		}
	}

	return &Chunker{cfg: cfg, strategy: strategy, log: log}
}

// ChunkDocument runs the configured strategy and post-processes the result.
func (c *Chunker) ChunkDocument(ctx context.Context, doc *document.ParsedDocument) ([]Chunk, error) {
	chunks, err := c.strategy.ChunkDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	return c.postProcess(chunks), nil
}

// postProcess drops empty chunks, renumbers the survivors from zero, stamps
// the final total on every chunk, and flags oversized chunks. Oversize is
// never fatal; boundary-adjusted pieces can legitimately exceed the target.
func (c *Chunker) postProcess(chunks []Chunk) []Chunk {
	processed := make([]Chunk, 0, len(chunks))
	for i := range chunks {
		if strings.TrimSpace(chunks[i].Content) == "" {
			continue
		}
		if len(chunks[i].Content) > c.cfg.MaxChunkSize*3/2 {
			c.log.Warn("chunk exceeds size limit",
				"chunk", i,
				"size", len(chunks[i].Content),
				"max", c.cfg.MaxChunkSize,
			)
		}
		chunks[i].Metadata.ChunkIndex = len(processed)
		processed = append(processed, chunks[i])
	}
	for i := range processed {
		processed[i].Metadata.TotalChunks = len(processed)
	}
	return processed
}

// Statistics summarizes a chunked document. An empty input yields only the
// zero total, matching what callers display for unindexed documents.
func Statistics(chunks []Chunk) map[string]any {
	if len(chunks) == 0 {
		return map[string]any{"total_chunks": 0}
	}

	totalChars, totalWords, totalTokens := 0, 0, 0
	minSize, maxSize := len(chunks[0].Content), len(chunks[0].Content)
	questionChunks, summarizedChunks := 0, 0
	sections := make(map[string]struct{})
	tabs := make(map[string]struct{})

	for i := range chunks {
		size := len(chunks[i].Content)
		totalChars += size
		totalWords += chunks[i].WordCount()
		totalTokens += chunks[i].TokenCount()
		if size < minSize {
			minSize = size
		}
		if size > maxSize {
			maxSize = size
		}
		if chunks[i].Metadata.ContainsQuestion {
			questionChunks++
		}
		if chunks[i].Summary != "" {
			summarizedChunks++
		}
		if s := chunks[i].Metadata.SourceSection; s != "" {
			sections[s] = struct{}{}
		}
		if t := chunks[i].Metadata.SourceTab; t != "" {
			tabs[t] = struct{}{}
		}
	}

	return map[string]any{
		"total_chunks":          len(chunks),
		"total_characters":      totalChars,
		"total_words":           totalWords,
		"estimated_tokens":      totalTokens,
		"average_chunk_size":    totalChars / len(chunks),
		"min_chunk_size":        minSize,
		"max_chunk_size":        maxSize,
		"chunks_with_questions": questionChunks,
		"chunks_with_summaries": summarizedChunks,
		"unique_sections":       len(sections),
		"unique_tabs":           len(tabs),
	}
}
