package chunk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jdmorrow/docqa/internal/document"
)

func TestChunker_PostProcessDropsEmptyAndRenumbers(t *testing.T) {
	c := New(DefaultConfig(), nil, nil)
	chunks := []Chunk{
		{Content: "first"},
		{Content: "   \n  "},
		{Content: "second"},
		{Content: ""},
		{Content: "third"},
	}

	out := c.postProcess(chunks)
	if len(out) != 3 {
		t.Fatalf("expected 3 chunks after post-process, got %d", len(out))
	}
	for i, ch := range out {
		if ch.Metadata.ChunkIndex != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, ch.Metadata.ChunkIndex)
		}
		if ch.Metadata.TotalChunks != 3 {
			t.Errorf("chunk %d: expected total 3, got %d", i, ch.Metadata.TotalChunks)
		}
	}
}

func TestChunker_OversizedChunkSurvives(t *testing.T) {
	c := New(Config{MaxChunkSize: 100, OverlapSize: 10}, nil, nil)
	big := strings.Repeat("a", 400)

	out := c.postProcess([]Chunk{{Content: big}})
	if len(out) != 1 {
		t.Fatalf("expected oversized chunk to survive, got %d chunks", len(out))
	}
	if out[0].Content != big {
		t.Error("expected content unchanged")
	}
}

func TestChunker_SmartWithoutCompleterFallsBackToBasic(t *testing.T) {
	c := New(Config{MaxChunkSize: 1000, OverlapSize: 100, UseSmartChunking: true}, nil, nil)
	if _, ok := c.strategy.(*BasicStrategy); !ok {
		t.Fatalf("expected basic strategy without a completer, got %T", c.strategy)
	}
}

func TestChunker_SmartWithCompleterUsesFallbackStrategy(t *testing.T) {
	c := New(Config{MaxChunkSize: 1000, OverlapSize: 100, UseSmartChunking: true}, &stubCompleter{}, nil)
	if _, ok := c.strategy.(*FallbackStrategy); !ok {
		t.Fatalf("expected fallback-wrapped smart strategy, got %T", c.strategy)
	}
}

type failingStrategy struct{ err error }

func (f *failingStrategy) ChunkDocument(context.Context, *document.ParsedDocument) ([]Chunk, error) {
	return nil, f.err
}

func TestFallbackStrategy_UsesSecondaryOnError(t *testing.T) {
	fs := &FallbackStrategy{
		Primary:  &failingStrategy{err: errors.New("primary broken")},
		Fallback: NewBasicStrategy(1000, 100),
	}
	chunks, err := fs.ChunkDocument(context.Background(), docWithText("some content"))
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk from fallback, got %d", len(chunks))
	}
}

func TestStatistics_Empty(t *testing.T) {
	stats := Statistics(nil)
	if stats["total_chunks"] != 0 {
		t.Errorf("expected total_chunks 0, got %v", stats["total_chunks"])
	}
	if len(stats) != 1 {
		t.Errorf("expected only total_chunks key, got %v", stats)
	}
}

func TestStatistics_Aggregates(t *testing.T) {
	chunks := []Chunk{
		{
			Content:  "What is the rollback procedure?",
			Summary:  "rollback overview",
			Metadata: Metadata{SourceSection: "Ops", SourceTab: "Runbook", ContainsQuestion: true},
		},
		{
			Content:  "Deploys run nightly.",
			Metadata: Metadata{SourceSection: "Ops", SourceTab: "Runbook"},
		},
		{
			Content:  "Escalation list lives in the directory.",
			Metadata: Metadata{SourceSection: "Contacts", SourceTab: "Team"},
		},
	}

	stats := Statistics(chunks)
	if stats["total_chunks"] != 3 {
		t.Errorf("expected 3 chunks, got %v", stats["total_chunks"])
	}
	if stats["chunks_with_questions"] != 1 {
		t.Errorf("expected 1 question chunk, got %v", stats["chunks_with_questions"])
	}
	if stats["chunks_with_summaries"] != 1 {
		t.Errorf("expected 1 summarized chunk, got %v", stats["chunks_with_summaries"])
	}
	if stats["unique_sections"] != 2 {
		t.Errorf("expected 2 unique sections, got %v", stats["unique_sections"])
	}
	if stats["unique_tabs"] != 2 {
		t.Errorf("expected 2 unique tabs, got %v", stats["unique_tabs"])
	}

	wantChars := len(chunks[0].Content) + len(chunks[1].Content) + len(chunks[2].Content)
	if stats["total_characters"] != wantChars {
		t.Errorf("expected %d total characters, got %v", wantChars, stats["total_characters"])
	}
	if stats["min_chunk_size"] != len(chunks[1].Content) {
		t.Errorf("expected min %d, got %v", len(chunks[1].Content), stats["min_chunk_size"])
	}
	if stats["max_chunk_size"] != len(chunks[2].Content) {
		t.Errorf("expected max %d, got %v", len(chunks[2].Content), stats["max_chunk_size"])
	}
}

func TestChunker_EndToEnd(t *testing.T) {
	c := New(DefaultConfig(), nil, nil)
	doc := &document.ParsedDocument{
		DocumentID: "doc-9",
		Sections: []*document.Section{
			{Title: "A", Level: 1, Elements: []*document.Element{{Kind: document.KindParagraph, Text: strings.Repeat("alpha ", 400)}}},
			{Title: "B", Level: 2, Elements: []*document.Element{{Kind: document.KindParagraph, Text: "short"}}},
		},
	}

	chunks, err := c.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Content == "" {
			t.Errorf("chunk %d: empty content survived post-process", i)
		}
		if ch.Metadata.ChunkIndex != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, ch.Metadata.ChunkIndex)
		}
		if ch.Metadata.TotalChunks != len(chunks) {
			t.Errorf("chunk %d: stale total %d", i, ch.Metadata.TotalChunks)
		}
	}
}
