package chunk

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// stubCompleter scripts the completion service for tests.
type stubCompleter struct {
	completeResp string
	completeErr  error
	summaryResp  string
	summaryErr   error
	prompts      []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.completeResp, s.completeErr
}

func (s *stubCompleter) Summarize(_ context.Context, _ string, _ int) (string, error) {
	return s.summaryResp, s.summaryErr
}

func TestSmartStrategy_SmallSectionUsesBasicPath(t *testing.T) {
	completer := &stubCompleter{}
	s := NewSmartStrategy(completer, 1000, 100, false, nil)
	doc := docWithText("short content")

	chunks, err := s.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(completer.prompts) != 0 {
		t.Errorf("expected no completion calls for small section, got %d", len(completer.prompts))
	}
}

func TestSmartStrategy_SplitsAtReportedBreaks(t *testing.T) {
	text := strings.Repeat("x", 1000)
	completer := &stubCompleter{completeResp: "I suggest breaking at 400, 800."}
	s := NewSmartStrategy(completer, 300, 20, false, nil)

	pieces := s.splitAtBreakPoints(text, s.findSemanticBreaks(context.Background(), text))
	if len(pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(pieces))
	}
	// Each later piece starts overlapSize before its break point.
	if len(pieces[0]) != 400 {
		t.Errorf("expected first piece of 400 chars, got %d", len(pieces[0]))
	}
	if len(pieces[1]) != 420 {
		t.Errorf("expected second piece of 420 chars (overlap included), got %d", len(pieces[1]))
	}
	if len(pieces[2]) != 220 {
		t.Errorf("expected trailing piece of 220 chars, got %d", len(pieces[2]))
	}
}

func TestSmartStrategy_IgnoresOutOfRangeBreaks(t *testing.T) {
	text := strings.Repeat("x", 500)
	completer := &stubCompleter{completeResp: "0, 9999, 250"}
	s := NewSmartStrategy(completer, 300, 20, false, nil)

	breaks := s.findSemanticBreaks(context.Background(), text)
	if len(breaks) != 1 || breaks[0] != 250 {
		t.Fatalf("expected only in-range break 250, got %v", breaks)
	}
}

func TestSmartStrategy_BreaksTooCloseAreSkipped(t *testing.T) {
	text := strings.Repeat("x", 600)
	// 100 is within half a chunk (150) of the start, so only 400 cuts.
	completer := &stubCompleter{completeResp: "100, 400"}
	s := NewSmartStrategy(completer, 300, 20, false, nil)

	pieces := s.splitAtBreakPoints(text, s.findSemanticBreaks(context.Background(), text))
	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(pieces))
	}
	if len(pieces[0]) != 400 {
		t.Errorf("expected first cut at 400, got piece of %d chars", len(pieces[0]))
	}
}

func TestSmartStrategy_CompletionFailureFallsBackToParagraphs(t *testing.T) {
	para := strings.Repeat("a", 400)
	text := para + "\n\n" + para + "\n\n" + para
	completer := &stubCompleter{completeErr: errors.New("model unavailable")}
	s := NewSmartStrategy(completer, 300, 20, false, nil)

	breaks := s.findSemanticBreaks(context.Background(), text)
	if len(breaks) != 2 {
		t.Fatalf("expected 2 paragraph breaks, got %v", breaks)
	}
}

func TestSmartStrategy_NoBreaksAtAllUsesSizeSplitter(t *testing.T) {
	// No paragraph gaps, completion fails: size-based splitting takes over.
	text := strings.Repeat("x", 1000)
	completer := &stubCompleter{completeErr: errors.New("down")}
	s := NewSmartStrategy(completer, 300, 20, false, nil)

	pieces := s.splitAtBreakPoints(text, s.findSemanticBreaks(context.Background(), text))
	if len(pieces) != 4 {
		t.Fatalf("expected 4 size-based pieces, got %d", len(pieces))
	}
}

func TestSmartStrategy_GarbageResponseUsesSizeSplitter(t *testing.T) {
	// A successful response with no numbers yields no breaks at all, so the
	// size splitter takes over rather than the paragraph fallback.
	text := strings.Repeat("x", 500) + "\n\n" + strings.Repeat("y", 500)
	completer := &stubCompleter{completeResp: "no numbers here at all"}
	s := NewSmartStrategy(completer, 300, 20, false, nil)

	breaks := s.findSemanticBreaks(context.Background(), text)
	if len(breaks) != 0 {
		t.Fatalf("expected no breaks from a numberless response, got %v", breaks)
	}
	pieces := s.splitAtBreakPoints(text, breaks)
	if len(pieces) != 4 {
		t.Fatalf("expected 4 size-based pieces, got %d", len(pieces))
	}
}

func TestSmartStrategy_SummariesAttachedToLargeChunks(t *testing.T) {
	completer := &stubCompleter{
		completeResp: "600",
		summaryResp:  "  a concise summary  ",
	}
	s := NewSmartStrategy(completer, 300, 20, true, nil)
	doc := docWithText(strings.Repeat("z", 1200))

	chunks, err := s.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks {
		if len(c.Content) > 200 && c.Summary != "a concise summary" {
			t.Errorf("chunk %d: expected trimmed summary, got %q", i, c.Summary)
		}
	}
}

func TestSmartStrategy_SummaryFailureIsSwallowed(t *testing.T) {
	completer := &stubCompleter{
		completeResp: "600",
		summaryErr:   errors.New("summary model down"),
	}
	s := NewSmartStrategy(completer, 300, 20, true, nil)
	doc := docWithText(strings.Repeat("z", 1200))

	chunks, err := s.ChunkDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("expected summary failures to be non-fatal, got %v", err)
	}
	for i, c := range chunks {
		if c.Summary != "" {
			t.Errorf("chunk %d: expected empty summary after failure, got %q", i, c.Summary)
		}
	}
}

func TestSmartStrategy_CancelledContextReturnsError(t *testing.T) {
	completer := &stubCompleter{completeResp: "600"}
	s := NewSmartStrategy(completer, 300, 20, false, nil)
	doc := docWithText(strings.Repeat("z", 1200))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ChunkDocument(ctx, doc); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestFindParagraphBreaks(t *testing.T) {
	text := "one\n\ntwo\n  \nthree"
	breaks := findParagraphBreaks(text)
	if len(breaks) != 2 {
		t.Fatalf("expected 2 breaks, got %v", breaks)
	}
	if breaks[0] != 3 {
		t.Errorf("expected first break at offset 3, got %d", breaks[0])
	}
}
