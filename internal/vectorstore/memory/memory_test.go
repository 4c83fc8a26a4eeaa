package memory

import (
	"context"
	"testing"

	"github.com/jdmorrow/docqa/internal/vectorstore"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	err := s.Upsert(context.Background(), "docs", []vectorstore.Point{
		{ID: "a", Vector: []float32{1, 0, 0}, Content: "alpha", Metadata: map[string]any{"source_section": "A"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Content: "beta"},
		{ID: "c", Vector: []float32{0.9, 0.1, 0}, Content: "gamma"},
	})
	if err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
}

func TestQuery_OrdersByCosineDistance(t *testing.T) {
	s := New()
	seed(t, s)

	matches, err := s.Query(context.Background(), "docs", []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	// Exact match first, near-parallel vector second, orthogonal last.
	if matches[0].ID != "a" || matches[1].ID != "c" || matches[2].ID != "b" {
		t.Errorf("expected order a,c,b; got %s,%s,%s", matches[0].ID, matches[1].ID, matches[2].ID)
	}
	if matches[0].Distance > 1e-9 {
		t.Errorf("expected zero distance for exact match, got %f", matches[0].Distance)
	}
	if matches[2].Distance < 0.99 {
		t.Errorf("expected distance near 1 for orthogonal vector, got %f", matches[2].Distance)
	}
	if matches[0].Content != "alpha" || matches[0].Metadata["source_section"] != "A" {
		t.Errorf("expected content and metadata carried through, got %+v", matches[0])
	}
}

func TestQuery_TruncatesToLimit(t *testing.T) {
	s := New()
	seed(t, s)

	matches, err := s.Query(context.Background(), "docs", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
}

func TestQuery_MissingCollection(t *testing.T) {
	s := New()
	if _, err := s.Query(context.Background(), "nope", []float32{1}, 5); err == nil {
		t.Fatal("expected error for missing collection")
	}
	if _, err := s.Count(context.Background(), "nope"); err == nil {
		t.Fatal("expected count error for missing collection")
	}
}

func TestUpsert_ReplacesByID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Upsert(ctx, "docs", []vectorstore.Point{{ID: "a", Vector: []float32{1, 0}, Content: "old"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Upsert(ctx, "docs", []vectorstore.Point{{ID: "a", Vector: []float32{0, 1}, Content: "new"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	count, err := s.Count(ctx, "docs")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 point after replace, got %d", count)
	}

	matches, err := s.Query(ctx, "docs", []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if matches[0].Content != "new" {
		t.Errorf("expected replaced content, got %q", matches[0].Content)
	}
}

func TestDeleteCollection(t *testing.T) {
	s := New()
	seed(t, s)

	if err := s.DeleteCollection(context.Background(), "docs"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Count(context.Background(), "docs"); err == nil {
		t.Fatal("expected missing collection after delete")
	}
}

func TestCosineSimilarity_DegenerateVectors(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("mismatched lengths: expected 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector: expected 0, got %f", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors: expected 0, got %f", got)
	}
}
