// Package memory implements vectorstore.Store with brute-force cosine search.
// It backs tests and small single-process deployments where running a Chroma
// server is not worth the trouble.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/jdmorrow/docqa/internal/vectorstore"
)

// Store keeps all points in process memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]vectorstore.Point
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]vectorstore.Point),
	}
}

func (s *Store) CreateCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = make(map[string]vectorstore.Point)
	}
	return nil
}

func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *Store) Upsert(_ context.Context, collection string, points []vectorstore.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]vectorstore.Point)
		s.collections[collection] = coll
	}
	for _, p := range points {
		coll[p.ID] = p
	}
	return nil
}

// Query scans the whole collection and returns the limit nearest points by
// cosine distance, closest first.
func (s *Store) Query(_ context.Context, collection string, vector []float32, limit int) ([]vectorstore.Match, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}

	matches := make([]vectorstore.Match, 0, len(coll))
	for _, p := range coll {
		matches = append(matches, vectorstore.Match{
			ID:       p.ID,
			Content:  p.Content,
			Metadata: p.Metadata,
			Distance: 1 - cosineSimilarity(vector, p.Vector),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) Count(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("collection %s does not exist", collection)
	}
	return len(coll), nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// cosineSimilarity returns 0 for mismatched lengths or zero vectors, which
// maps to the maximum distance.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
