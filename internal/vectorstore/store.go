// Package vectorstore defines the storage interface for embedded chunks and
// the point/match types shared by its implementations.
package vectorstore

import "context"

// Point is one embedded chunk ready for storage. Metadata values must be
// JSON-encodable scalars; nested structures are flattened by the indexer
// before they reach the store.
type Point struct {
	ID       string
	Vector   []float32
	Content  string
	Metadata map[string]any
}

// Match is a query hit. Distance is the store's native distance for the
// collection's metric; callers convert it to a similarity.
type Match struct {
	ID       string
	Content  string
	Metadata map[string]any
	Distance float64
}

// Store is a named-collection vector database.
type Store interface {
	// CreateCollection ensures the collection exists. Idempotent.
	CreateCollection(ctx context.Context, name string) error
	// DeleteCollection removes the collection and all its points.
	DeleteCollection(ctx context.Context, name string) error
	// Upsert writes points, replacing any with matching IDs.
	Upsert(ctx context.Context, collection string, points []Point) error
	// Query returns the limit nearest points to the vector, closest first.
	Query(ctx context.Context, collection string, vector []float32, limit int) ([]Match, error)
	// Count returns the number of points in the collection.
	Count(ctx context.Context, collection string) (int, error)
	// HealthCheck verifies the store is reachable.
	HealthCheck(ctx context.Context) error
}
