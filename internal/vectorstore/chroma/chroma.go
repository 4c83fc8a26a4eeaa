// Package chroma implements vectorstore.Store against the Chroma REST API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jdmorrow/docqa/internal/vectorstore"
)

// Client talks to a Chroma server over its v1 REST API. Chroma addresses
// collections by UUID, so the client keeps a name-to-id cache that is
// invalidated on deletion.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu  sync.Mutex
	ids map[string]string
}

func New(host string, port int) *Client {
	if host == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 8000
	}
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%d/api/v1", host, port),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		ids: make(map[string]string),
	}
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateCollection gets or creates the collection with cosine distance.
func (c *Client) CreateCollection(ctx context.Context, name string) error {
	body := map[string]any{
		"name":          name,
		"get_or_create": true,
		"metadata":      map[string]any{"hnsw:space": "cosine"},
	}
	respBody, err := c.do(ctx, http.MethodPost, "/collections", body)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	var coll collectionResponse
	if err := json.Unmarshal(respBody, &coll); err != nil {
		return fmt.Errorf("decode collection: %w", err)
	}

	c.mu.Lock()
	c.ids[name] = coll.ID
	c.mu.Unlock()
	return nil
}

// DeleteCollection removes the collection by name.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/collections/"+name, nil); err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	c.mu.Lock()
	delete(c.ids, name)
	c.mu.Unlock()
	return nil
}

// Upsert writes points into the collection.
func (c *Client) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	ids := make([]string, len(points))
	embeddings := make([][]float32, len(points))
	documents := make([]string, len(points))
	metadatas := make([]map[string]any, len(points))
	for i, p := range points {
		ids[i] = p.ID
		embeddings[i] = p.Vector
		documents[i] = p.Content
		metadatas[i] = p.Metadata
	}

	body := map[string]any{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	}
	if _, err := c.do(ctx, http.MethodPost, "/collections/"+id+"/upsert", body); err != nil {
		return fmt.Errorf("upsert %d points into %s: %w", len(points), collection, err)
	}
	return nil
}

type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// Query returns the limit nearest points, closest first.
func (c *Client) Query(ctx context.Context, collection string, vector []float32, limit int) ([]vectorstore.Match, error) {
	if limit <= 0 {
		limit = 10
	}
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"query_embeddings": [][]float32{vector},
		"n_results":        limit,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	respBody, err := c.do(ctx, http.MethodPost, "/collections/"+id+"/query", body)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	var qr queryResponse
	if err := json.Unmarshal(respBody, &qr); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	if len(qr.IDs) == 0 {
		return nil, nil
	}

	matches := make([]vectorstore.Match, 0, len(qr.IDs[0]))
	for i := range qr.IDs[0] {
		m := vectorstore.Match{ID: qr.IDs[0][i]}
		if len(qr.Documents) > 0 && i < len(qr.Documents[0]) {
			m.Content = qr.Documents[0][i]
		}
		if len(qr.Metadatas) > 0 && i < len(qr.Metadatas[0]) {
			m.Metadata = qr.Metadatas[0][i]
		}
		if len(qr.Distances) > 0 && i < len(qr.Distances[0]) {
			m.Distance = qr.Distances[0][i]
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Count returns the number of points in the collection.
func (c *Client) Count(ctx context.Context, collection string) (int, error) {
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return 0, err
	}
	respBody, err := c.do(ctx, http.MethodGet, "/collections/"+id+"/count", nil)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	var count int
	if err := json.Unmarshal(respBody, &count); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return count, nil
}

// HealthCheck hits the heartbeat endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "/heartbeat", nil); err != nil {
		return fmt.Errorf("chroma heartbeat: %w", err)
	}
	return nil
}

// collectionID resolves a collection name to its UUID, creating the
// collection when it does not exist yet.
func (c *Client) collectionID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	id, ok := c.ids[name]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	if err := c.CreateCollection(ctx, name); err != nil {
		return "", err
	}
	c.mu.Lock()
	id = c.ids[name]
	c.mu.Unlock()
	if id == "" {
		return "", fmt.Errorf("collection %s has no id", name)
	}
	return id, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chroma api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chroma api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	return respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
