// Package index embeds chunks and writes them to the vector store.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jdmorrow/docqa/internal/chunk"
	"github.com/jdmorrow/docqa/internal/document"
	"github.com/jdmorrow/docqa/internal/llm"
	"github.com/jdmorrow/docqa/internal/vectorstore"
)

// Indexer runs the chunk-embed-store half of the pipeline.
type Indexer struct {
	chunker    *chunk.Chunker
	embedder   llm.EmbeddingService
	store      vectorstore.Store
	collection string
	batchSize  int
	workers    int
	log        *slog.Logger
}

func New(chunker *chunk.Chunker, embedder llm.EmbeddingService, store vectorstore.Store, collection string, batchSize, workers int, log *slog.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 10
	}
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		collection: collection,
		batchSize:  batchSize,
		workers:    workers,
		log:        log,
	}
}

// EmbedChunks fills in chunk embeddings in place. Batches run sequentially;
// chunks within a batch fan out across at most workers goroutines. A chunk whose
// embedding fails after retries is left without one and does not stop its
// siblings. Returns the number of chunks embedded; the only error is a
// cancelled context, checked between batches.
func (ix *Indexer) EmbedChunks(ctx context.Context, chunks []chunk.Chunk) (int, error) {
	embedded := 0
	for start := 0; start < len(chunks); start += ix.batchSize {
		if err := ctx.Err(); err != nil {
			return embedded, err
		}

		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		type embedResult struct {
			idx int
			res *llm.EmbeddingResult
			err error
		}
		results := make(chan embedResult, len(batch))
		sem := make(chan struct{}, ix.workers)

		for i := range batch {
			sem <- struct{}{}
			go func(i int) {
				defer func() { <-sem }()
				text := batch[i].EmbedText()
				var res *llm.EmbeddingResult
				var lastErr error
				for attempt := 0; attempt < llm.MaxRetries; attempt++ {
					res, lastErr = ix.embedder.Embed(ctx, text)
					if lastErr == nil || !llm.IsRetryable(lastErr) {
						break
					}
					ix.log.Warn("retryable embedding error", "chunk", start+i, "attempt", attempt, "error", lastErr)
					select {
					case <-time.After(llm.Backoff(attempt)):
					case <-ctx.Done():
						results <- embedResult{idx: i, err: ctx.Err()}
						return
					}
				}
				results <- embedResult{idx: i, res: res, err: lastErr}
			}(i)
		}

		for range batch {
			r := <-results
			if r.err != nil {
				ix.log.Error("embedding failed", "chunk", start+r.idx, "error", r.err)
				continue
			}
			batch[r.idx].Embedding = r.res.Vector
			embedded++
		}
	}
	return embedded, nil
}

// UpsertChunks writes embedded chunks to the vector store. Chunks without an
// embedding are skipped. Returns the number of points stored.
func (ix *Indexer) UpsertChunks(ctx context.Context, chunks []chunk.Chunk) (int, error) {
	points := make([]vectorstore.Point, 0, len(chunks))
	for i := range chunks {
		if len(chunks[i].Embedding) == 0 {
			continue
		}
		points = append(points, vectorstore.Point{
			ID:       uuid.NewString(),
			Vector:   chunks[i].Embedding,
			Content:  chunks[i].Content,
			Metadata: pointMetadata(&chunks[i]),
		})
	}
	if len(points) == 0 {
		return 0, nil
	}
	if err := ix.store.Upsert(ctx, ix.collection, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

// Result summarizes one document's trip through the indexer.
type Result struct {
	DocumentID     string
	ChunksTotal    int
	ChunksEmbedded int
	ChunksStored   int
	Statistics     map[string]any
}

// IndexDocument chunks, embeds, and stores a parsed document. Partial
// embedding failures reduce the stored count but are not fatal; a document
// where nothing could be stored is an error.
func (ix *Indexer) IndexDocument(ctx context.Context, doc *document.ParsedDocument) (*Result, error) {
	chunks, err := ix.chunker.ChunkDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunk document %s: %w", doc.DocumentID, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s has no extractable content", doc.DocumentID)
	}

	embedded, err := ix.EmbedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	stored, err := ix.UpsertChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("store chunks for %s: %w", doc.DocumentID, err)
	}
	if stored == 0 {
		return nil, fmt.Errorf("document %s: no chunks could be embedded and stored", doc.DocumentID)
	}

	ix.log.Info("indexed document",
		"doc_id", doc.DocumentID,
		"chunks", len(chunks),
		"embedded", embedded,
		"stored", stored,
	)

	return &Result{
		DocumentID:     doc.DocumentID,
		ChunksTotal:    len(chunks),
		ChunksEmbedded: embedded,
		ChunksStored:   stored,
		Statistics:     chunk.Statistics(chunks),
	}, nil
}

// Collection returns the collection name this indexer writes to.
func (ix *Indexer) Collection() string { return ix.collection }

// HealthCheck verifies the vector store is reachable.
func (ix *Indexer) HealthCheck(ctx context.Context) error {
	return ix.store.HealthCheck(ctx)
}

// pointMetadata flattens chunk metadata into scalar values for the store.
func pointMetadata(c *chunk.Chunk) map[string]any {
	md := map[string]any{
		"source_document_id": c.Metadata.SourceDocumentID,
		"source_tab":         c.Metadata.SourceTab,
		"source_tab_id":      c.Metadata.SourceTabID,
		"source_section":     c.Metadata.SourceSection,
		"chunk_index":        c.Metadata.ChunkIndex,
		"total_chunks":       c.Metadata.TotalChunks,
		"heading_level":      c.Metadata.HeadingLevel,
		"contains_question":  c.Metadata.ContainsQuestion,
		"content_length":     len(c.Content),
		"word_count":         c.WordCount(),
		"estimated_tokens":   c.TokenCount(),
	}
	if c.Summary != "" {
		md["summary"] = c.Summary
	}
	for k, v := range c.Metadata.Custom {
		md[k] = v
	}
	return md
}
