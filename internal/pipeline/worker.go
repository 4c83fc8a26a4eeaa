package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/jdmorrow/docqa/internal/chunk"
	"github.com/jdmorrow/docqa/internal/index"
	"github.com/jdmorrow/docqa/internal/parser"
)

// Worker processes a single document job: parse, chunk, embed, store.
type Worker struct {
	chunker *chunk.Chunker
	indexer *index.Indexer
	log     *slog.Logger
}

func NewWorker(chunker *chunk.Chunker, indexer *index.Indexer, log *slog.Logger) *Worker {
	return &Worker{
		chunker: chunker,
		indexer: indexer,
		log:     log,
	}
}

// Process runs the full indexing pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	doc.DocumentID = job.DocID
	if job.Title != "" {
		doc.Title = job.Title
	}
	job.SetContentHash(ContentHashHex([]byte(doc.FullText())))

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	chunks, err := w.chunker.ChunkDocument(ctx, doc)
	if err != nil {
		log.Error("chunking failed", "error", err)
		job.AddError(fmt.Sprintf("chunk: %s", err))
		job.SetStatus(StatusFailed, "chunking")
		return
	}
	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chunks", len(chunks))

	if len(chunks) == 0 {
		log.Warn("no chunks produced")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	// Phase 3: Embed
	job.SetStatus(StatusEmbedding, "embedding")
	embedded, err := w.indexer.EmbedChunks(ctx, chunks)
	if err != nil {
		log.Error("embedding cancelled", "error", err)
		job.AddError(fmt.Sprintf("embed: %s", err))
		job.SetStatus(StatusFailed, "embedding")
		return
	}
	if embedded < len(chunks) {
		job.AddError(fmt.Sprintf("%d of %d chunks failed to embed", len(chunks)-embedded, len(chunks)))
	}
	log.Info("embedding complete", "embedded", embedded, "total", len(chunks))

	// Phase 4: Store
	job.SetStatus(StatusStoring, "storing")
	stored, err := w.indexer.UpsertChunks(ctx, chunks)
	if err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.AddChunks(embedded, 0)
		job.SetStatus(StatusFailed, "storing")
		return
	}
	job.AddChunks(embedded, stored)
	log.Info("storage complete", "stored", stored, "total", len(chunks))

	switch {
	case stored == 0:
		job.SetStatus(StatusFailed, "storing")
	case stored < len(chunks):
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}
