// Package llm defines the narrow interfaces the pipeline uses to talk to
// embedding and text-completion providers, plus HTTP clients for Ollama,
// OpenAI, and Anthropic.
package llm

import (
	"context"
	"fmt"
)

// EmbeddingResult is the outcome of a single embedding call.
type EmbeddingResult struct {
	Vector     []float32
	Dimensions int
}

// EmbeddingService converts text into a vector. Implementations must be safe
// for concurrent use; the indexer fans out requests within a batch.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) (*EmbeddingResult, error)
}

// CompletionService produces natural-language completions and summaries.
type CompletionService interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Summarize(ctx context.Context, text string, maxWords int) (string, error)
}

// Provider bundles both capabilities behind a single backend.
type Provider interface {
	EmbeddingService
	CompletionService
	Name() string
	HealthCheck(ctx context.Context) error
}

// RetryableError indicates a transient provider failure (rate limit or
// server-side error) that is worth retrying with backoff.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
