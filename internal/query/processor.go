package query

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jdmorrow/docqa/internal/llm"
	"github.com/jdmorrow/docqa/internal/vectorstore"
)

const (
	noResultsMessage = "I couldn't find any relevant information in the documentation to answer your question. Please try rephrasing your question or ask about a different topic."
	llmErrorMessage  = "I encountered an error while generating a response. Please try again."

	maxContextSources = 3
	maxExcerptChars   = 500
)

// Processor answers questions against the indexed documents.
type Processor struct {
	embedder      llm.EmbeddingService
	completer     llm.CompletionService
	store         vectorstore.Store
	collection    string
	searchLimit   int
	minSimilarity float64
	log           *slog.Logger
}

func NewProcessor(embedder llm.EmbeddingService, completer llm.CompletionService, store vectorstore.Store, collection string, searchLimit int, minSimilarity float64, log *slog.Logger) *Processor {
	if searchLimit <= 0 {
		searchLimit = 5
	}
	if minSimilarity <= 0 {
		minSimilarity = 0.1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		embedder:      embedder,
		completer:     completer,
		store:         store,
		collection:    collection,
		searchLimit:   searchLimit,
		minSimilarity: minSimilarity,
		log:           log,
	}
}

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	userMentionRe    = regexp.MustCompile(`<@[A-Z0-9]+>`)
	channelMentionRe = regexp.MustCompile(`<#[A-Z0-9]+\|[^>]+>`)
	linkRe           = regexp.MustCompile(`<http[^>]+>`)
	botMentionRe     = regexp.MustCompile(`@\w+`)
	punctuationRe    = regexp.MustCompile(`[^\w\s\?\!\.\,\-]`)
)

// Preprocess strips chat-client formatting (user and channel mentions, link
// markup, bot mentions), replaces unexpected punctuation with spaces, and
// collapses whitespace.
func Preprocess(query string) string {
	query = whitespaceRe.ReplaceAllString(strings.TrimSpace(query), " ")
	query = userMentionRe.ReplaceAllString(query, "")
	query = channelMentionRe.ReplaceAllString(query, "")
	query = linkRe.ReplaceAllString(query, "")
	query = botMentionRe.ReplaceAllString(query, "")
	query = punctuationRe.ReplaceAllString(query, " ")
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(query), " ")
}

// Search embeds the query and returns up to searchLimit results above the
// similarity threshold, best first. A failed query embedding is fatal; there
// is nothing to search with.
func (p *Processor) Search(ctx context.Context, query string) ([]SearchResult, error) {
	emb, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Overfetch so the threshold filter still leaves enough results.
	matches, err := p.store.Query(ctx, p.collection, emb.Vector, p.searchLimit*2)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		similarity := 1 - m.Distance
		if similarity < p.minSimilarity {
			continue
		}
		results = append(results, SearchResult{
			Content:       m.Content,
			Similarity:    similarity,
			Metadata:      m.Metadata,
			SourceSection: metaString(m.Metadata, "source_section", "Unknown"),
			SourceTab:     metaString(m.Metadata, "source_tab", "Unknown"),
			DocumentURL:   documentURL(m.Metadata),
		})
	}
	if len(results) > p.searchLimit {
		results = results[:p.searchLimit]
	}
	return results, nil
}

// Confidence scores how trustworthy the retrieved set looks: the top
// similarity, boosted by 0.1 per result above 0.3 up to 0.3, capped at 0.95.
func Confidence(results []SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}

	confidence := results[0].Similarity
	good := 0
	for _, r := range results {
		if r.Similarity > 0.3 {
			good++
		}
	}
	boost := float64(good) * 0.1
	if boost > 0.3 {
		boost = 0.3
	}
	confidence += boost

	if confidence > 0.95 {
		confidence = 0.95
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// ComposeAnswer builds a bounded prompt from the top results and asks the
// completion service for an answer. Completion failures become a fixed error
// message, never an error to the caller.
func (p *Processor) ComposeAnswer(ctx context.Context, query string, results []SearchResult) string {
	if len(results) == 0 {
		return noResultsMessage
	}

	var contextParts []string
	for i, r := range results {
		if i >= maxContextSources {
			break
		}
		excerpt := r.Content
		if len(excerpt) > maxExcerptChars {
			excerpt = excerpt[:maxExcerptChars] + "..."
		}
		contextParts = append(contextParts, fmt.Sprintf("Source %d (from %s > %s):\n%s", i+1, r.SourceTab, r.SourceSection, excerpt))
	}

	prompt := fmt.Sprintf(`You are a helpful assistant that answers questions about indexed documentation. Use the provided context to answer questions accurately and concisely.

Guidelines:
- Base your answer on the provided context
- Be specific and factual
- If the context doesn't contain enough information, say so
- Keep responses conversational but informative
- Don't make up information not in the context

Context from documentation:
%s

User question: %s

Please provide a helpful answer based on the context above.`, strings.Join(contextParts, "\n\n"), query)

	answer, err := p.completer.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		p.log.Error("answer generation failed", "error", err)
		return llmErrorMessage
	}
	return answer
}

// Process runs the full pipeline: preprocess, search, compose, score.
func (p *Processor) Process(ctx context.Context, query string) (*QueryResult, error) {
	start := time.Now()

	cleaned := Preprocess(query)
	p.log.Info("processing query", "query", cleaned)

	results, err := p.Search(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	p.log.Info("search complete", "results", len(results))

	answer := p.ComposeAnswer(ctx, cleaned, results)

	return &QueryResult{
		Query:          query,
		Answer:         answer,
		SearchResults:  results,
		Confidence:     Confidence(results),
		ProcessingTime: time.Since(start),
		SourcesUsed:    len(results),
	}, nil
}

// documentURL builds a Google Docs link from the chunk metadata, pointing at
// the source tab when one is recorded.
func documentURL(metadata map[string]any) string {
	docID := metaString(metadata, "source_document_id", "")
	if docID == "" {
		return ""
	}
	url := fmt.Sprintf("https://docs.google.com/document/d/%s/edit", docID)
	if tabID := metaString(metadata, "source_tab_id", ""); tabID != "" {
		url += "?tab=" + tabID
	}
	return url
}

func metaString(metadata map[string]any, key, fallback string) string {
	if v, ok := metadata[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
