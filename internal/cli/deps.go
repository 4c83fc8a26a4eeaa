package cli

import (
	"fmt"
	"time"

	"github.com/jdmorrow/docqa/internal/chunk"
	"github.com/jdmorrow/docqa/internal/config"
	"github.com/jdmorrow/docqa/internal/index"
	"github.com/jdmorrow/docqa/internal/llm"
	"github.com/jdmorrow/docqa/internal/query"
	"github.com/jdmorrow/docqa/internal/vectorstore"
	"github.com/jdmorrow/docqa/internal/vectorstore/chroma"
	"github.com/jdmorrow/docqa/internal/vectorstore/memory"
)

// deps holds the wired pipeline collaborators shared by all commands.
type deps struct {
	provider  llm.Provider
	store     vectorstore.Store
	chunker   *chunk.Chunker
	indexer   *index.Indexer
	processor *query.Processor
	stats     *llm.Stats
}

func buildDeps(cfg config.Config) (*deps, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(llm.Config{
		Provider:         cfg.LLMProvider,
		OllamaBaseURL:    cfg.OllamaBaseURL,
		OllamaEmbedModel: cfg.OllamaEmbedModel,
		OllamaChatModel:  cfg.OllamaChatModel,
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		OpenAIEmbedModel: cfg.OpenAIEmbedModel,
		OpenAIChatModel:  cfg.OpenAIChatModel,
		AnthropicAPIKey:  cfg.AnthropicAPIKey,
		AnthropicModel:   cfg.AnthropicModel,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm provider: %w", err)
	}

	stats := llm.NewStats(time.Hour)
	instrumented := llm.Instrument(provider, stats)

	var store vectorstore.Store
	switch cfg.VectorStore {
	case "memory":
		store = memory.New()
	default:
		store = chroma.New(cfg.ChromaHost, cfg.ChromaPort)
	}

	chunker := chunk.New(chunk.Config{
		MaxChunkSize:     cfg.MaxChunkSize,
		OverlapSize:      cfg.OverlapSize,
		UseSmartChunking: cfg.UseSmartChunking,
		UseSummaries:     cfg.UseSummaries,
	}, instrumented, log)

	indexer := index.New(chunker, instrumented, store, cfg.Collection, cfg.EmbedBatchSize, cfg.EmbedWorkers, log)
	processor := query.NewProcessor(instrumented, instrumented, store, cfg.Collection, cfg.SearchLimit, cfg.MinSimilarity, log)

	return &deps{
		provider:  instrumented,
		store:     store,
		chunker:   chunker,
		indexer:   indexer,
		processor: processor,
		stats:     stats,
	}, nil
}
