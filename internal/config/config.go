package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// LLM provider selection: ollama, openai, or anthropic
	LLMProvider string

	// Ollama
	OllamaBaseURL    string
	OllamaEmbedModel string
	OllamaChatModel  string

	// OpenAI
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIEmbedModel string
	OpenAIChatModel  string

	// Anthropic (completion only; pair with ollama or openai for embedding)
	AnthropicAPIKey string
	AnthropicModel  string

	// Vector store
	VectorStore string // chroma or memory
	ChromaHost  string
	ChromaPort  int
	Collection  string

	// Chunking
	MaxChunkSize     int
	OverlapSize      int
	UseSmartChunking bool
	UseSummaries     bool

	// Embedding pipeline
	EmbedBatchSize int
	EmbedWorkers   int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Retrieval
	SearchLimit   int
	MinSimilarity float64

	// Logging
	LogLevel string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCQA_API_KEY"),

		LLMProvider: envOr("LLM_PROVIDER", "ollama"),

		OllamaBaseURL:    envOr("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaEmbedModel: envOr("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		OllamaChatModel:  envOr("OLLAMA_CHAT_MODEL", "llama3.2"),

		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIEmbedModel: envOr("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		OpenAIChatModel:  envOr("OPENAI_CHAT_MODEL", "gpt-4o-mini"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		VectorStore: envOr("VECTOR_STORE", "chroma"),
		ChromaHost:  envOr("CHROMA_HOST", "localhost"),
		ChromaPort:  envInt("CHROMA_PORT", 8000),
		Collection:  envOr("COLLECTION_NAME", "document_chunks"),

		MaxChunkSize:     envInt("MAX_CHUNK_SIZE", 1000),
		OverlapSize:      envInt("OVERLAP_SIZE", 100),
		UseSmartChunking: envBool("USE_SMART_CHUNKING", false),
		UseSummaries:     envBool("USE_SUMMARIES", false),

		EmbedBatchSize: envInt("EMBED_BATCH_SIZE", 10),
		EmbedWorkers:   envInt("EMBED_WORKERS", 4),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		SearchLimit:   envInt("SEARCH_LIMIT", 5),
		MinSimilarity: envFloat("MIN_SIMILARITY", 0.1),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 1000
	}
	if cfg.OverlapSize < 0 {
		cfg.OverlapSize = 100
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 10
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = 4
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = 0.1
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case "ollama":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.VectorStore {
	case "chroma", "memory":
	default:
		return fmt.Errorf("unknown VECTOR_STORE %q", c.VectorStore)
	}

	if c.OverlapSize >= c.MaxChunkSize {
		return fmt.Errorf("OVERLAP_SIZE (%d) must be smaller than MAX_CHUNK_SIZE (%d)", c.OverlapSize, c.MaxChunkSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
