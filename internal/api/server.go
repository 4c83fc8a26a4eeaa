// Package api exposes the indexing and query pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jdmorrow/docqa/internal/config"
	"github.com/jdmorrow/docqa/internal/llm"
	"github.com/jdmorrow/docqa/internal/pipeline"
	"github.com/jdmorrow/docqa/internal/query"
	"github.com/jdmorrow/docqa/internal/vectorstore"
)

// Server is the HTTP API server for docqa.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	processor    *query.Processor
	provider     llm.Provider
	store        vectorstore.Store
	stats        *llm.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, processor *query.Processor, provider llm.Provider, store vectorstore.Store, stats *llm.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		processor:    processor,
		provider:     provider,
		store:        store,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/query", s.handleQuery)

		r.Post("/api/index", s.handleIndex)
		r.Post("/api/index/batch", s.handleBatchIndex)
		r.Get("/api/index/{jobID}/status", s.handleIndexStatus)

		r.Get("/api/stats", s.handleStats)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Delete("/api/collections/{name}", s.handleDeleteCollection)
	})

	s.router = r
}

// handleHealth reports the health of the server and its collaborators. The
// server stays "degraded" rather than failing outright when a collaborator
// is down, so load balancers can still tell the process is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{}
	status := "ok"

	if err := s.store.HealthCheck(ctx); err != nil {
		components["vector_store"] = err.Error()
		status = "degraded"
	} else {
		components["vector_store"] = "ok"
	}

	if err := s.provider.HealthCheck(ctx); err != nil {
		components["llm"] = err.Error()
		status = "degraded"
	} else {
		components["llm"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":     status,
		"provider":   s.provider.Name(),
		"components": components,
	})
}
