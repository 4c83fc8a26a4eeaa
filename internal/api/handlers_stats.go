package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context(), s.cfg.Collection)
	if err != nil {
		s.log.Warn("collection count failed", "error", err)
		count = -1
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"collection":  s.cfg.Collection,
		"points":      count,
		"queue_depth": s.orchestrator.QueueDepth(),
		"provider":    s.provider.Name(),
	})
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"provider": s.provider.Name(),
		"stats":    s.stats.Snapshot(),
	})
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.DeleteCollection(r.Context(), name); err != nil {
		s.log.Error("collection delete failed", "collection", name, "error", err)
		jsonError(w, "failed to delete collection", http.StatusInternalServerError)
		return
	}
	s.log.Info("collection deleted", "collection", name)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": name})
}
