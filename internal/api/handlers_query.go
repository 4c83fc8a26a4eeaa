package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jdmorrow/docqa/internal/query"
)

type queryRequest struct {
	Query  string `json:"query"`
	Format string `json:"format,omitempty"` // "json" (default) or "chat"
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}

	result, err := s.processor.Process(r.Context(), req.Query)
	if err != nil {
		s.log.Error("query failed", "error", err)
		jsonError(w, "query processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if req.Format == "chat" {
		json.NewEncoder(w).Encode(map[string]any{
			"message":    query.FormatChat(result),
			"confidence": result.Confidence,
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"query":              result.Query,
		"answer":             result.Answer,
		"search_results":     result.SearchResults,
		"confidence":         result.Confidence,
		"sources_used":       result.SourcesUsed,
		"processing_time_ms": result.ProcessingTime.Milliseconds(),
	})
}
