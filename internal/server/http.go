package server

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *ContentServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	mux.HandleFunc("GET /v1/settings/{domain}", s.handleListSettings)
	mux.HandleFunc("GET /v1/settings/{domain}/{key}", s.handleGetSetting)
	mux.HandleFunc("PUT /v1/settings/{domain}/{key}", s.handleSetSetting)
	mux.HandleFunc("DELETE /v1/settings/{domain}/{key}", s.handleDeleteSetting)

	mux.HandleFunc("GET /v1/content", s.handleListContent)
	mux.HandleFunc("GET /v1/content/{page_key}", s.handleGetContent)
	mux.HandleFunc("PUT /v1/content/{page_key}", s.handleUpsertContent)
	mux.HandleFunc("DELETE /v1/content/{page_key}", s.handleDeleteContent)

	mux.HandleFunc("GET /v1/posts/{domain}", s.handleListPosts)
	mux.HandleFunc("GET /v1/posts/{domain}/{slug}", s.handleGetPost)
	mux.HandleFunc("PUT /v1/posts/{domain}/{slug}", s.handleUpsertPost)
	mux.HandleFunc("DELETE /v1/posts/{domain}/{slug}", s.handleDeletePost)

	mux.Handle("GET /metrics", promhttp.Handler())

	return RecoveryMiddleware(s.log, LoggingMiddleware(s.log, AuthMiddleware(authToken, mux)))
}

// handleHealth handles GET /v1/health.
func (s *ContentServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.ListSettings(r.Context(), model.DomainSite); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
