package server

import (
	"encoding/json"
	"net/http"

	"github.com/alfredjeanlab/sitekeep/internal/events"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// handleListContent handles GET /v1/content.
func (s *ContentServer) handleListContent(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListContent(r.Context())
	if err != nil {
		s.writeStoreError(w, err, "content", "list")
		return
	}
	if records == nil {
		records = []*model.ContentRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": records})
}

// handleGetContent handles GET /v1/content/{page_key}.
func (s *ContentServer) handleGetContent(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetContent(r.Context(), r.PathValue("page_key"))
	if err != nil {
		s.writeStoreError(w, err, "content", "get")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleUpsertContent handles PUT /v1/content/{page_key}. The page key in
// the path wins over the body.
func (s *ContentServer) handleUpsertContent(w http.ResponseWriter, r *http.Request) {
	var rec model.ContentRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec.PageKey = r.PathValue("page_key")

	if err := model.ValidateContent(&rec); err != nil {
		s.writeStoreError(w, err, "content", "upsert")
		return
	}
	if err := s.store.UpsertContent(r.Context(), &rec); err != nil {
		s.writeStoreError(w, err, "content", "upsert")
		return
	}

	s.publish(r.Context(), events.TopicContentUpserted, events.ContentUpserted{Content: &rec})
	writeJSON(w, http.StatusOK, &rec)
}

// handleDeleteContent handles DELETE /v1/content/{page_key}.
func (s *ContentServer) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	pageKey := r.PathValue("page_key")
	if err := s.store.DeleteContent(r.Context(), pageKey); err != nil {
		s.writeStoreError(w, err, "content", "delete")
		return
	}
	s.publish(r.Context(), events.TopicContentDeleted, events.ContentDeleted{PageKey: pageKey})
	w.WriteHeader(http.StatusNoContent)
}
