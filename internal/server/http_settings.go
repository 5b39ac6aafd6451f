package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/sitekeep/internal/events"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// setSettingRequest is the JSON body for PUT /v1/settings/{domain}/{key}.
type setSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// handleListSettings handles GET /v1/settings/{domain}?defaults=true.
func (s *ContentServer) handleListSettings(w http.ResponseWriter, r *http.Request) {
	domain := r.PathValue("domain")
	settings, err := s.store.ListSettings(r.Context(), domain)
	if err != nil {
		s.writeStoreError(w, err, "settings", "list")
		return
	}
	if withDefaults, _ := strconv.ParseBool(r.URL.Query().Get("defaults")); withDefaults {
		settings = withBuiltins(domain, settings)
	}
	if settings == nil {
		settings = []*model.Setting{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// handleGetSetting handles GET /v1/settings/{domain}/{key}.
func (s *ContentServer) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := s.store.GetSetting(r.Context(), r.PathValue("domain"), r.PathValue("key"))
	if err != nil {
		s.writeStoreError(w, err, "setting", "get")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

// handleSetSetting handles PUT /v1/settings/{domain}/{key}.
func (s *ContentServer) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	domain, key := r.PathValue("domain"), r.PathValue("key")
	if err := model.ValidateSettingKey(domain, key); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req setSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Value) == 0 {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	setting := &model.Setting{Domain: domain, Key: key, Value: req.Value}
	if err := s.store.SetSetting(r.Context(), setting); err != nil {
		s.writeStoreError(w, err, "setting", "set")
		return
	}

	s.publish(r.Context(), events.TopicSettingSet, events.SettingSet{Setting: setting})
	writeJSON(w, http.StatusOK, setting)
}

// handleDeleteSetting handles DELETE /v1/settings/{domain}/{key}.
func (s *ContentServer) handleDeleteSetting(w http.ResponseWriter, r *http.Request) {
	domain, key := r.PathValue("domain"), r.PathValue("key")
	if err := s.store.DeleteSetting(r.Context(), domain, key); err != nil {
		s.writeStoreError(w, err, "setting", "delete")
		return
	}
	s.publish(r.Context(), events.TopicSettingDeleted, events.SettingDeleted{Domain: domain, Key: key})
	w.WriteHeader(http.StatusNoContent)
}
