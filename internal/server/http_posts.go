package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/sitekeep/internal/events"
	"github.com/alfredjeanlab/sitekeep/internal/idgen"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// postDomain reads and checks the {domain} path value.
func postDomain(w http.ResponseWriter, r *http.Request) (model.PostDomain, bool) {
	d := model.PostDomain(r.PathValue("domain"))
	if !d.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown post domain "+strconv.Quote(string(d)))
		return "", false
	}
	return d, true
}

// handleListPosts handles GET /v1/posts/{domain}?status=&limit=.
func (s *ContentServer) handleListPosts(w http.ResponseWriter, r *http.Request) {
	domain, ok := postDomain(w, r)
	if !ok {
		return
	}
	filter := model.PostFilter{Domain: domain}

	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		filter.Status = model.PostStatus(v)
		if !filter.Status.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid status "+strconv.Quote(v))
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	posts, err := s.store.ListPosts(r.Context(), filter)
	if err != nil {
		s.writeStoreError(w, err, "posts", "list")
		return
	}
	if posts == nil {
		posts = []*model.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// handleGetPost handles GET /v1/posts/{domain}/{slug}.
func (s *ContentServer) handleGetPost(w http.ResponseWriter, r *http.Request) {
	domain, ok := postDomain(w, r)
	if !ok {
		return
	}
	post, err := s.store.GetPost(r.Context(), domain, r.PathValue("slug"))
	if err != nil {
		s.writeStoreError(w, err, "post", "get")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// handleUpsertPost handles PUT /v1/posts/{domain}/{slug}. Domain and slug
// come from the path; a missing status means draft.
func (s *ContentServer) handleUpsertPost(w http.ResponseWriter, r *http.Request) {
	domain, ok := postDomain(w, r)
	if !ok {
		return
	}
	var post model.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post.Domain = domain
	post.Slug = r.PathValue("slug")
	if post.Status == "" {
		post.Status = model.PostStatusDraft
	}
	if post.ID == "" {
		id, err := idgen.NewPostID()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to generate post id")
			return
		}
		post.ID = id
	}

	if err := model.ValidatePost(&post); err != nil {
		s.writeStoreError(w, err, "post", "upsert")
		return
	}
	if err := s.store.UpsertPost(r.Context(), &post); err != nil {
		s.writeStoreError(w, err, "post", "upsert")
		return
	}

	s.publish(r.Context(), events.TopicPostUpserted, events.PostUpserted{Post: &post})
	writeJSON(w, http.StatusOK, &post)
}

// handleDeletePost handles DELETE /v1/posts/{domain}/{slug}.
func (s *ContentServer) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	domain, ok := postDomain(w, r)
	if !ok {
		return
	}
	slug := r.PathValue("slug")
	if err := s.store.DeletePost(r.Context(), domain, slug); err != nil {
		s.writeStoreError(w, err, "post", "delete")
		return
	}
	s.publish(r.Context(), events.TopicPostDeleted, events.PostDeleted{Domain: domain, Slug: slug})
	w.WriteHeader(http.StatusNoContent)
}
