package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	query       string
	body        string
	contentType string
	auth        string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.RawQuery
	h.contentType = r.Header.Get("Content-Type")
	h.auth = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	return c, srv
}

// --- Settings ---

func TestHTTPClient_GetSetting(t *testing.T) {
	h := &testHandler{
		responseBody: `{"domain":"design","key":"primary_color","value":"#ff0000","created_at":"2026-01-15T10:00:00Z","updated_at":"2026-01-15T10:00:00Z"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	s, err := c.GetSetting(context.Background(), "design", "primary_color")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if h.method != http.MethodGet || h.path != "/v1/settings/design/primary_color" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if s.String() != "#ff0000" {
		t.Errorf("value = %q, want #ff0000", s.String())
	}
}

func TestHTTPClient_SetSetting(t *testing.T) {
	h := &testHandler{
		responseBody: `{"domain":"app","key":"motivators","value":["Ship it"]}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.SetSetting(context.Background(), "app", "motivators", json.RawMessage(`["Ship it"]`))
	if err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if h.method != http.MethodPut {
		t.Errorf("method = %q, want PUT", h.method)
	}
	if h.contentType != "application/json" {
		t.Errorf("content-type = %q, want application/json", h.contentType)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal([]byte(h.body), &body); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if string(body["value"]) != `["Ship it"]` {
		t.Errorf("request value = %s", body["value"])
	}
}

func TestHTTPClient_ListSettings(t *testing.T) {
	h := &testHandler{
		responseBody: `{"settings":[{"domain":"design","key":"theme","value":"dark"},{"domain":"design","key":"font_family","value":"Inter"}]}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	settings, err := c.ListSettings(context.Background(), "design")
	if err != nil {
		t.Fatalf("ListSettings() error = %v", err)
	}
	if h.path != "/v1/settings/design" {
		t.Errorf("path = %q", h.path)
	}
	if len(settings) != 2 {
		t.Fatalf("len(settings) = %d, want 2", len(settings))
	}
}

func TestHTTPClient_DeleteSetting(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.DeleteSetting(context.Background(), "design", "logo_url"); err != nil {
		t.Fatalf("DeleteSetting() error = %v", err)
	}
	if h.method != http.MethodDelete || h.path != "/v1/settings/design/logo_url" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
}

// --- Content ---

func TestHTTPClient_GetContent_NotFound(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNotFound, responseBody: `{"error":"content not found"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.GetContent(context.Background(), "home")
	if !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "content not found" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestHTTPClient_UpsertContent(t *testing.T) {
	h := &testHandler{responseBody: `{"page_key":"about","title":"About us","is_published":true}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	rec, err := c.UpsertContent(context.Background(), &model.ContentRecord{PageKey: "about", Title: "About us", IsPublished: true})
	if err != nil {
		t.Fatalf("UpsertContent() error = %v", err)
	}
	if h.method != http.MethodPut || h.path != "/v1/content/about" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if rec.Title != "About us" || !rec.IsPublished {
		t.Errorf("got %+v", rec)
	}
}

func TestHTTPClient_ListContent(t *testing.T) {
	h := &testHandler{responseBody: `{"content":[{"page_key":"home"}]}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	recs, err := c.ListContent(context.Background())
	if err != nil {
		t.Fatalf("ListContent() error = %v", err)
	}
	if len(recs) != 1 || recs[0].PageKey != "home" {
		t.Fatalf("got %+v", recs)
	}
}

// --- Posts ---

func TestHTTPClient_ListPosts(t *testing.T) {
	h := &testHandler{responseBody: `{"posts":[{"id":"post-1","domain":"blog","slug":"a","title":"A","status":"published"}]}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	posts, err := c.ListPosts(context.Background(), model.PostFilter{
		Domain: model.PostDomainBlog,
		Status: model.PostStatusPublished,
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if h.path != "/v1/posts/blog" {
		t.Errorf("path = %q", h.path)
	}
	if h.query != "limit=10&status=published" {
		t.Errorf("query = %q", h.query)
	}
	if len(posts) != 1 || posts[0].Status != model.PostStatusPublished {
		t.Fatalf("got %+v", posts)
	}
}

func TestHTTPClient_UpsertPost(t *testing.T) {
	h := &testHandler{responseBody: `{"id":"post-1","domain":"timeline","slug":"a b","title":"A","status":"draft"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.UpsertPost(context.Background(), &model.Post{Domain: model.PostDomainTimeline, Slug: "a b", Title: "A"})
	if err != nil {
		t.Fatalf("UpsertPost() error = %v", err)
	}
	if h.path != "/v1/posts/timeline/a b" {
		t.Errorf("path = %q", h.path)
	}
}

// --- Errors & auth ---

func TestHTTPClient_ServerError(t *testing.T) {
	h := &testHandler{statusCode: http.StatusInternalServerError, responseBody: "boom"}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.GetSetting(context.Background(), "design", "theme")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message != "boom" {
		t.Errorf("got %+v", apiErr)
	}
	if IsNotFound(err) {
		t.Error("500 should not be reported as not found")
	}
}

func TestHTTPClient_BearerToken(t *testing.T) {
	h := &testHandler{responseBody: `{"status":"ok"}`}
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", "s3cret", time.Second)
	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q", status)
	}
	if h.auth != "Bearer s3cret" {
		t.Errorf("Authorization = %q", h.auth)
	}
	if h.path != "/v1/health" {
		t.Errorf("path = %q (trailing slash on base URL should be trimmed)", h.path)
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewHTTPClient(srv.URL, "", 50*time.Millisecond)
	if _, err := c.Health(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}
