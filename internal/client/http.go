package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// HTTPClient implements Gateway using the sitekeep HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Compile-time check that HTTPClient implements Gateway.
var _ Gateway = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request. A zero timeout means no client timeout.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Settings ---

func settingPath(domain, key string) string {
	return "/v1/settings/" + url.PathEscape(domain) + "/" + url.PathEscape(key)
}

func (c *HTTPClient) GetSetting(ctx context.Context, domain, key string) (*model.Setting, error) {
	var s model.Setting
	if err := c.doJSON(ctx, http.MethodGet, settingPath(domain, key), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) ListSettings(ctx context.Context, domain string) ([]*model.Setting, error) {
	var resp struct {
		Settings []*model.Setting `json:"settings"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/settings/"+url.PathEscape(domain), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Settings, nil
}

func (c *HTTPClient) SetSetting(ctx context.Context, domain, key string, value json.RawMessage) (*model.Setting, error) {
	body := map[string]json.RawMessage{"value": value}
	var s model.Setting
	if err := c.doJSON(ctx, http.MethodPut, settingPath(domain, key), body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) DeleteSetting(ctx context.Context, domain, key string) error {
	return c.doJSON(ctx, http.MethodDelete, settingPath(domain, key), nil, nil)
}

// --- Content ---

func (c *HTTPClient) GetContent(ctx context.Context, pageKey string) (*model.ContentRecord, error) {
	var rec model.ContentRecord
	if err := c.doJSON(ctx, http.MethodGet, "/v1/content/"+url.PathEscape(pageKey), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) ListContent(ctx context.Context) ([]*model.ContentRecord, error) {
	var resp struct {
		Content []*model.ContentRecord `json:"content"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/content", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Content, nil
}

func (c *HTTPClient) UpsertContent(ctx context.Context, rec *model.ContentRecord) (*model.ContentRecord, error) {
	var out model.ContentRecord
	if err := c.doJSON(ctx, http.MethodPut, "/v1/content/"+url.PathEscape(rec.PageKey), rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteContent(ctx context.Context, pageKey string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/content/"+url.PathEscape(pageKey), nil, nil)
}

// --- Posts ---

func postPath(domain model.PostDomain, slug string) string {
	return "/v1/posts/" + url.PathEscape(string(domain)) + "/" + url.PathEscape(slug)
}

func (c *HTTPClient) GetPost(ctx context.Context, domain model.PostDomain, slug string) (*model.Post, error) {
	var p model.Post
	if err := c.doJSON(ctx, http.MethodGet, postPath(domain, slug), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ListPosts(ctx context.Context, filter model.PostFilter) ([]*model.Post, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	path := "/v1/posts/" + url.PathEscape(string(filter.Domain))
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Posts []*model.Post `json:"posts"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

func (c *HTTPClient) UpsertPost(ctx context.Context, post *model.Post) (*model.Post, error) {
	var out model.Post
	if err := c.doJSON(ctx, http.MethodPut, postPath(post.Domain, post.Slug), post, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeletePost(ctx context.Context, domain model.PostDomain, slug string) error {
	return c.doJSON(ctx, http.MethodDelete, postPath(domain, slug), nil, nil)
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Is makes a 404 APIError match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
