// Package memstore is an in-memory store.Store. It backs `sitekeep serve
// --in-memory` and the package tests that need a real store without Postgres.
package memstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/alfredjeanlab/sitekeep/internal/store"
)

type settingKey struct{ domain, key string }

type postKey struct {
	domain model.PostDomain
	slug   string
}

// Store keeps every record in maps guarded by a single mutex. Records are
// copied on the way in and out so callers never share memory with the store.
type Store struct {
	mu       sync.Mutex
	settings map[settingKey]*model.Setting
	content  map[string]*model.ContentRecord
	posts    map[postKey]*model.Post
	now      func() time.Time
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		settings: make(map[settingKey]*model.Setting),
		content:  make(map[string]*model.ContentRecord),
		posts:    make(map[postKey]*model.Post),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// --- Settings ---

func (m *Store) SetSetting(_ context.Context, s *model.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	k := settingKey{s.Domain, s.Key}
	if prev, ok := m.settings[k]; ok {
		s.CreatedAt = prev.CreatedAt
	} else {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if len(s.Value) == 0 {
		s.Value = json.RawMessage("null")
	}
	m.settings[k] = copySetting(s)
	return nil
}

func (m *Store) GetSetting(_ context.Context, domain, key string) (*model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.settings[settingKey{domain, key}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copySetting(s), nil
}

func (m *Store) ListSettings(_ context.Context, domain string) ([]*model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Setting
	for k, s := range m.settings {
		if k.domain == domain {
			out = append(out, copySetting(s))
		}
	}
	sortSettings(out)
	return out, nil
}

func (m *Store) ListAllSettings(_ context.Context) ([]*model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Setting, 0, len(m.settings))
	for _, s := range m.settings {
		out = append(out, copySetting(s))
	}
	sortSettings(out)
	return out, nil
}

func (m *Store) DeleteSetting(_ context.Context, domain, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := settingKey{domain, key}
	if _, ok := m.settings[k]; !ok {
		return sql.ErrNoRows
	}
	delete(m.settings, k)
	return nil
}

// --- Content ---

func (m *Store) UpsertContent(_ context.Context, rec *model.ContentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if prev, ok := m.content[rec.PageKey]; ok {
		rec.CreatedAt = prev.CreatedAt
	} else {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	c := *rec
	m.content[rec.PageKey] = &c
	return nil
}

func (m *Store) GetContent(_ context.Context, pageKey string) (*model.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.content[pageKey]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *rec
	return &c, nil
}

func (m *Store) ListContent(_ context.Context) ([]*model.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.ContentRecord, 0, len(m.content))
	for _, rec := range m.content {
		c := *rec
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PageKey < out[j].PageKey })
	return out, nil
}

func (m *Store) DeleteContent(_ context.Context, pageKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.content[pageKey]; !ok {
		return sql.ErrNoRows
	}
	delete(m.content, pageKey)
	return nil
}

// --- Posts ---

// UpsertPost mirrors the Postgres upsert: the stored ID and CreatedAt win,
// and PublishedAt keeps the first publish time.
func (m *Store) UpsertPost(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	k := postKey{p.Domain, p.Slug}
	if prev, ok := m.posts[k]; ok {
		p.ID = prev.ID
		p.CreatedAt = prev.CreatedAt
		switch {
		case prev.PublishedAt != nil || p.Status != model.PostStatusPublished:
			p.PublishedAt = prev.PublishedAt
		default:
			p.ApplyStatus(prev.Status, nil, now)
		}
	} else {
		p.CreatedAt = now
		p.ApplyStatus("", nil, now)
	}
	p.UpdatedAt = now
	m.posts[k] = copyPost(p)
	return nil
}

func (m *Store) GetPost(_ context.Context, domain model.PostDomain, slug string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postKey{domain, slug}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyPost(p), nil
}

func (m *Store) ListPosts(_ context.Context, filter model.PostFilter) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Post
	for _, p := range m.posts {
		if filter.Domain != "" && p.Domain != filter.Domain {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, copyPost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := sortTime(out[i]), sortTime(out[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].Slug < out[j].Slug
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Store) DeletePost(_ context.Context, domain model.PostDomain, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := postKey{domain, slug}
	if _, ok := m.posts[k]; !ok {
		return sql.ErrNoRows
	}
	delete(m.posts, k)
	return nil
}

// RunInTransaction calls fn with the store itself. Writes made before fn
// fails are not rolled back.
func (m *Store) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

// Close is a no-op.
func (m *Store) Close() error { return nil }

func copySetting(s *model.Setting) *model.Setting {
	c := *s
	c.Value = append(json.RawMessage(nil), s.Value...)
	return &c
}

func copyPost(p *model.Post) *model.Post {
	c := *p
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

func sortSettings(s []*model.Setting) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Domain != s[j].Domain {
			return s[i].Domain < s[j].Domain
		}
		return s[i].Key < s[j].Key
	})
}

func sortTime(p *model.Post) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}
