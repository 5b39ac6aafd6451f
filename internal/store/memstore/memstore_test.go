package memstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetSetting(ctx, "design", "theme"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}

	first := &model.Setting{Domain: "design", Key: "theme", Value: json.RawMessage(`"light"`)}
	if err := s.SetSetting(ctx, first); err != nil {
		t.Fatal(err)
	}
	created := first.CreatedAt

	second := &model.Setting{Domain: "design", Key: "theme", Value: json.RawMessage(`"dark"`)}
	if err := s.SetSetting(ctx, second); err != nil {
		t.Fatal(err)
	}
	if !second.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt changed on update: %v vs %v", second.CreatedAt, created)
	}

	got, err := s.GetSetting(ctx, "design", "theme")
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "dark" {
		t.Fatalf("value = %q, want dark", got.String())
	}

	_ = s.SetSetting(ctx, &model.Setting{Domain: "app", Key: "motivators", Value: json.RawMessage(`[]`)})
	all, _ := s.ListAllSettings(ctx)
	if len(all) != 2 || all[0].Domain != "app" {
		t.Fatalf("ListAllSettings = %+v", all)
	}
	design, _ := s.ListSettings(ctx, "design")
	if len(design) != 1 {
		t.Fatalf("ListSettings(design) = %d, want 1", len(design))
	}

	if err := s.DeleteSetting(ctx, "design", "theme"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSetting(ctx, "design", "theme"); err != sql.ErrNoRows {
		t.Fatalf("second delete: expected sql.ErrNoRows, got %v", err)
	}
}

func TestContent_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec := &model.ContentRecord{PageKey: "home", Title: "Welcome"}
	if err := s.UpsertContent(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Title = "mutated"

	got, err := s.GetContent(ctx, "home")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Welcome" {
		t.Fatalf("stored record shares memory with caller: %q", got.Title)
	}
	if err := s.DeleteContent(ctx, "missing"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpsertPost_KeepsIdentityAndFirstPublish(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return t0 }

	p := &model.Post{ID: "post-a", Domain: model.PostDomainBlog, Slug: "hello", Title: "Hello", Status: model.PostStatusDraft}
	if err := s.UpsertPost(ctx, p); err != nil {
		t.Fatal(err)
	}
	if p.PublishedAt != nil {
		t.Fatalf("draft PublishedAt = %v, want nil", p.PublishedAt)
	}

	s.now = func() time.Time { return t0.Add(time.Hour) }
	p2 := &model.Post{ID: "post-b", Domain: model.PostDomainBlog, Slug: "hello", Title: "Hello again", Status: model.PostStatusPublished}
	if err := s.UpsertPost(ctx, p2); err != nil {
		t.Fatal(err)
	}
	if p2.ID != "post-a" {
		t.Fatalf("ID = %q, want the stored id", p2.ID)
	}
	if p2.PublishedAt == nil || !p2.PublishedAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("PublishedAt = %v, want publish transition time", p2.PublishedAt)
	}

	s.now = func() time.Time { return t0.Add(2 * time.Hour) }
	later := t0.Add(5 * time.Hour)
	p3 := &model.Post{Domain: model.PostDomainBlog, Slug: "hello", Title: "Edited", Status: model.PostStatusPublished, PublishedAt: &later}
	if err := s.UpsertPost(ctx, p3); err != nil {
		t.Fatal(err)
	}
	if !p3.PublishedAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("PublishedAt = %v, want first publish time kept", p3.PublishedAt)
	}

	posts, _ := s.ListPosts(ctx, model.PostFilter{Domain: model.PostDomainBlog})
	if len(posts) != 1 || posts[0].Title != "Edited" {
		t.Fatalf("ListPosts = %+v", posts)
	}
}

func TestUpsertPost_NewDraftIgnoresPublishedAt(t *testing.T) {
	ctx := context.Background()
	s := New()
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p := &model.Post{Domain: model.PostDomainTimeline, Slug: "soon", Title: "Soon", Status: model.PostStatusDraft, PublishedAt: &when}
	if err := s.UpsertPost(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetPost(ctx, model.PostDomainTimeline, "soon")
	if err != nil {
		t.Fatal(err)
	}
	if got.PublishedAt != nil {
		t.Fatalf("stored draft PublishedAt = %v, want nil", got.PublishedAt)
	}
}

func TestListPosts_Filter(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, p := range []*model.Post{
		{ID: "post-1", Domain: model.PostDomainBlog, Slug: "a", Title: "A", Status: model.PostStatusPublished},
		{ID: "post-2", Domain: model.PostDomainBlog, Slug: "b", Title: "B", Status: model.PostStatusDraft},
		{ID: "post-3", Domain: model.PostDomainTimeline, Slug: "c", Title: "C", Status: model.PostStatusPublished},
	} {
		if err := s.UpsertPost(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	for _, tc := range []struct {
		filter model.PostFilter
		want   int
	}{
		{model.PostFilter{}, 3},
		{model.PostFilter{Domain: model.PostDomainBlog}, 2},
		{model.PostFilter{Domain: model.PostDomainBlog, Status: model.PostStatusPublished}, 1},
		{model.PostFilter{Limit: 1}, 1},
	} {
		got, err := s.ListPosts(ctx, tc.filter)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tc.want {
			t.Errorf("ListPosts(%+v) = %d posts, want %d", tc.filter, len(got), tc.want)
		}
	}
}
