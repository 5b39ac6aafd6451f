package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/alfredjeanlab/sitekeep/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var (
	settingRowColumns = []string{"domain", "key", "value", "created_at", "updated_at"}
	contentRowColumns = []string{
		"page_key", "title", "subtitle", "content", "meta_title", "meta_description",
		"featured_image_url", "button_text", "button_url", "is_published", "created_at", "updated_at",
	}
	postRowColumns = []string{
		"id", "domain", "slug", "title", "excerpt", "content", "featured_image_url",
		"status", "published_at", "created_at", "updated_at",
	}
)

func TestScanHelpers(t *testing.T) {
	if got := nullString(""); got.Valid {
		t.Fatalf("nullString(\"\") should be invalid, got %+v", got)
	}
	if got := nullString("x"); !got.Valid || got.String != "x" {
		t.Fatalf("nullString(\"x\") = %+v", got)
	}
	if got := nullTimePtr(nil); got.Valid {
		t.Fatalf("nullTimePtr(nil) should be invalid")
	}
	now := time.Now()
	if got := nullTimePtr(&now); !got.Valid || !got.Time.Equal(now) {
		t.Fatalf("nullTimePtr(&now) = %+v", got)
	}
	if jsonbBytes(nil) != nil {
		t.Fatal("jsonbBytes(nil) should be nil")
	}
	if string(jsonbBytes(json.RawMessage(`"x"`))) != `"x"` {
		t.Fatal("jsonbBytes should pass through the raw bytes")
	}
}

func TestQuerySetSetting(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	s := &model.Setting{Domain: "design", Key: "primary_color", Value: json.RawMessage(`"#ff0000"`)}
	mock.ExpectQuery("INSERT INTO settings .+ ON CONFLICT \\(domain, key\\) DO UPDATE").
		WithArgs("design", "primary_color", []byte(`"#ff0000"`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	if err := querySetSetting(context.Background(), db, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt = %v, want %v", s.UpdatedAt, now)
	}
}

func TestQuerySetSetting_NilValue(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO settings").
		WithArgs("app", "motivators", []byte("null")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	if err := querySetSetting(context.Background(), db, &model.Setting{Domain: "app", Key: "motivators"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryGetSetting(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT domain, key, value, created_at, updated_at\\s+FROM settings WHERE domain = \\$1 AND key = \\$2").
		WithArgs("design", "theme").
		WillReturnRows(sqlmock.NewRows(settingRowColumns).AddRow("design", "theme", []byte(`"dark"`), now, now))

	s, err := queryGetSetting(context.Background(), db, "design", "theme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.String() != "dark" {
		t.Fatalf("value = %q, want %q", s.String(), "dark")
	}
}

func TestQueryGetSetting_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM settings").WithArgs("design", "nope").WillReturnError(sql.ErrNoRows)

	if _, err := queryGetSetting(context.Background(), db, "design", "nope"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryListSettings(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM settings WHERE domain = \\$1\\s+ORDER BY key").
		WithArgs("design").
		WillReturnRows(sqlmock.NewRows(settingRowColumns).
			AddRow("design", "font_family", []byte(`"Inter"`), now, now).
			AddRow("design", "theme", []byte(`"light"`), now, now))

	settings, err := queryListSettings(context.Background(), db, "design")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(settings) != 2 || settings[0].Key != "font_family" {
		t.Fatalf("got %+v", settings)
	}
}

func TestQueryListAllSettings(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM settings ORDER BY domain, key").
		WillReturnRows(sqlmock.NewRows(settingRowColumns).
			AddRow("app", "motivators", []byte(`["go"]`), now, now).
			AddRow("design", "theme", []byte(`"light"`), now, now))

	settings, err := queryListAllSettings(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(settings) != 2 {
		t.Fatalf("expected 2 settings, got %d", len(settings))
	}
	if string(settings[0].Value) != `["go"]` {
		t.Fatalf("value = %s", settings[0].Value)
	}
}

func TestQueryDeleteSetting(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM settings WHERE domain = \\$1 AND key = \\$2").
		WithArgs("design", "logo_url").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeleteSetting(context.Background(), db, "design", "logo_url"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryDeleteSetting_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM settings").
		WithArgs("design", "logo_url").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteSetting(context.Background(), db, "design", "logo_url"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryUpsertContent(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rec := &model.ContentRecord{PageKey: "home", Title: "Welcome", ButtonURL: "/contact", IsPublished: true}
	mock.ExpectQuery("INSERT INTO content_records .+ ON CONFLICT \\(page_key\\) DO UPDATE").
		WithArgs("home", "Welcome", "", "", "", "", "", "", "/contact", true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	if err := queryUpsertContent(context.Background(), db, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v, want %v", rec.CreatedAt, now)
	}
}

func TestQueryGetContent(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM content_records WHERE page_key = \\$1").
		WithArgs("about").
		WillReturnRows(sqlmock.NewRows(contentRowColumns).AddRow(
			"about", "About us", "", "We build things", "", "", "/img/team.png", "", "", true, now, now,
		))

	rec, err := queryGetContent(context.Background(), db, "about")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title != "About us" || rec.FeaturedImageURL != "/img/team.png" || !rec.IsPublished {
		t.Fatalf("got %+v", rec)
	}
}

func TestQueryGetContent_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM content_records").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	if _, err := queryGetContent(context.Background(), db, "missing"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryListContent(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM content_records ORDER BY page_key").
		WillReturnRows(sqlmock.NewRows(contentRowColumns).
			AddRow("about", "About", "", "", "", "", "", "", "", true, now, now).
			AddRow("home", "Home", "", "", "", "", "", "", "", false, now, now))

	recs, err := queryListContent(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 || recs[1].PageKey != "home" {
		t.Fatalf("got %+v", recs)
	}
}

func TestQueryDeleteContent_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM content_records WHERE page_key = \\$1").
		WithArgs("home").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteContent(context.Background(), db, "home"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryUpsertPost(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	firstPublished := now.Add(-48 * time.Hour)

	p := &model.Post{
		ID:     "post-new",
		Domain: model.PostDomainBlog,
		Slug:   "hello-world",
		Title:  "Hello World",
		Status: model.PostStatusPublished,
	}
	// The row already exists: the stored id and first publish time come back.
	mock.ExpectQuery("INSERT INTO posts .+ ON CONFLICT \\(domain, slug\\) DO UPDATE").
		WithArgs("post-new", "blog", "hello-world", "Hello World", nil, nil, nil, "published", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "published_at", "created_at", "updated_at"}).
			AddRow("post-existing", firstPublished, now, now))

	if err := queryUpsertPost(context.Background(), db, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "post-existing" {
		t.Fatalf("ID = %q, want stored id", p.ID)
	}
	if p.PublishedAt == nil || !p.PublishedAt.Equal(firstPublished) {
		t.Fatalf("PublishedAt = %v, want %v", p.PublishedAt, firstPublished)
	}
}

func TestQueryUpsertPost_DraftDropsPublishedAt(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p := &model.Post{ID: "post-e", Domain: model.PostDomainBlog, Slug: "soon", Title: "Soon", Status: model.PostStatusDraft, PublishedAt: &when}
	mock.ExpectQuery("INSERT INTO posts").
		WithArgs("post-e", "blog", "soon", "Soon", nil, nil, nil, "draft", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "published_at", "created_at", "updated_at"}).
			AddRow("post-e", nil, now, now))

	if err := queryUpsertPost(context.Background(), db, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PublishedAt != nil {
		t.Fatalf("draft should have no PublishedAt, got %v", p.PublishedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQueryUpsertPost_Draft(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	p := &model.Post{ID: "post-d", Domain: model.PostDomainTimeline, Slug: "later", Title: "Later", Status: model.PostStatusDraft}
	mock.ExpectQuery("INSERT INTO posts").
		WithArgs("post-d", "timeline", "later", "Later", nil, nil, nil, "draft", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "published_at", "created_at", "updated_at"}).
			AddRow("post-d", nil, now, now))

	if err := queryUpsertPost(context.Background(), db, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PublishedAt != nil {
		t.Fatalf("draft should have no PublishedAt, got %v", p.PublishedAt)
	}
}

func TestQueryGetPost(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM posts WHERE domain = \\$1 AND slug = \\$2").
		WithArgs("blog", "hello-world").
		WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(
			"post-1", "blog", "hello-world", "Hello World", "Short", nil, nil, "published", now, now, now,
		))

	p, err := queryGetPost(context.Background(), db, model.PostDomainBlog, "hello-world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Domain != model.PostDomainBlog || p.Excerpt != "Short" || p.Content != "" {
		t.Fatalf("got %+v", p)
	}
	if !p.IsPublished() || p.PublishedAt == nil {
		t.Fatalf("expected a published post with PublishedAt, got %+v", p)
	}
}

func TestQueryListPosts(t *testing.T) {
	for _, tc := range []struct {
		name   string
		filter model.PostFilter
		query  string
		args   []any
	}{
		{
			name:   "DomainOnly",
			filter: model.PostFilter{Domain: model.PostDomainBlog},
			query:  "FROM posts WHERE domain = \\$1 ORDER BY",
			args:   []any{"blog"},
		},
		{
			name:   "DomainStatusLimit",
			filter: model.PostFilter{Domain: model.PostDomainTimeline, Status: model.PostStatusPublished, Limit: 5},
			query:  "WHERE domain = \\$1 AND status = \\$2 ORDER BY .+ LIMIT \\$3",
			args:   []any{"timeline", "published", 5},
		},
		{
			name:   "NoFilter",
			filter: model.PostFilter{},
			query:  "FROM posts ORDER BY",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			now := time.Now().UTC()

			exp := mock.ExpectQuery(tc.query)
			if len(tc.args) > 0 {
				args := make([]driver.Value, len(tc.args))
				for i, a := range tc.args {
					args[i] = a
				}
				exp = exp.WithArgs(args...)
			}
			exp.WillReturnRows(sqlmock.NewRows(postRowColumns).
				AddRow("post-1", "blog", "a", "A", nil, nil, nil, "published", now, now, now))

			posts, err := queryListPosts(context.Background(), db, tc.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(posts) != 1 {
				t.Fatalf("expected 1 post, got %d", len(posts))
			}
		})
	}
}

func TestQueryDeletePost(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM posts WHERE domain = \\$1 AND slug = \\$2").
		WithArgs("blog", "a").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeletePost(context.Background(), db, model.PostDomainBlog, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunInTransaction_Rollback(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM settings").WithArgs("design", "x").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.DeleteSetting(context.Background(), "design", "x")
	})
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
