package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/migration"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain string", "Old Title", `"Old Title"`},
		{"quoted string", `"dark"`, `"dark"`},
		{"number", "42", `42`},
		{"bool", "true", `true`},
		{"object", `{"a":1}`, `{"a":1}`},
		{"padded object", `  {"a":1} `, `{"a":1}`},
		{"broken json", `{broken`, `"{broken"`},
		{"empty", "", `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(parseValue(tt.in)); got != tt.want {
				t.Errorf("parseValue(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyFields(t *testing.T) {
	rec := &model.ContentRecord{PageKey: "home", Title: "Keep"}
	if err := applyFields(rec, []string{"subtitle=Hello = world", "button_url=/contact"}); err != nil {
		t.Fatalf("applyFields: %v", err)
	}
	if rec.Title != "Keep" || rec.Subtitle != "Hello = world" || rec.ButtonURL != "/contact" {
		t.Errorf("unexpected record: %+v", rec)
	}

	if err := applyFields(rec, []string{"nope=1"}); err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Errorf("expected unknown field error, got %v", err)
	}
	if err := applyFields(rec, []string{"title"}); err == nil || !strings.Contains(err.Error(), "name=value") {
		t.Errorf("expected format error, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("line one\nline two", 100); got != "line one line two" {
		t.Errorf("newlines not flattened: %q", got)
	}
	if got := truncate(strings.Repeat("x", 20), 10); got != "xxxxxxx..." {
		t.Errorf("got %q", got)
	}
}

func TestPrintPostsTable(t *testing.T) {
	published := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []*model.Post{
		{ID: "p1", Domain: model.PostDomainBlog, Slug: "hello", Title: "Hello", Status: model.PostStatusPublished, PublishedAt: &published},
		{ID: "p2", Domain: model.PostDomainBlog, Slug: "draft", Title: "Draft", Status: model.PostStatusDraft},
	}
	var buf bytes.Buffer
	printPostsTable(&buf, posts)
	out := buf.String()

	for _, want := range []string{"SLUG", "hello", "2025-01-01 00:00:00", "draft", "2 posts"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "p2") && !strings.Contains(line, " - ") {
			t.Errorf("draft should show a placeholder publish time: %q", line)
		}
	}
}

func TestPrintContentTable_SkipsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	printContentTable(&buf, &model.ContentRecord{PageKey: "about", Title: "About us", IsPublished: true})
	out := buf.String()
	if !strings.Contains(out, "title:") || !strings.Contains(out, "About us") {
		t.Errorf("missing title:\n%s", out)
	}
	if strings.Contains(out, "subtitle:") {
		t.Errorf("empty subtitle should be omitted:\n%s", out)
	}
	if !strings.Contains(out, "published:") || !strings.Contains(out, "true") {
		t.Errorf("missing published flag:\n%s", out)
	}
}

func TestPrintCacheEntries_Sorted(t *testing.T) {
	var buf bytes.Buffer
	printCacheEntries(&buf, map[string]string{"zeta": "1", "alpha": "2", "mid": "3"})
	out := buf.String()
	a, m, z := strings.Index(out, "alpha"), strings.Index(out, "mid"), strings.Index(out, "zeta")
	if !(a < m && m < z) {
		t.Errorf("keys not sorted:\n%s", out)
	}
	if !strings.Contains(out, "3 keys") {
		t.Errorf("missing count:\n%s", out)
	}
}

func testReport() *migration.Report {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &migration.Report{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Steps: []migration.StepResult{
			{Domain: migration.DomainPages, Stats: migration.StepStats{Written: 2}, Duration: 10 * time.Millisecond},
			{Domain: migration.DomainBlogPosts, Stats: migration.StepStats{Skipped: 1}, Err: errors.New("remote down")},
		},
		KeysRemoved:   []string{"home_title", "blog_posts"},
		CleanupErrors: []error{errors.New("remove x: denied")},
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, testReport())
	out := buf.String()

	for _, want := range []string{"Migration run-1", "ok", "pages", "written=2", "FAIL", "blog_posts", "remote down", "removed 2 legacy keys", "cleanup:", "1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReport_AlreadyMigrated(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &migration.Report{AlreadyMigrated: true})
	if !strings.Contains(buf.String(), "Already migrated") {
		t.Errorf("got %q", buf.String())
	}
}

func TestToReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, toReportJSON(testReport())); err != nil {
		t.Fatalf("printJSON: %v", err)
	}

	var got struct {
		RunID      string `json:"run_id"`
		DurationMS int64  `json:"duration_ms"`
		Steps      []struct {
			Domain  string `json:"domain"`
			Written int    `json:"written"`
			Error   string `json:"error"`
		} `json:"steps"`
		CleanupErrors []string `json:"cleanup_errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if got.RunID != "run-1" || got.DurationMS != 1500 {
		t.Errorf("unexpected header: %+v", got)
	}
	if len(got.Steps) != 2 || got.Steps[0].Written != 2 || got.Steps[0].Error != "" || got.Steps[1].Error != "remote down" {
		t.Errorf("unexpected steps: %+v", got.Steps)
	}
	if len(got.CleanupErrors) != 1 {
		t.Errorf("expected 1 cleanup error, got %v", got.CleanupErrors)
	}
}

func TestPrintState(t *testing.T) {
	var buf bytes.Buffer
	lease := &migration.Lease{State: migration.StateMigrating, RunID: "abc", StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	printState(&buf, migration.StateMigrating, lease)
	out := buf.String()
	if !strings.Contains(out, "State: migrating") || !strings.Contains(out, "run abc started 2025-06-01 12:00:00") {
		t.Errorf("got:\n%s", out)
	}
}

func TestColorizeHelp_NoColorIsIdentity(t *testing.T) {
	in := "Usage:\n  sitekeep [command]\n\nContent:\n  resolve     Resolve page content\n\nFlags:\n      --env-file string   dotenv file (default \".env\")\n"
	if got := colorizeHelp(in); got != in {
		t.Errorf("expected unchanged text with color disabled, got:\n%s", got)
	}
}
