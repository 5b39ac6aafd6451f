// Package backup exports the remote store as JSONL and ships the export to
// one or more destinations on a schedule.
package backup

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/alfredjeanlab/sitekeep/internal/store"
)

// FormatVersion is written in the header of every export.
const FormatVersion = "1"

// Record type discriminators.
const (
	TypeHeader  = "header"
	TypeSetting = "setting"
	TypeContent = "content"
	TypePost    = "post"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	SettingCount int       `json:"setting_count"`
	ContentCount int       `json:"content_count"`
	PostCount    int       `json:"post_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every setting, content record and post from the store
// as JSONL to w. Settings are ordered by domain and key, content by page
// key, and posts by domain then newest first.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	settings, err := s.ListAllSettings(ctx)
	if err != nil {
		return fmt.Errorf("list settings: %w", err)
	}
	content, err := s.ListContent(ctx)
	if err != nil {
		return fmt.Errorf("list content: %w", err)
	}
	var posts []*model.Post
	for _, d := range []model.PostDomain{model.PostDomainBlog, model.PostDomainTimeline} {
		p, err := s.ListPosts(ctx, model.PostFilter{Domain: d})
		if err != nil {
			return fmt.Errorf("list %s posts: %w", d, err)
		}
		posts = append(posts, p...)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      FormatVersion,
		Type:         TypeHeader,
		Timestamp:    time.Now().UTC(),
		SettingCount: len(settings),
		ContentCount: len(content),
		PostCount:    len(posts),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, st := range settings {
		if err := enc.Encode(record{Type: TypeSetting, Data: st}); err != nil {
			return fmt.Errorf("encode setting %s/%s: %w", st.Domain, st.Key, err)
		}
	}
	for _, c := range content {
		if err := enc.Encode(record{Type: TypeContent, Data: c}); err != nil {
			return fmt.Errorf("encode content %s: %w", c.PageKey, err)
		}
	}
	for _, p := range posts {
		if err := enc.Encode(record{Type: TypePost, Data: p}); err != nil {
			return fmt.Errorf("encode post %s/%s: %w", p.Domain, p.Slug, err)
		}
	}
	return nil
}

// ImportStats counts the records restored by ImportJSONL.
type ImportStats struct {
	Settings int `json:"settings"`
	Content  int `json:"content"`
	Posts    int `json:"posts"`
}

// rawRecord is a JSONL line with its payload still encoded.
type rawRecord struct {
	Type    string          `json:"type"`
	Version string          `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// ImportJSONL restores an export written by ExportJSONL. Every record is
// upserted by its key inside one transaction, so importing the same file
// twice leaves the store unchanged.
func ImportJSONL(ctx context.Context, s store.Store, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		stats = ImportStats{}
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		line := 0
		sawHeader := false
		for sc.Scan() {
			line++
			if len(sc.Bytes()) == 0 {
				continue
			}
			var rec rawRecord
			if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if !sawHeader {
				if rec.Type != TypeHeader {
					return fmt.Errorf("line %d: expected header, got %q", line, rec.Type)
				}
				if rec.Version != FormatVersion {
					return fmt.Errorf("line %d: unsupported export version %q", line, rec.Version)
				}
				sawHeader = true
				continue
			}
			if err := importRecord(ctx, tx, rec, &stats); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read export: %w", err)
		}
		if !sawHeader {
			return errors.New("empty export")
		}
		return nil
	})
	return stats, err
}

func importRecord(ctx context.Context, tx store.Store, rec rawRecord, stats *ImportStats) error {
	switch rec.Type {
	case TypeSetting:
		var st model.Setting
		if err := json.Unmarshal(rec.Data, &st); err != nil {
			return fmt.Errorf("decode setting: %w", err)
		}
		if err := model.ValidateSettingKey(st.Domain, st.Key); err != nil {
			return err
		}
		if err := tx.SetSetting(ctx, &st); err != nil {
			return fmt.Errorf("set setting %s/%s: %w", st.Domain, st.Key, err)
		}
		stats.Settings++
	case TypeContent:
		var c model.ContentRecord
		if err := json.Unmarshal(rec.Data, &c); err != nil {
			return fmt.Errorf("decode content: %w", err)
		}
		if err := model.ValidateContent(&c); err != nil {
			return err
		}
		if err := tx.UpsertContent(ctx, &c); err != nil {
			return fmt.Errorf("upsert content %s: %w", c.PageKey, err)
		}
		stats.Content++
	case TypePost:
		var p model.Post
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return fmt.Errorf("decode post: %w", err)
		}
		if err := model.ValidatePost(&p); err != nil {
			return err
		}
		if err := tx.UpsertPost(ctx, &p); err != nil {
			return fmt.Errorf("upsert post %s/%s: %w", p.Domain, p.Slug, err)
		}
		stats.Posts++
	default:
		return fmt.Errorf("unknown record type %q", rec.Type)
	}
	return nil
}
