package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanSetting scans a single row into a model.Setting.
func scanSetting(row scannable) (*model.Setting, error) {
	var s model.Setting
	var value []byte
	err := row.Scan(&s.Domain, &s.Key, &value, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Value = json.RawMessage(value)
	return &s, nil
}

// scanSettings scans multiple rows into a slice of model.Setting pointers.
func scanSettings(rows *sql.Rows) ([]*model.Setting, error) {
	var settings []*model.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return settings, nil
}

// scanContent scans a single row into a model.ContentRecord.
// The row must contain columns in the order defined by contentColumns.
func scanContent(row scannable) (*model.ContentRecord, error) {
	var c model.ContentRecord
	err := row.Scan(
		&c.PageKey,
		&c.Title,
		&c.Subtitle,
		&c.Content,
		&c.MetaTitle,
		&c.MetaDescription,
		&c.FeaturedImageURL,
		&c.ButtonText,
		&c.ButtonURL,
		&c.IsPublished,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanPost scans a single row into a model.Post.
// The row must contain columns in the order defined by postColumns.
func scanPost(row scannable) (*model.Post, error) {
	var p model.Post
	var (
		domain           string
		status           string
		excerpt          sql.NullString
		content          sql.NullString
		featuredImageURL sql.NullString
		publishedAt      sql.NullTime
	)

	err := row.Scan(
		&p.ID,
		&domain,
		&p.Slug,
		&p.Title,
		&excerpt,
		&content,
		&featuredImageURL,
		&status,
		&publishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Domain = model.PostDomain(domain)
	p.Status = model.PostStatus(status)
	p.Excerpt = excerpt.String
	p.Content = content.String
	p.FeaturedImageURL = featuredImageURL.String
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

// scanNullTime adapts a **time.Time to sql.Scanner; NULL leaves it nil.
type scanNullTime struct {
	dst **time.Time
}

func (s scanNullTime) Scan(src any) error {
	var nt sql.NullTime
	if err := nt.Scan(src); err != nil {
		return err
	}
	if nt.Valid {
		t := nt.Time
		*s.dst = &t
	} else {
		*s.dst = nil
	}
	return nil
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
