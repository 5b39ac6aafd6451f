package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// contentColumns is the column list used for SELECT statements on content_records.
const contentColumns = `page_key, title, subtitle, content, meta_title, meta_description,
	featured_image_url, button_text, button_url, is_published, created_at, updated_at`

// postColumns is the column list used for SELECT statements on posts.
const postColumns = `id, domain, slug, title, excerpt, content, featured_image_url,
	status, published_at, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// --- Settings ---

func querySetSetting(ctx context.Context, db executor, s *model.Setting) error {
	value := jsonbBytes(s.Value)
	if value == nil {
		value = []byte("null")
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO settings (domain, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (domain, key) DO UPDATE SET value = $3, updated_at = NOW()
		RETURNING created_at, updated_at`,
		s.Domain, s.Key, value,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func queryGetSetting(ctx context.Context, db executor, domain, key string) (*model.Setting, error) {
	row := db.QueryRowContext(ctx, `
		SELECT domain, key, value, created_at, updated_at
		FROM settings WHERE domain = $1 AND key = $2`, domain, key)
	return scanSetting(row)
}

func queryListSettings(ctx context.Context, db executor, domain string) ([]*model.Setting, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT domain, key, value, created_at, updated_at
		FROM settings WHERE domain = $1
		ORDER BY key`, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSettings(rows)
}

func queryListAllSettings(ctx context.Context, db executor) ([]*model.Setting, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT domain, key, value, created_at, updated_at
		FROM settings ORDER BY domain, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSettings(rows)
}

func queryDeleteSetting(ctx context.Context, db executor, domain, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM settings WHERE domain = $1 AND key = $2`, domain, key)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// --- Content records ---

func queryUpsertContent(ctx context.Context, db executor, c *model.ContentRecord) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO content_records (
			page_key, title, subtitle, content, meta_title, meta_description,
			featured_image_url, button_text, button_url, is_published
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (page_key) DO UPDATE SET
			title = $2, subtitle = $3, content = $4, meta_title = $5, meta_description = $6,
			featured_image_url = $7, button_text = $8, button_url = $9, is_published = $10,
			updated_at = NOW()
		RETURNING created_at, updated_at`,
		c.PageKey,
		c.Title,
		c.Subtitle,
		c.Content,
		c.MetaTitle,
		c.MetaDescription,
		c.FeaturedImageURL,
		c.ButtonText,
		c.ButtonURL,
		c.IsPublished,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func queryGetContent(ctx context.Context, db executor, pageKey string) (*model.ContentRecord, error) {
	row := db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content_records WHERE page_key = $1`, pageKey)
	return scanContent(row)
}

func queryListContent(ctx context.Context, db executor) ([]*model.ContentRecord, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+contentColumns+` FROM content_records ORDER BY page_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*model.ContentRecord
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func queryDeleteContent(ctx context.Context, db executor, pageKey string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM content_records WHERE page_key = $1`, pageKey)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// --- Posts ---

// queryUpsertPost inserts a post or updates the existing row with the same
// (domain, slug). The stored id and created_at always win over the incoming
// ones, and published_at keeps the first publish time.
func queryUpsertPost(ctx context.Context, db executor, p *model.Post) error {
	p.ApplyStatus("", nil, time.Now().UTC())
	return db.QueryRowContext(ctx, `
		INSERT INTO posts (
			id, domain, slug, title, excerpt, content, featured_image_url, status, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (domain, slug) DO UPDATE SET
			title = EXCLUDED.title,
			excerpt = EXCLUDED.excerpt,
			content = EXCLUDED.content,
			featured_image_url = EXCLUDED.featured_image_url,
			status = EXCLUDED.status,
			published_at = CASE
				WHEN EXCLUDED.status = 'published' THEN COALESCE(posts.published_at, EXCLUDED.published_at)
				ELSE posts.published_at
			END,
			updated_at = NOW()
		RETURNING id, published_at, created_at, updated_at`,
		p.ID,
		string(p.Domain),
		p.Slug,
		p.Title,
		nullString(p.Excerpt),
		nullString(p.Content),
		nullString(p.FeaturedImageURL),
		string(p.Status),
		nullTimePtr(p.PublishedAt),
	).Scan(&p.ID, scanNullTime{&p.PublishedAt}, &p.CreatedAt, &p.UpdatedAt)
}

func queryGetPost(ctx context.Context, db executor, domain model.PostDomain, slug string) (*model.Post, error) {
	row := db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE domain = $1 AND slug = $2`,
		string(domain), slug)
	return scanPost(row)
}

func queryListPosts(ctx context.Context, db executor, filter model.PostFilter) ([]*model.Post, error) {
	var (
		where []string
		args  []any
	)
	if filter.Domain != "" {
		args = append(args, string(filter.Domain))
		where = append(where, fmt.Sprintf("domain = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY COALESCE(published_at, created_at) DESC, slug`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func queryDeletePost(ctx context.Context, db executor, domain model.PostDomain, slug string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM posts WHERE domain = $1 AND slug = $2`, string(domain), slug)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// expectAffected maps a zero-row delete to sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
