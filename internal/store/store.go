package store

import (
	"context"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// Store defines the persistence interface for settings, page content and posts.
// Every write is a keyed upsert; there are no cross-table guarantees outside
// RunInTransaction.
type Store interface {
	// Settings
	SetSetting(ctx context.Context, setting *model.Setting) error
	GetSetting(ctx context.Context, domain, key string) (*model.Setting, error)
	ListSettings(ctx context.Context, domain string) ([]*model.Setting, error)
	ListAllSettings(ctx context.Context) ([]*model.Setting, error)
	DeleteSetting(ctx context.Context, domain, key string) error

	// Content records
	UpsertContent(ctx context.Context, rec *model.ContentRecord) error
	GetContent(ctx context.Context, pageKey string) (*model.ContentRecord, error)
	ListContent(ctx context.Context) ([]*model.ContentRecord, error)
	DeleteContent(ctx context.Context, pageKey string) error

	// Posts
	UpsertPost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, domain model.PostDomain, slug string) (*model.Post, error)
	ListPosts(ctx context.Context, filter model.PostFilter) ([]*model.Post, error)
	DeletePost(ctx context.Context, domain model.PostDomain, slug string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
