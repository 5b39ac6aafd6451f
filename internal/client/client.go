// Package client provides the Gateway used to reach the remote content store,
// with an HTTP/JSON implementation that talks to the sitekeep REST API and an
// in-process implementation over a store.Store.
package client

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// ErrNotFound is returned (possibly wrapped) when the requested record does
// not exist in the remote store.
var ErrNotFound = errors.New("not found")

// Gateway is the read/write interface to the remote store used by the
// resolver, the migration engine and the CLI.
type Gateway interface {
	// Settings
	GetSetting(ctx context.Context, domain, key string) (*model.Setting, error)
	ListSettings(ctx context.Context, domain string) ([]*model.Setting, error)
	SetSetting(ctx context.Context, domain, key string, value json.RawMessage) (*model.Setting, error)
	DeleteSetting(ctx context.Context, domain, key string) error

	// Content records
	GetContent(ctx context.Context, pageKey string) (*model.ContentRecord, error)
	ListContent(ctx context.Context) ([]*model.ContentRecord, error)
	UpsertContent(ctx context.Context, rec *model.ContentRecord) (*model.ContentRecord, error)
	DeleteContent(ctx context.Context, pageKey string) error

	// Posts
	GetPost(ctx context.Context, domain model.PostDomain, slug string) (*model.Post, error)
	ListPosts(ctx context.Context, filter model.PostFilter) ([]*model.Post, error)
	UpsertPost(ctx context.Context, post *model.Post) (*model.Post, error)
	DeletePost(ctx context.Context, domain model.PostDomain, slug string) error

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// IsNotFound reports whether err means the record is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
