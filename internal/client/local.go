package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/sitekeep/internal/idgen"
	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/alfredjeanlab/sitekeep/internal/store"
)

// StoreGateway implements Gateway directly on a store.Store, for commands
// that run next to the database instead of going through the HTTP API.
type StoreGateway struct {
	store store.Store
}

// Compile-time check that StoreGateway implements Gateway.
var _ Gateway = (*StoreGateway)(nil)

// NewStoreGateway wraps s. Closing the gateway closes s.
func NewStoreGateway(s store.Store) *StoreGateway {
	return &StoreGateway{store: s}
}

// Close closes the underlying store.
func (g *StoreGateway) Close() error { return g.store.Close() }

func (g *StoreGateway) GetSetting(ctx context.Context, domain, key string) (*model.Setting, error) {
	s, err := g.store.GetSetting(ctx, domain, key)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return s, nil
}

func (g *StoreGateway) ListSettings(ctx context.Context, domain string) ([]*model.Setting, error) {
	return g.store.ListSettings(ctx, domain)
}

func (g *StoreGateway) SetSetting(ctx context.Context, domain, key string, value json.RawMessage) (*model.Setting, error) {
	if err := model.ValidateSettingKey(domain, key); err != nil {
		return nil, err
	}
	if !json.Valid(value) {
		return nil, fmt.Errorf("setting %s/%s: value is not valid JSON", domain, key)
	}
	s := &model.Setting{Domain: domain, Key: key, Value: value}
	if err := g.store.SetSetting(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (g *StoreGateway) DeleteSetting(ctx context.Context, domain, key string) error {
	return mapStoreErr(g.store.DeleteSetting(ctx, domain, key))
}

func (g *StoreGateway) GetContent(ctx context.Context, pageKey string) (*model.ContentRecord, error) {
	rec, err := g.store.GetContent(ctx, pageKey)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return rec, nil
}

func (g *StoreGateway) ListContent(ctx context.Context) ([]*model.ContentRecord, error) {
	return g.store.ListContent(ctx)
}

func (g *StoreGateway) UpsertContent(ctx context.Context, rec *model.ContentRecord) (*model.ContentRecord, error) {
	if err := model.ValidateContent(rec); err != nil {
		return nil, err
	}
	out := *rec
	if err := g.store.UpsertContent(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *StoreGateway) DeleteContent(ctx context.Context, pageKey string) error {
	return mapStoreErr(g.store.DeleteContent(ctx, pageKey))
}

func (g *StoreGateway) GetPost(ctx context.Context, domain model.PostDomain, slug string) (*model.Post, error) {
	p, err := g.store.GetPost(ctx, domain, slug)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return p, nil
}

func (g *StoreGateway) ListPosts(ctx context.Context, filter model.PostFilter) ([]*model.Post, error) {
	return g.store.ListPosts(ctx, filter)
}

func (g *StoreGateway) UpsertPost(ctx context.Context, post *model.Post) (*model.Post, error) {
	out := *post
	if out.Status == "" {
		out.Status = model.PostStatusDraft
	}
	if out.ID == "" {
		id, err := idgen.NewPostID()
		if err != nil {
			return nil, err
		}
		out.ID = id
	}
	if err := model.ValidatePost(&out); err != nil {
		return nil, err
	}
	if err := g.store.UpsertPost(ctx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *StoreGateway) DeletePost(ctx context.Context, domain model.PostDomain, slug string) error {
	return mapStoreErr(g.store.DeletePost(ctx, domain, slug))
}

// Health reports "ok" when the store answers a trivial query.
func (g *StoreGateway) Health(ctx context.Context) (string, error) {
	if _, err := g.store.ListSettings(ctx, model.DomainSite); err != nil {
		return "", err
	}
	return "ok", nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
