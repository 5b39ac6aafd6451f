// Package resolver answers "what is the current value of this content or
// setting" by trying the remote store, then the legacy local cache, then a
// caller-supplied default. It never writes and never returns an error.
package resolver

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/client"
	"github.com/alfredjeanlab/sitekeep/internal/legacy"
	"github.com/alfredjeanlab/sitekeep/internal/localcache"
	"github.com/alfredjeanlab/sitekeep/internal/logging"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// ContentKey names one field of one page's content record.
type ContentKey struct {
	Page  string
	Field string
}

func (k ContentKey) String() string { return k.Page + "." + k.Field }

// Resolver is safe for concurrent use. It holds no state between calls, so
// every call observes the latest remote and cache contents.
type Resolver struct {
	remote client.Gateway
	cache  localcache.Cache
	log    *zap.Logger
}

// New returns a Resolver. cache may be nil, in which case the cache tier is
// skipped.
func New(remote client.Gateway, cache localcache.Cache, logger *zap.Logger) *Resolver {
	return &Resolver{remote: remote, cache: cache, log: logging.OrNop(logger)}
}

// Resolve returns the value of one page field.
func (r *Resolver) Resolve(ctx context.Context, key ContentKey, def string) string {
	rec := r.fetchContent(ctx, key.Page)
	if v := rec.Field(key.Field); strings.TrimSpace(v) != "" {
		lookupsTotal.WithLabelValues("content", TierRemote).Inc()
		return v
	}
	if v, ok := r.cachedField(key.Page, key.Field); ok {
		lookupsTotal.WithLabelValues("content", TierCache).Inc()
		return v
	}
	lookupsTotal.WithLabelValues("content", TierDefault).Inc()
	return def
}

// PageContent resolves every field of a page with a single remote fetch.
// Fields absent from both the remote record and the cache come from
// defaults. IsPublished is taken from the remote record when one exists.
func (r *Resolver) PageContent(ctx context.Context, page string, defaults model.ContentRecord) model.ContentRecord {
	out := defaults
	out.PageKey = page

	rec := r.fetchContent(ctx, page)
	if rec != nil {
		out.IsPublished = rec.IsPublished
		out.CreatedAt, out.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	}
	for _, field := range model.ContentFields {
		if v := rec.Field(field); strings.TrimSpace(v) != "" {
			lookupsTotal.WithLabelValues("content", TierRemote).Inc()
			out.SetField(field, v)
			continue
		}
		if v, ok := r.cachedField(page, field); ok {
			lookupsTotal.WithLabelValues("content", TierCache).Inc()
			out.SetField(field, v)
			continue
		}
		lookupsTotal.WithLabelValues("content", TierDefault).Inc()
	}
	return out
}

// Setting returns the raw JSON value of a setting. A remote value of null
// or "" counts as absent.
func (r *Resolver) Setting(ctx context.Context, domain, key string, def json.RawMessage) json.RawMessage {
	s, err := r.remote.GetSetting(ctx, domain, key)
	switch {
	case err == nil && model.RawString(s.Value) != "":
		lookupsTotal.WithLabelValues("setting", TierRemote).Inc()
		return s.Value
	case err != nil:
		r.remoteError("setting", err, zap.String("domain", domain), zap.String("key", key))
	}

	if r.cache != nil {
		v, ok, errs := legacy.SettingValue(r.cache, domain, key)
		r.logCoerceErrors(errs)
		if ok {
			lookupsTotal.WithLabelValues("setting", TierCache).Inc()
			return v
		}
	}
	lookupsTotal.WithLabelValues("setting", TierDefault).Inc()
	return def
}

// SettingString is Setting for text values. JSON strings are unquoted.
func (r *Resolver) SettingString(ctx context.Context, domain, key, def string) string {
	v := r.Setting(ctx, domain, key, nil)
	if s := model.RawString(v); s != "" {
		return s
	}
	return def
}

// Posts returns the published posts of a domain: the remote list when it
// has any, else the legacy cached list, else defaults. Drafts are never
// returned.
func (r *Resolver) Posts(ctx context.Context, domain model.PostDomain, defaults []*model.Post) []*model.Post {
	posts, err := r.remote.ListPosts(ctx, model.PostFilter{Domain: domain, Status: model.PostStatusPublished})
	if err != nil {
		r.remoteError("posts", err, zap.String("domain", string(domain)))
	} else if published := onlyPublished(posts); len(published) > 0 {
		lookupsTotal.WithLabelValues("posts", TierRemote).Inc()
		return published
	}

	if r.cache != nil {
		key, cached, skipped, err := legacy.ReadPosts(r.cache, domain)
		r.logCoerceErrors(skipped)
		if err != nil {
			r.log.Debug("resolver: legacy post list unreadable", zap.String("key", key), zap.Error(err))
		} else if published := onlyPublished(cached); len(published) > 0 {
			lookupsTotal.WithLabelValues("posts", TierCache).Inc()
			return published
		}
	}

	lookupsTotal.WithLabelValues("posts", TierDefault).Inc()
	return onlyPublished(defaults)
}

// fetchContent returns the remote record for page, or nil when it is
// missing or the remote store failed.
func (r *Resolver) fetchContent(ctx context.Context, page string) *model.ContentRecord {
	rec, err := r.remote.GetContent(ctx, page)
	if err != nil {
		r.remoteError("content", err, zap.String("page", page))
		return nil
	}
	return rec
}

func (r *Resolver) cachedField(page, field string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	hit, ok, errs := legacy.PageField(r.cache, page, field)
	r.logCoerceErrors(errs)
	if !ok {
		return "", false
	}
	return hit.Value, true
}

func (r *Resolver) remoteError(kind string, err error, fields ...zap.Field) {
	if client.IsNotFound(err) {
		return
	}
	remoteErrorsTotal.WithLabelValues(kind).Inc()
	r.log.Debug("resolver: remote lookup failed, falling through", append(fields, zap.Error(err))...)
}

func (r *Resolver) logCoerceErrors(errs []error) {
	for _, err := range errs {
		r.log.Debug("resolver: ignoring unreadable legacy value", zap.Error(err))
	}
}

func onlyPublished(posts []*model.Post) []*model.Post {
	var out []*model.Post
	for _, p := range posts {
		if p.IsPublished() {
			out = append(out, p)
		}
	}
	return out
}
