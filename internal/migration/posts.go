package migration

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/client"
	"github.com/alfredjeanlab/sitekeep/internal/legacy"
	"github.com/alfredjeanlab/sitekeep/internal/localcache"
	"github.com/alfredjeanlab/sitekeep/internal/logging"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// PostsMigrator upserts the legacy post list of one domain, keyed by slug.
type PostsMigrator struct {
	remote client.Gateway
	cache  localcache.Cache
	domain model.PostDomain
	log    *zap.Logger
}

// NewPostsMigrator migrates the blog or timeline list.
func NewPostsMigrator(remote client.Gateway, cache localcache.Cache, domain model.PostDomain, logger *zap.Logger) *PostsMigrator {
	return &PostsMigrator{remote: remote, cache: cache, domain: domain, log: logging.OrNop(logger)}
}

func (m *PostsMigrator) Domain() string {
	if m.domain == model.PostDomainTimeline {
		return DomainTimelinePosts
	}
	return DomainBlogPosts
}

func (m *PostsMigrator) Migrate(ctx context.Context) (StepStats, error) {
	var stats StepStats

	key, posts, skipped, err := legacy.ReadPosts(m.cache, m.domain)
	for _, s := range skipped {
		stats.Skipped++
		m.log.Warn("skipping unreadable legacy post", zap.String("key", key), zap.Error(s))
	}
	if err != nil {
		stats.Skipped++
		m.log.Warn("skipping unreadable legacy post list", zap.String("key", key), zap.Error(err))
		return stats, nil
	}

	var errs []error
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		_, err := m.remote.UpsertPost(ctx, p)
		switch {
		case err == nil:
			stats.Written++
		case isValidation(err):
			stats.Skipped++
			m.log.Warn("skipping invalid legacy post", zap.String("slug", p.Slug), zap.Error(err))
		default:
			errs = append(errs, fmt.Errorf("post %s: %w", p.Slug, err))
		}
	}
	return stats, errors.Join(errs...)
}
