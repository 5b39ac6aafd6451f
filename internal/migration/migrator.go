package migration

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/client"
	"github.com/alfredjeanlab/sitekeep/internal/localcache"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// Migrator copies one domain of legacy cache content into the remote store.
// Every write must be a keyed upsert so that a repeated run is harmless.
type Migrator interface {
	Domain() string
	Migrate(ctx context.Context) (StepStats, error)
}

// Step domain names, in run order.
const (
	DomainPages         = "pages"
	DomainBlogPosts     = "blog_posts"
	DomainTimelinePosts = "timeline_posts"
	DomainAppContent    = "app_content"
	DomainDesign        = "design_settings"
)

// DefaultMigrators returns the standard steps in their fixed order:
// pages, blog posts, timeline posts, app content, design settings.
func DefaultMigrators(remote client.Gateway, cache localcache.Cache, logger *zap.Logger) []Migrator {
	return []Migrator{
		NewPagesMigrator(remote, cache, logger),
		NewPostsMigrator(remote, cache, model.PostDomainBlog, logger),
		NewPostsMigrator(remote, cache, model.PostDomainTimeline, logger),
		NewAppContentMigrator(remote, cache, logger),
		NewDesignMigrator(remote, cache, logger),
	}
}

// isValidation reports whether err is a rejected record rather than a
// transport or storage failure.
func isValidation(err error) bool {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 400
}
