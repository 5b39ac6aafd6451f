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

// PagesMigrator merges legacy page fields into the remote content records.
// Fields with no legacy value keep whatever the remote record holds.
type PagesMigrator struct {
	remote client.Gateway
	cache  localcache.Cache
	pages  []string
	log    *zap.Logger
}

// NewPagesMigrator migrates the pages in legacy.Pages.
func NewPagesMigrator(remote client.Gateway, cache localcache.Cache, logger *zap.Logger) *PagesMigrator {
	return &PagesMigrator{remote: remote, cache: cache, pages: legacy.Pages, log: logging.OrNop(logger)}
}

func (m *PagesMigrator) Domain() string { return DomainPages }

func (m *PagesMigrator) Migrate(ctx context.Context) (StepStats, error) {
	var (
		stats StepStats
		errs  []error
	)
	for _, page := range m.pages {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		written, skipped, err := m.migratePage(ctx, page)
		stats.Skipped += skipped
		if written {
			stats.Written++
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("page %s: %w", page, err))
		}
	}
	return stats, errors.Join(errs...)
}

func (m *PagesMigrator) migratePage(ctx context.Context, page string) (bool, int, error) {
	skipped := 0
	found := make(map[string]string)
	for _, field := range model.ContentFields {
		hit, ok, errs := legacy.PageField(m.cache, page, field)
		for _, err := range errs {
			skipped++
			m.log.Warn("skipping unreadable legacy page value",
				zap.String("page", page), zap.String("field", field), zap.Error(err))
		}
		if ok {
			found[field] = hit.Value
		}
	}
	if len(found) == 0 {
		return false, skipped, nil
	}

	existing, err := m.remote.GetContent(ctx, page)
	switch {
	case client.IsNotFound(err):
		existing = &model.ContentRecord{PageKey: page}
	case err != nil:
		return false, skipped, fmt.Errorf("read remote record: %w", err)
	}

	rec := mergeFields(existing, found)
	var ve *model.ValidationError
	if err := model.ValidateContent(rec); errors.As(err, &ve) {
		for _, fe := range ve.Errors {
			if _, ok := found[fe.Field]; !ok {
				continue
			}
			delete(found, fe.Field)
			skipped++
			m.log.Warn("skipping invalid legacy page value",
				zap.String("page", page), zap.String("field", fe.Field), zap.String("reason", fe.Message))
		}
		if len(found) == 0 {
			return false, skipped, nil
		}
		rec = mergeFields(existing, found)
	}

	if _, err := m.remote.UpsertContent(ctx, rec); err != nil {
		return false, skipped, fmt.Errorf("upsert: %w", err)
	}
	return true, skipped, nil
}

func mergeFields(existing *model.ContentRecord, found map[string]string) *model.ContentRecord {
	rec := *existing
	for field, v := range found {
		rec.SetField(field, v)
	}
	rec.IsPublished = true
	return &rec
}
