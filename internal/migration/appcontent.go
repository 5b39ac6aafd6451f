package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/client"
	"github.com/alfredjeanlab/sitekeep/internal/legacy"
	"github.com/alfredjeanlab/sitekeep/internal/localcache"
	"github.com/alfredjeanlab/sitekeep/internal/logging"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// AppContentMigrator moves the motivator list and timeline hour labels into
// settings under the app domain.
type AppContentMigrator struct {
	remote client.Gateway
	cache  localcache.Cache
	log    *zap.Logger
}

func NewAppContentMigrator(remote client.Gateway, cache localcache.Cache, logger *zap.Logger) *AppContentMigrator {
	return &AppContentMigrator{remote: remote, cache: cache, log: logging.OrNop(logger)}
}

func (m *AppContentMigrator) Domain() string { return DomainAppContent }

func (m *AppContentMigrator) Migrate(ctx context.Context) (StepStats, error) {
	var (
		stats StepStats
		errs  []error
	)
	for _, key := range []string{legacy.SettingMotivators, legacy.SettingTimelineHours} {
		value, ok, skipped := legacy.SettingValue(m.cache, model.DomainApp, key)
		for _, err := range skipped {
			stats.Skipped++
			m.log.Warn("skipping unreadable legacy app content", zap.String("setting", key), zap.Error(err))
		}
		if !ok {
			continue
		}
		if err := setSetting(ctx, m.remote, model.DomainApp, key, value); err != nil {
			errs = append(errs, err)
			continue
		}
		stats.Written++
	}
	return stats, errors.Join(errs...)
}

func setSetting(ctx context.Context, remote client.Gateway, domain, key string, value json.RawMessage) error {
	if _, err := remote.SetSetting(ctx, domain, key, value); err != nil {
		return fmt.Errorf("set %s/%s: %w", domain, key, err)
	}
	return nil
}
