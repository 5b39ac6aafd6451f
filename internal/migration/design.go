package migration

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/client"
	"github.com/alfredjeanlab/sitekeep/internal/legacy"
	"github.com/alfredjeanlab/sitekeep/internal/localcache"
	"github.com/alfredjeanlab/sitekeep/internal/logging"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// DesignMigrator moves design settings into the design domain. Individual
// legacy keys override entries of the design blob.
type DesignMigrator struct {
	remote client.Gateway
	cache  localcache.Cache
	log    *zap.Logger
}

func NewDesignMigrator(remote client.Gateway, cache localcache.Cache, logger *zap.Logger) *DesignMigrator {
	return &DesignMigrator{remote: remote, cache: cache, log: logging.OrNop(logger)}
}

func (m *DesignMigrator) Domain() string { return DomainDesign }

func (m *DesignMigrator) Migrate(ctx context.Context) (StepStats, error) {
	var (
		stats StepStats
		errs  []error
	)

	blob, err := legacy.DesignBlob(m.cache)
	if err != nil {
		stats.Skipped++
		m.log.Warn("skipping unreadable legacy design blob", zap.Error(err))
	}

	for _, f := range legacy.DesignFields {
		value, ok, skipped := legacy.DesignValue(m.cache, f, blob)
		for _, err := range skipped {
			stats.Skipped++
			m.log.Warn("skipping unreadable legacy design value", zap.String("setting", f.Name), zap.Error(err))
		}
		if !ok {
			continue
		}
		if err := setSetting(ctx, m.remote, model.DomainDesign, f.Name, value); err != nil {
			errs = append(errs, err)
			continue
		}
		stats.Written++
	}
	return stats, errors.Join(errs...)
}
