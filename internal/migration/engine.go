// Package migration copies content that earlier releases kept in the local
// cache into the remote store, once. A completion flag in the cache gates
// the run; a lease in the cache keeps two runs from overlapping.
package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/legacy"
	"github.com/alfredjeanlab/sitekeep/internal/localcache"
	"github.com/alfredjeanlab/sitekeep/internal/logging"
)

// ErrMigrationInFlight is returned when another run holds a live lease.
var ErrMigrationInFlight = errors.New("migration already in progress")

// Engine runs the domain migrators in order, cleans up the legacy keys and
// sets the completion flag.
type Engine struct {
	cache     localcache.Cache
	migrators []Migrator
	leaseTTL  time.Duration
	log       *zap.Logger
	now       func() time.Time
}

// NewEngine returns an engine that runs migrators in the given order. A
// non-positive leaseTTL means DefaultLeaseTTL.
func NewEngine(cache localcache.Cache, migrators []Migrator, leaseTTL time.Duration, logger *zap.Logger) *Engine {
	if leaseTTL <= 0 {
		leaseTTL = DefaultLeaseTTL
	}
	return &Engine{
		cache:     cache,
		migrators: migrators,
		leaseTTL:  leaseTTL,
		log:       logging.OrNop(logger),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IsMigrationNeeded reports whether the completion flag is unset. It only
// reads the flag.
func (e *Engine) IsMigrationNeeded() bool {
	v, ok := e.cache.GetItem(FlagKey)
	return !ok || v != flagValue
}

// State reports the current lifecycle state. An expired lease counts as
// not migrated.
func (e *Engine) State() State {
	st, _ := e.Status()
	return st
}

// Status returns the state and, while migrating, the live lease.
func (e *Engine) Status() (State, *Lease) {
	if !e.IsMigrationNeeded() {
		return StateMigrated, nil
	}
	if l := e.currentLease(); l != nil && !l.Expired(e.now(), e.leaseTTL) {
		return StateMigrating, l
	}
	return StateNotMigrated, nil
}

// Reset clears the completion flag and any lease so the next run starts
// from the top. Legacy keys already removed are not restored.
func (e *Engine) Reset() error {
	if err := e.cache.RemoveItem(LeaseKey); err != nil {
		return fmt.Errorf("remove lease: %w", err)
	}
	if err := e.cache.RemoveItem(FlagKey); err != nil {
		return fmt.Errorf("remove flag: %w", err)
	}
	e.log.Info("migration state reset")
	return nil
}

// RunCompleteMigration runs every step, removes the legacy keys and sets
// the completion flag. Step failures are recorded in the report and do not
// stop the run or the flag. The error is non-nil only when the run could
// not start, was cancelled, or the flag could not be written.
func (e *Engine) RunCompleteMigration(ctx context.Context) (*Report, error) {
	if !e.IsMigrationNeeded() {
		runsTotal.WithLabelValues("already_migrated").Inc()
		return &Report{AlreadyMigrated: true}, nil
	}

	lease, tookOver, err := e.acquireLease()
	if err != nil {
		runsTotal.WithLabelValues("in_flight").Inc()
		return nil, err
	}
	defer e.releaseLease(lease.RunID)

	// Another run may have finished between the flag check and the lease.
	if !e.IsMigrationNeeded() {
		runsTotal.WithLabelValues("already_migrated").Inc()
		return &Report{AlreadyMigrated: true}, nil
	}

	report := &Report{RunID: lease.RunID, StartedAt: lease.StartedAt, TookOverLease: tookOver}
	log := e.log.With(zap.String("run_id", lease.RunID))
	log.Info("migration started", zap.Int("steps", len(e.migrators)), zap.Bool("took_over_lease", tookOver))

	for _, m := range e.migrators {
		report.Steps = append(report.Steps, e.runStep(ctx, log, m))
	}

	if err := ctx.Err(); err != nil {
		runsTotal.WithLabelValues("cancelled").Inc()
		log.Warn("migration cancelled, legacy keys kept", zap.Error(err))
		return report, fmt.Errorf("migration cancelled: %w", err)
	}

	for _, key := range legacy.CleanupKeys() {
		if _, present := e.cache.GetItem(key); !present {
			continue
		}
		if err := e.cache.RemoveItem(key); err != nil {
			report.CleanupErrors = append(report.CleanupErrors, fmt.Errorf("remove %s: %w", key, err))
			log.Warn("failed to remove legacy key", zap.String("key", key), zap.Error(err))
			continue
		}
		report.KeysRemoved = append(report.KeysRemoved, key)
	}

	if err := e.cache.SetItem(FlagKey, flagValue); err != nil {
		runsTotal.WithLabelValues("flag_error").Inc()
		return report, fmt.Errorf("set completion flag: %w", err)
	}
	report.FinishedAt = e.now()

	result := "ok"
	if len(report.Failed()) > 0 {
		result = "partial"
	}
	runsTotal.WithLabelValues(result).Inc()
	totals := report.Totals()
	log.Info("migration finished",
		zap.String("result", result),
		zap.Int("written", totals.Written),
		zap.Int("skipped", totals.Skipped),
		zap.Int("failed_steps", len(report.Failed())),
		zap.Int("keys_removed", len(report.KeysRemoved)),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// runStep runs one migrator, converting a panic into a failed result.
func (e *Engine) runStep(ctx context.Context, log *zap.Logger, m Migrator) (res StepResult) {
	res.Domain = m.Domain()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic: %v", r)
		}
		res.Duration = time.Since(start)

		stepDuration.WithLabelValues(res.Domain).Observe(res.Duration.Seconds())
		recordsWritten.WithLabelValues(res.Domain).Add(float64(res.Stats.Written))
		valuesSkipped.WithLabelValues(res.Domain).Add(float64(res.Stats.Skipped))
		if res.Err != nil {
			stepsTotal.WithLabelValues(res.Domain, "failed").Inc()
			log.Error("migration step failed", zap.String("domain", res.Domain),
				zap.Int("written", res.Stats.Written), zap.Error(res.Err))
			return
		}
		stepsTotal.WithLabelValues(res.Domain, "ok").Inc()
		log.Info("migration step finished", zap.String("domain", res.Domain),
			zap.Int("written", res.Stats.Written), zap.Int("skipped", res.Stats.Skipped))
	}()

	res.Stats, res.Err = m.Migrate(ctx)
	return res
}

// acquireLease stores a fresh lease, taking over an expired one. It uses an
// atomic set-if-absent when the cache supports it.
func (e *Engine) acquireLease() (Lease, bool, error) {
	lease := Lease{State: StateMigrating, RunID: uuid.NewString(), StartedAt: e.now()}
	raw, err := encodeLease(lease)
	if err != nil {
		return Lease{}, false, err
	}

	if locker, ok := e.cache.(localcache.Locker); ok {
		stored, err := locker.SetIfAbsent(LeaseKey, raw, e.leaseTTL)
		if err != nil {
			return Lease{}, false, fmt.Errorf("acquire lease: %w", err)
		}
		if stored {
			return lease, false, nil
		}
	}

	if cur := e.currentLease(); cur != nil && !cur.Expired(e.now(), e.leaseTTL) {
		return Lease{}, false, fmt.Errorf("%w (run %s started %s)", ErrMigrationInFlight,
			cur.RunID, cur.StartedAt.Format(time.RFC3339))
	}
	_, hadLease := e.cache.GetItem(LeaseKey)
	if err := e.cache.SetItem(LeaseKey, raw); err != nil {
		return Lease{}, false, fmt.Errorf("acquire lease: %w", err)
	}
	if hadLease {
		e.log.Warn("took over abandoned migration lease", zap.String("run_id", lease.RunID))
	}
	return lease, hadLease, nil
}

// releaseLease removes the lease if it still belongs to runID.
func (e *Engine) releaseLease(runID string) {
	if cur := e.currentLease(); cur != nil && cur.RunID != runID {
		return
	}
	if err := e.cache.RemoveItem(LeaseKey); err != nil {
		e.log.Warn("failed to release migration lease", zap.String("run_id", runID), zap.Error(err))
	}
}

// currentLease returns the stored lease, or nil when none is stored or it
// cannot be read.
func (e *Engine) currentLease() *Lease {
	raw, ok := e.cache.GetItem(LeaseKey)
	if !ok {
		return nil
	}
	l, err := decodeLease(raw)
	if err != nil {
		e.log.Warn("ignoring unreadable migration lease", zap.Error(err))
		return nil
	}
	return l
}
