package migration

import (
	"fmt"
	"time"
)

// StepStats counts what one migrator did.
type StepStats struct {
	Written int // records or settings upserted
	Skipped int // legacy values that could not be used
}

// StepResult is the outcome of one migrator within a run.
type StepResult struct {
	Domain   string
	Stats    StepStats
	Err      error
	Duration time.Duration
}

// OK reports whether the step finished without error.
func (r StepResult) OK() bool { return r.Err == nil }

// Report describes a completed (or skipped) run.
type Report struct {
	RunID           string
	AlreadyMigrated bool
	TookOverLease   bool
	StartedAt       time.Time
	FinishedAt      time.Time
	Steps           []StepResult
	KeysRemoved     []string
	CleanupErrors   []error
}

// Failed returns the steps that reported an error.
func (r *Report) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if !s.OK() {
			out = append(out, s)
		}
	}
	return out
}

// Totals sums the stats of every step.
func (r *Report) Totals() StepStats {
	var t StepStats
	for _, s := range r.Steps {
		t.Written += s.Stats.Written
		t.Skipped += s.Stats.Skipped
	}
	return t
}

func (r *Report) String() string {
	if r.AlreadyMigrated {
		return "already migrated"
	}
	t := r.Totals()
	return fmt.Sprintf("run %s: %d steps (%d failed), %d written, %d skipped, %d keys removed",
		r.RunID, len(r.Steps), len(r.Failed()), t.Written, t.Skipped, len(r.KeysRemoved))
}
