package migration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekeep_migration_runs_total",
		Help: "Migration runs by result",
	}, []string{"result"})

	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekeep_migration_steps_total",
		Help: "Migration steps by domain and outcome",
	}, []string{"domain", "outcome"})

	stepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sitekeep_migration_step_duration_seconds",
		Help:    "Time spent in each migration step",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"domain"})

	recordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekeep_migration_records_written_total",
		Help: "Records and settings upserted by migration steps",
	}, []string{"domain"})

	valuesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekeep_migration_values_skipped_total",
		Help: "Legacy values skipped because they could not be read",
	}, []string{"domain"})
)
