package backup

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/logging"
	"github.com/alfredjeanlab/sitekeep/internal/store"
)

var (
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekeep_backup_writes_total",
		Help: "Backup writes by destination and result.",
	}, []string{"destination", "result"})

	lastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sitekeep_backup_last_success_timestamp_seconds",
		Help: "Unix time of the last export that reached every destination.",
	})
)

// Destination is a backup target (S3, git, a local file).
type Destination interface {
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// Scheduler runs periodic backups to one or more destinations.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from the store to the given
// destinations at the specified interval.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logging.OrNop(logger),
	}
}

// Start begins periodic backups. It runs one immediately, then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current backup (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	_ = s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

// RunOnce exports the store and writes it to every destination. A failing
// destination does not stop the others; the first error is returned.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s.store, &buf); err != nil {
		s.logger.Error("backup export failed", zap.Error(err))
		return fmt.Errorf("export: %w", err)
	}
	data := buf.Bytes()

	var firstErr error
	for i, dest := range s.destinations {
		name := destinationName(i, dest)
		if err := dest.Write(ctx, data); err != nil {
			writesTotal.WithLabelValues(name, "error").Inc()
			s.logger.Error("backup destination write failed", zap.String("destination", name), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", name, err)
			}
			continue
		}
		writesTotal.WithLabelValues(name, "ok").Inc()
	}
	if firstErr != nil {
		return firstErr
	}

	lastSuccess.SetToCurrentTime()
	s.logger.Info("backup completed", zap.Int("destinations", len(s.destinations)), zap.Int("bytes", len(data)))
	return nil
}

func destinationName(i int, d Destination) string {
	if st, ok := d.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%d", i)
}
