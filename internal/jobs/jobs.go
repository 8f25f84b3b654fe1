package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper removes stored photos that nothing references anymore.
type Sweeper interface {
	SweepOrphans(ctx context.Context, olderThan time.Time) (int, error)
}

// Scheduler runs the service's periodic maintenance.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a scheduler that skips a run while the previous one
// is still going.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// AddOrphanSweep schedules the photo orphan sweep on spec (standard cron or
// descriptors like @hourly). Photos younger than grace are left alone so an
// upload is never collected before its owner record is written.
func (s *Scheduler) AddOrphanSweep(spec string, sweeper Sweeper, grace time.Duration) error {
	_, err := s.cron.AddFunc(spec, func() {
		SweepOnce(context.Background(), sweeper, grace, time.Now())
	})
	if err != nil {
		return fmt.Errorf("schedule orphan sweep %q: %w", spec, err)
	}
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// SweepOnce runs one orphan sweep and logs the outcome.
func SweepOnce(ctx context.Context, sweeper Sweeper, grace time.Duration, now time.Time) int {
	removed, err := sweeper.SweepOrphans(ctx, now.Add(-grace))
	if err != nil {
		slog.Error("orphan photo sweep", "removed", removed, "error", err)
		return removed
	}
	if removed > 0 {
		slog.Info("orphan photos removed", "count", removed)
	}
	return removed
}
