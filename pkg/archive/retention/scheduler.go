package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"mercator-hq/cardvault/pkg/telemetry/logging"
)

// Scheduler runs SweepAll on a cron schedule (e.g., daily at 3 AM).
type Scheduler struct {
	collector *Collector
	schedule  string
	cron      *cron.Cron
	mu        sync.Mutex
	logger    *slog.Logger
	running   bool
	// stop is closed by Stop and releases the context watcher of the
	// current run.
	stop chan struct{}
}

// NewScheduler creates a scheduler for the given cron expression.
// An empty schedule disables automatic sweeps.
func NewScheduler(collector *Collector, schedule string) *Scheduler {
	return &Scheduler{
		collector: collector,
		schedule:  schedule,
		cron:      cron.New(),
		logger:    slog.Default().With("component", "archive.scheduler"),
	}
}

// Start begins scheduled sweeps.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
//
// If the schedule is empty, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("retention schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	// Each run gets a fresh cron so a restart does not stack entries.
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweeps: %w", err)
	}

	s.cron = c
	s.cron.Start()
	s.running = true
	stop := make(chan struct{})
	s.stop = stop

	s.logger.Info("retention scheduler started", "schedule", s.schedule)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stop:
		}
	}()

	return nil
}

// RunOnce executes one sweep cycle over every pair. Failures are logged,
// not returned: background sweeps have no caller to report to.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	s.logger.InfoContext(ctx, "starting scheduled retention sweep")

	summary, err := s.collector.SweepAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled sweep failed",
			"failed_pairs", len(summary.Errors),
			"error", err,
		)
	}

	if purged := summary.Purged(); purged > 0 {
		s.logger.InfoContext(ctx, "scheduled sweep completed", "purged_count", purged)
	} else {
		s.logger.DebugContext(ctx, "scheduled sweep completed, no records evicted")
	}
}

// Stop stops the scheduler and waits for a running sweep to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		close(s.stop)
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled sweep time, or nil when nothing is
// scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
