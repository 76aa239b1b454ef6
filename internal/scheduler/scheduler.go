package scheduler

import (
	"context"
	"fmt"
	"time"

	"wellness-planner/internal/logger"

	"github.com/robfig/cron/v3"
)

// Job is the unit of work triggered on each tick.
type Job func(ctx context.Context) error

// Scheduler runs a single job on a cron schedule in a fixed timezone.
type Scheduler struct {
	cron    *cron.Cron
	log     *logger.Logger
	timeout time.Duration
}

// New parses the schedule and registers job. Overlapping runs are skipped.
func New(schedule, timezone string, timeout time.Duration, job Job, log *logger.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log:     log.With("component", "Scheduler"),
		timeout: timeout,
	}

	_, err = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		s.log.Info("Running scheduled job", "at", start.Format(time.RFC3339))
		if err := job(ctx); err != nil {
			s.log.Error("Scheduled job failed", "error", err)
			return
		}
		s.log.Info("Scheduled job finished", "elapsed", time.Since(start).String())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info("Scheduler started", "next_run", e.Next.Format(time.RFC3339))
	}
}

// Stop halts the scheduler and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out with a job still running")
	}
}

// Next returns the next planned run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
