package pipeline

// scheduler.go triggers runs on a fixed interval.
//
// The scheduler is long-running and context-aware for graceful shutdown.
// It shares the run limiter with the trigger API, so a scheduled run never
// exceeds the concurrency cap; a tick that finds no free slot is skipped.

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ETL/internal/logging"
)

// ScheduleTrigger is the Trigger.Source of scheduled runs.
const ScheduleTrigger = "schedule"

// Scheduler runs the driver periodically.
type Scheduler struct {
	driver   *Driver
	limiter  *RunLimiter
	interval time.Duration
	timeout  time.Duration
}

// NewScheduler returns a scheduler running d every interval under limiter.
// A positive timeout bounds each run.
func NewScheduler(d *Driver, limiter *RunLimiter, interval, timeout time.Duration) *Scheduler {
	return &Scheduler{driver: d, limiter: limiter, interval: interval, timeout: timeout}
}

// Start runs immediately, then every interval, until ctx is cancelled.
// It returns at once when the interval is not positive.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	logger := logging.FromContext(ctx)
	logger.Info("scheduler started", "interval", s.interval.String())

	// Run immediately on startup
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce performs one scheduled run.
func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	var runErr error
	err := s.limiter.Do(runCtx, runID, func(ctx context.Context) {
		_, runErr = s.driver.Run(ctx, Trigger{Source: ScheduleTrigger, RunID: runID})
	})

	logger := logging.WithFields(logging.WithRunID(ctx, runID), "trigger", ScheduleTrigger)
	switch {
	case errors.Is(err, ErrTooManyRuns):
		logger.Warn("scheduled run skipped", "reason", err)
	case err != nil:
		logger.Warn("scheduled run not started", "error", err)
	case runErr != nil:
		logger.Error("scheduled run failed", "error", runErr)
	}
}
