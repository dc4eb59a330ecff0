package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one seeding run.
type Job func(ctx context.Context) error

// Scheduler runs a seeding job on a cron schedule. Runs never overlap: a tick
// that arrives while a run is in progress is skipped.
type Scheduler struct {
	scheduler *gocron.Scheduler
	expr      string
	job       Job
	timeout   time.Duration
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler for a five-field cron expression evaluated in UTC.
// Each run gets timeout to finish; zero means no limit.
func New(expr string, timeout time.Duration, job Job, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		expr:      expr,
		job:       job,
		timeout:   timeout,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the job, runs it once immediately, and starts the
// underlying scheduler. An invalid cron expression is returned as an error.
func (s *Scheduler) Start() error {
	j, err := s.scheduler.Cron(s.expr).StartImmediately().Do(s.runOnce)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.expr, err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "schedule", s.expr, "next_run", j.NextRun())
	return nil
}

// Stop cancels any in-flight run, stops the scheduler and waits for the run
// to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce() {
	s.wg.Add(1)
	defer s.wg.Done()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("scheduler: running seed job")
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduler: seed job failed", "error", err)
		return
	}
	s.logger.Info("scheduler: seed job completed")
}
