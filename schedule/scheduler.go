// Package schedule drives the bot's clockwork: the private board
// refresh, the morning global watch, the puzzle announcement and the
// daily recap all run off one cron table pinned to UTC, the timezone
// puzzles unlock in.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/gcalmettes/christmas-elf-officer/observability/metrics"
)

// JobFunc is one scheduled unit of work.
type JobFunc func(ctx context.Context) error

// Scheduler owns the cron table. Specs use the six field form with
// seconds so jobs can be staggered around the 05:00:00 puzzle unlock.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
}

// NewScheduler returns an empty UTC cron table.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
		),
		logger: logger,
	}
}

// AddJob registers fn under the cron spec and returns the job id used
// in its log lines. Failures are logged and counted; the table keeps
// running.
func (s *Scheduler) AddJob(name, spec string, fn JobFunc) (uuid.UUID, error) {
	id := uuid.New()
	logger := s.logger.With(slog.String("job", name), slog.String("id", id.String()))
	metrics.Schedule().InitJob(name)
	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(s.ctx, name, logger, fn)
	})
	return id, err
}

// RunOnce executes fn immediately in its own goroutine with the same
// logging and accounting as a scheduled run. Used for the bootstrap
// load at process start.
func (s *Scheduler) RunOnce(ctx context.Context, name string, fn JobFunc) uuid.UUID {
	id := uuid.New()
	logger := s.logger.With(slog.String("job", name), slog.String("id", id.String()))
	metrics.Schedule().InitJob(name)
	go s.runJob(ctx, name, logger, fn)
	return id
}

func (s *Scheduler) runJob(ctx context.Context, name string, logger *slog.Logger, fn JobFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	logger.Info("job started")
	err := fn(ctx)
	took := time.Since(started)
	metrics.Schedule().ObserveRun(name, took.Seconds(), err)
	if err != nil {
		logger.Error("job failed", slog.String("error", err.Error()), slog.Duration("took", took))
		return
	}
	metrics.Schedule().MarkSuccess(name, float64(time.Now().Unix()))
	logger.Info("job finished", slog.Duration("took", took))
}

// Start launches the cron loop. Jobs fired after Start run under ctx,
// so cancelling it unblocks any job waiting on I/O or the event queue.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
