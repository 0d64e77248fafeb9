// Package scheduler enqueues recurring background tasks on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Enqueuer is the part of the job service the scheduler needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error
}

// TaskFactory builds a fresh task for every tick.
type TaskFactory func() (*asynq.Task, error)

type Scheduler struct {
	cron     *cron.Cron
	enqueuer Enqueuer
	logger   *zerolog.Logger
}

func New(enqueuer Enqueuer, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{logger})),
		),
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// Register adds a schedule. spec accepts standard five-field cron
// expressions and descriptors such as "@every 1h".
func (s *Scheduler) Register(name, spec string, factory TaskFactory) error {
	_, err := s.cron.AddFunc(spec, func() {
		task, err := factory()
		if err != nil {
			s.logger.Error().Err(err).Str("schedule", name).Msg("failed to build scheduled task")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.enqueuer.Enqueue(ctx, task); err != nil {
			s.logger.Error().Err(err).Str("schedule", name).Str("task", task.Type()).Msg("failed to enqueue scheduled task")
			return
		}

		s.logger.Info().Str("schedule", name).Str("task", task.Type()).Msg("scheduled task enqueued")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.logger.Info().Int("entries", len(s.cron.Entries())).Msg("starting scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running entries, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info().Msg("stopping scheduler")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("scheduler stop timed out")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
