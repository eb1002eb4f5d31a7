package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

type taskFn func(ctx context.Context) error

// Scheduler runs background jobs, one run at a time per job
type Scheduler struct {
	scheduler gocron.Scheduler
	log       zerolog.Logger
}

// New creates a new scheduler
func New(log zerolog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		log:       log.With().Str("component", "scheduler").Logger(),
	}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) createJob(jobDefinition gocron.JobDefinition, name string, fn taskFn, startImmediately bool) error {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}

	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	if _, err := s.scheduler.NewJob(jobDefinition, gocron.NewTask(s.taskWithRecover(fn, name)), opts...); err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}
	return nil
}

// NewIntervalJob runs fn every interval
func (s *Scheduler) NewIntervalJob(name string, fn taskFn, interval time.Duration, startImmediately bool) error {
	return s.createJob(gocron.DurationJob(interval), name, fn, startImmediately)
}

// NewCrontabJob runs fn on a crontab schedule with seconds
func (s *Scheduler) NewCrontabJob(name string, fn taskFn, crontab string, startImmediately bool) error {
	return s.createJob(gocron.CronJob(crontab, true), name, fn, startImmediately)
}

func (s *Scheduler) taskWithRecover(fn taskFn, jobName string) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().
					Str("job", jobName).
					Interface("panic", r).
					Str("stacktrace", string(debug.Stack())).
					Msg("panic recovered in scheduler job")
			}
		}()

		start := time.Now()
		s.log.Debug().Str("job", jobName).Msg("job start")

		if err := fn(ctx); err != nil {
			s.log.Error().Err(err).Str("job", jobName).Msg("job failed")
			return
		}
		s.log.Info().Str("job", jobName).Dur("took", time.Since(start)).Msg("job completed")
	}
}
