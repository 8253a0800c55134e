package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

type TaskFn func(ctx context.Context) error

type Scheduler struct {
	scheduler gocron.Scheduler
}

func New() *Scheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		panic(err.Error())
	}
	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() {
	_ = s.scheduler.Shutdown()
}

func (s *Scheduler) createJob(jobDefinition gocron.JobDefinition, name string, fn TaskFn, startImmediately bool) (uuid.UUID, error) {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}

	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	job, err := s.scheduler.NewJob(
		jobDefinition,
		gocron.NewTask(s.taskWithRecover(fn, name)),
		opts...,
	)
	if err != nil {
		slog.Error("Scheduler creating job error", slog.String("jobName", name), slog.String("err", err.Error()))
		return uuid.Nil, err
	}

	return job.ID(), nil
}

// NewIntervalJob runs fn every interval; with startImmediately the first run
// does not wait for the interval. Runs never overlap.
func (s *Scheduler) NewIntervalJob(name string, fn TaskFn, interval time.Duration, startImmediately bool) (uuid.UUID, error) {
	return s.createJob(gocron.DurationJob(interval), name, fn, startImmediately)
}

func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	err := s.scheduler.RemoveJob(id)
	if err != nil {
		slog.Error("Scheduler removing job error", slog.String("jobID", id.String()), slog.String("err", err.Error()))
	}
	return err
}

func (s *Scheduler) JobsCount() int {
	return len(s.scheduler.Jobs())
}

func (s *Scheduler) taskWithRecover(fn TaskFn, jobName string) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error(
					"Panic recovered in scheduler job",
					slog.String("jobName", jobName),
					slog.Any("panic", r),
					slog.String("stacktrace", string(debug.Stack())),
				)
			}
		}()

		slog.Debug("job start", slog.String("jobName", jobName))

		err := fn(ctx)
		if err != nil {
			slog.Error("job failed", slog.String("jobName", jobName), slog.Any("error", err))
		} else {
			slog.Debug("job completed", slog.String("jobName", jobName))
		}
	}
}
