package monitorService

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/scheduler"
	"github.com/KotFed0t/risk_monitor/utils"
	"github.com/google/uuid"
)

// Polling is Idle or Active(account). Every transition bumps the epoch
// before the old job is removed, so a job body that still fires afterwards
// finds its epoch dead and does nothing. Callers hold pollMu.

func (s *MonitorService) activate(ctx context.Context, id model.AccountID) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.activate"

	s.mu.Lock()
	oldJob := s.jobID
	s.epoch++
	epoch := s.epoch
	s.selected = id
	s.hasSelection = true
	s.jobID = uuid.Nil
	s.active = false
	s.refreshErr = nil
	s.positions.Reset()
	s.risk.Reset()
	s.mu.Unlock()

	s.removeJob(oldJob)

	jobID, err := s.sched.NewIntervalJob("poll client "+id.String(), s.pollTask(id, epoch), s.interval, true)
	if err != nil {
		slog.Error("can't start polling", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", id.String()), slog.String("err", err.Error()))
		s.metrics.PollingActive.Set(0)
		return err
	}

	s.mu.Lock()
	s.jobID = jobID
	s.active = true
	s.mu.Unlock()

	s.metrics.PollingActive.Set(1)
	slog.Debug("polling started", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", id.String()), slog.String("jobID", jobID.String()))

	return nil
}

// Deactivate stops polling. The selection is kept, but responses still in
// flight are discarded.
func (s *MonitorService) Deactivate(ctx context.Context) {
	s.pollMu.Lock()
	s.deactivate(ctx)
	s.pollMu.Unlock()

	s.notify()
}

func (s *MonitorService) deactivate(ctx context.Context) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.deactivate"

	s.mu.Lock()
	if !s.active && s.jobID == uuid.Nil {
		s.mu.Unlock()
		return
	}
	oldJob := s.jobID
	s.epoch++
	s.jobID = uuid.Nil
	s.active = false
	s.mu.Unlock()

	s.removeJob(oldJob)
	s.metrics.PollingActive.Set(0)

	slog.Debug("polling stopped", slog.String("rqID", rqID), slog.String("op", op), slog.String("jobID", oldJob.String()))
}

// Close tears the view down: polling stops and subscribers hear nothing more.
func (s *MonitorService) Close() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	s.deactivate(context.Background())

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *MonitorService) removeJob(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	_ = s.sched.RemoveJob(id)
}

func (s *MonitorService) pollTask(id model.AccountID, epoch uint64) scheduler.TaskFn {
	return func(ctx context.Context) error {
		if !s.isCurrent(epoch) {
			return nil
		}
		err := s.refresh(ctx, id, epoch, ReasonPoll)
		if err != nil && !s.isCurrent(epoch) {
			return nil
		}
		return err
	}
}

func (s *MonitorService) isCurrent(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.closed && s.epoch == epoch
}
