package monitorService

import (
	"context"
	"log/slog"
	"time"

	"github.com/KotFed0t/risk_monitor/internal/aggregator"
	"github.com/KotFed0t/risk_monitor/internal/metrics"
	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/service"
	"github.com/KotFed0t/risk_monitor/utils"
	"golang.org/x/sync/errgroup"
)

const (
	storePositions = "positions"
	storeRisk      = "risk"
)

// RequestRefresh fetches fresh snapshots for accountID outside the polling
// schedule. It shares the discard rules of the scheduled refresh and leaves
// the timer alone. It returns service.ErrStaleResponse when accountID is no
// longer selected, and a *service.RefreshError when a fetch failed.
func (s *MonitorService) RequestRefresh(ctx context.Context, accountID model.AccountID, reason RefreshReason) error {
	s.mu.Lock()
	if s.closed || !s.hasSelection || s.selected != accountID {
		s.mu.Unlock()
		s.metrics.RefreshTotal.WithLabelValues(string(reason), metrics.ResultDiscarded).Inc()
		return service.ErrStaleResponse
	}
	epoch := s.epoch
	s.mu.Unlock()

	return s.refresh(ctx, accountID, epoch, reason)
}

func (s *MonitorService) refresh(ctx context.Context, accountID model.AccountID, epoch uint64, reason RefreshReason) error {
	ctx = utils.CreateCtxWithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.refresh"

	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		s.mu.Unlock()
		s.metrics.RefreshTotal.WithLabelValues(string(reason), metrics.ResultDiscarded).Inc()
		return service.ErrStaleResponse
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	slog.Debug("refresh start", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", accountID.String()), slog.String("reason", string(reason)), slog.Uint64("seq", seq))

	var posErr, riskErr error
	var g errgroup.Group

	g.Go(func() error {
		start := time.Now()
		positions, err := s.api.GetPositions(ctx, accountID)
		s.metrics.FetchDuration.WithLabelValues(storePositions).Observe(time.Since(start).Seconds())
		if err != nil {
			posErr = err
			return err
		}
		s.applyPositions(ctx, epoch, seq, positions)
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		status, err := s.api.GetMarginStatus(ctx, accountID)
		s.metrics.FetchDuration.WithLabelValues(storeRisk).Observe(time.Since(start).Seconds())
		if err != nil {
			riskErr = err
			return err
		}
		s.applyRisk(ctx, epoch, seq, status)
		return nil
	})

	_ = g.Wait()

	return s.finishRefresh(ctx, accountID, epoch, seq, reason, posErr, riskErr)
}

func (s *MonitorService) applyPositions(ctx context.Context, epoch, seq uint64, positions []model.Position) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.applyPositions"

	buckets := aggregator.Aggregate(positions)

	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		s.mu.Unlock()
		s.metrics.LateResponsesTotal.WithLabelValues(storePositions).Inc()
		slog.Debug("late positions response discarded", slog.String("rqID", rqID), slog.String("op", op), slog.Uint64("seq", seq))
		return
	}
	applied := s.positions.Replace(seq, positionsSnapshot{positions: positions, buckets: buckets})
	s.mu.Unlock()

	if !applied {
		s.metrics.LateResponsesTotal.WithLabelValues(storePositions).Inc()
		slog.Debug("older positions snapshot discarded", slog.String("rqID", rqID), slog.String("op", op), slog.Uint64("seq", seq))
		return
	}

	s.notify()
}

func (s *MonitorService) applyRisk(ctx context.Context, epoch, seq uint64, status model.RiskStatus) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.applyRisk"

	if !status.Consistent() {
		slog.Warn("inconsistent margin status from backend", slog.String("rqID", rqID), slog.String("op", op), slog.Any("status", status))
	}

	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		s.mu.Unlock()
		s.metrics.LateResponsesTotal.WithLabelValues(storeRisk).Inc()
		slog.Debug("late margin status response discarded", slog.String("rqID", rqID), slog.String("op", op), slog.Uint64("seq", seq))
		return
	}
	applied := s.risk.Replace(seq, status)
	s.mu.Unlock()

	if !applied {
		s.metrics.LateResponsesTotal.WithLabelValues(storeRisk).Inc()
		slog.Debug("older margin status snapshot discarded", slog.String("rqID", rqID), slog.String("op", op), slog.Uint64("seq", seq))
		return
	}

	s.notify()
}

// finishRefresh sets or clears the shared error flag. The flag follows the
// most recently started refresh that has completed. Subscribers hear about
// it whenever the error text changes, including a switch from one failing
// fetch to the other.
func (s *MonitorService) finishRefresh(ctx context.Context, accountID model.AccountID, epoch, seq uint64, reason RefreshReason, posErr, riskErr error) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.finishRefresh"

	var refreshErr error
	if posErr != nil || riskErr != nil {
		refreshErr = &service.RefreshError{AccountID: accountID, Positions: posErr, Risk: riskErr}
	}

	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		s.mu.Unlock()
		s.metrics.RefreshTotal.WithLabelValues(string(reason), metrics.ResultDiscarded).Inc()
		slog.Debug("refresh finished for deselected account", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", accountID.String()))
		return service.ErrStaleResponse
	}
	changed := false
	if seq >= s.refreshErrSeq {
		s.refreshErrSeq = seq
		changed = errText(s.refreshErr) != errText(refreshErr)
		s.refreshErr = refreshErr
	}
	s.mu.Unlock()

	if refreshErr != nil {
		s.metrics.RefreshTotal.WithLabelValues(string(reason), metrics.ResultError).Inc()
		slog.Error("refresh failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("reason", string(reason)), slog.String("err", refreshErr.Error()))
	} else {
		s.metrics.RefreshTotal.WithLabelValues(string(reason), metrics.ResultOK).Inc()
		slog.Debug("refresh finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("reason", string(reason)), slog.Uint64("seq", seq))
	}

	if changed {
		s.notify()
	}

	return refreshErr
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
