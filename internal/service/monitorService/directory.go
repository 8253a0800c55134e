package monitorService

import (
	"context"
	"log/slog"
	"slices"

	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/service"
	"github.com/KotFed0t/risk_monitor/utils"
)

// Init loads the account list once per session and selects the first
// account. A load failure is kept in the state and never retried.
func (s *MonitorService) Init(ctx context.Context) error {
	ctx = utils.CreateCtxWithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.Init"

	s.mu.Lock()
	if s.initStarted {
		s.mu.Unlock()
		return nil
	}
	s.initStarted = true
	s.mu.Unlock()

	slog.Debug("Init start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Init finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	ids, err := s.api.GetClients(ctx)
	if err != nil {
		slog.Error("got error from api.GetClients", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		loadErr := &service.DirectoryLoadError{Err: err}

		s.mu.Lock()
		s.directoryLoaded = true
		s.directoryErr = loadErr
		s.mu.Unlock()

		s.notify()
		return loadErr
	}

	s.mu.Lock()
	s.accounts = slices.Clone(ids)
	s.directoryLoaded = true
	s.mu.Unlock()

	if len(ids) == 0 {
		slog.Warn("backend returned no clients", slog.String("rqID", rqID), slog.String("op", op))
		s.notify()
		return nil
	}

	return s.SelectAccount(ctx, ids[0])
}

// SelectAccount makes id the current account and restarts polling for it.
// Selecting the current account again changes nothing.
func (s *MonitorService) SelectAccount(ctx context.Context, id model.AccountID) error {
	ctx = utils.CreateCtxWithRqID(ctx)

	changed, err := s.selectAccount(ctx, id)
	if changed {
		s.notify()
	}
	return err
}

func (s *MonitorService) selectAccount(ctx context.Context, id model.AccountID) (bool, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MonitorService.SelectAccount"

	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, nil
	}
	if !slices.Contains(s.accounts, id) {
		s.mu.Unlock()
		slog.Warn("select of unknown account", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", id.String()))
		return false, service.ErrUnknownAccount
	}
	if s.hasSelection && s.selected == id {
		s.mu.Unlock()
		return false, nil
	}
	prev := s.selected
	s.mu.Unlock()

	slog.Info("account selected", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", id.String()), slog.String("previous", prev.String()))

	return true, s.activate(ctx, id)
}

func (s *MonitorService) NextAccount(ctx context.Context) error {
	return s.stepAccount(ctx, 1)
}

func (s *MonitorService) PrevAccount(ctx context.Context) error {
	return s.stepAccount(ctx, -1)
}

func (s *MonitorService) stepAccount(ctx context.Context, step int) error {
	s.mu.Lock()
	n := len(s.accounts)
	if n == 0 {
		s.mu.Unlock()
		return service.ErrNoAccountSelected
	}
	i := slices.Index(s.accounts, s.selected)
	if i < 0 {
		i = 0
	} else {
		i = ((i+step)%n + n) % n
	}
	next := s.accounts[i]
	s.mu.Unlock()

	return s.SelectAccount(ctx, next)
}
