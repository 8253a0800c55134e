// Package positionForm holds the new-position draft and posts it to the
// backend.
package positionForm

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/KotFed0t/risk_monitor/internal/metrics"
	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/service"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
	"github.com/KotFed0t/risk_monitor/utils"
	"github.com/shopspring/decimal"
)

// FailureNotification is shown once after a rejected submission.
const FailureNotification = "Failed to add position"

type RiskApi interface {
	CreatePosition(ctx context.Context, req model.CreatePositionRequest) error
}

type Monitor interface {
	Selected() (model.AccountID, bool)
	RequestRefresh(ctx context.Context, accountID model.AccountID, reason monitorService.RefreshReason) error
}

type PositionForm struct {
	api     RiskApi
	monitor Monitor
	metrics *metrics.Metrics

	mu           sync.Mutex
	draft        model.SubmissionDraft
	submitting   bool
	notification string
}

func New(api RiskApi, monitor Monitor, m *metrics.Metrics) *PositionForm {
	if m == nil {
		m = metrics.New()
	}
	return &PositionForm{api: api, monitor: monitor, metrics: m}
}

func (f *PositionForm) SetField(field model.DraftField, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.Set(field, value)
}

func (f *PositionForm) Draft() model.SubmissionDraft {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.draft
}

func (f *PositionForm) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.submitting
}

// TakeNotification returns the pending notification and clears it.
func (f *PositionForm) TakeNotification() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.notification
	f.notification = ""
	return n, n != ""
}

// Submit validates the draft and creates the position for the selected
// account. Invalid input and a missing selection never reach the backend.
// After a successful write the draft is cleared and the account refreshed.
func (f *PositionForm) Submit(ctx context.Context) error {
	ctx = utils.CreateCtxWithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PositionForm.Submit"

	slog.Debug("Submit start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Submit finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return service.ErrSubmitInProgress
	}
	draft := f.draft
	f.mu.Unlock()

	accountID, ok := f.monitor.Selected()
	if !ok {
		return service.ErrNoAccountSelected
	}

	req, err := Validate(accountID, draft)
	if err != nil {
		slog.Debug("draft rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return service.ErrSubmitInProgress
	}
	f.submitting = true
	f.mu.Unlock()

	err = f.api.CreatePosition(ctx, req)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.notification = FailureNotification
		f.mu.Unlock()

		f.metrics.SubmissionsTotal.WithLabelValues(metrics.ResultError).Inc()
		slog.Error("got error from api.CreatePosition", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", accountID.String()), slog.String("err", err.Error()))
		return &service.SubmissionError{Err: err}
	}
	if f.draft == draft {
		f.draft = model.SubmissionDraft{}
	}
	f.mu.Unlock()

	f.metrics.SubmissionsTotal.WithLabelValues(metrics.ResultOK).Inc()
	slog.Info("position added", slog.String("rqID", rqID), slog.String("op", op), slog.String("accountID", accountID.String()), slog.String("symbol", req.Symbol))

	// the refresh outcome lands in the monitor state, the write itself succeeded
	if err = f.monitor.RequestRefresh(ctx, accountID, monitorService.ReasonSubmission); err != nil {
		slog.Warn("refresh after submission failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return nil
}

// Validate turns a draft into a create request for accountID.
func Validate(accountID model.AccountID, draft model.SubmissionDraft) (model.CreatePositionRequest, error) {
	symbol := strings.TrimSpace(draft.Symbol)
	if symbol == "" {
		return model.CreatePositionRequest{}, &service.ValidationError{Field: model.FieldSymbol, Reason: "symbol is required"}
	}

	quantity, err := strconv.ParseInt(strings.TrimSpace(draft.Quantity), 10, 64)
	if err != nil {
		return model.CreatePositionRequest{}, &service.ValidationError{Field: model.FieldQuantity, Reason: "quantity must be an integer"}
	}

	costBasis, err := decimal.NewFromString(strings.TrimSpace(draft.CostBasis))
	if err != nil {
		return model.CreatePositionRequest{}, &service.ValidationError{Field: model.FieldCostBasis, Reason: "cost basis must be a number"}
	}
	if costBasis.IsNegative() {
		return model.CreatePositionRequest{}, &service.ValidationError{Field: model.FieldCostBasis, Reason: "cost basis must not be negative"}
	}

	return model.CreatePositionRequest{
		ClientID:  accountID,
		Symbol:    symbol,
		Quantity:  quantity,
		CostBasis: costBasis,
	}, nil
}
