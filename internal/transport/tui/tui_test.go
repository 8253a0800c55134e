package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KotFed0t/risk_monitor/internal/aggregator"
	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/service"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
)

type fakeMonitor struct {
	mu        sync.Mutex
	st        monitorService.State
	next      int
	prev      int
	refreshes []model.AccountID
}

func (f *fakeMonitor) State() monitorService.State { return f.st }

func (f *fakeMonitor) NextAccount(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return nil
}

func (f *fakeMonitor) PrevAccount(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prev++
	return nil
}

func (f *fakeMonitor) RequestRefresh(ctx context.Context, id model.AccountID, reason monitorService.RefreshReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes = append(f.refreshes, id)
	return nil
}

type fakeForm struct {
	draft        model.SubmissionDraft
	submitErr    error
	submits      int
	notification string
}

func (f *fakeForm) SetField(field model.DraftField, value string) { f.draft.Set(field, value) }
func (f *fakeForm) Draft() model.SubmissionDraft                  { return f.draft }

func (f *fakeForm) Submit(ctx context.Context) error {
	f.submits++
	if f.submitErr == nil {
		f.draft = model.SubmissionDraft{}
	}
	return f.submitErr
}

func (f *fakeForm) TakeNotification() (string, bool) {
	n := f.notification
	f.notification = ""
	return n, n != ""
}

type fakeExporter struct {
	got []monitorService.State
}

func (e *fakeExporter) Export(ctx context.Context, st monitorService.State) (string, error) {
	e.got = append(e.got, st)
	return "/tmp/risk_7.xlsx", nil
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func accountSeven() monitorService.State {
	positions := []model.Position{{
		Symbol:       "AAPL",
		Quantity:     10,
		CostBasis:    money("100"),
		CurrentPrice: decimal.NewNullDecimal(money("150")),
	}}
	return monitorService.State{
		Accounts:        []model.AccountID{"7"},
		DirectoryLoaded: true,
		Selected:        "7",
		HasSelection:    true,
		Phase:           monitorService.PhaseActive,
		Positions:       positions,
		Buckets:         aggregator.Aggregate(positions),
		PositionsLoaded: true,
		Risk: model.RiskStatus{
			PortfolioValue:    money("1500"),
			Loan:              money("500"),
			NetEquity:         money("1000"),
			MarginRequirement: money("300"),
			MarginShortfall:   money("0"),
		},
		RiskLoaded: true,
	}
}

func newTestModel(st monitorService.State) (Model, *fakeMonitor, *fakeForm, *fakeExporter) {
	mon := &fakeMonitor{st: st}
	form := &fakeForm{}
	exp := &fakeExporter{}
	return NewModel(mon, form, exp), mon, form, exp
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func lineWith(view, substr string) string {
	for _, l := range strings.Split(view, "\n") {
		if strings.Contains(l, substr) {
			return l
		}
	}
	return ""
}

func TestView_EndToEndAccountSeven(t *testing.T) {
	m, _, _, _ := newTestModel(monitorService.State{})
	m, _ = update(t, m, StateMsg{State: accountSeven()})

	view := m.View()

	row := lineWith(view, "AAPL ")
	require.NotEmpty(t, row)
	for _, cell := range []string{"10", "$100.00", "$150.00"} {
		assert.Contains(t, row, cell)
	}
	assert.Contains(t, view, "No Margin Call")
	assert.Equal(t, theme.Success, riskBorderColor(m.state))

	bar := lineWith(view, "█")
	assert.Contains(t, bar, "AAPL")
	assert.Contains(t, bar, "$1500.00")
	assert.Contains(t, bar, "100.0%")
}

func TestView_MarginCall(t *testing.T) {
	st := accountSeven()
	st.Risk.MarginCall = true
	st.Risk.MarginShortfall = money("10")
	m, _, _, _ := newTestModel(st)

	assert.Contains(t, m.View(), "Margin Call Triggered!")
	assert.Equal(t, theme.Error, riskBorderColor(st))
}

func TestView_LoadingAndEmptyStates(t *testing.T) {
	st := monitorService.State{
		Accounts:        []model.AccountID{"7"},
		DirectoryLoaded: true,
		Selected:        "7",
		HasSelection:    true,
	}
	m, _, _, _ := newTestModel(st)

	view := m.View()
	assert.Contains(t, view, "Loading margin status...")
	assert.Contains(t, view, "No data to visualize.")
	assert.Contains(t, view, "Loading positions...")
}

func TestView_MissingPrice(t *testing.T) {
	st := accountSeven()
	st.Positions[0].CurrentPrice = decimal.NullDecimal{}
	m, _, _, _ := newTestModel(st)

	assert.Contains(t, lineWith(m.View(), "AAPL "), "N/A")
}

func TestView_DirectoryStates(t *testing.T) {
	m, _, _, _ := newTestModel(monitorService.State{DirectoryLoaded: true})
	assert.Contains(t, m.View(), "No clients available")

	m, _, _, _ = newTestModel(monitorService.State{
		DirectoryLoaded: true,
		DirectoryErr:    &service.DirectoryLoadError{Err: errors.New("refused")},
	})
	assert.Contains(t, m.View(), "Failed to load client list.")
}

func TestView_RefreshErrorKeepsData(t *testing.T) {
	st := accountSeven()
	st.RefreshErr = &service.RefreshError{AccountID: "7", Risk: errors.New("timeout")}
	m, _, _, _ := newTestModel(st)

	view := m.View()
	assert.Contains(t, view, "failed to refresh client 7")
	assert.Contains(t, view, "$150.00")
}

func TestUpdate_NavigationKeys(t *testing.T) {
	st := accountSeven()
	st.Accounts = []model.AccountID{"7", "8"}
	m, mon, _, exp := newTestModel(st)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, mon.next)

	_, cmd = update(t, m, runes("["))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, mon.prev)

	_, cmd = update(t, m, runes("r"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []model.AccountID{"7"}, mon.refreshes)

	m, cmd = update(t, m, runes("x"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Len(t, exp.got, 1)
	assert.Contains(t, m.View(), "Exported to /tmp/risk_7.xlsx")
}

func TestUpdate_TypingGoesToFocusedField(t *testing.T) {
	m, mon, form, _ := newTestModel(accountSeven())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("r"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("5"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("2.5"))

	assert.Equal(t, model.SubmissionDraft{Symbol: "r", Quantity: "5", CostBasis: "2.5"}, form.draft)
	assert.Empty(t, mon.refreshes)
}

func TestUpdate_SubmitSuccessClearsInputs(t *testing.T) {
	m, _, form, _ := newTestModel(accountSeven())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("MSFT"))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	m, cmd2 := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd2)

	m, _ = update(t, m, cmd())
	assert.Equal(t, 1, form.submits)
	assert.False(t, m.submitting)
	assert.Empty(t, m.inputs[0].Value())
	assert.Contains(t, m.View(), "Position added")
}

func TestUpdate_SubmitFailureShowsNotification(t *testing.T) {
	m, _, form, _ := newTestModel(accountSeven())
	form.submitErr = &service.SubmissionError{Err: errors.New("500")}
	form.notification = "Failed to add position"
	form.draft = model.SubmissionDraft{Symbol: "MSFT", Quantity: "1", CostBasis: "1"}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())

	assert.Contains(t, m.View(), "Failed to add position")
	assert.Equal(t, "MSFT", form.draft.Symbol)
}

func TestUpdate_ValidationErrorMarksField(t *testing.T) {
	m, _, form, _ := newTestModel(accountSeven())
	form.submitErr = &service.ValidationError{Field: model.FieldQuantity, Reason: "quantity must be an integer"}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())

	require.NotNil(t, m.fieldErr)
	assert.Equal(t, model.FieldQuantity, *m.fieldErr)
	assert.Contains(t, m.View(), "quantity must be an integer")
}

func TestUpdate_QuitOnlyFromNavigation(t *testing.T) {
	m, _, _, _ := newTestModel(accountSeven())

	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, runes("q"))
	assert.Equal(t, "q", m.inputs[0].Value())
}
