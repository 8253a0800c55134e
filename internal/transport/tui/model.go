// Package tui renders the monitor state in the terminal and turns key
// presses into monitor and form operations. It keeps only input state; all
// account data comes in as monitorService.State copies.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
)

type Monitor interface {
	State() monitorService.State
	NextAccount(ctx context.Context) error
	PrevAccount(ctx context.Context) error
	RequestRefresh(ctx context.Context, accountID model.AccountID, reason monitorService.RefreshReason) error
}

type Form interface {
	SetField(field model.DraftField, value string)
	Draft() model.SubmissionDraft
	Submit(ctx context.Context) error
	TakeNotification() (string, bool)
}

type Exporter interface {
	Export(ctx context.Context, st monitorService.State) (string, error)
}

// focus 0 is account navigation, the rest are draft fields
const focusNav = 0

var formFields = []model.DraftField{model.FieldSymbol, model.FieldQuantity, model.FieldCostBasis}

type Model struct {
	monitor  Monitor
	form     Form
	exporter Exporter

	// Data
	state monitorService.State

	// UI state
	width      int
	height     int
	focus      int
	inputs     []textinput.Model
	submitting bool
	notice     string
	noticeErr  bool
	fieldErr   *model.DraftField

	help help.Model
}

// Messages

// StateMsg carries a state published by the monitor.
type StateMsg struct {
	State monitorService.State
}

type submitMsg struct {
	err error
}

type exportMsg struct {
	path string
	err  error
}

type selectMsg struct {
	err error
}

func NewModel(monitor Monitor, form Form, exporter Exporter) Model {
	placeholders := map[model.DraftField]string{
		model.FieldSymbol:    "Symbol",
		model.FieldQuantity:  "Quantity",
		model.FieldCostBasis: "Cost Basis",
	}

	inputs := make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		in := textinput.New()
		in.Placeholder = placeholders[f]
		in.Prompt = ""
		in.CharLimit = 32
		in.Width = 14
		in.SetValue(form.Draft().Get(f))
		inputs[i] = in
	}

	return Model{
		monitor:  monitor,
		form:     form,
		exporter: exporter,
		state:    monitor.State(),
		inputs:   inputs,
		help:     help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Commands

func nextAccount(mon Monitor) tea.Cmd {
	return func() tea.Msg {
		return selectMsg{err: mon.NextAccount(context.Background())}
	}
}

func prevAccount(mon Monitor) tea.Cmd {
	return func() tea.Msg {
		return selectMsg{err: mon.PrevAccount(context.Background())}
	}
}

func refresh(mon Monitor, id model.AccountID) tea.Cmd {
	return func() tea.Msg {
		// the outcome shows up in the published state
		_ = mon.RequestRefresh(context.Background(), id, monitorService.ReasonManual)
		return nil
	}
}

func submit(form Form) tea.Cmd {
	return func() tea.Msg {
		return submitMsg{err: form.Submit(context.Background())}
	}
}

func export(exp Exporter, st monitorService.State) tea.Cmd {
	return func() tea.Msg {
		path, err := exp.Export(context.Background(), st)
		return exportMsg{path: path, err: err}
	}
}
