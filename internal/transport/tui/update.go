package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/KotFed0t/risk_monitor/internal/service"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case StateMsg:
		m.state = msg.State

	case tea.KeyMsg:
		return m.handleKey(msg)

	case submitMsg:
		m.submitting = false
		m.handleSubmitResult(msg.err)

	case exportMsg:
		if msg.err != nil {
			m.setNotice("Export failed: "+msg.err.Error(), true)
		} else {
			m.setNotice("Exported to "+msg.path, false)
		}

	case selectMsg:
		if msg.err != nil && !errors.Is(msg.err, service.ErrNoAccountSelected) {
			m.setNotice(msg.err.Error(), true)
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, keys.NextFocus):
		return m, m.setFocus((m.focus + 1) % (len(m.inputs) + 1))

	case key.Matches(msg, keys.PrevFocus):
		return m, m.setFocus((m.focus + len(m.inputs)) % (len(m.inputs) + 1))

	case key.Matches(msg, keys.Submit):
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		m.notice = ""
		m.fieldErr = nil
		return m, submit(m.form)
	}

	if m.focus != focusNav {
		return m.updateInput(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.NextAccount):
		if len(m.state.Accounts) > 0 {
			return m, nextAccount(m.monitor)
		}

	case key.Matches(msg, keys.PrevAccount):
		if len(m.state.Accounts) > 0 {
			return m, prevAccount(m.monitor)
		}

	case key.Matches(msg, keys.Refresh):
		if m.state.HasSelection {
			return m, refresh(m.monitor, m.state.Selected)
		}

	case key.Matches(msg, keys.Export):
		if m.state.HasSelection {
			return m, export(m.exporter, m.state)
		}
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	i := m.focus - 1

	var cmd tea.Cmd
	m.inputs[i], cmd = m.inputs[i].Update(msg)
	m.form.SetField(formFields[i], m.inputs[i].Value())

	return m, cmd
}

func (m *Model) setFocus(focus int) tea.Cmd {
	m.focus = focus

	var cmd tea.Cmd
	for i := range m.inputs {
		if i == focus-1 {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m *Model) handleSubmitResult(err error) {
	var vErr *service.ValidationError
	var subErr *service.SubmissionError

	switch {
	case err == nil:
		m.syncInputs()
		m.setNotice("Position added", false)

	case errors.As(err, &vErr):
		field := vErr.Field
		m.fieldErr = &field
		m.setNotice(vErr.Reason, true)

	case errors.As(err, &subErr):
		if n, ok := m.form.TakeNotification(); ok {
			m.setNotice(n, true)
		}

	case errors.Is(err, service.ErrSubmitInProgress):
		// the first submit reports for both

	default:
		m.setNotice(err.Error(), true)
	}
}

// syncInputs copies the form draft back into the inputs.
func (m *Model) syncInputs() {
	draft := m.form.Draft()
	for i, f := range formFields {
		m.inputs[i].SetValue(draft.Get(f))
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}
