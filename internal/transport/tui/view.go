package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/KotFed0t/risk_monitor/internal/converter/viewConverter"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
)

func (m Model) View() string {
	sections := []string{m.viewHeader()}

	if banner := m.viewBanner(); banner != "" {
		sections = append(sections, banner)
	}

	if m.state.HasSelection {
		sections = append(sections,
			lipgloss.JoinHorizontal(lipgloss.Top, m.viewPositions(), "  ", m.viewRisk()),
			"",
			sectionTitle("Value by Symbol"),
			RenderDistribution(m.state.Buckets),
			"",
			m.viewForm(),
		)
	}

	if m.notice != "" {
		color := theme.Success
		if m.noticeErr {
			color = theme.Error
		}
		sections = append(sections, lipgloss.NewStyle().Foreground(color).Render(m.notice))
	}

	sections = append(sections, "", m.help.View(keys))

	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(sections, "\n"))
}

func sectionTitle(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render(s)
}

func (m Model) viewHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render("Risk Monitor")

	var selector string
	switch {
	case !m.state.DirectoryLoaded:
		selector = lipgloss.NewStyle().Foreground(theme.Muted).Render("Loading clients...")
	case m.state.DirectoryErr != nil:
		selector = ""
	case len(m.state.Accounts) == 0:
		selector = lipgloss.NewStyle().Foreground(theme.Muted).Render(viewConverter.NoClientsText)
	default:
		i := slices.Index(m.state.Accounts, m.state.Selected)
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if m.focus == focusNav {
			style = style.Bold(true).Foreground(theme.Primary)
		}
		selector = style.Render(fmt.Sprintf("Client: ◀ %s ▶", m.state.Selected)) +
			lipgloss.NewStyle().Foreground(theme.Muted).Render(fmt.Sprintf("  (%d/%d, polling %s)", i+1, len(m.state.Accounts), m.state.Phase))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "   ", selector)
}

func (m Model) viewBanner() string {
	style := lipgloss.NewStyle().Foreground(theme.Error)

	if m.state.DirectoryErr != nil {
		return style.Render(viewConverter.DirectoryFailedMsg)
	}
	if m.state.RefreshErr != nil {
		return style.Render("⚠ " + m.state.RefreshErr.Error())
	}
	return ""
}

func (m Model) viewPositions() string {
	title := sectionTitle("Positions")

	if len(m.state.Positions) == 0 {
		text := viewConverter.NoPositionsText
		if !m.state.PositionsLoaded {
			text = "Loading positions..."
		}
		return title + "\n" + lipgloss.NewStyle().Foreground(theme.Muted).Render(text)
	}

	rows := make([][]string, 0, len(m.state.Positions))
	for _, p := range m.state.Positions {
		rows = append(rows, viewConverter.PositionRow(p))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(viewConverter.PositionHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(theme.Primary)
			}
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	return title + "\n" + t.Render()
}

// riskBorderColor is red while a margin call is active and green otherwise.
func riskBorderColor(st monitorService.State) lipgloss.Color {
	if !st.RiskLoaded {
		return theme.Border
	}
	if st.Risk.MarginCall {
		return theme.Error
	}
	return theme.Success
}

func (m Model) viewRisk() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(riskBorderColor(m.state)).
		Padding(0, 1)

	if !m.state.RiskLoaded {
		return box.Render(lipgloss.NewStyle().Foreground(theme.Muted).Render(viewConverter.LoadingMarginText))
	}

	r := m.state.Risk
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(riskBorderColor(m.state)).Render(viewConverter.MarginHeadline(r)),
		"",
	}

	fields := viewConverter.RiskFields(r)
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, len(f.Label))
	}
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%-*s  %s", labelWidth+1, f.Label+":", f.Value))
	}

	return box.Render(strings.Join(lines, "\n"))
}

func (m Model) viewForm() string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	errStyle := lipgloss.NewStyle().Foreground(theme.Error)

	parts := make([]string, 0, len(m.inputs))
	for i, in := range m.inputs {
		label := labelStyle.Render(in.Placeholder + ":")
		if m.fieldErr != nil && *m.fieldErr == formFields[i] {
			label = errStyle.Render(in.Placeholder + ":")
		}
		parts = append(parts, label+" "+in.View())
	}

	status := ""
	if m.submitting {
		status = labelStyle.Render("  adding...")
	}

	return sectionTitle("Add Position") + "\n" + strings.Join(parts, "  ") + status
}
