package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	Border  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var theme = palette{
	Border:  lipgloss.Color("#4D4C57"),
	Muted:   lipgloss.Color("#858392"),
	Text:    lipgloss.Color("#DFDBDD"),
	Primary: lipgloss.Color("#6B50FF"),
	Success: lipgloss.Color("#00C853"),
	Warning: lipgloss.Color("#FFD300"),
	Error:   lipgloss.Color("#E53935"),
}

// chart slice colors, reused in order
var seriesColors = []lipgloss.Color{
	lipgloss.Color("#0088FE"),
	lipgloss.Color("#00C49F"),
	lipgloss.Color("#FFBB28"),
	lipgloss.Color("#FF8042"),
	lipgloss.Color("#A28CFE"),
	lipgloss.Color("#FF6699"),
}
