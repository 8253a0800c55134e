package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/KotFed0t/risk_monitor/internal/aggregator"
	"github.com/KotFed0t/risk_monitor/internal/converter/viewConverter"
	"github.com/KotFed0t/risk_monitor/internal/model"
)

const barWidth = 30

// RenderDistribution draws one horizontal bar per bucket, scaled to the
// largest bucket, followed by value and share.
func RenderDistribution(buckets []model.ValueBucket) string {
	if len(buckets) == 0 {
		return lipgloss.NewStyle().Foreground(theme.Muted).Render(viewConverter.NoChartDataText)
	}

	total := aggregator.Total(buckets)
	largest := decimal.Zero
	labelWidth := 0
	for _, b := range buckets {
		if b.Value.GreaterThan(largest) {
			largest = b.Value
		}
		labelWidth = max(labelWidth, lipgloss.Width(b.Symbol))
	}

	lines := make([]string, 0, len(buckets))
	for i, b := range buckets {
		n := barLength(b.Value, largest)
		bar := lipgloss.NewStyle().
			Foreground(seriesColors[i%len(seriesColors)]).
			Render(strings.Repeat("█", n))
		pad := strings.Repeat(" ", barWidth-n)

		lines = append(lines, fmt.Sprintf("%-*s %s%s %s (%s)",
			labelWidth, b.Symbol, bar, pad,
			viewConverter.Money(b.Value),
			viewConverter.Percent(aggregator.Share(b, total)),
		))
	}

	return strings.Join(lines, "\n")
}

// barLength is value/largest of barWidth, at least 1 for a positive value.
func barLength(value, largest decimal.Decimal) int {
	if !largest.IsPositive() || !value.IsPositive() {
		return 0
	}
	n := int(value.Div(largest).Mul(decimal.NewFromInt(barWidth)).IntPart())
	return min(max(n, 1), barWidth)
}
