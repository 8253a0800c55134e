// Package viewConverter formats monitor state as text for the terminal view,
// telegram replies and alerts.
package viewConverter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KotFed0t/risk_monitor/internal/aggregator"
	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
	"github.com/shopspring/decimal"
)

const (
	NotAvailable       = "N/A"
	MarginCallText     = "Margin Call Triggered!"
	NoMarginCallText   = "No Margin Call"
	LoadingMarginText  = "Loading margin status..."
	NoChartDataText    = "No data to visualize."
	NoClientsText      = "No clients available"
	DirectoryFailedMsg = "Failed to load client list."
	NoPositionsText    = "No positions"
)

var PositionHeaders = []string{"Symbol", "Quantity", "Cost Basis", "Current Price"}

func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func Price(p decimal.NullDecimal) string {
	if !p.Valid {
		return NotAvailable
	}
	return Money(p.Decimal)
}

// PositionRow returns the table cells of one lot.
func PositionRow(p model.Position) []string {
	return []string{
		p.Symbol,
		strconv.FormatInt(p.Quantity, 10),
		Money(p.CostBasis),
		Price(p.CurrentPrice),
	}
}

// PositionLine is PositionRow joined with " / ", e.g. "AAPL / 10 / $100.00 / $150.00".
func PositionLine(p model.Position) string {
	return strings.Join(PositionRow(p), " / ")
}

func MarginHeadline(r model.RiskStatus) string {
	if r.MarginCall {
		return MarginCallText
	}
	return NoMarginCallText
}

type Field struct {
	Label string
	Value string
}

func RiskFields(r model.RiskStatus) []Field {
	return []Field{
		{Label: "Portfolio Value", Value: Money(r.PortfolioValue)},
		{Label: "Loan", Value: Money(r.Loan)},
		{Label: "Net Equity", Value: Money(r.NetEquity)},
		{Label: "Margin Requirement", Value: Money(r.MarginRequirement)},
		{Label: "Margin Shortfall", Value: Money(r.MarginShortfall)},
	}
}

// Percent formats a 0..100 share with one decimal.
func Percent(share decimal.Decimal) string {
	return share.StringFixed(1) + "%"
}

func BucketLine(b model.ValueBucket, total decimal.Decimal) string {
	return fmt.Sprintf("%s: %s (%s)", b.Symbol, Money(b.Value), Percent(aggregator.Share(b, total)))
}

func AlertText(accountID model.AccountID, r model.RiskStatus) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🚨 %s for client %s\n", MarginCallText, accountID))
	sb.WriteString(fmt.Sprintf("Shortfall: %s\n", Money(r.MarginShortfall)))
	sb.WriteString(fmt.Sprintf("Net Equity: %s", Money(r.NetEquity)))
	return sb.String()
}

func ClearedText(accountID model.AccountID, r model.RiskStatus) string {
	return fmt.Sprintf("✅ Margin call cleared for client %s\nNet Equity: %s", accountID, Money(r.NetEquity))
}

// StatusText is a plain-text summary of the selected account.
func StatusText(st monitorService.State) string {
	if st.DirectoryErr != nil {
		return DirectoryFailedMsg
	}
	if !st.HasSelection {
		return NoClientsText
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 Client %s\n\n", st.Selected))

	if st.RiskLoaded {
		sb.WriteString(MarginHeadline(st.Risk) + "\n")
		for _, f := range RiskFields(st.Risk) {
			sb.WriteString(fmt.Sprintf("   ▸ %s: %s\n", f.Label, f.Value))
		}
	} else {
		sb.WriteString(LoadingMarginText + "\n")
	}

	sb.WriteString("\n📋 Positions:\n")
	if len(st.Positions) == 0 {
		sb.WriteString(NoPositionsText + "\n")
	}
	for _, p := range st.Positions {
		sb.WriteString(PositionLine(p) + "\n")
	}

	if st.RefreshErr != nil {
		sb.WriteString("\n⚠️ " + st.RefreshErr.Error() + "\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
