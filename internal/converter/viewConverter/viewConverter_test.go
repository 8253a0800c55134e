package viewConverter

import (
	"errors"
	"testing"

	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/KotFed0t/risk_monitor/internal/service"
	"github.com/KotFed0t/risk_monitor/internal/service/monitorService"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestPositionLine(t *testing.T) {
	p := model.Position{
		Symbol:       "AAPL",
		Quantity:     10,
		CostBasis:    money("100"),
		CurrentPrice: decimal.NewNullDecimal(money("150")),
	}

	assert.Equal(t, "AAPL / 10 / $100.00 / $150.00", PositionLine(p))
}

func TestPositionLine_MissingPrice(t *testing.T) {
	p := model.Position{Symbol: "XYZ", Quantity: 3, CostBasis: money("2.5")}

	assert.Equal(t, []string{"XYZ", "3", "$2.50", "N/A"}, PositionRow(p))
}

func TestMarginHeadline(t *testing.T) {
	assert.Equal(t, "Margin Call Triggered!", MarginHeadline(model.RiskStatus{MarginCall: true}))
	assert.Equal(t, "No Margin Call", MarginHeadline(model.RiskStatus{}))
}

func TestBucketLine(t *testing.T) {
	buckets := []model.ValueBucket{
		{Symbol: "AAPL", Value: money("75")},
		{Symbol: "MSFT", Value: money("200")},
	}
	total := money("275")

	assert.Equal(t, "AAPL: $75.00 (27.3%)", BucketLine(buckets[0], total))
	assert.Equal(t, "MSFT: $200.00 (72.7%)", BucketLine(buckets[1], total))
}

func TestAlertText(t *testing.T) {
	r := model.RiskStatus{NetEquity: money("100"), MarginShortfall: money("25.5"), MarginCall: true}

	text := AlertText("7", r)

	assert.Contains(t, text, "Margin Call Triggered! for client 7")
	assert.Contains(t, text, "Shortfall: $25.50")
	assert.Contains(t, text, "Net Equity: $100.00")
	assert.Contains(t, ClearedText("7", r), "cleared for client 7")
}

func TestStatusText(t *testing.T) {
	t.Run("directory failed", func(t *testing.T) {
		st := monitorService.State{DirectoryErr: &service.DirectoryLoadError{Err: errors.New("boom")}}
		assert.Equal(t, "Failed to load client list.", StatusText(st))
	})

	t.Run("no clients", func(t *testing.T) {
		assert.Equal(t, "No clients available", StatusText(monitorService.State{DirectoryLoaded: true}))
	})

	t.Run("loading", func(t *testing.T) {
		st := monitorService.State{Selected: "7", HasSelection: true}
		text := StatusText(st)
		assert.Contains(t, text, "Loading margin status...")
		assert.Contains(t, text, "No positions")
	})

	t.Run("loaded", func(t *testing.T) {
		st := monitorService.State{
			Selected:     "7",
			HasSelection: true,
			Positions: []model.Position{{
				Symbol: "AAPL", Quantity: 10, CostBasis: money("100"),
				CurrentPrice: decimal.NewNullDecimal(money("150")),
			}},
			PositionsLoaded: true,
			Risk:            model.RiskStatus{PortfolioValue: money("1500"), Loan: money("500"), NetEquity: money("1000"), MarginRequirement: money("300")},
			RiskLoaded:      true,
		}
		text := StatusText(st)
		assert.Contains(t, text, "No Margin Call")
		assert.Contains(t, text, "Portfolio Value: $1500.00")
		assert.Contains(t, text, "AAPL / 10 / $100.00 / $150.00")
	})
}
