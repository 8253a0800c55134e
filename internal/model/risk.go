package model

import "github.com/shopspring/decimal"

// RiskStatus is the backend's margin evaluation for one account.
type RiskStatus struct {
	PortfolioValue    decimal.Decimal `json:"portfolio_value"`
	Loan              decimal.Decimal `json:"loan"`
	NetEquity         decimal.Decimal `json:"net_equity"`
	MarginRequirement decimal.Decimal `json:"margin_requirement"`
	MarginShortfall   decimal.Decimal `json:"margin_shortfall"`
	MarginCall        bool            `json:"margin_call"`
}

// Consistent reports whether net_equity = portfolio_value - loan and
// margin_call <=> margin_shortfall > 0. The backend rounds to cents, so
// equity is compared at two decimals.
func (r RiskStatus) Consistent() bool {
	equity := r.PortfolioValue.Sub(r.Loan).Round(2)
	if !equity.Equal(r.NetEquity.Round(2)) {
		return false
	}
	return r.MarginCall == r.MarginShortfall.IsPositive()
}
