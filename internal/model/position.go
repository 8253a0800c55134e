package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Position is one lot. The backend may return several lots of the same
// symbol, so a position is identified by symbol and index in its snapshot.
type Position struct {
	Symbol       string              `json:"symbol"`
	Quantity     int64               `json:"quantity"`
	CostBasis    decimal.Decimal     `json:"cost_basis"`
	CurrentPrice decimal.NullDecimal `json:"current_price"`
}

// MarketValue is quantity × current price, with an unknown price counted as 0.
func (p Position) MarketValue() decimal.Decimal {
	if !p.CurrentPrice.Valid {
		return decimal.Zero
	}
	return decimal.NewFromInt(p.Quantity).Mul(p.CurrentPrice.Decimal)
}

type CreatePositionRequest struct {
	ClientID  AccountID
	Symbol    string
	Quantity  int64
	CostBasis decimal.Decimal
}

// MarshalJSON writes cost_basis as a JSON number; the backend parses it as one.
func (r CreatePositionRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ClientID  AccountID   `json:"client_id"`
		Symbol    string      `json:"symbol"`
		Quantity  int64       `json:"quantity"`
		CostBasis json.Number `json:"cost_basis"`
	}{
		ClientID:  r.ClientID,
		Symbol:    r.Symbol,
		Quantity:  r.Quantity,
		CostBasis: json.Number(r.CostBasis.String()),
	})
}
