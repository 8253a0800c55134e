package model

type DraftField int

const (
	FieldSymbol DraftField = iota
	FieldQuantity
	FieldCostBasis
)

func (f DraftField) String() string {
	switch f {
	case FieldSymbol:
		return "symbol"
	case FieldQuantity:
		return "quantity"
	case FieldCostBasis:
		return "cost_basis"
	default:
		return "unknown"
	}
}

// SubmissionDraft holds the raw text of the new-position form.
type SubmissionDraft struct {
	Symbol    string
	Quantity  string
	CostBasis string
}

func (d SubmissionDraft) Get(field DraftField) string {
	switch field {
	case FieldSymbol:
		return d.Symbol
	case FieldQuantity:
		return d.Quantity
	case FieldCostBasis:
		return d.CostBasis
	}
	return ""
}

func (d *SubmissionDraft) Set(field DraftField, value string) {
	switch field {
	case FieldSymbol:
		d.Symbol = value
	case FieldQuantity:
		d.Quantity = value
	case FieldCostBasis:
		d.CostBasis = value
	}
}
