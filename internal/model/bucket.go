package model

import "github.com/shopspring/decimal"

type ValueBucket struct {
	Symbol string
	Value  decimal.Decimal
}
