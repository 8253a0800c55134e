// Package aggregator turns a positions snapshot into the value-by-symbol
// distribution shown in the chart.
package aggregator

import (
	"github.com/KotFed0t/risk_monitor/internal/model"
	"github.com/shopspring/decimal"
)

// Aggregate groups positions by symbol in order of first appearance. Each
// bucket holds Σ quantity × current price, unknown prices counting as 0.
// It returns nil for an empty snapshot.
func Aggregate(positions []model.Position) []model.ValueBucket {
	if len(positions) == 0 {
		return nil
	}

	index := make(map[string]int, len(positions))
	buckets := make([]model.ValueBucket, 0, len(positions))

	for _, p := range positions {
		i, ok := index[p.Symbol]
		if !ok {
			index[p.Symbol] = len(buckets)
			buckets = append(buckets, model.ValueBucket{Symbol: p.Symbol, Value: p.MarketValue()})
			continue
		}
		buckets[i].Value = buckets[i].Value.Add(p.MarketValue())
	}

	return buckets
}

func Total(buckets []model.ValueBucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Value)
	}
	return total
}

// Share is the bucket's percentage of total, 0 when total is not positive.
func Share(bucket model.ValueBucket, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return bucket.Value.Div(total).Mul(decimal.NewFromInt(100))
}
