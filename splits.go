package hindsight

import (
	"math"

	"github.com/etnz/hindsight/date"
)

// The data provider serves split-adjusted historical prices, while brokerage
// records carry the quantities and prices the user actually traded. Split
// normalization rewrites trades onto the provider's adjusted basis so the two
// are comparable.

// CumulativeSplitFactor computes the product of the ratios of every split
// dated strictly after day, in date order. Splits at or before the action
// date are already reflected in the traded quantity. An empty split list
// yields 1.
func CumulativeSplitFactor(splits []SplitEvent, day date.Date) float64 {
	factor := 1.0
	for _, sp := range splits {
		if sp.Ratio == 0 || sp.Ratio == 1 {
			continue
		}
		if sp.Date.After(day) {
			factor *= sp.Ratio
		}
	}
	return factor
}

// ApplySplitAdjustments rewrites BUY and SELL actions in place onto the
// split-adjusted basis: quantity x factor, price / factor. The monetary total
// is unchanged, the cash paid or received did not change with the split.
// Originals are preserved in the shadow fields. Returns the number of
// adjusted actions.
func ApplySplitAdjustments(actions []Action, market *Market) int {
	adjusted := 0
	for i := range actions {
		a := &actions[i]
		if a.Ticker == "" || !a.Kind.IsTrade() {
			continue
		}
		series := market.Get(a.Ticker)
		if series == nil || len(series.Splits()) == 0 {
			continue
		}
		factor := CumulativeSplitFactor(series.Splits(), a.Date)
		if math.Abs(factor-1.0) <= 1e-9 {
			continue
		}
		a.OriginalQuantity = a.Quantity
		a.OriginalPrice = a.Price
		a.SplitFactor = factor
		a.Quantity *= factor
		a.Price /= factor
		adjusted++
	}
	return adjusted
}
