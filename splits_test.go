package hindsight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCumulativeSplitFactor(t *testing.T) {
	splits := []SplitEvent{
		{Date: d("2020-08-31"), Ratio: 4},
		{Date: d("2022-06-06"), Ratio: 0}, // malformed, skipped
		{Date: d("2024-06-10"), Ratio: 10},
	}

	// A trade before both real splits sees their product.
	assert.InDelta(t, 40, CumulativeSplitFactor(splits, d("2019-01-02")), 1e-9)
	// Between the two only the later one applies.
	assert.InDelta(t, 10, CumulativeSplitFactor(splits, d("2021-01-04")), 1e-9)
	// A split on the trade date is already in the traded quantity.
	assert.InDelta(t, 1, CumulativeSplitFactor(splits, d("2024-06-10")), 1e-9)
	assert.InDelta(t, 1, CumulativeSplitFactor(nil, d("2024-06-10")), 1e-9)
}

func TestApplySplitAdjustments(t *testing.T) {
	bars := weekdayBars(d("2024-01-02"), 50, 51)
	series := NewSeries("NVDA", bars, nil, []SplitEvent{{Date: d("2024-06-10"), Ratio: 10}})
	market := marketOf(series)

	actions := []Action{
		trade(Buy, "NVDA", "2024-01-02", 2, 500),
		trade(Sell, "NVDA", "2024-07-01", 20, 55), // after the split, untouched
		cash(Deposit, "2024-01-02", 1000),
	}

	adjusted := ApplySplitAdjustments(actions, market)
	assert.Equal(t, 1, adjusted)

	buy := actions[0]
	assert.InDelta(t, 20, buy.Quantity, 1e-9)
	assert.InDelta(t, 50, buy.Price, 1e-9)
	assert.InDelta(t, 1000, buy.Total, 1e-9) // cash paid does not change
	assert.InDelta(t, 2, buy.OriginalQuantity, 1e-9)
	assert.InDelta(t, 500, buy.OriginalPrice, 1e-9)
	assert.InDelta(t, 10, buy.SplitFactor, 1e-9)

	require.Zero(t, actions[1].SplitFactor)
	assert.InDelta(t, 20, actions[1].Quantity, 1e-9)
	require.Zero(t, actions[2].SplitFactor)
}
