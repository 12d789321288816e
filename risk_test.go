package hindsight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// riskScenario builds a 70-bar price path with a drawdown in the middle:
// climbs 100 -> 120, falls to 90, recovers to 125. One buy on the first day
// plus a sell at the end to pin the activity period.
func riskScenario(t *testing.T) ([]Action, *Market) {
	t.Helper()
	closes := make([]float64, 0, 70)
	v := 100.0
	for i := 0; i < 20; i++ { // climb to 120
		closes = append(closes, v)
		v += 1
	}
	for i := 0; i < 15; i++ { // fall to 90
		closes = append(closes, v)
		v -= 2
	}
	for i := 0; i < 35; i++ { // recover to 125
		closes = append(closes, v)
		v += 1
	}
	bars := weekdayBars(d("2024-01-02"), closes...)
	market := marketOf(seriesOf("ACME", bars))

	last := bars[len(bars)-1].Date
	actions := []Action{
		cash(Deposit, "2024-01-02", 1000),
		trade(Buy, "ACME", "2024-01-02", 10, 100),
		{Date: last, Kind: Sell, Ticker: "ACME", Quantity: 1, Price: closes[len(closes)-1]},
	}
	return actions, market
}

func TestComputeRiskMetricsDrawdown(t *testing.T) {
	actions, market := riskScenario(t)

	r, ok := ComputeRiskMetrics(actions, market)
	require.True(t, ok)

	assert.Equal(t, 69, r.TotalTradingDays)
	// Peak at 120 (bar 20), trough at 90 (bar 35 area), then a full recovery.
	assert.InDelta(t, (90.0-120.0)/120.0*100, r.MaxDrawdownPct, 0.5)
	assert.Equal(t, r.TradingDays[20], r.MaxDrawdownStart)
	require.NotNil(t, r.MaxDrawdownRecovery)
	assert.True(t, r.MaxDrawdownEnd.Before(*r.MaxDrawdownRecovery))
	assert.Positive(t, r.MaxDrawdownDays)

	// The -2 steps off the 119 peak are the worst daily moves.
	assert.Less(t, r.WorstDayReturnPct, 0.0)
	assert.Greater(t, r.BestDayReturnPct, 0.0)
	assert.True(t, r.BestDayDate.After(r.TradingDays[0]))

	assert.Equal(t, r.PositiveDays+r.NegativeDays+r.FlatDays, r.TotalTradingDays)
	assert.Greater(t, r.WinRatePct, 50.0) // mostly an up market
	assert.Greater(t, r.AnnualizedReturnPct, 0.0)
	assert.Greater(t, r.AnnualizedVolatilityPct, 0.0)
	assert.InDelta(t, 4.5, r.RiskFreeRatePct, 1e-9)

	// Charting series mirror the walk.
	assert.Len(t, r.TradingDays, 70)
	assert.Len(t, r.DailyValues, 70)
	assert.InDelta(t, 1000, r.DailyValues[0], 1e-9) // 10 shares at 100
}

func TestComputeRiskMetricsTooShort(t *testing.T) {
	market := marketOf(seriesOf("ACME", weekdayBars(d("2024-01-02"), flatCloses(20, 100)...)))

	// Under 60 calendar days.
	actions := []Action{
		trade(Buy, "ACME", "2024-01-02", 10, 100),
		trade(Sell, "ACME", "2024-01-26", 5, 100),
	}
	_, ok := ComputeRiskMetrics(actions, market)
	assert.False(t, ok)

	// Long enough on the calendar but too few priced days.
	actions[1].Date = d("2024-06-03")
	_, ok = ComputeRiskMetrics(actions, market)
	assert.False(t, ok)
}

func TestComputeRiskMetricsCashFlowNeutral(t *testing.T) {
	// A deposit mid-stream must not register as a portfolio return: it funds
	// a same-day buy, so the value jump is exactly the cash flow.
	closes := flatCloses(70, 100)
	bars := weekdayBars(d("2024-01-02"), closes...)
	market := marketOf(seriesOf("ACME", bars))

	mid := bars[35].Date
	actions := []Action{
		cash(Deposit, "2024-01-02", 1000),
		trade(Buy, "ACME", "2024-01-02", 10, 100),
		cash(Deposit, mid.String(), 2000),
		{Date: mid, Kind: Buy, Ticker: "ACME", Quantity: 20, Price: 100, Total: 2000},
		cash(Dividend, bars[69].Date.String(), 10), // pins the period, no replay effect
	}

	r, ok := ComputeRiskMetrics(actions, market)
	require.True(t, ok)
	assert.Zero(t, r.AnnualizedReturnPct)
	assert.Zero(t, r.AnnualizedVolatilityPct)
	assert.Equal(t, r.TotalTradingDays, r.FlatDays)
}

func TestComputeRiskMetricsWeekendAction(t *testing.T) {
	// An action dated on a Saturday takes effect on the next trading day.
	closes := flatCloses(70, 100)
	bars := weekdayBars(d("2024-01-02"), closes...)
	market := marketOf(seriesOf("ACME", bars))

	actions := []Action{
		trade(Buy, "ACME", "2024-01-02", 10, 100),
		{Date: d("2024-01-06"), Kind: Buy, Ticker: "ACME", Quantity: 10, Price: 100, Total: 1000}, // Saturday
		{Date: bars[69].Date, Kind: Sell, Ticker: "ACME", Quantity: 1, Price: 100},
	}

	r, ok := ComputeRiskMetrics(actions, market)
	require.True(t, ok)
	assert.InDelta(t, 1000, r.DailyValues[3], 1e-9) // Friday Jan 5, still 10 shares
	assert.InDelta(t, 2000, r.DailyValues[4], 1e-9) // Monday Jan 8 picks it up
}

func TestApplyToReplay(t *testing.T) {
	positions := make(map[string]*replayPosition)

	cf := applyToReplay(positions, trade(Buy, "ACME", "2024-01-02", 10, 100))
	assert.Zero(t, cf)
	assert.InDelta(t, 10, positions["ACME"].shares, 1e-9)

	cf = applyToReplay(positions, trade(Sell, "ACME", "2024-02-01", 25, 100))
	assert.Zero(t, cf)
	assert.Zero(t, positions["ACME"].shares) // clamped, never negative

	assert.InDelta(t, 500, applyToReplay(positions, cash(Deposit, "2024-03-01", 500)), 1e-9)
	assert.InDelta(t, -200, applyToReplay(positions, cash(Withdrawal, "2024-03-05", 200)), 1e-9)
}
