package hindsight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectRoundTripsFIFO(t *testing.T) {
	actions := []Action{
		trade(Buy, "AAPL", "2024-01-02", 10, 100),
		trade(Buy, "AAPL", "2024-02-01", 10, 110),
		trade(Sell, "AAPL", "2024-03-01", 10, 120),
		trade(Sell, "AAPL", "2024-04-01", 10, 130),
	}

	trips := DetectRoundTrips(actions)
	require.Len(t, trips, 2)

	// First sell pairs with the earliest buy.
	assert.Equal(t, d("2024-01-02"), trips[0].BuyDate)
	assert.Equal(t, d("2024-03-01"), trips[0].SellDate)
	assert.InDelta(t, 20, trips[0].ReturnPct, 1e-9) // 1000 -> 1200
	assert.InDelta(t, 200, trips[0].DollarReturn, 1e-9)
	assert.Equal(t, 59, trips[0].HoldingDays)

	assert.Equal(t, d("2024-02-01"), trips[1].BuyDate)
	assert.Equal(t, d("2024-04-01"), trips[1].SellDate)
}

func TestDetectRoundTripsFeesNetted(t *testing.T) {
	buy := trade(Buy, "AAPL", "2024-01-02", 10, 100)
	buy.Fees = 5
	sell := trade(Sell, "AAPL", "2024-02-01", 10, 120)
	sell.Fees = 7

	trips := DetectRoundTrips([]Action{buy, sell})
	require.Len(t, trips, 1)
	assert.InDelta(t, 12, trips[0].Fees, 1e-9)
	assert.InDelta(t, 1200-1000-12, trips[0].DollarReturn, 1e-9)
	assert.InDelta(t, 20, trips[0].ReturnPct, 1e-9) // pct ignores fees
}

func TestDetectRoundTripsSellBeforeBuy(t *testing.T) {
	actions := []Action{
		trade(Sell, "AAPL", "2024-01-02", 10, 100), // nothing open yet
		trade(Buy, "AAPL", "2024-02-01", 10, 90),
		trade(Sell, "AAPL", "2024-03-01", 10, 110),
	}

	trips := DetectRoundTrips(actions)
	require.Len(t, trips, 1)
	assert.Equal(t, d("2024-02-01"), trips[0].BuyDate)
	assert.Equal(t, d("2024-03-01"), trips[0].SellDate)
}

func TestDetectRoundTripsPartialQuantity(t *testing.T) {
	actions := []Action{
		trade(Buy, "AAPL", "2024-01-02", 10, 100),
		trade(Sell, "AAPL", "2024-02-01", 4, 120),
	}

	trips := DetectRoundTrips(actions)
	require.Len(t, trips, 1)
	// Quantity is the smaller leg; the return still compares full totals.
	assert.InDelta(t, 4, trips[0].Quantity, 1e-9)
	assert.InDelta(t, (480.0-1000.0)/1000.0*100, trips[0].ReturnPct, 0.01)
}

func TestDetectWashSales(t *testing.T) {
	actions := []Action{
		trade(Buy, "AAPL", "2024-01-02", 10, 100),
		trade(Sell, "AAPL", "2024-02-01", 10, 90),
		trade(Buy, "AAPL", "2024-02-15", 5, 85),  // 14 days later
		trade(Buy, "AAPL", "2024-03-02", 5, 88),  // 30 days, inclusive edge
		trade(Buy, "AAPL", "2024-03-03", 5, 89),  // 31 days, out
		trade(Buy, "MSFT", "2024-02-10", 5, 400), // other ticker
	}

	washes := DetectWashSales(actions)
	require.Len(t, washes, 2)
	assert.Equal(t, d("2024-02-15"), washes[0].RebuyDate)
	assert.Equal(t, 14, washes[0].DaysBetween)
	assert.Equal(t, d("2024-03-02"), washes[1].RebuyDate)
	assert.Equal(t, 30, washes[1].DaysBetween)
}

func TestDetectWashSalesSameDayIsNotAWash(t *testing.T) {
	actions := []Action{
		trade(Sell, "AAPL", "2024-02-01", 10, 90),
		trade(Buy, "AAPL", "2024-02-01", 10, 90),
	}
	assert.Empty(t, DetectWashSales(actions))
}

func TestDetectOvertrading(t *testing.T) {
	actions := []Action{
		trade(Buy, "AAPL", "2024-01-02", 1, 100),
		trade(Sell, "AAPL", "2024-01-20", 1, 105),
		trade(Buy, "AAPL", "2024-02-10", 1, 102),
		trade(Sell, "AAPL", "2024-02-28", 1, 108), // 4th trade inside 60 days
		trade(Buy, "MSFT", "2024-01-02", 1, 400),
		trade(Sell, "MSFT", "2024-06-03", 1, 420),
	}

	flags := DetectOvertrading(actions)
	require.Len(t, flags, 1)
	assert.Equal(t, "AAPL", flags[0].Ticker)
	assert.Equal(t, d("2024-01-02"), flags[0].WindowStart)
	assert.Equal(t, d("2024-01-02").Add(60), flags[0].WindowEnd)
	assert.Equal(t, 4, flags[0].TradeCount)
}

func TestDetectOvertradingExactlyThreeIsFine(t *testing.T) {
	actions := []Action{
		trade(Buy, "AAPL", "2024-01-02", 1, 100),
		trade(Sell, "AAPL", "2024-01-20", 1, 105),
		trade(Buy, "AAPL", "2024-02-10", 1, 102),
	}
	assert.Empty(t, DetectOvertrading(actions))
}
