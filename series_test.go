package hindsight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesAtAndNearest(t *testing.T) {
	// 2024-01-02 is a Tuesday; bars run Tue..Mon skipping the weekend.
	s := seriesOf("AAPL", weekdayBars(d("2024-01-02"), 100, 101, 102, 103, 104))

	b, ok := s.At(d("2024-01-03"))
	require.True(t, ok)
	assert.InDelta(t, 101, b.AdjClose, 1e-9)

	_, ok = s.At(d("2024-01-06")) // Saturday
	assert.False(t, ok)

	// Saturday resolves forward to Monday, backward to Friday.
	b, ok = s.Nearest(d("2024-01-06"), 1)
	require.True(t, ok)
	assert.Equal(t, d("2024-01-08"), b.Date)

	b, ok = s.Nearest(d("2024-01-06"), -1)
	require.True(t, ok)
	assert.Equal(t, d("2024-01-05"), b.Date)

	// Beyond the scan horizon nothing is found.
	_, ok = s.Nearest(d("2024-02-01"), 1)
	assert.False(t, ok)
}

func TestSeriesAfterAndFollowing(t *testing.T) {
	s := seriesOf("AAPL", weekdayBars(d("2024-01-02"), 100, 101, 102, 103, 104, 105))

	after := s.After(d("2024-01-03"), 3)
	require.Len(t, after, 3)
	assert.Equal(t, d("2024-01-04"), after[0].Date)
	assert.Equal(t, d("2024-01-08"), after[2].Date)

	// Following is calendar-bounded: 3 days from Wednesday spans the weekend
	// start but only catches Thursday and Friday.
	following := s.Following(d("2024-01-03"), 3)
	require.Len(t, following, 2)
	assert.Equal(t, d("2024-01-05"), following[1].Date)
}

func TestSeriesWindow(t *testing.T) {
	s := seriesOf("AAPL", weekdayBars(d("2024-01-02"), 100, 101, 102, 103, 104))

	w := s.Window(newRange("2024-01-03", "2024-01-05"))
	require.Len(t, w, 3)
	assert.Equal(t, d("2024-01-03"), w[0].Date)
	assert.Equal(t, d("2024-01-05"), w[2].Date)
}

func TestMarketLookup(t *testing.T) {
	m := marketOf(seriesOf("AAPL", weekdayBars(d("2024-01-02"), 100)))

	assert.True(t, m.Has("AAPL"))
	assert.False(t, m.Has("MSFT"))
	assert.Nil(t, m.Get("MSFT"))
	assert.Equal(t, DefaultBenchmark, m.BenchmarkTicker())
	assert.Nil(t, m.Benchmark()) // no SPY series loaded
	assert.Equal(t, []string{"AAPL"}, m.Tickers())
}
