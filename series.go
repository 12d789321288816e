package hindsight

import (
	"sort"

	"github.com/etnz/hindsight/date"
)

// Bar is one daily price bar in the instrument's trade currency, on the data
// provider's split-adjusted basis.
type Bar struct {
	Date     date.Date `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjclose"`
	Volume   float64   `json:"volume"`
}

// DividendEvent is a per-share dividend with its ex-date.
type DividendEvent struct {
	Date   date.Date `json:"date"`
	Amount float64   `json:"amount"`
}

// SplitEvent is a stock split. Ratio > 1 is a forward split (10 for 10:1),
// ratio < 1 a reverse split (0.01 for 1:100).
type SplitEvent struct {
	Date  date.Date `json:"date"`
	Ratio float64   `json:"numerator"`
}

// Series holds the historical daily data for one ticker. It is an immutable
// snapshot: all lookups are pure and safe to call concurrently.
type Series struct {
	ticker    string
	bars      []Bar
	byDate    map[date.Date]int
	closes    *date.History[float64]
	dividends []DividendEvent
	splits    []SplitEvent
}

// NewSeries builds a series from raw provider data. Bars and splits are
// sorted by date; duplicate bar dates keep the last one.
func NewSeries(ticker string, bars []Bar, dividends []DividendEvent, splits []SplitEvent) *Series {
	s := &Series{
		ticker:    ticker,
		bars:      append([]Bar(nil), bars...),
		byDate:    make(map[date.Date]int, len(bars)),
		closes:    new(date.History[float64]),
		dividends: append([]DividendEvent(nil), dividends...),
		splits:    append([]SplitEvent(nil), splits...),
	}
	sort.SliceStable(s.bars, func(i, j int) bool { return s.bars[i].Date.Before(s.bars[j].Date) })
	sort.SliceStable(s.splits, func(i, j int) bool { return s.splits[i].Date.Before(s.splits[j].Date) })
	for i, b := range s.bars {
		s.byDate[b.Date] = i
		s.closes.Append(b.Date, b.AdjClose)
	}
	return s
}

func (s *Series) Ticker() string             { return s.ticker }
func (s *Series) Len() int                   { return len(s.bars) }
func (s *Series) Bars() []Bar                { return s.bars }
func (s *Series) Dividends() []DividendEvent { return s.dividends }
func (s *Series) Splits() []SplitEvent       { return s.splits }

// Closes exposes the adjusted-close history, for consumers that need
// last-known-value lookups or trading-day iteration.
func (s *Series) Closes() *date.History[float64] { return s.closes }

// At returns the bar on exactly that day.
func (s *Series) At(day date.Date) (Bar, bool) {
	i, ok := s.byDate[day]
	if !ok {
		return Bar{}, false
	}
	return s.bars[i], true
}

// Latest returns the most recent bar in the series.
func (s *Series) Latest() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// nearestHorizon bounds how far Nearest scans for a trading day. Five
// calendar days always bridges a weekend plus a holiday.
const nearestHorizon = 5

// Nearest returns the bar on the target day, or the first bar found scanning
// calendar days outward in the given direction (+1 forward, -1 backward), up
// to the horizon.
func (s *Series) Nearest(day date.Date, step int) (Bar, bool) {
	if step >= 0 {
		step = 1
	} else {
		step = -1
	}
	for offset := 0; offset <= nearestHorizon; offset++ {
		if b, ok := s.At(day.Add(offset * step)); ok {
			return b, true
		}
	}
	return Bar{}, false
}

// Window returns all bars whose date falls inside the range, inclusive.
func (s *Series) Window(r date.Range) []Bar {
	var window []Bar
	for _, b := range s.bars {
		if r.Contains(b.Date) {
			window = append(window, b)
		}
	}
	return window
}

// After returns up to limit bars dated strictly after day, in order.
func (s *Series) After(day date.Date, limit int) []Bar {
	var after []Bar
	for _, b := range s.bars {
		if !b.Date.After(day) {
			continue
		}
		after = append(after, b)
		if len(after) == limit {
			break
		}
	}
	return after
}

// Following returns the bars dated strictly after day but within the next
// `days` calendar days.
func (s *Series) Following(day date.Date, days int) []Bar {
	end := day.Add(days)
	var bars []Bar
	for _, b := range s.bars {
		if b.Date.After(day) && !b.Date.After(end) {
			bars = append(bars, b)
		}
	}
	return bars
}

// Market holds the series for a set of tickers plus the designated benchmark
// index ticker.
type Market struct {
	series    map[string]*Series
	benchmark string
}

// DefaultBenchmark is the reference index used when none is configured.
const DefaultBenchmark = "SPY"

// NewMarket returns an empty market snapshot. An empty benchmark ticker
// selects the default.
func NewMarket(benchmark string) *Market {
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}
	return &Market{series: make(map[string]*Series), benchmark: benchmark}
}

// Add registers a series, replacing any previous one for the same ticker.
func (m *Market) Add(s *Series) { m.series[s.ticker] = s }

func (m *Market) Has(ticker string) bool { return m.series[ticker] != nil }

// Get returns the series for a ticker, or nil if unknown.
func (m *Market) Get(ticker string) *Series { return m.series[ticker] }

// BenchmarkTicker returns the configured reference index ticker.
func (m *Market) BenchmarkTicker() string { return m.benchmark }

// Benchmark returns the reference index series, or nil if it was not fetched.
func (m *Market) Benchmark() *Series { return m.series[m.benchmark] }

// Tickers returns all known tickers in lexical order.
func (m *Market) Tickers() []string {
	tickers := make([]string, 0, len(m.series))
	for t := range m.series {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
