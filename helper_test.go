package hindsight

import (
	"time"

	"github.com/etnz/hindsight/date"
)

// d parses a date literal, panicking on typos. Tests only.
func d(s string) date.Date { return date.MustParse(s) }

func newRange(from, to string) date.Range { return date.NewRange(d(from), d(to)) }

// weekdayBars builds one bar per weekday starting at (or after) start, one
// per close. Open/high/low/close/adjclose all carry the same value so tests
// can reason about a single number per day.
func weekdayBars(start date.Date, closes ...float64) []Bar {
	out := make([]Bar, 0, len(closes))
	day := start
	for _, c := range closes {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.Add(1)
		}
		out = append(out, Bar{Date: day, Open: c, High: c, Low: c, Close: c, AdjClose: c, Volume: 1000})
		day = day.Add(1)
	}
	return out
}

// flatCloses returns n copies of the same close.
func flatCloses(n int, c float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func seriesOf(ticker string, bars []Bar) *Series {
	return NewSeries(ticker, bars, nil, nil)
}

func marketOf(series ...*Series) *Market {
	m := NewMarket(DefaultBenchmark)
	for _, s := range series {
		m.Add(s)
	}
	return m
}

// trade builds a BUY or SELL with total derived from price and quantity.
func trade(kind Kind, ticker, day string, qty, price float64) Action {
	return Action{
		Date:     d(day),
		Kind:     kind,
		Ticker:   ticker,
		Quantity: qty,
		Price:    price,
		Total:    qty * price,
	}
}

// cash builds a cash-only action (deposit, withdrawal, dividend, interest).
func cash(kind Kind, day string, total float64) Action {
	return Action{Date: d(day), Kind: kind, Total: total}
}
