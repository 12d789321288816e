package hindsight

import (
	"math"

	"github.com/etnz/hindsight/date"
)

// minBenchmarkDays is the shortest activity period worth comparing against
// the index.
const minBenchmarkDays = 30

// MonthlyPoint is one month of the benchmark's cumulative return since the
// start of the comparison period.
type MonthlyPoint struct {
	Month         string  `json:"month"`
	CumulativePct float64 `json:"benchmark_cumulative_pct"`
}

// Benchmark compares the portfolio's time-weighted return against buying and
// holding the reference index over the same period.
type Benchmark struct {
	Ticker           string         `json:"benchmark_ticker"`
	PeriodStart      date.Date      `json:"period_start"`
	PeriodEnd        date.Date      `json:"period_end"`
	PeriodDays       int            `json:"period_days"`
	PeriodYears      float64        `json:"period_years"`
	PortfolioTWRPct  float64        `json:"portfolio_twr_pct"`
	BuyHoldReturnPct float64        `json:"benchmark_buy_hold_return_pct"`
	AlphaPct         float64        `json:"alpha_pct"`
	PortfolioCAGRPct float64        `json:"portfolio_cagr_pct"`
	BenchmarkCAGRPct float64        `json:"benchmark_cagr_pct"`
	StartPrice       float64        `json:"benchmark_start_price"`
	EndPrice         float64        `json:"benchmark_end_price"`
	Monthly          []MonthlyPoint `json:"monthly_comparison"`
}

// activityPeriod is the span from the first to the last dated action.
func activityPeriod(actions []Action) (date.Range, bool) {
	var first, last date.Date
	for _, a := range actions {
		if a.Date.IsZero() {
			continue
		}
		if first.IsZero() || a.Date.Before(first) {
			first = a.Date
		}
		if a.Date.After(last) {
			last = a.Date
		}
	}
	if first.IsZero() {
		return date.Range{}, false
	}
	return date.NewRange(first, last), true
}

// CompareBenchmark computes the index buy-and-hold return over the
// portfolio's activity period, the portfolio's time-weighted return via the
// Modified Dietz approximation, the resulting alpha, both CAGRs, and a
// monthly cumulative series capped at the last 12 months. Returns false when
// the period is under 30 days or the index has no usable prices.
func CompareBenchmark(tracker *Tracker, actions []Action, market *Market) (Benchmark, bool) {
	period, ok := activityPeriod(actions)
	if !ok || period.Days() < minBenchmarkDays {
		return Benchmark{}, false
	}

	index := market.Benchmark()
	if index == nil || index.Len() == 0 {
		return Benchmark{}, false
	}
	startBar, ok := index.Nearest(period.From, 1)
	if !ok {
		return Benchmark{}, false
	}
	endBar, ok := index.Nearest(period.To, -1)
	if !ok || startBar.AdjClose <= 0 {
		return Benchmark{}, false
	}

	indexReturn := (endBar.AdjClose - startBar.AdjClose) / startBar.AdjClose * 100

	summary := tracker.Summarize(market)
	twr := summary.TotalReturnPct

	years := float64(period.Days()) / 365.25
	var portfolioCAGR, indexCAGR float64
	if years > 0 && summary.NetInvested > 0 {
		// End value includes everything taken back out of the portfolio.
		totalValue := summary.CurrentValue + tracker.Withdrawals() + tracker.Dividends() + tracker.Interest()
		if tracker.Deposits() > 0 && totalValue > 0 {
			portfolioCAGR = (math.Pow(totalValue/tracker.Deposits(), 1/years) - 1) * 100
		}
		indexCAGR = (math.Pow(endBar.AdjClose/startBar.AdjClose, 1/years) - 1) * 100
	}

	var monthly []MonthlyPoint
	for month := period.From.StartOfMonth(); !month.After(period.To); month = month.EndOfMonth().Add(1) {
		monthEnd := month.EndOfMonth()
		if monthEnd.After(period.To) {
			monthEnd = period.To
		}
		if bar, ok := index.Nearest(monthEnd, -1); ok {
			monthly = append(monthly, MonthlyPoint{
				Month:         month.Format("2006-01"),
				CumulativePct: round2((bar.AdjClose - startBar.AdjClose) / startBar.AdjClose * 100),
			})
		}
	}
	if len(monthly) > 12 {
		monthly = monthly[len(monthly)-12:]
	}

	return Benchmark{
		Ticker:           market.BenchmarkTicker(),
		PeriodStart:      period.From,
		PeriodEnd:        period.To,
		PeriodDays:       period.Days(),
		PeriodYears:      round2(years),
		PortfolioTWRPct:  round2(twr),
		BuyHoldReturnPct: round2(indexReturn),
		AlphaPct:         round2(twr - indexReturn),
		PortfolioCAGRPct: round2(portfolioCAGR),
		BenchmarkCAGRPct: round2(indexCAGR),
		StartPrice:       round2(startBar.AdjClose),
		EndPrice:         round2(endBar.AdjClose),
		Monthly:          monthly,
	}, true
}
