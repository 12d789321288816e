package hindsight

import (
	"math"
	"sort"

	"github.com/etnz/hindsight/date"
)

// Risk metric requirements and conventions. The history must span at least
// minRiskCalendarDays with at least minRiskTradingDays priced trading days.
// Daily returns annualize over tradingDaysPerYear; Sharpe and Sortino use
// riskFreeRate.
const (
	minRiskCalendarDays = 60
	minRiskTradingDays  = 30
	tradingDaysPerYear  = 252
	riskFreeRate        = 0.045
)

// RiskMetrics are the risk-adjusted return statistics of the daily portfolio
// value series.
type RiskMetrics struct {
	AnnualizedReturnPct     float64    `json:"annualized_return_pct"`
	AnnualizedVolatilityPct float64    `json:"annualized_volatility_pct"`
	SharpeRatio             float64    `json:"sharpe_ratio"`
	SortinoRatio            float64    `json:"sortino_ratio"`
	RiskFreeRatePct         float64    `json:"risk_free_rate_pct"`
	MaxDrawdownPct          float64    `json:"max_drawdown_pct"`
	MaxDrawdownStart        date.Date  `json:"max_drawdown_start_date"`
	MaxDrawdownEnd          date.Date  `json:"max_drawdown_end_date"`
	MaxDrawdownRecovery     *date.Date `json:"max_drawdown_recovery_date"`
	MaxDrawdownDays         int        `json:"max_drawdown_duration_days"`
	TotalTradingDays        int        `json:"total_trading_days"`
	PositiveDays            int        `json:"positive_days"`
	NegativeDays            int        `json:"negative_days"`
	FlatDays                int        `json:"flat_days"`
	WinRatePct              float64    `json:"win_rate_pct"`
	BestDayReturnPct        float64    `json:"best_day_return_pct"`
	BestDayDate             date.Date  `json:"best_day_date"`
	WorstDayReturnPct       float64    `json:"worst_day_return_pct"`
	WorstDayDate            date.Date  `json:"worst_day_date"`

	// The underlying series are kept for charting.
	TradingDays []date.Date `json:"-"`
	DailyValues []float64   `json:"-"`
}

// replayPosition is the simplified share count the risk replay tracks. It
// ignores cost basis; only shares and the conversion rate matter for daily
// valuation.
type replayPosition struct {
	shares float64
	rate   float64
}

// tradingDays returns the union of all price dates across the market,
// restricted to the period. Merging the close histories keeps the walk in
// chronological order without materializing a set.
func tradingDays(market *Market, period date.Range) []date.Date {
	histories := make([]*date.History[float64], 0, len(market.Tickers()))
	for _, ticker := range market.Tickers() {
		histories = append(histories, market.Get(ticker).Closes())
	}
	var days []date.Date
	for day := range date.Iterate(histories...) {
		if period.Contains(day) {
			days = append(days, day)
		}
	}
	return days
}

// applyToReplay mutates the replay state with one action. Buys add shares
// and refresh the conversion rate; sells subtract, clamped at zero; deposits
// and withdrawals flow into the day's cash flow.
func applyToReplay(positions map[string]*replayPosition, a Action) (cashFlow float64) {
	switch a.Kind {
	case Buy:
		if a.Ticker == "" {
			return 0
		}
		pos := positions[a.Ticker]
		if pos == nil {
			pos = &replayPosition{rate: a.Rate()}
			positions[a.Ticker] = pos
		}
		pos.shares += a.Quantity
		if a.ExchangeRate != 0 {
			pos.rate = a.ExchangeRate
		}
	case Sell:
		if pos := positions[a.Ticker]; pos != nil {
			pos.shares = max(0, pos.shares-a.Quantity)
		}
	case Deposit:
		return a.AbsTotal()
	case Withdrawal:
		return -a.AbsTotal()
	}
	return 0
}

// ComputeRiskMetrics replays the portfolio day by day over every trading day
// in the activity period and derives volatility, Sharpe, Sortino, max
// drawdown and daily statistics from the resulting value series. Returns
// false when the history is too short to be meaningful.
func ComputeRiskMetrics(actions []Action, market *Market) (RiskMetrics, bool) {
	period, ok := activityPeriod(actions)
	if !ok || period.Days() < minRiskCalendarDays {
		return RiskMetrics{}, false
	}

	days := tradingDays(market, period)
	if len(days) < minRiskTradingDays {
		return RiskMetrics{}, false
	}

	sorted := make([]Action, len(actions))
	copy(sorted, actions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	positions := make(map[string]*replayPosition)
	cursor := 0
	for cursor < len(sorted) && sorted[cursor].Date.Before(days[0]) {
		applyToReplay(positions, sorted[cursor])
		cursor++
	}

	lastKnown := make(map[string]float64)
	values := make([]float64, 0, len(days))
	cashFlows := make([]float64, 0, len(days))

	for _, day := range days {
		dayCF := 0.0
		for cursor < len(sorted) && !sorted[cursor].Date.After(day) {
			dayCF += applyToReplay(positions, sorted[cursor])
			cursor++
		}

		value := 0.0
		for ticker, pos := range positions {
			if pos.shares < epsilon {
				continue
			}
			series := market.Get(ticker)
			if series != nil {
				if bar, ok := series.At(day); ok && bar.AdjClose != 0 {
					rate := pos.rate
					if rate == 0 {
						rate = 1
					}
					lastKnown[ticker] = bar.AdjClose / rate
				}
			}
			value += lastKnown[ticker] * pos.shares
		}
		values = append(values, value)
		cashFlows = append(cashFlows, dayCF)
	}
	if len(values) < minRiskTradingDays {
		return RiskMetrics{}, false
	}

	// Daily returns adjusted for external cash flows.
	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev, curr, cf := values[i-1], values[i], cashFlows[i]
		denom := prev + cf
		switch {
		case denom > 0:
			returns[i-1] = (curr - prev - cf) / denom
		case prev > 0:
			returns[i-1] = (curr - prev - cf) / prev
		default:
			returns[i-1] = 0
		}
	}
	n := len(returns)
	if n == 0 {
		return RiskMetrics{}, false
	}

	cumulative := 1.0
	var sum float64
	for _, r := range returns {
		cumulative *= 1 + r
		sum += r
	}
	years := float64(n) / tradingDaysPerYear
	annualizedReturn := math.Pow(cumulative, 1/years) - 1

	mean := sum / float64(n)
	var variance, downsideSq float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
		if r < 0 {
			downsideSq += r * r
		}
	}
	annualizedVol := math.Sqrt(variance/float64(n)) * math.Sqrt(tradingDaysPerYear)
	downsideDev := math.Sqrt(downsideSq/float64(n)) * math.Sqrt(tradingDaysPerYear)

	var sharpe, sortino float64
	if annualizedVol > 0 {
		sharpe = (annualizedReturn - riskFreeRate) / annualizedVol
	}
	if downsideDev > 0 {
		sortino = (annualizedReturn - riskFreeRate) / downsideDev
	}

	// Max drawdown against the running peak of the value series.
	maxDD := 0.0
	troughIdx := 0
	runningMax := values[0]
	for i, v := range values {
		if v > runningMax {
			runningMax = v
		}
		dd := 0.0
		if runningMax > 0 {
			dd = (v - runningMax) / runningMax
		}
		if dd < maxDD {
			maxDD = dd
			troughIdx = i
		}
	}
	peakIdx := 0
	for i := 1; i <= troughIdx; i++ {
		if values[i] > values[peakIdx] {
			peakIdx = i
		}
	}
	var recovery *date.Date
	for i := troughIdx; i < len(values); i++ {
		if values[i] >= values[peakIdx] {
			d := days[i]
			recovery = &d
			break
		}
	}

	positive, negative, flat := 0, 0, 0
	bestIdx, worstIdx := 0, 0
	for i, r := range returns {
		switch {
		case r > 0:
			positive++
		case r < 0:
			negative++
		default:
			flat++
		}
		if r > returns[bestIdx] {
			bestIdx = i
		}
		if r < returns[worstIdx] {
			worstIdx = i
		}
	}

	return RiskMetrics{
		AnnualizedReturnPct:     round2(annualizedReturn * 100),
		AnnualizedVolatilityPct: round2(annualizedVol * 100),
		SharpeRatio:             round2(sharpe),
		SortinoRatio:            round2(sortino),
		RiskFreeRatePct:         riskFreeRate * 100,
		MaxDrawdownPct:          round2(maxDD * 100),
		MaxDrawdownStart:        days[peakIdx],
		MaxDrawdownEnd:          days[troughIdx],
		MaxDrawdownRecovery:     recovery,
		MaxDrawdownDays:         days[troughIdx].Sub(days[peakIdx]),
		TotalTradingDays:        n,
		PositiveDays:            positive,
		NegativeDays:            negative,
		FlatDays:                flat,
		WinRatePct:              round1(float64(positive) / float64(n) * 100),
		BestDayReturnPct:        round2(returns[bestIdx] * 100),
		BestDayDate:             days[bestIdx+1],
		WorstDayReturnPct:       round2(returns[worstIdx] * 100),
		WorstDayDate:            days[worstIdx+1],
		TradingDays:             days,
		DailyValues:             values,
	}, true
}
