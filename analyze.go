package hindsight

import (
	"time"

	"github.com/etnz/hindsight/date"
)

// DefaultCurrency is the reporting currency assumed when none is configured.
const DefaultCurrency = "GBP"

// Reasons an action carries no analysis.
const (
	reasonNoTicker     = "no_ticker"
	reasonNoMarketData = "no_market_data"
	reasonNonTrade     = "non_trade_action"
)

// TimingResult bundles the timing score with its dollar impact. It is
// present on every analyzed trade, zero-valued when the market data could
// not support a score.
type TimingResult struct {
	Score        float64       `json:"timing_score"`
	Details      TimingDetails `json:"timing_details"`
	DollarImpact float64       `json:"dollar_impact"`
	OptimalPrice float64       `json:"optimal_price,omitempty"`
}

// PriceContext samples the adjusted close at fixed horizons after a trade.
// Horizons beyond the available data clamp to the last known close.
type PriceContext struct {
	After7d  float64 `json:"price_7d_after"`
	After30d float64 `json:"price_30d_after"`
	After90d float64 `json:"price_90d_after"`
	Max90d   float64 `json:"max_price_90d"`
	Min90d   float64 `json:"min_price_90d"`
}

// DividendProximity flags a sell that forfeited an imminent dividend.
type DividendProximity struct {
	ExDividendDate date.Date `json:"ex_dividend_date"`
	DaysBefore     int       `json:"days_before_ex_date"`
	PerShare       float64   `json:"dividend_per_share"`
	MissedAmount   float64   `json:"missed_amount"`
	Currency       string    `json:"missed_amount_currency"`
}

// ActionAnalysis is everything the engine derives about one action. Nil
// detector fields mean the pattern did not fire.
type ActionAnalysis struct {
	MarketPrice float64       `json:"market_price_at_date,omitempty"`
	MarketDate  date.Date     `json:"market_date,omitzero"`
	Timing      *TimingResult `json:"timing,omitempty"`
	Prices      *PriceContext `json:"prices,omitempty"`

	DividendProximity *DividendProximity `json:"dividend_proximity,omitempty"`
	PanicSell         *PanicSell         `json:"panic_sell,omitempty"`
	WellTimedSell     *WellTimedSell     `json:"well_timed_sell,omitempty"`
	WorstTimedSell    *WorstTimedSell    `json:"worst_timed_sell,omitempty"`
	FOMOBuy           *FOMOBuy           `json:"fomo_buy,omitempty"`
	WellTimedBuy      *WellTimedBuy      `json:"well_timed_buy,omitempty"`
	WorstTimedBuy     *WorstTimedBuy     `json:"worst_timed_buy,omitempty"`

	SellContext *SellRecord `json:"sell_context,omitempty"`
	IsDCA       bool        `json:"is_dca,omitempty"`
}

// AnalyzedAction pairs an action with its analysis, or with the reason there
// is none.
type AnalyzedAction struct {
	Action   Action          `json:"action"`
	Analysis *ActionAnalysis `json:"analysis"`
	Reason   string          `json:"reason,omitempty"`
}

// dividendExWindow is how far ahead of a sell an ex-dividend date counts as
// missed, in calendar days.
const dividendExWindow = 30

// gbxPerGBP converts penny sterling when no explicit rate was recorded.
const gbxPerGBP = 100.0

// dividendProximity finds the nearest ex-dividend date strictly within the
// 30 days after a sell and values the forfeited payout in the reporting
// currency.
func dividendProximity(a Action, dividends []DividendEvent, currency string) *DividendProximity {
	var nearest *DividendEvent
	nearestDays := 0
	for i, div := range dividends {
		days := div.Date.Sub(a.Date)
		if days > 0 && days <= dividendExWindow {
			if nearest == nil || days < nearestDays {
				nearest = &dividends[i]
				nearestDays = days
			}
		}
	}
	if nearest == nil {
		return nil
	}

	// The per-share amount is in the trade currency. The recorded rate
	// normally covers the conversion; a GBX amount with no recorded rate
	// still needs the fixed penny divisor.
	rate := a.Rate()
	if a.TradeCurrency == "GBX" && rate == 1 {
		rate = gbxPerGBP
	}
	return &DividendProximity{
		ExDividendDate: nearest.Date,
		DaysBefore:     nearestDays,
		PerShare:       nearest.Amount,
		MissedAmount:   round2(nearest.Amount * a.Quantity / rate),
		Currency:       currency,
	}
}

// analyzeAction runs every per-action check against the market data. isDCA
// suppresses the impulsive-buy detectors: a disciplined recurring purchase
// is not FOMO however the chart moved.
func analyzeAction(a Action, market *Market, currency string, isDCA bool) AnalyzedAction {
	if a.Ticker == "" {
		return AnalyzedAction{Action: a, Reason: reasonNoTicker}
	}
	series := market.Get(a.Ticker)
	if series == nil || series.Len() == 0 {
		return AnalyzedAction{Action: a, Reason: reasonNoMarketData}
	}

	analysis := &ActionAnalysis{}
	price := a.Price
	if bar, ok := series.Nearest(a.Date, 1); ok {
		analysis.MarketPrice = bar.AdjClose
		analysis.MarketDate = bar.Date
		if price <= 0 {
			price = bar.AdjClose
		}
	}

	if a.Kind.IsTrade() {
		after := series.After(a.Date, timingHorizon)

		timing := &TimingResult{}
		if score, details, ok := TimingScore(a.Kind, price, after); ok {
			timing.Score = score
			timing.Details = details
		}
		total := a.Total
		if total == 0 {
			total = a.Price * a.Quantity
		}
		window := series.Window(date.Around(a.Date, impactWindowDays, impactWindowDays))
		if impact, optimal, ok := DollarImpact(a.Kind, price, total, window); ok {
			timing.DollarImpact = impact
			timing.OptimalPrice = optimal
		}
		analysis.Timing = timing

		if closes := adjCloses(after); len(closes) > 0 {
			analysis.Prices = &PriceContext{
				After7d:  closes[min(4, len(closes)-1)],
				After30d: closes[min(21, len(closes)-1)],
				After90d: closes[len(closes)-1],
				Max90d:   maxFloat(closes),
				Min90d:   minFloat(closes),
			}
		}
	}

	switch a.Kind {
	case Sell:
		analysis.DividendProximity = dividendProximity(a, series.Dividends(), currency)
		analysis.PanicSell = DetectPanicSell(a, series)
		analysis.WellTimedSell = DetectWellTimedSell(a, series)
		analysis.WorstTimedSell = DetectWorstTimedSell(a, series)
	case Buy:
		if !isDCA {
			analysis.FOMOBuy = DetectFOMOBuy(a, series)
			analysis.WorstTimedBuy = DetectWorstTimedBuy(a, series)
		}
		analysis.WellTimedBuy = DetectWellTimedBuy(a, series)
	}
	analysis.IsDCA = isDCA

	return AnalyzedAction{Action: a, Analysis: analysis}
}

func maxFloat(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs {
		m = max(m, x)
	}
	return m
}

func minFloat(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs {
		m = min(m, x)
	}
	return m
}

// Analysis is the full output of a run.
type Analysis struct {
	AnalysisDate    string            `json:"analysis_date"`
	Portfolio       Summary           `json:"portfolio"`
	Summary         *ScoreSummary     `json:"summary"`
	Actions         []AnalyzedAction  `json:"analyzed_actions"`
	RoundTrips      []RoundTrip       `json:"round_trips"`
	WashSales       []WashSale        `json:"wash_sales"`
	Overtrading     []OvertradingFlag `json:"overtrading"`
	Recommendations []Recommendation  `json:"recommendations"`
	DCASequences    []DCASequence     `json:"dca_sequences"`
	Benchmark       *Benchmark        `json:"benchmark"`
	Risk            *RiskMetrics      `json:"risk_metrics"`

	RenamedActions    int    `json:"-"`
	SplitAdjusted     int    `json:"-"`
	ReportingCurrency string `json:"-"`
}

// Analyze runs the whole pipeline over actions sorted by date ascending.
// Normalization rewrites the action records in place before anything reads
// them; everything after that is a pure function of the normalized inputs.
func Analyze(actions []Action, market *Market, currency string) *Analysis {
	if currency == "" {
		currency = DefaultCurrency
	}

	renamed := RenameMultiExchange(actions)
	adjusted := ApplySplitAdjustments(actions, market)

	tracker := NewTracker()
	for _, a := range actions {
		tracker.Process(a)
	}

	sequences, dcaKeys := DetectDCASequences(actions, market)

	var benchmark *Benchmark
	if b, ok := CompareBenchmark(tracker, actions, market); ok {
		benchmark = &b
	}
	var risk *RiskMetrics
	if r, ok := ComputeRiskMetrics(actions, market); ok {
		risk = &r
	}

	analyzed := make([]AnalyzedAction, 0, len(actions))
	for _, a := range actions {
		switch a.Kind {
		case Buy, Sell, Dividend:
			result := analyzeAction(a, market, currency, dcaKeys[actionKey{a.Ticker, a.Date}])
			if a.Kind == Sell && result.Analysis != nil {
				if sd, ok := tracker.SellRecordAt(a.Ticker, a.Date); ok {
					result.Analysis.SellContext = &sd
				}
			}
			analyzed = append(analyzed, result)
		default:
			analyzed = append(analyzed, AnalyzedAction{Action: a, Reason: reasonNonTrade})
		}
	}

	trades := make([]Action, 0, len(actions))
	for _, a := range actions {
		if a.Kind.IsTrade() {
			trades = append(trades, a)
		}
	}
	roundTrips := DetectRoundTrips(trades)
	washSales := DetectWashSales(trades)
	overtrading := DetectOvertrading(trades)

	summary := SummarizeScores(analyzed, roundTrips, washSales, overtrading)
	recommendations := Recommend(analyzed, roundTrips)

	return &Analysis{
		AnalysisDate:      time.Now().Format("2006-01-02 15:04:05"),
		Portfolio:         tracker.Summarize(market),
		Summary:           summary,
		Actions:           analyzed,
		RoundTrips:        roundTrips,
		WashSales:         washSales,
		Overtrading:       overtrading,
		Recommendations:   recommendations,
		DCASequences:      sequences,
		Benchmark:         benchmark,
		Risk:              risk,
		RenamedActions:    renamed,
		SplitAdjusted:     adjusted,
		ReportingCurrency: currency,
	}
}
