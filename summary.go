package hindsight

import (
	"fmt"
	"sort"

	"github.com/etnz/hindsight/date"
)

// ScoredAction is one line of the best/worst leaderboards.
type ScoredAction struct {
	Ticker string    `json:"ticker"`
	Date   date.Date `json:"date"`
	Kind   Kind      `json:"action"`
	Score  float64   `json:"score"`
	Impact float64   `json:"impact"`
}

// PatternCounts tallies how many times each behavioral pattern fired.
type PatternCounts struct {
	PanicSells        int     `json:"panic_sells"`
	FOMOBuys          int     `json:"fomo_buys"`
	MissedDividends   int     `json:"missed_dividends"`
	TotalMissedIncome float64 `json:"total_missed_dividend_income"`
	RoundTripsTotal   int     `json:"round_trips_total"`
	RoundTripsLosing  int     `json:"round_trips_losing"`
	RoundTripsWinning int     `json:"round_trips_winning"`
	WashSales         int     `json:"wash_sale_candidates"`
	Overtrading       int     `json:"overtrading_tickers"`
	DCAActions        int     `json:"dca_actions"`
}

// ScoreSummary is the executive summary of a run.
type ScoreSummary struct {
	OverallScore float64        `json:"overall_timing_score"`
	TotalImpact  float64        `json:"total_dollar_impact"`
	TotalScored  int            `json:"total_actions_scored"`
	Best3        []ScoredAction `json:"best_3_actions"`
	Worst3       []ScoredAction `json:"worst_3_actions"`
	Patterns     PatternCounts  `json:"patterns"`
}

// SummarizeScores builds the executive summary from the per-action analyses
// and the cross-action detections. Returns nil when no action was scorable.
func SummarizeScores(analyzed []AnalyzedAction, trips []RoundTrip, washes []WashSale, flags []OvertradingFlag) *ScoreSummary {
	var scored []AnalyzedAction
	for _, a := range analyzed {
		if a.Analysis != nil && a.Analysis.Timing != nil {
			scored = append(scored, a)
		}
	}
	if len(scored) == 0 {
		return nil
	}

	var scoreSum, impactSum float64
	for _, a := range scored {
		scoreSum += a.Analysis.Timing.Score
		impactSum += a.Analysis.Timing.DollarImpact
	}

	byScore := make([]AnalyzedAction, len(scored))
	copy(byScore, scored)
	sort.SliceStable(byScore, func(i, j int) bool {
		return byScore[i].Analysis.Timing.Score < byScore[j].Analysis.Timing.Score
	})
	leaderboard := func(actions []AnalyzedAction) []ScoredAction {
		out := make([]ScoredAction, 0, len(actions))
		for _, a := range actions {
			out = append(out, ScoredAction{
				Ticker: a.Action.Ticker,
				Date:   a.Action.Date,
				Kind:   a.Action.Kind,
				Score:  a.Analysis.Timing.Score,
				Impact: a.Analysis.Timing.DollarImpact,
			})
		}
		return out
	}
	worst3 := leaderboard(byScore[:min(3, len(byScore))])
	best3 := leaderboard(byScore[max(0, len(byScore)-3):])

	counts := PatternCounts{
		RoundTripsTotal: len(trips),
		WashSales:       len(washes),
		Overtrading:     len(flags),
	}
	for _, a := range analyzed {
		if a.Analysis == nil {
			continue
		}
		if a.Analysis.PanicSell != nil {
			counts.PanicSells++
		}
		if a.Analysis.FOMOBuy != nil {
			counts.FOMOBuys++
		}
		if dp := a.Analysis.DividendProximity; dp != nil {
			counts.MissedDividends++
			counts.TotalMissedIncome += dp.MissedAmount
		}
		if a.Analysis.IsDCA {
			counts.DCAActions++
		}
	}
	counts.TotalMissedIncome = round2(counts.TotalMissedIncome)
	for _, t := range trips {
		if t.ReturnPct < 0 {
			counts.RoundTripsLosing++
		} else {
			counts.RoundTripsWinning++
		}
	}

	return &ScoreSummary{
		OverallScore: round1(scoreSum / float64(len(scored))),
		TotalImpact:  round2(impactSum),
		TotalScored:  len(scored),
		Best3:        best3,
		Worst3:       worst3,
		Patterns:     counts,
	}
}

// Recommendation severities.
const (
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityPositive = "positive"
)

// Recommendation is one actionable insight derived from the detected
// patterns: a concrete example from the user's own history plus advice.
type Recommendation struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Example  string `json:"example"`
	Advice   string `json:"advice"`
}

// Recommend turns the detected patterns into recommendations. Severity
// escalates with repetition or monetary size; a single positive entry
// reinforces the best-timed action when one scored above 40.
func Recommend(analyzed []AnalyzedAction, trips []RoundTrip) []Recommendation {
	var recs []Recommendation

	var missed []AnalyzedAction
	for _, a := range analyzed {
		if a.Analysis != nil && a.Analysis.DividendProximity != nil {
			missed = append(missed, a)
		}
	}
	for _, a := range missed[:min(3, len(missed))] {
		dp := a.Analysis.DividendProximity
		severity := SeverityMedium
		if dp.MissedAmount > 50 {
			severity = SeverityHigh
		}
		recs = append(recs, Recommendation{
			Category: "dividend_timing",
			Severity: severity,
			Example: fmt.Sprintf("You sold %s on %s, just %d days before the ex-dividend date (%s). "+
				"This cost you approximately %.2f in missed dividends.",
				a.Action.Ticker, a.Action.Date, dp.DaysBefore, dp.ExDividendDate, dp.MissedAmount),
			Advice: "Check ex-dividend calendars before placing sell orders. " +
				"If you need to sell, consider waiting until after the ex-date.",
		})
	}

	var panics []AnalyzedAction
	for _, a := range analyzed {
		if a.Analysis != nil && a.Analysis.PanicSell != nil {
			panics = append(panics, a)
		}
	}
	if len(panics) > 0 {
		severity := SeverityMedium
		if len(panics) >= 3 {
			severity = SeverityHigh
		}
		first := panics[0]
		recs = append(recs, Recommendation{
			Category: "panic_selling",
			Severity: severity,
			Example: fmt.Sprintf("You panic-sold %d time(s). For instance, %s on %s after a %.1f%% drop in 5 days.",
				len(panics), first.Action.Ticker, first.Action.Date, first.Analysis.PanicSell.Decline5d),
			Advice: "Implement a 48-hour cooling-off rule: when a stock drops more than 3% in a day, " +
				"wait 48 hours before making any sell decision. Selling into sharp drawdowns " +
				"locks in losses that would often have recovered.",
		})
	}

	var fomos []AnalyzedAction
	for _, a := range analyzed {
		if a.Analysis != nil && a.Analysis.FOMOBuy != nil {
			fomos = append(fomos, a)
		}
	}
	if len(fomos) > 0 {
		severity := SeverityMedium
		if len(fomos) >= 3 {
			severity = SeverityHigh
		}
		first := fomos[0]
		recs = append(recs, Recommendation{
			Category: "fomo_buying",
			Severity: severity,
			Example: fmt.Sprintf("You chased momentum %d time(s). Example: bought %s on %s after a %.1f%% run-up in 10 days.",
				len(fomos), first.Action.Ticker, first.Action.Date, first.Analysis.FOMOBuy.Runup10d),
			Advice: "Use limit orders instead of market orders after run-ups. Set the limit 3-5% below " +
				"the current price, and consider averaging into positions over 2-4 weeks.",
		})
	}

	var losing []RoundTrip
	for _, t := range trips {
		if t.ReturnPct < 0 {
			losing = append(losing, t)
		}
	}
	if len(losing) > 0 {
		worst := losing[0]
		var totalLoss float64
		for _, t := range losing {
			totalLoss += t.DollarReturn
			if t.DollarReturn < worst.DollarReturn {
				worst = t
			}
		}
		severity := SeverityMedium
		if totalLoss < -1000 || totalLoss > 1000 {
			severity = SeverityHigh
		}
		recs = append(recs, Recommendation{
			Category: "round_trip_losses",
			Severity: severity,
			Example: fmt.Sprintf("You had %d losing round-trips. Worst: %s bought %s at %.2f, sold %s at %.2f (%.1f%%, %.2f).",
				len(losing), worst.Ticker, worst.BuyDate, worst.BuyPrice, worst.SellDate, worst.SellPrice,
				worst.ReturnPct, worst.DollarReturn),
			Advice: "Before selling at a loss, ask whether the thesis changed or only the price. " +
				"Set stop-losses at purchase time, not reactively.",
		})
	}

	var best *AnalyzedAction
	for i, a := range analyzed {
		if a.Analysis == nil || a.Analysis.Timing == nil || a.Analysis.Timing.Score <= 40 {
			continue
		}
		if best == nil || a.Analysis.Timing.Score > best.Analysis.Timing.Score {
			best = &analyzed[i]
		}
	}
	if best != nil {
		recs = append(recs, Recommendation{
			Category: "positive_reinforcement",
			Severity: SeverityPositive,
			Example: fmt.Sprintf("Great timing on %s (%s on %s): timing score of %g.",
				best.Action.Ticker, best.Action.Kind, best.Action.Date, best.Analysis.Timing.Score),
			Advice: "Keep doing what worked here. This shows good discipline and patience.",
		})
	}

	return recs
}
