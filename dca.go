package hindsight

import (
	"sort"

	"github.com/etnz/hindsight/date"
)

// DCA detection thresholds. A sequence needs at least dcaMinBuys purchases,
// each within dcaAmountTolerance of the running median amount. The first gap
// must fall in [dcaFirstGapMin, dcaFirstGapMax] days; later gaps may stretch
// to dcaGapStretch times the median gap so far.
const (
	dcaMinBuys         = 4
	dcaAmountTolerance = 0.5
	dcaFirstGapMin     = 1
	dcaFirstGapMax     = 35
	dcaGapStretch      = 2.5
)

// dcaIntervalLabels maps a median gap range (in days, inclusive) to a
// human-readable cadence.
var dcaIntervalLabels = []struct {
	label  string
	lo, hi float64
}{
	{"daily", 1, 2},
	{"weekly", 5, 9},
	{"biweekly", 12, 16},
	{"monthly", 25, 35},
}

// DCASequence is a run of recurring, similar-sized purchases of one
// instrument, with a comparison against the lump-sum alternative.
type DCASequence struct {
	Ticker           string    `json:"ticker"`
	IntervalType     string    `json:"interval_type"`
	MedianGapDays    float64   `json:"median_gap_days"`
	NumBuys          int       `json:"num_buys"`
	StartDate        date.Date `json:"start_date"`
	EndDate          date.Date `json:"end_date"`
	TotalInvested    float64   `json:"total_invested"`
	AvgAmount        float64   `json:"avg_amount"`
	TotalShares      float64   `json:"total_shares"`
	AvgCost          float64   `json:"avg_cost_trade_currency"`
	PeriodAvgPrice   *float64  `json:"period_avg_price"`
	VsPeriodAvgPct   *float64  `json:"vs_period_avg_pct"`
	ConsistencyScore float64   `json:"consistency_score"`
	DCAReturnPct     float64   `json:"dca_return_pct"`
	LumpSumReturnPct float64   `json:"lump_sum_return_pct"`
	DCAWon           bool      `json:"dca_won"`
	TradeCurrency    string    `json:"trade_currency"`
}

// actionKey identifies an action by ticker and date, the granularity at
// which DCA membership suppresses other per-action findings.
type actionKey struct {
	Ticker string
	Date   date.Date
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

func gapsBetween(seq []Action) []float64 {
	gaps := make([]float64, 0, len(seq)-1)
	for k := 1; k < len(seq); k++ {
		gaps = append(gaps, float64(seq[k].Date.Sub(seq[k-1].Date)))
	}
	return gaps
}

// meanRelDeviation is the average relative distance from the median, as the
// basis of the consistency score. A zero median scores perfect.
func meanRelDeviation(xs []float64, med float64) float64 {
	if med <= 0 || len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		d := x - med
		if d < 0 {
			d = -d
		}
		sum += d / med
	}
	return sum / float64(len(xs))
}

// growSequence extends a candidate sequence starting at buys[i] as far as the
// amount and cadence constraints allow. Greedy, no backtracking.
func growSequence(buys []Action, i int) []Action {
	seq := []Action{buys[i]}
	for j := i + 1; j < len(buys); j++ {
		cand := buys[j]

		amounts := make([]float64, len(seq))
		for k, a := range seq {
			amounts[k] = a.AbsTotal()
		}
		med := median(amounts)
		if med > 0 {
			d := cand.AbsTotal() - med
			if d < 0 {
				d = -d
			}
			if d/med > dcaAmountTolerance {
				break
			}
		}

		gap := cand.Date.Sub(seq[len(seq)-1].Date)
		if len(seq) >= 2 {
			medGap := median(gapsBetween(seq))
			if float64(gap) > medGap*dcaGapStretch {
				break
			}
		} else if gap < dcaFirstGapMin || gap > dcaFirstGapMax {
			break
		}

		seq = append(seq, cand)
	}
	return seq
}

func summarizeSequence(seq []Action, market *Market) DCASequence {
	ticker := seq[0].Ticker
	gaps := gapsBetween(seq)
	medGap := median(gaps)

	intervalType := "irregular"
	for _, it := range dcaIntervalLabels {
		if medGap >= it.lo && medGap <= it.hi {
			intervalType = it.label
			break
		}
	}

	amounts := make([]float64, len(seq))
	var totalInvested, totalShares, tradeCost float64
	for k, a := range seq {
		amounts[k] = a.AbsTotal()
		totalInvested += a.AbsTotal()
		totalShares += a.Quantity
		tradeCost += a.Price * a.Quantity
	}
	medAmt := median(amounts)

	amtConsistency := 100 - meanRelDeviation(amounts, medAmt)*100
	gapConsistency := 100 - meanRelDeviation(gaps, medGap)*100
	amtConsistency = max(amtConsistency, 0)
	gapConsistency = max(gapConsistency, 0)

	var avgCost float64
	if totalShares > 0 {
		avgCost = tradeCost / totalShares
	}

	start, end := seq[0].Date, seq[len(seq)-1].Date
	out := DCASequence{
		Ticker:           ticker,
		IntervalType:     intervalType,
		MedianGapDays:    round1(medGap),
		NumBuys:          len(seq),
		StartDate:        start,
		EndDate:          end,
		TotalInvested:    round2(totalInvested),
		AvgAmount:        round2(medAmt),
		TotalShares:      round(totalShares, 6),
		AvgCost:          round(avgCost, 4),
		ConsistencyScore: round1((amtConsistency + gapConsistency) / 2),
		TradeCurrency:    seq[0].TradeCurrency,
	}

	series := market.Get(ticker)
	if series == nil {
		return out
	}

	var periodSum float64
	var periodN int
	for _, bar := range series.Window(date.NewRange(start, end)) {
		if bar.AdjClose != 0 {
			periodSum += bar.AdjClose
			periodN++
		}
	}
	if periodN > 0 {
		avg := round(periodSum/float64(periodN), 4)
		out.PeriodAvgPrice = &avg
		if avg > 0 {
			vs := round2((avgCost - avg) / avg * 100)
			out.VsPeriodAvgPct = &vs
		}
	}

	var lumpSumPrice float64
	if first, ok := series.Nearest(start, 1); ok {
		lumpSumPrice = first.AdjClose
	}
	if last, ok := series.Nearest(end, 1); ok && last.AdjClose != 0 {
		if avgCost > 0 {
			out.DCAReturnPct = round2((last.AdjClose - avgCost) / avgCost * 100)
		}
		if lumpSumPrice > 0 {
			out.LumpSumReturnPct = round2((last.AdjClose - lumpSumPrice) / lumpSumPrice * 100)
		}
	}
	out.DCAWon = out.DCAReturnPct > out.LumpSumReturnPct
	return out
}

// DetectDCASequences finds runs of recurring purchases per ticker. The scan
// is greedy: after a qualifying sequence the cursor jumps past it, so an
// action belongs to at most one sequence. Returns the sequences sorted by
// total invested, and the set of member actions so callers can suppress
// contradictory findings on them.
func DetectDCASequences(actions []Action, market *Market) ([]DCASequence, map[actionKey]bool) {
	tickerBuys := make(map[string][]Action)
	for _, a := range actions {
		if a.Kind == Buy && a.Ticker != "" {
			tickerBuys[a.Ticker] = append(tickerBuys[a.Ticker], a)
		}
	}
	tickers := make([]string, 0, len(tickerBuys))
	for t := range tickerBuys {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var sequences []DCASequence
	members := make(map[actionKey]bool)

	for _, ticker := range tickers {
		buys := tickerBuys[ticker]
		sort.SliceStable(buys, func(i, j int) bool { return buys[i].Date.Before(buys[j].Date) })
		if len(buys) < dcaMinBuys {
			continue
		}
		for i := 0; i < len(buys)-dcaMinBuys+1; {
			seq := growSequence(buys, i)
			if len(seq) < dcaMinBuys {
				i++
				continue
			}
			sequences = append(sequences, summarizeSequence(seq, market))
			for _, a := range seq {
				members[actionKey{a.Ticker, a.Date}] = true
			}
			i += len(seq)
		}
	}

	sort.SliceStable(sequences, func(i, j int) bool {
		return sequences[i].TotalInvested > sequences[j].TotalInvested
	})
	return sequences, members
}
