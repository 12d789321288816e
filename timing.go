package hindsight

import "math"

// timingHorizon caps how many subsequent trading bars the scorer looks at.
const timingHorizon = 90

// impactWindowDays is the half-width of the symmetric calendar window used
// for the optimal-price comparison.
const impactWindowDays = 45

// TimingDetails carries the context behind a timing score.
type TimingDetails struct {
	MaxAfter  float64         `json:"max_price_after"`
	MinAfter  float64         `json:"min_price_after"`
	Intervals map[int]float64 `json:"price_intervals,omitempty"` // trading days out -> adjusted close
}

// TimingScore rates the timing of a BUY or SELL executed at price, given the
// subsequent bars (strictly after the action, at most timingHorizon of them).
// The score is in [-100, 100]:
//
//	SELL: positive when the price then declined (loss avoided), negative when
//	it rallied (gain missed).
//	BUY: positive when the price then rallied, negative when it declined.
//
// The percentage move is doubled and capped at 100. Returns ok=false when
// there is nothing to score.
func TimingScore(kind Kind, price float64, after []Bar) (score float64, details TimingDetails, ok bool) {
	if len(after) == 0 || price <= 0 {
		return 0, TimingDetails{}, false
	}
	closes := adjCloses(after)
	if len(closes) == 0 {
		return 0, TimingDetails{}, false
	}

	maxAfter, minAfter := closes[0], closes[0]
	for _, c := range closes {
		maxAfter = math.Max(maxAfter, c)
		minAfter = math.Min(minAfter, c)
	}

	intervals := make(map[int]float64)
	for _, days := range []int{1, 5, 10, 30, 60, 90} {
		if len(closes) > days {
			intervals[days] = closes[days-1]
		} else {
			intervals[days] = closes[len(closes)-1]
		}
	}

	switch kind {
	case Sell:
		if maxAfter > price {
			// Price went up after selling, bad timing.
			pctMissed := (maxAfter - price) / price * 100
			score = -math.Min(pctMissed*2, 100)
		} else {
			// Price went down after selling, good timing.
			pctAvoided := (price - minAfter) / price * 100
			score = math.Min(pctAvoided*2, 100)
		}
	case Buy:
		if minAfter < price {
			pctLoss := (price - minAfter) / price * 100
			score = -math.Min(pctLoss*2, 100)
		} else {
			pctGain := (maxAfter - price) / price * 100
			score = math.Min(pctGain*2, 100)
		}
	default:
		return 0, TimingDetails{}, false
	}

	details = TimingDetails{MaxAfter: maxAfter, MinAfter: minAfter, Intervals: intervals}
	return round1(score), details, true
}

// DollarImpact estimates what the trade's timing cost or earned compared to
// the optimal price achievable inside the surrounding window (maximum for a
// sell, minimum for a buy). The percentage deviation is applied to the
// trade's reporting-currency total so results are comparable across
// instruments and currencies. Returns ok=false when nothing can be computed.
func DollarImpact(kind Kind, price, total float64, window []Bar) (impact, optimal float64, ok bool) {
	if len(window) == 0 || price <= 0 || total <= 0 {
		return 0, 0, false
	}
	closes := adjCloses(window)
	if len(closes) == 0 {
		return 0, 0, false
	}

	switch kind {
	case Sell:
		optimal = closes[0]
		for _, c := range closes {
			optimal = math.Max(optimal, c)
		}
		pctDiff := (price - optimal) / price // negative: sold below optimal
		return round2(pctDiff * total), optimal, true
	case Buy:
		optimal = closes[0]
		for _, c := range closes {
			optimal = math.Min(optimal, c)
		}
		pctDiff := (optimal - price) / price // negative: bought above optimal
		return round2(pctDiff * total), optimal, true
	}
	return 0, 0, false
}

// adjCloses extracts the non-zero adjusted closes from a bar slice.
func adjCloses(bars []Bar) []float64 {
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.AdjClose != 0 {
			closes = append(closes, b.AdjClose)
		}
	}
	return closes
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
