package hindsight

import (
	"github.com/etnz/hindsight/date"
)

// Detection thresholds. Percentages are in whole points.
const (
	panicDeclineThreshold = -5  // 5-day decline that qualifies a panic sell
	fomoRunupThreshold    = 10  // 10-day run-up that qualifies a FOMO buy
	wellTimedSellDecline  = -5  // post-sale decline that makes a sell well timed
	worstTimedSellRally   = 10  // post-sale rally that makes a sell worst timed
	wellTimedBuyGain      = 10  // post-buy gain that makes a buy well timed
	worstTimedBuyDrop     = -10 // post-buy drop that makes a buy worst timed

	// minBarsAfter is the minimum number of subsequent trading bars a
	// well/worst-timed detection needs; fewer silently suppresses the flag.
	minBarsAfter = 5
)

// TrajectoryPoint samples the price some time after an action.
type TrajectoryPoint struct {
	Price float64   `json:"price"`
	Pct   float64   `json:"pct_vs_action"`
	Date  date.Date `json:"date"`
}

// Trajectory holds samples at one week, one month and three months after an
// action (trading bars 4, 21 and 63), keyed by label. Marks beyond the
// available data are absent.
type Trajectory map[string]TrajectoryPoint

var trajectoryMarks = []struct {
	label string
	index int
}{
	{"1 week", 4},
	{"1 month", 21},
	{"3 months", 63},
}

// sampleTrajectory builds the trajectory of bars relative to a reference
// price.
func sampleTrajectory(after []Bar, ref float64) Trajectory {
	traj := make(Trajectory)
	for _, mark := range trajectoryMarks {
		if mark.index >= len(after) {
			continue
		}
		bar := after[mark.index]
		pct := 0.0
		if ref > 0 {
			pct = round2((bar.AdjClose - ref) / ref * 100)
		}
		traj[mark.label] = TrajectoryPoint{Price: round2(bar.AdjClose), Pct: pct, Date: bar.Date}
	}
	return traj
}

// precedingMove computes the percentage move over the bars immediately
// preceding the action day: the window reaches back `lookback` calendar days,
// must hold at least minLen bars, and the move is read over the `tail-1` bars
// before the action-day bar.
func precedingMove(s *Series, day date.Date, lookback, minLen, tail int) (float64, bool) {
	before := s.Window(date.Range{From: day.Add(-lookback), To: day})
	if len(before) < minLen {
		return 0, false
	}
	var recent []Bar
	if len(before) >= tail {
		recent = before[len(before)-tail : len(before)-1]
	} else {
		recent = before[:len(before)-1]
	}
	if len(recent) == 0 {
		return 0, false
	}
	first, last := recent[0].AdjClose, recent[len(recent)-1].AdjClose
	if first <= 0 || last == 0 {
		return 0, false
	}
	return (last - first) / first * 100, true
}

func maxClose(bars []Bar) (best Bar) {
	for _, b := range bars {
		if b.AdjClose > best.AdjClose {
			best = b
		}
	}
	return best
}

func minClose(bars []Bar) (best Bar, ok bool) {
	for _, b := range bars {
		if b.AdjClose <= 0 {
			continue
		}
		if !ok || b.AdjClose < best.AdjClose {
			best, ok = b, true
		}
	}
	return best, ok
}

// PanicSell flags a sell executed into a sharp short-term decline.
type PanicSell struct {
	Ticker        string     `json:"ticker"`
	Date          date.Date  `json:"date"`
	SellPrice     float64    `json:"sell_price"`
	Decline5d     float64    `json:"stock_decline_5d"`
	MaxAfter      float64    `json:"max_price_after,omitempty"`
	MaxAfterDate  date.Date  `json:"max_price_date,omitzero"`
	RecoveryPct   float64    `json:"recovery_pct,omitempty"`
	RecoveredDate date.Date  `json:"recovered_sell_price_date,omitzero"`
	Trajectory    Trajectory `json:"price_trajectory,omitempty"`
	OptimalPrice  float64    `json:"optimal_sell_price,omitempty"`
	OptimalDate   date.Date  `json:"optimal_sell_date,omitzero"`
	MissedGainPct float64    `json:"missed_gain_pct,omitempty"`
}

// DetectPanicSell flags a SELL preceded by a >=5% decline over the previous
// 5 trading days, and reports how the price behaved over the following 90
// days: the post-sale maximum, when (if ever) the price recovered the sale
// price, and the optimal exit inside a (-5,+90)-day window.
func DetectPanicSell(a Action, s *Series) *PanicSell {
	if a.Kind != Sell {
		return nil
	}
	decline, ok := precedingMove(s, a.Date, 10, 5, 6)
	if !ok || decline >= panicDeclineThreshold {
		return nil
	}

	p := &PanicSell{
		Ticker:    a.Ticker,
		Date:      a.Date,
		SellPrice: a.Price,
		Decline5d: round2(decline),
	}

	after := s.Following(a.Date, 90)
	if len(after) > 0 && a.Price > 0 {
		maxBar := maxClose(after)
		p.MaxAfter = round2(maxBar.AdjClose)
		p.MaxAfterDate = maxBar.Date
		p.RecoveryPct = round2((maxBar.AdjClose - a.Price) / a.Price * 100)

		for _, b := range after {
			if b.AdjClose > a.Price {
				p.RecoveredDate = b.Date
				break
			}
		}

		p.Trajectory = sampleTrajectory(after, a.Price)

		p.OptimalPrice, p.OptimalDate = a.Price, a.Date
		if full := s.Window(date.Around(a.Date, 5, 90)); len(full) > 0 {
			optimal := maxClose(full)
			p.OptimalPrice, p.OptimalDate = round2(optimal.AdjClose), optimal.Date
		}
		p.MissedGainPct = round2((p.OptimalPrice - a.Price) / a.Price * 100)
	}
	return p
}

// FOMOBuy flags a buy chasing a recent run-up.
type FOMOBuy struct {
	Ticker       string     `json:"ticker"`
	Date         date.Date  `json:"date"`
	BuyPrice     float64    `json:"buy_price"`
	Runup10d     float64    `json:"stock_gain_10d"`
	MinAfter     float64    `json:"min_price_after,omitempty"`
	MinAfterDate date.Date  `json:"min_price_date,omitzero"`
	MaxDrawdown  float64    `json:"max_drawdown_pct,omitempty"`
	Trajectory   Trajectory `json:"price_trajectory,omitempty"`
	OptimalPrice float64    `json:"optimal_buy_price,omitempty"`
	OptimalDate  date.Date  `json:"optimal_buy_date,omitzero"`
	OverpaidPct  float64    `json:"overpaid_pct,omitempty"`
}

// DetectFOMOBuy flags a BUY preceded by a >10% run-up over the previous 10
// trading days, with the subsequent drawdown and the optimal entry inside a
// (-5,+30)-day window.
func DetectFOMOBuy(a Action, s *Series) *FOMOBuy {
	if a.Kind != Buy {
		return nil
	}
	runup, ok := precedingMove(s, a.Date, 20, 10, 11)
	if !ok || runup <= fomoRunupThreshold {
		return nil
	}

	f := &FOMOBuy{
		Ticker:   a.Ticker,
		Date:     a.Date,
		BuyPrice: a.Price,
		Runup10d: round2(runup),
	}

	after := s.Following(a.Date, 90)
	if len(after) > 0 && a.Price > 0 {
		if minBar, ok := minClose(after); ok {
			f.MinAfter = round2(minBar.AdjClose)
			f.MinAfterDate = minBar.Date
			f.MaxDrawdown = round2((minBar.AdjClose - a.Price) / a.Price * 100)
		}
		f.Trajectory = sampleTrajectory(after, a.Price)

		f.OptimalPrice, f.OptimalDate = a.Price, a.Date
		if full := s.Window(date.Around(a.Date, 5, 30)); len(full) > 0 {
			if optimal, ok := minClose(full); ok {
				f.OptimalPrice, f.OptimalDate = round2(optimal.AdjClose), optimal.Date
			}
		}
		if f.OptimalPrice > 0 {
			f.OverpaidPct = round2((a.Price - f.OptimalPrice) / f.OptimalPrice * 100)
		}
	}
	return f
}

// WellTimedSell flags an exit shortly before a significant decline.
type WellTimedSell struct {
	Ticker          string     `json:"ticker"`
	Date            date.Date  `json:"date"`
	SellPrice       float64    `json:"sell_price"`
	MinAfter        float64    `json:"min_price_after"`
	MinAfterDate    date.Date  `json:"min_price_date"`
	DeclineAfterPct float64    `json:"max_decline_after_pct"`
	LossAvoidedPct  float64    `json:"loss_avoided_pct"`
	Trajectory      Trajectory `json:"price_trajectory,omitempty"`
	StayedBelow     bool       `json:"stayed_below_sell_price"`
	RecoveredDate   date.Date  `json:"recovered_date,omitzero"`
}

// DetectWellTimedSell flags a SELL followed by a decline worse than 5%
// within 90 days. At least 5 subsequent bars are required.
func DetectWellTimedSell(a Action, s *Series) *WellTimedSell {
	if a.Kind != Sell || a.Price <= 0 {
		return nil
	}
	after := s.Following(a.Date, 90)
	if len(after) < minBarsAfter {
		return nil
	}
	minBar, ok := minClose(after)
	if !ok {
		return nil
	}
	decline := (minBar.AdjClose - a.Price) / a.Price * 100
	if decline >= wellTimedSellDecline {
		return nil
	}

	w := &WellTimedSell{
		Ticker:          a.Ticker,
		Date:            a.Date,
		SellPrice:       a.Price,
		MinAfter:        round2(minBar.AdjClose),
		MinAfterDate:    minBar.Date,
		DeclineAfterPct: round2(decline),
		LossAvoidedPct:  round2(-decline),
		Trajectory:      sampleTrajectory(after, a.Price),
		StayedBelow:     true,
	}
	for _, b := range after {
		if b.AdjClose >= a.Price {
			w.RecoveredDate = b.Date
			w.StayedBelow = false
			break
		}
	}
	return w
}

// WellTimedBuy flags an entry shortly before a significant rally.
type WellTimedBuy struct {
	Ticker         string     `json:"ticker"`
	Date           date.Date  `json:"date"`
	BuyPrice       float64    `json:"buy_price"`
	MaxAfter       float64    `json:"max_price_after"`
	MaxAfterDate   date.Date  `json:"max_price_date"`
	GainAfterPct   float64    `json:"max_gain_after_pct"`
	Trajectory     Trajectory `json:"price_trajectory,omitempty"`
	BoughtTheDip   bool       `json:"bought_the_dip"`
	DipDeclinePct  float64    `json:"decline_before_buy_pct,omitempty"`
	NeverWentBelow bool       `json:"never_went_below_entry"`
	MinAfter       float64    `json:"min_price_after"`
}

// DetectWellTimedBuy flags a BUY followed by a rally above 10% within 90
// days, and reports whether it was a dip buy and whether the price ever
// traded materially below the entry (2% tolerance).
func DetectWellTimedBuy(a Action, s *Series) *WellTimedBuy {
	if a.Kind != Buy || a.Price <= 0 {
		return nil
	}
	after := s.Following(a.Date, 90)
	if len(after) < minBarsAfter {
		return nil
	}
	maxBar := maxClose(after)
	if maxBar.AdjClose <= 0 {
		return nil
	}
	gain := (maxBar.AdjClose - a.Price) / a.Price * 100
	if gain <= wellTimedBuyGain {
		return nil
	}

	w := &WellTimedBuy{
		Ticker:       a.Ticker,
		Date:         a.Date,
		BuyPrice:     a.Price,
		MaxAfter:     round2(maxBar.AdjClose),
		MaxAfterDate: maxBar.Date,
		GainAfterPct: round2(gain),
		Trajectory:   sampleTrajectory(after, a.Price),
	}

	if preMove, ok := precedingMove(s, a.Date, 20, 10, 11); ok && preMove < -5 {
		w.BoughtTheDip = true
		w.DipDeclinePct = round2(preMove)
	}

	if minBar, ok := minClose(after); ok {
		w.MinAfter = round2(minBar.AdjClose)
		w.NeverWentBelow = minBar.AdjClose >= a.Price*0.98
	}
	return w
}

// WorstTimedSell flags an exit shortly before a significant rally.
type WorstTimedSell struct {
	Ticker         string     `json:"ticker"`
	Date           date.Date  `json:"date"`
	SellPrice      float64    `json:"sell_price"`
	MaxAfter       float64    `json:"max_price_after"`
	MaxAfterDate   date.Date  `json:"max_price_date"`
	MissedRallyPct float64    `json:"missed_rally_pct"`
	Trajectory     Trajectory `json:"price_trajectory,omitempty"`
	OptimalPrice   float64    `json:"optimal_sell_price"`
	OptimalDate    date.Date  `json:"optimal_sell_date"`
}

// DetectWorstTimedSell flags a SELL followed by a rally above 10% within 90
// days.
func DetectWorstTimedSell(a Action, s *Series) *WorstTimedSell {
	if a.Kind != Sell || a.Price <= 0 {
		return nil
	}
	after := s.Following(a.Date, 90)
	if len(after) < minBarsAfter {
		return nil
	}
	maxBar := maxClose(after)
	if maxBar.AdjClose <= 0 {
		return nil
	}
	rally := (maxBar.AdjClose - a.Price) / a.Price * 100
	if rally <= worstTimedSellRally {
		return nil
	}

	return &WorstTimedSell{
		Ticker:         a.Ticker,
		Date:           a.Date,
		SellPrice:      a.Price,
		MaxAfter:       round2(maxBar.AdjClose),
		MaxAfterDate:   maxBar.Date,
		MissedRallyPct: round2(rally),
		Trajectory:     sampleTrajectory(after, a.Price),
		OptimalPrice:   round2(maxBar.AdjClose),
		OptimalDate:    maxBar.Date,
	}
}

// WorstTimedBuy flags an entry shortly before a significant drop.
type WorstTimedBuy struct {
	Ticker        string     `json:"ticker"`
	Date          date.Date  `json:"date"`
	BuyPrice      float64    `json:"buy_price"`
	MinAfter      float64    `json:"min_price_after"`
	MinAfterDate  date.Date  `json:"min_price_date"`
	DropAfterPct  float64    `json:"max_drop_after_pct"`
	Trajectory    Trajectory `json:"price_trajectory,omitempty"`
	BoughtTheTop  bool       `json:"bought_the_top"`
	RecoveredDate date.Date  `json:"recovered_date,omitzero"`
}

// DetectWorstTimedBuy flags a BUY followed by a drop worse than 10% within
// 90 days, and whether the price later recovered to within 2% of the entry.
func DetectWorstTimedBuy(a Action, s *Series) *WorstTimedBuy {
	if a.Kind != Buy || a.Price <= 0 {
		return nil
	}
	after := s.Following(a.Date, 90)
	if len(after) < minBarsAfter {
		return nil
	}
	minBar, ok := minClose(after)
	if !ok {
		return nil
	}
	drop := (minBar.AdjClose - a.Price) / a.Price * 100
	if drop >= worstTimedBuyDrop {
		return nil
	}

	w := &WorstTimedBuy{
		Ticker:       a.Ticker,
		Date:         a.Date,
		BuyPrice:     a.Price,
		MinAfter:     round2(minBar.AdjClose),
		MinAfterDate: minBar.Date,
		DropAfterPct: round2(drop),
		Trajectory:   sampleTrajectory(after, a.Price),
	}
	for _, b := range after {
		if b.AdjClose >= a.Price*0.98 {
			w.RecoveredDate = b.Date
			break
		}
	}
	if preMove, ok := precedingMove(s, a.Date, 20, 10, 11); ok && preMove > 5 {
		w.BoughtTheTop = true
	}
	return w
}
