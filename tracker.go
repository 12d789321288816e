package hindsight

import (
	"sort"

	"github.com/etnz/hindsight/date"
)

// epsilon is the share-count tolerance under which a position is considered
// fully closed and snapped to exactly zero.
const epsilon = 1e-9

// Position is the tracked state for one ticker: shares held and their
// average-cost basis in the reporting currency. TradeCurrency, ExchangeRate
// and ISIN are carried from the most recent BUY and used for valuation only,
// never for historical P&L.
type Position struct {
	Shares        float64
	CostBasis     float64
	TradeCurrency string
	ExchangeRate  float64
	ISIN          string
}

// AvgCost returns the blended cost per share, 0 for an empty position.
func (p Position) AvgCost() float64 {
	if p.Shares <= 0 {
		return 0
	}
	return p.CostBasis / p.Shares
}

// SellRecord captures the cost context of one SELL at the moment it was
// processed. Records are created once and never mutated; detectors consume
// them later to annotate sell analyses.
type SellRecord struct {
	Ticker      string    `json:"ticker"`
	Date        date.Date `json:"date"`
	Quantity    float64   `json:"quantity"`
	Proceeds    float64   `json:"proceeds"`
	AvgCost     float64   `json:"avg_cost_per_share"`
	CostOfSold  float64   `json:"cost_of_sold"`
	RealizedPnL float64   `json:"realized_pnl"`
}

// Tracker is the chronological cost-basis state machine. Feed it every
// action in non-decreasing date order; it owns the per-ticker positions and
// the global aggregates.
type Tracker struct {
	positions      map[string]*Position
	tickerRealized map[string]float64
	sells          []SellRecord

	deposits    float64
	withdrawals float64
	dividends   float64
	interest    float64
	fees        float64
	bought      float64
	sold        float64
	realized    float64
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		positions:      make(map[string]*Position),
		tickerRealized: make(map[string]float64),
	}
}

// Process applies a single action. Actions must arrive in chronological
// order; the tracker does not reorder.
func (t *Tracker) Process(a Action) {
	t.fees += a.Fees
	total := a.AbsTotal()

	switch a.Kind {
	case Buy:
		if a.Ticker == "" || a.Quantity <= 0 {
			return
		}
		pos, ok := t.positions[a.Ticker]
		if !ok {
			pos = &Position{
				TradeCurrency: a.TradeCurrency,
				ExchangeRate:  a.Rate(),
				ISIN:          a.ISIN,
			}
			t.positions[a.Ticker] = pos
		}
		pos.Shares += a.Quantity
		pos.CostBasis += total
		// The latest buy wins for valuation currency and rate.
		if a.TradeCurrency != "" {
			pos.TradeCurrency = a.TradeCurrency
		}
		if a.ExchangeRate > 0 {
			pos.ExchangeRate = a.ExchangeRate
		}
		t.bought += total

	case Sell:
		if a.Ticker == "" || a.Quantity <= 0 {
			return
		}
		pos, ok := t.positions[a.Ticker]
		if !ok || pos.Shares <= 0 {
			// Selling with no tracked position: record the cash flow only.
			// This is a data-quality signal, not an error.
			t.sold += total
			return
		}
		avgCost := pos.CostBasis / pos.Shares
		sellQty := min(a.Quantity, pos.Shares) // oversell is capped, not shorted
		costOfSold := avgCost * sellQty
		realized := total - costOfSold
		t.realized += realized
		t.tickerRealized[a.Ticker] += realized
		t.sold += total

		t.sells = append(t.sells, SellRecord{
			Ticker:      a.Ticker,
			Date:        a.Date,
			Quantity:    sellQty,
			Proceeds:    total,
			AvgCost:     avgCost,
			CostOfSold:  costOfSold,
			RealizedPnL: realized,
		})

		pos.Shares -= sellQty
		pos.CostBasis -= costOfSold
		if pos.Shares < epsilon {
			pos.Shares = 0
			pos.CostBasis = 0
		}

	case Dividend:
		t.dividends += total
	case Interest:
		t.interest += total
	case Deposit:
		t.deposits += total
	case Withdrawal:
		t.withdrawals += total
	}
}

// Position returns a snapshot of the tracked position for a ticker.
func (t *Tracker) Position(ticker string) (Position, bool) {
	pos, ok := t.positions[ticker]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// SellRecords returns every sell record in processing order.
func (t *Tracker) SellRecords() []SellRecord { return t.sells }

// SellRecordAt returns the sell record for a given ticker and date, if one
// exists. With several sells of one ticker on one day it returns the first.
func (t *Tracker) SellRecordAt(ticker string, day date.Date) (SellRecord, bool) {
	for _, sr := range t.sells {
		if sr.Ticker == ticker && sr.Date == day {
			return sr, true
		}
	}
	return SellRecord{}, false
}

// Aggregate accessors, all in the reporting currency.
func (t *Tracker) Deposits() float64    { return t.deposits }
func (t *Tracker) Withdrawals() float64 { return t.withdrawals }
func (t *Tracker) Dividends() float64   { return t.dividends }
func (t *Tracker) Interest() float64    { return t.interest }
func (t *Tracker) Fees() float64        { return t.fees }
func (t *Tracker) RealizedPnL() float64 { return t.realized }

// Holding is one open position valued at the most recent available price.
type Holding struct {
	Ticker        string    `json:"ticker"`
	Shares        float64   `json:"shares"`
	CostBasis     float64   `json:"cost_basis"`
	AvgCost       float64   `json:"avg_cost"`
	CurrentPrice  float64   `json:"current_price_trade,omitempty"`
	PriceDate     date.Date `json:"current_price_date,omitzero"`
	TradeCurrency string    `json:"trade_currency,omitempty"`
	ExchangeRate  float64   `json:"exchange_rate,omitempty"`
	Valued        bool      `json:"-"`
	CurrentValue  float64   `json:"current_value"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	UnrealizedPct float64   `json:"unrealized_pct"`
	RealizedPnL   float64   `json:"realized_pnl"`
}

// Holdings values every open position against the market snapshot and
// returns them ordered by descending current value; positions without a
// known price rank last (value treated as zero for ordering only). The two
// totals are the summed current value and cost basis.
func (t *Tracker) Holdings(market *Market) (holdings []Holding, totalValue, totalCost float64) {
	for ticker, pos := range t.positions {
		if pos.Shares < epsilon {
			continue
		}
		h := Holding{
			Ticker:        ticker,
			Shares:        pos.Shares,
			CostBasis:     pos.CostBasis,
			AvgCost:       pos.AvgCost(),
			TradeCurrency: pos.TradeCurrency,
			ExchangeRate:  pos.ExchangeRate,
			RealizedPnL:   t.tickerRealized[ticker],
		}
		if series := market.Get(ticker); series != nil {
			if bar, ok := series.Latest(); ok {
				rate := pos.ExchangeRate
				if rate <= 0 {
					rate = 1
				}
				h.CurrentPrice = bar.AdjClose
				h.PriceDate = bar.Date
				h.CurrentValue = bar.AdjClose * pos.Shares / rate
				h.Valued = true
				h.UnrealizedPnL = h.CurrentValue - pos.CostBasis
				if pos.CostBasis > 0 {
					h.UnrealizedPct = (h.CurrentValue/pos.CostBasis - 1) * 100
				}
			}
		}
		holdings = append(holdings, h)
		if h.Valued {
			totalValue += h.CurrentValue
		}
		totalCost += pos.CostBasis
	}

	sort.SliceStable(holdings, func(i, j int) bool {
		vi, vj := 0.0, 0.0
		if holdings[i].Valued {
			vi = holdings[i].CurrentValue
		}
		if holdings[j].Valued {
			vj = holdings[j].CurrentValue
		}
		return vi > vj
	})
	return holdings, totalValue, totalCost
}

// Summary is the portfolio-level aggregate view.
type Summary struct {
	NetInvested    float64   `json:"net_invested"`
	Deposits       float64   `json:"total_deposits"`
	Withdrawals    float64   `json:"total_withdrawals"`
	Bought         float64   `json:"total_bought"`
	Sold           float64   `json:"total_sold"`
	Dividends      float64   `json:"total_dividends"`
	Interest       float64   `json:"total_interest"`
	Fees           float64   `json:"total_fees"`
	RealizedPnL    float64   `json:"realized_pnl"`
	UnrealizedPnL  float64   `json:"unrealized_pnl"`
	CurrentValue   float64   `json:"current_value"`
	TotalCostBasis float64   `json:"total_cost_basis"`
	TotalReturn    float64   `json:"total_return"`
	TotalReturnPct float64   `json:"total_return_pct"`
	NumHoldings    int       `json:"num_holdings"`
	Holdings       []Holding `json:"holdings"`
}

// Summarize combines the aggregates with a valuation pass. Total return is
// realized + unrealized + dividends + interest - fees; the percentage is
// normalized against net invested capital and reported as 0 when net
// invested is not positive.
func (t *Tracker) Summarize(market *Market) Summary {
	holdings, totalValue, totalCost := t.Holdings(market)

	netInvested := t.deposits - t.withdrawals
	unrealized := totalValue - totalCost
	totalReturn := t.realized + unrealized + t.dividends + t.interest - t.fees
	returnPct := 0.0
	if netInvested > 0 {
		returnPct = totalReturn / netInvested * 100
	}

	return Summary{
		NetInvested:    netInvested,
		Deposits:       t.deposits,
		Withdrawals:    t.withdrawals,
		Bought:         t.bought,
		Sold:           t.sold,
		Dividends:      t.dividends,
		Interest:       t.interest,
		Fees:           t.fees,
		RealizedPnL:    t.realized,
		UnrealizedPnL:  unrealized,
		CurrentValue:   totalValue,
		TotalCostBasis: totalCost,
		TotalReturn:    totalReturn,
		TotalReturnPct: returnPct,
		NumHoldings:    len(holdings),
		Holdings:       holdings,
	}
}
