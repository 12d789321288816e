package hindsight

import (
	"sort"

	"github.com/etnz/hindsight/date"
)

// tradesByTicker groups BUY/SELL actions per ticker, preserving the input's
// chronological order, and returns the tickers sorted for deterministic
// iteration.
func tradesByTicker(actions []Action) (map[string][]Action, []string) {
	grouped := make(map[string][]Action)
	for _, a := range actions {
		if a.Ticker == "" || !a.Kind.IsTrade() {
			continue
		}
		grouped[a.Ticker] = append(grouped[a.Ticker], a)
	}
	tickers := make([]string, 0, len(grouped))
	for t := range grouped {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return grouped, tickers
}

// RoundTrip is a matched buy-then-sell pair for one instrument.
type RoundTrip struct {
	Ticker       string    `json:"ticker"`
	BuyDate      date.Date `json:"buy_date"`
	BuyPrice     float64   `json:"buy_price"`
	SellDate     date.Date `json:"sell_date"`
	SellPrice    float64   `json:"sell_price"`
	Quantity     float64   `json:"quantity"`
	ReturnPct    float64   `json:"return_pct"`
	DollarReturn float64   `json:"dollar_return"`
	HoldingDays  int       `json:"holding_days"`
	Fees         float64   `json:"fees"`
}

// DetectRoundTrips FIFO-pairs each SELL against the earliest still-open BUY
// dated strictly before it. One buy is consumed per matched sell; a sell
// with no prior open buy is skipped. The dollar return nets the combined
// fees of both legs.
func DetectRoundTrips(actions []Action) []RoundTrip {
	grouped, tickers := tradesByTicker(actions)

	var trips []RoundTrip
	for _, ticker := range tickers {
		var buys, sells []Action
		for _, a := range grouped[ticker] {
			if a.Kind == Buy {
				buys = append(buys, a)
			} else {
				sells = append(sells, a)
			}
		}

		queue := buys
		for _, sell := range sells {
			if len(queue) == 0 {
				break
			}
			buy := queue[0]
			if !buy.Date.Before(sell.Date) {
				continue
			}
			buyTotal := buy.TradeValue()
			sellTotal := sell.TradeValue()
			if buyTotal > 0 {
				fees := buy.Fees + sell.Fees
				trips = append(trips, RoundTrip{
					Ticker:       ticker,
					BuyDate:      buy.Date,
					BuyPrice:     buy.Price,
					SellDate:     sell.Date,
					SellPrice:    sell.Price,
					Quantity:     min(buy.Quantity, sell.Quantity),
					ReturnPct:    round2((sellTotal - buyTotal) / buyTotal * 100),
					DollarReturn: round2(sellTotal - buyTotal - fees),
					HoldingDays:  sell.Date.Sub(buy.Date),
					Fees:         fees,
				})
			}
			queue = queue[1:]
		}
	}
	return trips
}

// washSaleWindow is the repurchase window in calendar days, inclusive.
const washSaleWindow = 30

// WashSale is a sell followed by a repurchase of the same instrument within
// the window.
type WashSale struct {
	Ticker      string    `json:"ticker"`
	SellDate    date.Date `json:"sell_date"`
	SellPrice   float64   `json:"sell_price"`
	RebuyDate   date.Date `json:"rebuy_date"`
	RebuyPrice  float64   `json:"rebuy_price"`
	DaysBetween int       `json:"days_between"`
}

// DetectWashSales reports every BUY dated strictly after and within 30
// calendar days of any SELL of the same ticker. The check is deliberately
// all-pairs, so one sell can pair with several later buys, and it does not
// filter by whether the sell was at a loss: these are structural candidates
// for downstream judgment, not tax determinations.
func DetectWashSales(actions []Action) []WashSale {
	grouped, tickers := tradesByTicker(actions)

	var washes []WashSale
	for _, ticker := range tickers {
		acts := grouped[ticker]
		for _, sell := range acts {
			if sell.Kind != Sell {
				continue
			}
			for _, buy := range acts {
				if buy.Kind != Buy {
					continue
				}
				days := buy.Date.Sub(sell.Date)
				if days > 0 && days <= washSaleWindow {
					washes = append(washes, WashSale{
						Ticker:      ticker,
						SellDate:    sell.Date,
						SellPrice:   sell.Price,
						RebuyDate:   buy.Date,
						RebuyPrice:  buy.Price,
						DaysBetween: days,
					})
				}
			}
		}
	}
	return washes
}

// Overtrading flag thresholds: more than overtradingMaxTrades trades inside
// any overtradingWindowDays-day window flags the ticker.
const (
	overtradingWindowDays = 60
	overtradingMaxTrades  = 3
)

// OvertradingFlag marks a ticker traded too frequently. Only the first
// qualifying window per ticker is reported.
type OvertradingFlag struct {
	Ticker      string    `json:"ticker"`
	WindowStart date.Date `json:"window_start"`
	WindowEnd   date.Date `json:"window_end"`
	TradeCount  int       `json:"trade_count"`
}

// DetectOvertrading scans each ticker's trades in order and flags the ticker
// on the first 60-day window holding more than 3 trades.
func DetectOvertrading(actions []Action) []OvertradingFlag {
	grouped, tickers := tradesByTicker(actions)

	var flags []OvertradingFlag
	for _, ticker := range tickers {
		acts := grouped[ticker]
		for _, a := range acts {
			end := a.Date.Add(overtradingWindowDays)
			window := date.NewRange(a.Date, end)
			count := 0
			for _, b := range acts {
				if window.Contains(b.Date) {
					count++
				}
			}
			if count > overtradingMaxTrades {
				flags = append(flags, OvertradingFlag{
					Ticker:      ticker,
					WindowStart: a.Date,
					WindowEnd:   end,
					TradeCount:  count,
				})
				break // one flag per ticker is enough
			}
		}
	}
	return flags
}
