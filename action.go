package hindsight

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/etnz/hindsight/date"
)

// Kind is a typed string identifying the nature of a brokerage action.
type Kind string

// The six action kinds. The taxonomy is closed: every action record carries
// exactly one of these.
const (
	Buy        Kind = "BUY"
	Sell       Kind = "SELL"
	Dividend   Kind = "DIVIDEND"
	Interest   Kind = "INTEREST"
	Deposit    Kind = "DEPOSIT"
	Withdrawal Kind = "WITHDRAWAL"
)

// IsTrade reports whether the kind moves shares (BUY or SELL).
func (k Kind) IsTrade() bool { return k == Buy || k == Sell }

// Action is a single normalized brokerage action, as produced by the
// ingestion layer. Actions are immutable once parsed, with one exception:
// normalization (multi-exchange renaming and split adjustment) may rewrite
// Ticker, Quantity and Price in place, preserving the parsed values in the
// Original* shadow fields for audit.
//
// Total is a signed amount in the reporting currency. Price is in the
// instrument's trade currency. ExchangeRate follows the divisor convention:
// reporting = trade / ExchangeRate.
type Action struct {
	Date          date.Date `json:"date"`
	Kind          Kind      `json:"action"`
	Ticker        string    `json:"ticker,omitempty"`
	Quantity      float64   `json:"quantity,omitempty"`
	Price         float64   `json:"price,omitempty"`
	Total         float64   `json:"total"`
	Fees          float64   `json:"fees,omitempty"`
	TradeCurrency string    `json:"trade_currency,omitempty"`
	ExchangeRate  float64   `json:"exchange_rate,omitempty"`
	ISIN          string    `json:"isin,omitempty"`

	// Shadow fields, set only when normalization rewrote the live fields.
	OriginalTicker   string  `json:"ticker_original,omitempty"`
	OriginalQuantity float64 `json:"quantity_original,omitempty"`
	OriginalPrice    float64 `json:"price_original,omitempty"`
	SplitFactor      float64 `json:"split_factor,omitempty"`
}

// AbsTotal returns the unsigned monetary amount of the action in the
// reporting currency.
func (a Action) AbsTotal() float64 { return math.Abs(a.Total) }

// TradeValue returns the action's monetary value, falling back to
// price x quantity when the parsed total is missing.
func (a Action) TradeValue() float64 {
	if v := a.AbsTotal(); v > 0 {
		return v
	}
	return a.Price * a.Quantity
}

// Rate returns the exchange rate to divide by, never zero.
func (a Action) Rate() float64 {
	if a.ExchangeRate > 0 {
		return a.ExchangeRate
	}
	return 1.0
}

// MarshalJSON writes the action with a stable field order, shadow fields
// next to their live counterparts.
func (a Action) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", a.Date)
	w.Append("action", a.Kind)
	w.Optional("ticker", a.Ticker)
	w.Optional("ticker_original", a.OriginalTicker)
	w.Optional("quantity", a.Quantity)
	w.Optional("quantity_original", a.OriginalQuantity)
	w.Optional("price", a.Price)
	w.Optional("price_original", a.OriginalPrice)
	w.Optional("split_factor", a.SplitFactor)
	w.Append("total", a.Total)
	w.Optional("fees", a.Fees)
	w.Optional("trade_currency", a.TradeCurrency)
	w.Optional("exchange_rate", a.ExchangeRate)
	w.Optional("isin", a.ISIN)
	return w.MarshalJSON()
}

// UnmarshalJSON decodes an action without recursing into MarshalJSON's
// ordering logic.
func (a *Action) UnmarshalJSON(b []byte) error {
	type plain Action
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*a = Action(p)
	return nil
}

// Provider symbol suffix tables, keyed by trade currency and by the first two
// letters of the ISIN. They mirror the market-data layer's resolution so that
// renamed tickers line up with the fetched series.
var currencySuffix = map[string]string{
	"USD": "", "GBP": ".L", "GBX": ".L", "CAD": ".TO", "CHF": ".SW",
}

var isinSuffix = map[string]string{
	"FR": ".PA", "DE": ".DE", "NL": ".AS", "ES": ".MC", "BE": ".BR",
	"IT": ".MI", "CH": ".SW", "IE": ".L", "GB": ".L",
}

// resolveSymbol maps a ticker to the data provider's exchange-suffixed symbol.
func resolveSymbol(ticker, currency, isin string) string {
	if ticker == "" {
		return ticker
	}
	if currency == "USD" {
		return ticker
	}
	symbol := strings.ReplaceAll(ticker, "/", "-")
	if len(isin) >= 2 {
		if suffix, ok := isinSuffix[isin[:2]]; ok {
			return symbol + suffix
		}
	}
	return symbol + currencySuffix[currency]
}

// RenameMultiExchange splits tickers traded in more than one currency into
// separate per-exchange tickers, so e.g. CNQ on NYSE (USD) and CNQ on TSX
// (CAD) are tracked as distinct positions. Each renamed action keeps its
// parsed ticker in OriginalTicker. It returns the number of renamed actions.
func RenameMultiExchange(actions []Action) int {
	currencies := make(map[string]map[string]bool)
	for _, a := range actions {
		if a.Ticker == "" || !a.Kind.IsTrade() || a.TradeCurrency == "" {
			continue
		}
		if currencies[a.Ticker] == nil {
			currencies[a.Ticker] = make(map[string]bool)
		}
		currencies[a.Ticker][a.TradeCurrency] = true
	}

	renamed := 0
	for i := range actions {
		a := &actions[i]
		if len(currencies[a.Ticker]) < 2 {
			continue
		}
		symbol := resolveSymbol(a.Ticker, a.TradeCurrency, a.ISIN)
		if symbol != a.Ticker {
			a.OriginalTicker = a.Ticker
			a.Ticker = symbol
			renamed++
		}
	}
	return renamed
}
