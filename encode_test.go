package hindsight

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActions(t *testing.T) {
	input := `{"date": "2024-02-01", "action": "SELL", "ticker": "AAPL", "quantity": 5, "price": 190, "total": 950}

{"date": "2024-01-02", "action": "BUY", "ticker": "AAPL", "quantity": 10, "price": 180, "total": 1800, "fees": 1.5}
{"date": "2024-01-02", "action": "DEPOSIT", "total": 5000}
`

	actions, err := DecodeActions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, actions, 3)

	// Sorted by date; the blank line is skipped.
	assert.Equal(t, Buy, actions[0].Kind)
	assert.Equal(t, Deposit, actions[1].Kind)
	assert.Equal(t, Sell, actions[2].Kind)
	assert.Equal(t, d("2024-02-01"), actions[2].Date)
	assert.InDelta(t, 1.5, actions[0].Fees, 1e-9)
}

func TestDecodeActionsRejectsUnknownKind(t *testing.T) {
	_, err := DecodeActions(strings.NewReader(`{"date": "2024-01-02", "action": "TRANSMOGRIFY"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
	assert.Contains(t, err.Error(), "line 1")
}

func TestDecodeActionsRejectsMissingDate(t *testing.T) {
	_, err := DecodeActions(strings.NewReader(`{"action": "BUY", "ticker": "AAPL"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing date")
}

func TestEncodeActionsRoundTrip(t *testing.T) {
	in := []Action{
		trade(Buy, "AAPL", "2024-01-02", 10, 180),
		cash(Deposit, "2024-01-02", 5000),
	}
	in[0].Fees = 1.5
	in[0].TradeCurrency = "USD"
	in[0].ExchangeRate = 1.27

	var buf bytes.Buffer
	require.NoError(t, EncodeActions(&buf, in))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	out, err := DecodeActions(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[1], out[1])
}

const marketSnapshot = `{
  "meta": {"generated": "2024-06-30"},
  "data": {
    "AAPL": {
      "chart": {
        "prices": [
          {"date": "2024-01-02", "open": 184, "close": 185.6, "adjclose": 185.4},
          {"date": "2024-01-03", "open": 185, "close": 184.2, "adjclose": 184.0}
        ],
        "dividends": [{"date": "2024-02-09", "amount": 0.24}],
        "splits": [{"date": "2020-08-31", "numerator": 4.0}]
      }
    },
    "DELISTED": null,
    "EMPTY": {"chart": {"prices": []}}
  }
}`

func TestDecodeMarket(t *testing.T) {
	market, err := DecodeMarket(strings.NewReader(marketSnapshot), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultBenchmark, market.BenchmarkTicker())
	assert.Equal(t, []string{"AAPL"}, market.Tickers()) // null and empty skipped

	s := market.Get("AAPL")
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Len())

	b, ok := s.At(d("2024-01-02"))
	require.True(t, ok)
	assert.InDelta(t, 185.4, b.AdjClose, 1e-9)

	require.Len(t, s.Dividends(), 1)
	assert.InDelta(t, 0.24, s.Dividends()[0].Amount, 1e-9)
	require.Len(t, s.Splits(), 1)
	assert.InDelta(t, 4.0, s.Splits()[0].Ratio, 1e-9)
}

func TestDecodeMarketBadEnvelope(t *testing.T) {
	_, err := DecodeMarket(strings.NewReader(`{"rows": []}`), "")
	require.Error(t, err)

	_, err = DecodeMarket(strings.NewReader(`not json`), "")
	require.Error(t, err)
}
