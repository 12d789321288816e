package hindsight

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
)

// The market snapshot is a single JSON document fetched upstream:
//
//	{
//	  "data": {
//	    "AAPL": {
//	      "chart": {
//	        "prices":    [{"date": "2024-01-02", "adjclose": 184.2, ...}, ...],
//	        "dividends": [{"date": "2024-02-09", "amount": 0.24}, ...],
//	        "splits":    [{"date": "2020-08-31", "numerator": 4.0}, ...]
//	      }
//	    },
//	    ...
//	  }
//	}
//
// Tickers with a null or chart-less entry are tolerated and skipped.

// jchart mirrors the provider's per-ticker chart object.
type jchart struct {
	Chart *struct {
		Prices    []Bar           `json:"prices"`
		Dividends []DividendEvent `json:"dividends"`
		Splits    []SplitEvent    `json:"splits"`
	} `json:"chart"`
}

// DecodeMarket decodes a market snapshot into a Market keyed on the given
// benchmark ticker (empty selects the default).
func DecodeMarket(r io.Reader, benchmark string) (*Market, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot parse market snapshot: %w", err)
	}

	// Lift the data object out of the envelope, then decode each ticker
	// strictly through the typed structs.
	jval, err := jsonpath.Get("$.data", jobj)
	if err != nil {
		return nil, fmt.Errorf("market snapshot has no data object: %w", err)
	}
	data, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("market snapshot data is not an object: %T", jval)
	}

	market := NewMarket(benchmark)
	for ticker, td := range data {
		if td == nil {
			continue
		}
		raw, err := json.Marshal(td)
		if err != nil {
			return nil, fmt.Errorf("cannot re-encode market data for %q: %w", ticker, err)
		}
		var jc jchart
		if err := json.Unmarshal(raw, &jc); err != nil {
			return nil, fmt.Errorf("format error in market data for %q: %w", ticker, err)
		}
		if jc.Chart == nil || len(jc.Chart.Prices) == 0 {
			continue
		}
		market.Add(NewSeries(ticker, jc.Chart.Prices, jc.Chart.Dividends, jc.Chart.Splits))
	}
	return market, nil
}
