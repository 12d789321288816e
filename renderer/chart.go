package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/etnz/hindsight"
)

// ValueChart renders the daily portfolio value series kept by the risk
// engine as a PNG line chart. Returns raw PNG bytes.
func ValueChart(r *hindsight.RiskMetrics) ([]byte, error) {
	if r == nil || len(r.DailyValues) < 2 {
		return nil, fmt.Errorf("not enough daily values to chart")
	}

	xValues := make([]time.Time, len(r.TradingDays))
	for i, d := range r.TradingDays {
		xValues[i] = d.Time()
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: r.DailyValues,
	}

	// Running peak as a dashed reference, so drawdowns read at a glance.
	peaks := make([]float64, len(r.DailyValues))
	peak := r.DailyValues[0]
	for i, v := range r.DailyValues {
		if v > peak {
			peak = v
		}
		peaks[i] = peak
	}
	peakSeries := chart.TimeSeries{
		Name: "Peak",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: peaks,
	}

	graph := chart.Chart{
		Title:  "Portfolio Value",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		Series: []chart.Series{valueSeries, peakSeries},
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
