package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/etnz/hindsight"
	"github.com/etnz/hindsight/date"
)

// fixtureAnalysis is a hand-built analysis exercising every report section.
func fixtureAnalysis() *hindsight.Analysis {
	day := func(s string) date.Date { return date.MustParse(s) }
	recovered := day("2024-03-15")
	return &hindsight.Analysis{
		AnalysisDate:      "2024-06-30 12:00:00",
		ReportingCurrency: "GBP",
		Portfolio: hindsight.Summary{
			NetInvested:    10000,
			CurrentValue:   11500,
			TotalReturn:    1500,
			TotalReturnPct: 15,
			NumHoldings:    1,
			Holdings: []hindsight.Holding{
				{Ticker: "AAPL", Shares: 10, CurrentValue: 11500, UnrealizedPct: 15},
			},
		},
		Summary: &hindsight.ScoreSummary{
			OverallScore: 12.5,
			TotalImpact:  -340,
			TotalScored:  8,
			Best3: []hindsight.ScoredAction{
				{Ticker: "AAPL", Date: day("2024-02-01"), Kind: hindsight.Buy, Score: 60, Impact: 120},
			},
			Worst3: []hindsight.ScoredAction{
				{Ticker: "MSFT", Date: day("2024-03-01"), Kind: hindsight.Sell, Score: -70, Impact: -400},
			},
			Patterns: hindsight.PatternCounts{PanicSells: 1, MissedDividends: 1, TotalMissedIncome: 20},
		},
		RoundTrips: []hindsight.RoundTrip{
			{Ticker: "MSFT", BuyDate: day("2024-01-05"), SellDate: day("2024-03-01"),
				HoldingDays: 56, ReturnPct: -8.5, DollarReturn: -170},
		},
		DCASequences: []hindsight.DCASequence{
			{Ticker: "VUSA", IntervalType: "monthly", NumBuys: 6, TotalInvested: 3000,
				ConsistencyScore: 98.5, DCAReturnPct: 4.2, LumpSumReturnPct: 3.1, DCAWon: true},
		},
		Benchmark: &hindsight.Benchmark{
			Ticker: "SPY", PeriodStart: day("2024-01-02"), PeriodEnd: day("2024-06-28"),
			PeriodYears: 0.49, PortfolioTWRPct: 15, BuyHoldReturnPct: 9.5, AlphaPct: 5.5,
		},
		Risk: &hindsight.RiskMetrics{
			AnnualizedReturnPct:     22.1,
			AnnualizedVolatilityPct: 18.3,
			SharpeRatio:             0.96,
			MaxDrawdownPct:          -12.4,
			MaxDrawdownStart:        day("2024-02-15"),
			MaxDrawdownEnd:          day("2024-03-01"),
			MaxDrawdownRecovery:     &recovered,
			TotalTradingDays:        120,
			WinRatePct:              54.2,
			BestDayDate:             day("2024-04-10"),
			WorstDayDate:            day("2024-03-01"),
		},
		Recommendations: []hindsight.Recommendation{
			{Category: "panic_selling", Severity: "medium", Example: "Example text.", Advice: "Advice text."},
		},
	}
}

// headings parses markdown and returns the text of every heading in order.
func headings(t *testing.T, source string) []string {
	t.Helper()
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var out []string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			var txt []byte
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if tn, ok := c.(*ast.Text); ok {
					txt = append(txt, tn.Segment.Value(src)...)
				}
			}
			out = append(out, string(txt))
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return out
}

func TestReportMarkdownSections(t *testing.T) {
	report := ReportMarkdown(fixtureAnalysis())

	got := headings(t, report)
	want := []string{
		"Portfolio Analysis",
		"Portfolio Overview",
		"Holdings",
		"Timing",
		"Best Timed",
		"Worst Timed",
		"Benchmark (vs SPY)",
		"Risk",
		"Behavioral Patterns",
		"Round Trips",
		"Recurring Investment Sequences",
		"Recommendations",
		"panic_selling (medium)",
	}
	assert.Equal(t, want, got)
}

func TestReportMarkdownContent(t *testing.T) {
	report := ReportMarkdown(fixtureAnalysis())

	assert.Contains(t, report, "Generated on 2024-06-30 12:00:00.")
	assert.Contains(t, report, "+15.00%")      // total return percent
	assert.Contains(t, report, "DCA won")      // sequence verdict
	assert.Contains(t, report, "recovered 2024-03-15")
	assert.Contains(t, report, "54.2% of 120 trading days")
	assert.Contains(t, report, "Advice text.")
}

func TestReportMarkdownSkipsEmptySections(t *testing.T) {
	a := &hindsight.Analysis{AnalysisDate: "2024-06-30 12:00:00", ReportingCurrency: "GBP"}
	report := ReportMarkdown(a)

	got := headings(t, report)
	assert.Equal(t, []string{"Portfolio Analysis", "Portfolio Overview"}, got)
	assert.NotContains(t, report, "Round Trips")
	assert.NotContains(t, report, "Recommendations")
}

func TestValueChart(t *testing.T) {
	r := &hindsight.RiskMetrics{}
	day := date.MustParse("2024-01-02")
	for i := 0; i < 40; i++ {
		r.TradingDays = append(r.TradingDays, day.Add(i))
		r.DailyValues = append(r.DailyValues, 1000+float64(i)*10)
	}

	png, err := ValueChart(r)
	require.NoError(t, err)
	// PNG signature.
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
