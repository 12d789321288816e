// Package renderer turns an analysis into human-readable artifacts: a
// markdown report and PNG charts.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/hindsight"
	md "github.com/nao1215/markdown"
)

// ReportMarkdown renders the full analysis as a markdown document.
func ReportMarkdown(a *hindsight.Analysis) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio Analysis")
	doc.PlainText(fmt.Sprintf("Generated on %s.", a.AnalysisDate))

	renderPortfolio(doc, a)
	renderScores(doc, a)
	renderBenchmark(doc, a.Benchmark)
	renderRisk(doc, a.Risk)
	renderPatterns(doc, a)
	renderRoundTrips(doc, a.RoundTrips)
	renderDCA(doc, a.DCASequences)
	renderRecommendations(doc, a.Recommendations)

	return doc.String()
}

func money(a *hindsight.Analysis, v float64) string {
	return hindsight.M(v, a.ReportingCurrency).String()
}

func renderPortfolio(doc *md.Markdown, a *hindsight.Analysis) {
	p := a.Portfolio
	doc.H2("Portfolio Overview")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Net invested", money(a, p.NetInvested)},
			{"Current value", money(a, p.CurrentValue)},
			{"Realized P&L", money(a, p.RealizedPnL)},
			{"Unrealized P&L", money(a, p.UnrealizedPnL)},
			{"Dividends", money(a, p.Dividends)},
			{"Interest", money(a, p.Interest)},
			{"Fees", money(a, p.Fees)},
			{md.Bold("Total return"), md.Bold(fmt.Sprintf("%s (%s)",
				money(a, p.TotalReturn), hindsight.Percent(p.TotalReturnPct).SignedString()))},
		},
	})

	if len(p.Holdings) > 0 {
		doc.H2("Holdings")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Ticker", "Shares", "Value", "Unrealized"},
		}
		for _, h := range p.Holdings {
			table.Rows = append(table.Rows, []string{
				h.Ticker,
				hindsight.Quantity(h.Shares).String(),
				money(a, h.CurrentValue),
				hindsight.Percent(h.UnrealizedPct).SignedString(),
			})
		}
		doc.Table(table)
	}
}

func renderScores(doc *md.Markdown, a *hindsight.Analysis) {
	s := a.Summary
	if s == nil {
		return
	}
	doc.H2("Timing")
	doc.PlainText(fmt.Sprintf("Overall timing score %.1f across %d scored actions, "+
		"for a total timing impact of %s.",
		s.OverallScore, s.TotalScored, money(a, s.TotalImpact)))

	leaderboard := func(title string, actions []hindsight.ScoredAction) {
		if len(actions) == 0 {
			return
		}
		doc.H3(title)
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
			Header:    []string{"Date", "Action", "Ticker", "Score", "Impact"},
		}
		for _, sa := range actions {
			table.Rows = append(table.Rows, []string{
				sa.Date.String(),
				string(sa.Kind),
				sa.Ticker,
				fmt.Sprintf("%.1f", sa.Score),
				money(a, sa.Impact),
			})
		}
		doc.Table(table)
	}
	leaderboard("Best Timed", s.Best3)
	leaderboard("Worst Timed", s.Worst3)
}

func renderBenchmark(doc *md.Markdown, b *hindsight.Benchmark) {
	if b == nil {
		return
	}
	doc.H2(fmt.Sprintf("Benchmark (vs %s)", b.Ticker))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Period", fmt.Sprintf("%s to %s (%.2f years)", b.PeriodStart, b.PeriodEnd, b.PeriodYears)},
			{"Portfolio return", hindsight.Percent(b.PortfolioTWRPct).SignedString()},
			{fmt.Sprintf("%s buy & hold", b.Ticker), hindsight.Percent(b.BuyHoldReturnPct).SignedString()},
			{md.Bold("Alpha"), md.Bold(hindsight.Percent(b.AlphaPct).SignedString())},
			{"Portfolio CAGR", hindsight.Percent(b.PortfolioCAGRPct).SignedString()},
			{fmt.Sprintf("%s CAGR", b.Ticker), hindsight.Percent(b.BenchmarkCAGRPct).SignedString()},
		},
	})
}

func renderRisk(doc *md.Markdown, r *hindsight.RiskMetrics) {
	if r == nil {
		return
	}
	doc.H2("Risk")
	drawdown := fmt.Sprintf("%s from %s to %s", hindsight.Percent(r.MaxDrawdownPct).String(),
		r.MaxDrawdownStart, r.MaxDrawdownEnd)
	if r.MaxDrawdownRecovery != nil {
		drawdown += fmt.Sprintf(", recovered %s", *r.MaxDrawdownRecovery)
	} else {
		drawdown += ", not yet recovered"
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Annualized return", hindsight.Percent(r.AnnualizedReturnPct).SignedString()},
			{"Annualized volatility", hindsight.Percent(r.AnnualizedVolatilityPct).String()},
			{"Sharpe ratio", fmt.Sprintf("%.2f", r.SharpeRatio)},
			{"Sortino ratio", fmt.Sprintf("%.2f", r.SortinoRatio)},
			{"Max drawdown", drawdown},
			{"Win rate", fmt.Sprintf("%.1f%% of %d trading days", r.WinRatePct, r.TotalTradingDays)},
			{"Best day", fmt.Sprintf("%s (%s)", hindsight.Percent(r.BestDayReturnPct).SignedString(), r.BestDayDate)},
			{"Worst day", fmt.Sprintf("%s (%s)", hindsight.Percent(r.WorstDayReturnPct).SignedString(), r.WorstDayDate)},
		},
	})
}

func renderPatterns(doc *md.Markdown, a *hindsight.Analysis) {
	s := a.Summary
	if s == nil {
		return
	}
	c := s.Patterns
	doc.H2("Behavioral Patterns")
	items := []string{
		fmt.Sprintf("Panic sells: %d", c.PanicSells),
		fmt.Sprintf("FOMO buys: %d", c.FOMOBuys),
		fmt.Sprintf("Missed dividends: %d (%s forfeited)", c.MissedDividends, money(a, c.TotalMissedIncome)),
		fmt.Sprintf("Wash-sale candidates: %d", c.WashSales),
		fmt.Sprintf("Overtraded tickers: %d", c.Overtrading),
		fmt.Sprintf("DCA actions: %d", c.DCAActions),
	}
	doc.BulletList(items...)
}

func renderRoundTrips(doc *md.Markdown, trips []hindsight.RoundTrip) {
	if len(trips) == 0 {
		return
	}
	doc.H2("Round Trips")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Bought", "Sold", "Held (days)", "Return", "P&L"},
	}
	for _, t := range trips {
		table.Rows = append(table.Rows, []string{
			t.Ticker,
			t.BuyDate.String(),
			t.SellDate.String(),
			fmt.Sprintf("%d", t.HoldingDays),
			hindsight.Percent(t.ReturnPct).SignedString(),
			fmt.Sprintf("%+.2f", t.DollarReturn),
		})
	}
	doc.Table(table)
}

func renderDCA(doc *md.Markdown, sequences []hindsight.DCASequence) {
	if len(sequences) == 0 {
		return
	}
	doc.H2("Recurring Investment Sequences")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Ticker", "Cadence", "Buys", "Invested", "Consistency", "vs Lump Sum"},
	}
	for _, s := range sequences {
		verdict := "lump sum won"
		if s.DCAWon {
			verdict = "DCA won"
		}
		table.Rows = append(table.Rows, []string{
			s.Ticker,
			s.IntervalType,
			fmt.Sprintf("%d", s.NumBuys),
			fmt.Sprintf("%.2f", s.TotalInvested),
			fmt.Sprintf("%.1f", s.ConsistencyScore),
			fmt.Sprintf("%s (%+.2f%% vs %+.2f%%)", verdict, s.DCAReturnPct, s.LumpSumReturnPct),
		})
	}
	doc.Table(table)
}

func renderRecommendations(doc *md.Markdown, recs []hindsight.Recommendation) {
	if len(recs) == 0 {
		return
	}
	doc.H2("Recommendations")
	for _, r := range recs {
		doc.H3(fmt.Sprintf("%s (%s)", r.Category, r.Severity))
		doc.PlainText(r.Example)
		doc.PlainText(r.Advice)
	}
}
