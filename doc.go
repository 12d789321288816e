// Package hindsight evaluates the quality of past trading decisions. It
// replays a chronological brokerage action history against historical market
// data and produces a quantitative review of what those decisions cost or
// earned.
//
// The core functionalities include:
//   - Cost-Basis Tracking: an average-cost state machine that processes
//     actions chronologically into positions, realized P&L and a portfolio
//     summary.
//   - Timing Analysis: per-action timing scores and estimated dollar impact
//     versus the optimal execution inside a bounded window.
//   - Pattern Detection: panic sells, FOMO buys, well and worst timed trades,
//     round trips, wash-sale candidates, overtrading and dollar-cost-averaging
//     sequences.
//   - Benchmark & Risk: Modified-Dietz-style comparison against a reference
//     index, CAGR, and a day-by-day revaluation producing Sharpe, Sortino and
//     max-drawdown statistics.
//
// The engine is a deterministic batch pipeline over immutable inputs: actions
// must arrive sorted by date, market data is a read-only snapshot, and every
// run recomputes all derived state from scratch. Missing or insufficient data
// never fails a run; the affected record is simply absent from the result.
//
// This package serves as the foundational logic for the `hindsight`
// command-line tool.
package hindsight
