// Package cmd implements the CLI application to analyze a brokerage history.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/hindsight"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&analyzeCmd{}, "analysis")
	c.Register(&reportCmd{}, "analysis")
	c.Register(&assistCmd{}, "analysis")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var actionsFile = flag.String("actions", "actions.jsonl", "Path to the normalized actions file (JSONL format)")
var marketFile = flag.String("market", "market.json", "Path to the market data snapshot (JSON)")
var currency = flag.String("currency", hindsight.DefaultCurrency, "Reporting currency code")
var benchmark = flag.String("benchmark", hindsight.DefaultBenchmark, "Benchmark index ticker")

// DecodeInputs loads the actions and the market snapshot from the app flags.
func DecodeInputs() ([]hindsight.Action, *hindsight.Market, error) {
	af, err := os.Open(*actionsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open actions file: %w", err)
	}
	defer af.Close()
	actions, err := hindsight.DecodeActions(af)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot decode actions %q: %w", *actionsFile, err)
	}

	mf, err := os.Open(*marketFile)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open market file: %w", err)
	}
	defer mf.Close()
	market, err := hindsight.DecodeMarket(mf, *benchmark)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot decode market %q: %w", *marketFile, err)
	}
	return actions, market, nil
}

// Run executes the whole pipeline from the app flags.
func Run() (*hindsight.Analysis, error) {
	actions, market, err := DecodeInputs()
	if err != nil {
		return nil, err
	}
	return hindsight.Analyze(actions, market, *currency), nil
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer cannot initialize (dumb terminals, pipes).
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
