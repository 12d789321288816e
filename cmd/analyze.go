package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"
)

// analyzeCmd holds the flags for the 'analyze' subcommand.
type analyzeCmd struct {
	outputFile string
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "run the full analysis and write the results as JSON" }
func (*analyzeCmd) Usage() string {
	return `hindsight analyze [-o <output>]

  Runs cost-basis tracking, timing scores, pattern detection, benchmark and
  risk metrics over the actions file, and writes the full results as JSON.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputFile, "o", "analysis.json", "Output path, or - for stdout")
}

func (c *analyzeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	analysis, err := Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if analysis.RenamedActions > 0 {
		log.Printf("split %d actions across multiple exchanges", analysis.RenamedActions)
	}
	if analysis.SplitAdjusted > 0 {
		log.Printf("adjusted %d actions for stock splits", analysis.SplitAdjusted)
	}

	out := os.Stdout
	if c.outputFile != "-" {
		out, err = os.Create(c.outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.outputFile, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing analysis: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.outputFile != "-" {
		fmt.Printf("Analysis written to %s\n", c.outputFile)
	}
	return subcommands.ExitSuccess
}
