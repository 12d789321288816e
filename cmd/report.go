package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/hindsight/renderer"
	"github.com/google/subcommands"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	chartFile string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the analysis as a formatted report" }
func (*reportCmd) Usage() string {
	return `hindsight report [-chart <png>]

  Runs the analysis and renders it as markdown in the terminal. With -chart,
  also writes the daily portfolio value chart as a PNG.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.chartFile, "chart", "", "Write the portfolio value chart to this PNG path")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	analysis, err := Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ReportMarkdown(analysis))

	if c.chartFile != "" {
		png, err := renderer.ValueChart(analysis.Risk)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering chart: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(c.chartFile, png, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing chart %q: %v\n", c.chartFile, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Chart written to %s\n", c.chartFile)
	}
	return subcommands.ExitSuccess
}
