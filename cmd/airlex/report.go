package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/airlex/pkg/airlex/config"
	"github.com/randalmurphal/airlex/pkg/airlex/dataset"
	"github.com/randalmurphal/airlex/pkg/airlex/report"
)

const defaultReportHTML = "meanings-comparison.html"

// NewReportCmd creates the "report" subcommand. It compares every
// meanings column in an enriched CSV and writes an HTML report.
func NewReportCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an HTML comparison of meaning columns",
		Long: `Compare the meanings columns in an enriched CSV across providers and
prompt variants: per-column coverage, pairwise overlap, agreement
rates, and the codes with the most distinct meanings.`,
		Example: `  airlex report
  airlex report --input enriched.csv --output comparison.html`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := dataset.Load(input)
			if err != nil {
				return fmt.Errorf("load enriched CSV: %w", err)
			}

			stats, err := report.Compute(table)
			if err != nil {
				return err
			}
			if err := report.WriteFile(output, stats); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s (%d codes, %d columns)\n",
				output, stats.TotalCodes, len(stats.Columns))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", config.DefaultOutputCSV, "enriched CSV path")
	cmd.Flags().StringVar(&output, "output", defaultReportHTML, "output HTML path")
	return cmd
}
