package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the airlex command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "airlex",
		Short: "Enrich airport codes with non-aviation meanings",
		Long: `airlex enriches a CSV catalog of 3-letter airport codes with their
non-aviation meanings (dictionary words, abbreviations, acronyms) by
querying LLM providers in batches.

Progress is checkpointed after every batch, so an interrupted run
resumes where it stopped without re-billing completed codes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		NewEnrichCmd(&verbose),
		NewReportCmd(),
	)
	return root
}

// newLogger builds the CLI logger writing to stderr.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
