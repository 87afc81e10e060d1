package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/airlex/pkg/airlex"
	"github.com/randalmurphal/airlex/pkg/airlex/checkpoint"
	"github.com/randalmurphal/airlex/pkg/airlex/config"
	"github.com/randalmurphal/airlex/pkg/airlex/observability"
	"github.com/randalmurphal/airlex/pkg/airlex/provider"
)

// enrichParams holds the enrich command flag values.
type enrichParams struct {
	provider        string
	model           string
	prompt          string
	batchSize       int
	input           string
	output          string
	checkpointDB    string
	configPath      string
	continueOnError bool
}

// NewEnrichCmd creates the "enrich" subcommand. It runs the batched,
// checkpointed enrichment pipeline for one provider. API keys come from
// the environment: OPENAI_API_KEY for openai, GOOGLE_API_KEY or
// GEMINI_API_KEY for gemini.
func NewEnrichCmd(verbose *bool) *cobra.Command {
	var params enrichParams

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich airport codes with non-aviation meanings",
		Long: `Enrich each airport code in the input CSV with its non-aviation
meanings by querying an LLM provider in batches.

The output CSV is rewritten atomically after every batch and every
processed code is recorded in the checkpoint database, so an
interrupted run resumes exactly where it stopped. Columns written by
other providers or prompt variants are preserved.`,
		Example: `  # Enrich with the default OpenAI model
  airlex enrich

  # Use Gemini with a custom batch size
  airlex enrich --provider gemini --batch-size 50

  # Run the false-positive prompt into its own column
  airlex enrich --prompt false-positive

  # Keep going when individual batches fail
  airlex enrich --continue-on-error`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEnrich(cmd, &params, *verbose)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&params.provider, "provider", "openai",
		fmt.Sprintf("LLM provider (%s)", strings.Join(config.Providers(), ", ")))
	flags.StringVar(&params.model, "model", "", "model name (default depends on provider)")
	flags.StringVar(&params.prompt, "prompt", provider.DefaultPrompt,
		fmt.Sprintf("prompt variant (%s)", strings.Join(provider.PromptNames(), ", ")))
	flags.IntVar(&params.batchSize, "batch-size", config.DefaultBatchSize, "codes per API call")
	flags.StringVar(&params.input, "input", config.DefaultInputCSV, "input CSV path")
	flags.StringVar(&params.output, "output", config.DefaultOutputCSV, "output CSV path")
	flags.StringVar(&params.checkpointDB, "checkpoint", config.DefaultCheckpointDB, "checkpoint database path")
	flags.StringVar(&params.configPath, "config", "", "YAML or JSON config file")
	flags.BoolVar(&params.continueOnError, "continue-on-error", false,
		"keep going when a batch exhausts every model")

	return cmd
}

func runEnrich(cmd *cobra.Command, params *enrichParams, verbose bool) error {
	if err := applyConfigFile(cmd, params); err != nil {
		return err
	}

	defaults, ok := config.DefaultsFor(params.provider)
	if !ok {
		return fmt.Errorf("unknown provider %q (use %s)",
			params.provider, strings.Join(config.Providers(), " or "))
	}

	if _, err := os.Stat(params.input); err != nil {
		return fmt.Errorf("input file not found: %s", params.input)
	}

	caller, err := newCaller(cmd.Context(), params.provider)
	if err != nil {
		return err
	}

	store, err := checkpoint.NewSQLiteStore(params.checkpointDB)
	if err != nil {
		return fmt.Errorf("open checkpoint: %w", err)
	}
	defer store.Close()

	_, key := airlex.ColumnAndKey(params.provider, params.prompt)
	model := resolveModel(params.model, store, key, defaults.Model)

	pipeline := &airlex.Pipeline{
		Caller:          caller,
		Store:           store,
		InputPath:       params.input,
		OutputPath:      params.output,
		Models:          append([]string{model}, defaults.Fallbacks...),
		PromptName:      params.prompt,
		BatchSize:       params.batchSize,
		ContinueOnError: params.continueOnError,
		Logger:          newLogger(verbose),
		Metrics:         observability.NewMetricsRecorder(),
		Spans:           observability.NewSpanManager(),
	}

	summary, err := pipeline.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"[%s] Done. Enriched %d codes in %d batches (%d already done). Wrote %s.\n",
		summary.Provider, summary.Processed, summary.Batches,
		summary.TotalCodes-summary.PendingAtStart, params.output)
	return nil
}

// applyConfigFile overlays config file values onto flags the user did
// not set explicitly. Flags always win over the file.
func applyConfigFile(cmd *cobra.Command, params *enrichParams) error {
	if params.configPath == "" {
		return nil
	}

	cfg, err := config.FromFile(params.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("provider") {
		params.provider = cfg.String("provider", params.provider)
	}
	if !flags.Changed("model") {
		params.model = cfg.String("model", params.model)
	}
	if !flags.Changed("prompt") {
		params.prompt = cfg.String("prompt", params.prompt)
	}
	if !flags.Changed("batch-size") {
		params.batchSize = cfg.Int("batch_size", params.batchSize)
	}
	if !flags.Changed("input") {
		params.input = cfg.String("input", params.input)
	}
	if !flags.Changed("output") {
		params.output = cfg.String("output", params.output)
	}
	if !flags.Changed("checkpoint") {
		params.checkpointDB = cfg.String("checkpoint", params.checkpointDB)
	}
	if !flags.Changed("continue-on-error") {
		params.continueOnError = cfg.Bool("continue_on_error", params.continueOnError)
	}
	return nil
}

// resolveModel picks the starting model: the explicit flag, then the
// LLM_MODEL environment variable, then the model the last run recorded
// in the checkpoint, then the provider default. Resuming from the
// recorded model keeps a run that fell back to a working model from
// re-paying the broken primary's failures on every restart.
func resolveModel(flagModel string, store checkpoint.Store, key, defaultModel string) string {
	if flagModel != "" {
		return flagModel
	}
	if env := os.Getenv("LLM_MODEL"); env != "" {
		return env
	}
	if last, err := store.LastModel(key); err == nil && last != "" {
		return last
	}
	return defaultModel
}

// newCaller builds the provider client from environment credentials.
func newCaller(ctx context.Context, providerName string) (provider.Caller, error) {
	switch providerName {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return provider.NewOpenAIClient(apiKey), nil
	case "gemini":
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY or GEMINI_API_KEY not set")
		}
		return provider.NewGeminiClient(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unknown provider %q", providerName)
	}
}
