package airlex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/airlex/pkg/airlex/batch"
	"github.com/randalmurphal/airlex/pkg/airlex/checkpoint"
	"github.com/randalmurphal/airlex/pkg/airlex/config"
	"github.com/randalmurphal/airlex/pkg/airlex/dataset"
	airerrors "github.com/randalmurphal/airlex/pkg/airlex/errors"
	"github.com/randalmurphal/airlex/pkg/airlex/observability"
	"github.com/randalmurphal/airlex/pkg/airlex/provider"
)

// Pipeline runs batched, checkpointed enrichment for one provider.
// Caller, Store, InputPath and OutputPath are required; everything else
// has a sensible default.
type Pipeline struct {
	// Caller performs the LLM calls.
	Caller provider.Caller

	// Store tracks per-code progress.
	Store checkpoint.Store

	// InputPath is the catalog CSV.
	InputPath string

	// OutputPath is the enriched CSV, rewritten atomically per batch.
	OutputPath string

	// Models is the fallback chain, primary first. Defaults to the
	// provider's configured chain.
	Models []string

	// PromptName selects the prompt variant. Defaults to "generic".
	PromptName string

	// BatchSize is the number of codes per provider call.
	BatchSize int

	// ContinueOnError keeps going after a failed batch instead of
	// aborting the run. Failed batches stay unmarked in the checkpoint
	// and are retried on the next run.
	ContinueOnError bool

	// Retry is the per-model retry budget.
	Retry airerrors.RetryConfig

	// Logger receives structured progress events. May be nil.
	Logger *slog.Logger

	// Metrics records pipeline metrics. Defaults to no-op.
	Metrics observability.MetricsRecorder

	// Spans manages trace spans. Defaults to no-op.
	Spans observability.SpanManager
}

// RunSummary reports what a finished run did.
type RunSummary struct {
	// RunID uniquely identifies the run in logs and traces.
	RunID string

	// Provider is the provider name.
	Provider string

	// Column is the output column the run wrote.
	Column string

	// TotalCodes is the catalog size.
	TotalCodes int

	// PendingAtStart is how many codes the checkpoint left to do.
	PendingAtStart int

	// Batches is how many batches the pending codes formed.
	Batches int

	// Processed is how many codes were enriched this run.
	Processed int

	// FailedBatches counts batches that exhausted every model.
	FailedBatches int

	// Model is the model that answered the final batch.
	Model string

	// Duration is the total run time.
	Duration time.Duration
}

// Run executes the pipeline until the catalog is fully enriched, the
// context is cancelled, or a fatal error occurs.
//
// Each batch is merged into the in-memory table and flushed to the
// output file before any of its codes are marked processed. A crash
// between flush and mark re-enriches at most one batch; the reverse
// order could mark codes whose results were never written anywhere.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	providerName := p.Caller.Name()
	runID := uuid.NewString()
	logger := observability.EnrichLogger(p.Logger, runID, providerName)
	metrics := p.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	spans := p.Spans
	if spans == nil {
		spans = observability.NoopSpanManager{}
	}

	column, key := ColumnAndKey(providerName, p.promptName())
	models := p.modelChain(providerName)
	if len(models) == 0 {
		return nil, fmt.Errorf("pipeline: no models configured for provider %q", providerName)
	}
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	retry := p.Retry
	if retry.MaxAttempts == 0 {
		retry = airerrors.DefaultRetry
	}

	summary := &RunSummary{
		RunID:    runID,
		Provider: providerName,
		Column:   column,
	}
	done := observability.TimedOperation()
	defer func() { summary.Duration = time.Duration(done() * float64(time.Millisecond)) }()

	table, err := dataset.Load(p.InputPath)
	if err != nil {
		return summary, fmt.Errorf("load input: %w", err)
	}
	summary.TotalCodes = table.Len()

	// Carry forward columns written by earlier runs (other providers,
	// other prompt variants) before the first flush overwrites the file.
	if existing, err := p.loadExistingOutput(); err != nil {
		return summary, err
	} else if existing != nil {
		table.MergeMeanings(existing)
	}

	processed, err := p.Store.Processed(key)
	if err != nil {
		return summary, fmt.Errorf("read checkpoint: %w", err)
	}
	if err := reconcile(table, processed, column, p.OutputPath); err != nil {
		return summary, err
	}

	pending, err := p.Store.Pending(key, table.Codes())
	if err != nil {
		return summary, fmt.Errorf("read checkpoint: %w", err)
	}
	summary.PendingAtStart = len(pending)

	batches, err := batch.Make(pending, batchSize)
	if err != nil {
		return summary, err
	}
	summary.Batches = len(batches)

	observability.LogRunStart(logger, runID, len(pending), len(batches))
	ctx, runSpan := spans.StartRunSpan(ctx, providerName, runID)

	enricher := &provider.Enricher{
		Caller:  p.Caller,
		Retry:   retry,
		Logger:  logger,
		Metrics: metrics,
	}

	var failures []error
	primary, fallbacks := models[0], models[1:]

	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			spans.EndSpanWithError(runSpan, err)
			observability.LogRunError(logger, runID, err, done())
			return summary, fmt.Errorf("run interrupted: %w", err)
		}

		observability.LogBatchStart(logger, b.Number, len(batches), len(b.Codes))
		batchCtx, batchSpan := spans.StartBatchSpan(ctx, b.Number, len(b.Codes))
		batchDone := observability.TimedOperation()

		enricher.Models = append([]string{primary}, fallbacks...)
		result, model, err := enricher.Enrich(batchCtx, b.Codes, provider.Prompts[p.promptName()])
		elapsed := time.Duration(batchDone() * float64(time.Millisecond))
		metrics.RecordBatch(batchCtx, providerName, len(b.Codes), elapsed, err)
		spans.EndSpanWithError(batchSpan, err)

		if err != nil {
			batchErr := &BatchError{Batch: b.Number, Codes: b.Codes, Err: err}
			observability.LogBatchFailed(logger, b.Number, err)
			summary.FailedBatches++

			if p.ContinueOnError && !isFatal(err) {
				failures = append(failures, batchErr)
				continue
			}
			spans.EndSpanWithError(runSpan, batchErr)
			observability.LogRunError(logger, runID, batchErr, done())
			return summary, batchErr
		}

		if model != primary {
			metrics.RecordFallback(batchCtx, providerName, primary, model)
			// Start the next batch from the model that actually works
			primary = model
		}

		for _, code := range b.Codes {
			table.SetMeanings(column, code, result[code])
		}
		if err := p.flush(batchCtx, table, logger, metrics); err != nil {
			spans.EndSpanWithError(runSpan, err)
			observability.LogRunError(logger, runID, err, done())
			return summary, err
		}
		for _, code := range b.Codes {
			if err := p.Store.MarkProcessed(key, code, model); err != nil {
				observability.LogCheckpointError(logger, code, "mark", err)
				spans.EndSpanWithError(runSpan, err)
				return summary, fmt.Errorf("checkpoint code %s: %w", code, err)
			}
		}

		summary.Processed += len(b.Codes)
		summary.Model = model
		observability.LogBatchComplete(logger, b.Number, model, float64(elapsed.Milliseconds()))
	}

	if len(failures) > 0 {
		err := fmt.Errorf("%d of %d batches failed: %w", len(failures), len(batches), errors.Join(failures...))
		spans.EndSpanWithError(runSpan, err)
		observability.LogRunError(logger, runID, err, done())
		return summary, err
	}

	spans.EndSpanWithError(runSpan, nil)
	observability.LogRunComplete(logger, runID, done(), summary.Processed)
	return summary, nil
}

// flush rewrites the output table atomically.
func (p *Pipeline) flush(ctx context.Context, table *dataset.Table, logger *slog.Logger, metrics observability.MetricsRecorder) error {
	size, err := table.WriteFile(p.OutputPath)
	if err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	observability.LogFlush(logger, p.OutputPath, table.Len(), size)
	metrics.RecordFlush(ctx, size)
	return nil
}

// loadExistingOutput loads the previous output file if one exists.
func (p *Pipeline) loadExistingOutput() (*dataset.Table, error) {
	if _, err := os.Stat(p.OutputPath); os.IsNotExist(err) {
		return nil, nil
	}
	existing, err := dataset.Load(p.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("load existing output: %w", err)
	}
	return existing, nil
}

// validate checks required fields and the prompt variant.
func (p *Pipeline) validate() error {
	if p.Caller == nil {
		return fmt.Errorf("pipeline: Caller is required")
	}
	if p.Store == nil {
		return fmt.Errorf("pipeline: Store is required")
	}
	if p.InputPath == "" {
		return fmt.Errorf("pipeline: InputPath is required")
	}
	if p.OutputPath == "" {
		return fmt.Errorf("pipeline: OutputPath is required")
	}
	if _, ok := provider.Prompts[p.promptName()]; !ok {
		return fmt.Errorf("pipeline: unknown prompt variant %q", p.PromptName)
	}
	return nil
}

// promptName returns the selected prompt variant name.
func (p *Pipeline) promptName() string {
	if p.PromptName == "" {
		return provider.DefaultPrompt
	}
	return p.PromptName
}

// modelChain returns the fallback chain, primary first.
func (p *Pipeline) modelChain(providerName string) []string {
	if len(p.Models) > 0 {
		return p.Models
	}
	if defaults, ok := config.DefaultsFor(providerName); ok {
		return append([]string{defaults.Model}, defaults.Fallbacks...)
	}
	return nil
}

// isFatal reports whether a batch error should abort the run even with
// ContinueOnError set. Auth failures and cancellation will fail every
// subsequent batch the same way.
func isFatal(err error) bool {
	if errors.Is(err, provider.ErrModelsExhausted) {
		return false
	}
	return airerrors.Categorize(err) == airerrors.CategoryPermanent
}
