package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	airerrors "github.com/randalmurphal/airlex/pkg/airlex/errors"
	"github.com/randalmurphal/airlex/pkg/airlex/observability"
)

// Enricher drives a Caller through a fallback chain of models.
//
// For each model, transient failures retry with backoff up to the retry
// budget. A fallback-category failure (unknown model, unparseable
// output) or an exhausted transient budget moves to the next model.
// Permanent failures abort immediately.
type Enricher struct {
	// Caller performs the actual provider calls.
	Caller Caller

	// Models is the fallback chain, primary first. Duplicates are
	// skipped.
	Models []string

	// Retry is the per-model retry budget.
	Retry airerrors.RetryConfig

	// Logger receives fallback and retry events. May be nil.
	Logger *slog.Logger

	// Metrics records per-attempt provider call metrics. May be nil.
	Metrics observability.MetricsRecorder
}

// NewEnricher builds an Enricher with the default retry budget.
func NewEnricher(caller Caller, models []string, logger *slog.Logger) *Enricher {
	return &Enricher{
		Caller: caller,
		Models: models,
		Retry:  airerrors.DefaultRetry,
		Logger: logger,
	}
}

// Enrich asks the provider for the meanings of a batch of codes.
// It returns the parsed result and the model that produced it.
//
// On success the model returned is the one that answered, which may be
// a fallback; callers should start the next batch from it to avoid
// paying the primary model's failure again.
func (e *Enricher) Enrich(ctx context.Context, codes []string, promptTemplate string) (Result, string, error) {
	prompt := BuildPrompt(promptTemplate, codes)
	order := e.tryOrder()
	if len(order) == 0 {
		return nil, "", fmt.Errorf("no models configured: %w", ErrModelsExhausted)
	}
	var lastErr error

	for i, model := range order {
		if i > 0 {
			observability.LogModelFallback(e.Logger, order[i-1], model, lastErr)
		}

		res := airerrors.WithRetryContext(ctx, e.Retry, func(ctx context.Context) (Result, error) {
			return e.callOnce(ctx, prompt, codes, model)
		})
		if res.Err == nil {
			return res.Value, model, nil
		}
		lastErr = res.Err

		switch airerrors.Categorize(res.Err) {
		case airerrors.CategoryFallback, airerrors.CategoryTransient:
			// Transient here means the retry budget ran out; the next
			// model may have separate rate limits, so keep going.
			continue
		default:
			return nil, model, res.Err
		}
	}

	return nil, "", fmt.Errorf("%w: %w", ErrModelsExhausted, lastErr)
}

// callOnce performs a single call-and-parse attempt against one model.
// Every attempt is recorded as one provider call, whether it failed on
// the wire or on parsing.
func (e *Enricher) callOnce(ctx context.Context, prompt string, codes []string, model string) (Result, error) {
	start := time.Now()
	raw, err := e.Caller.Call(ctx, prompt, model)

	var result Result
	if err != nil {
		err = &CallError{Provider: e.Caller.Name(), Model: model, Err: err}
	} else {
		result, err = Parse(raw, codes, model)
	}
	e.metrics().RecordProviderCall(ctx, e.Caller.Name(), model, time.Since(start), err)
	return result, err
}

func (e *Enricher) metrics() observability.MetricsRecorder {
	if e.Metrics == nil {
		return observability.NoopMetrics{}
	}
	return e.Metrics
}

// tryOrder returns the model chain with duplicates removed.
func (e *Enricher) tryOrder() []string {
	seen := make(map[string]bool, len(e.Models))
	order := make([]string, 0, len(e.Models))
	for _, m := range e.Models {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		order = append(order, m)
	}
	return order
}
