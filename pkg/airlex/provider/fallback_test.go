package provider_test

import (
	"context"
	"testing"
	"time"

	airerrors "github.com/randalmurphal/airlex/pkg/airlex/errors"
	"github.com/randalmurphal/airlex/pkg/airlex/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRetry keeps test backoffs negligible.
var fastRetry = airerrors.RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     5 * time.Millisecond,
	BackoffFactor:  2.0,
}

func newTestEnricher(mock *provider.MockCaller, models ...string) *provider.Enricher {
	return &provider.Enricher{
		Caller: mock,
		Models: models,
		Retry:  fastRetry,
	}
}

func TestEnrich_PrimaryModelSucceeds(t *testing.T) {
	mock := &provider.MockCaller{
		Default: provider.MockResponse{
			Text: provider.ScriptedResult(map[string][]string{"BYE": {"bye"}}),
		},
	}
	enricher := newTestEnricher(mock, "gpt-5.2", "gpt-4o")

	result, model, err := enricher.Enrich(context.Background(), []string{"BYE"}, provider.Prompts[provider.PromptGeneric])
	require.NoError(t, err)
	assert.Equal(t, "gpt-5.2", model)
	assert.Equal(t, []string{"bye"}, result["BYE"])
	assert.Equal(t, 1, mock.CallCount())
}

func TestEnrich_RetriesTransientOnSameModel(t *testing.T) {
	ok := provider.ScriptedResult(map[string][]string{"BYE": {"bye"}})
	mock := &provider.MockCaller{
		Responses: map[string][]provider.MockResponse{
			"gpt-5.2": {
				{Err: &airerrors.HTTPError{StatusCode: 429, Message: "rate limited"}},
				{Text: ok},
			},
		},
	}
	enricher := newTestEnricher(mock, "gpt-5.2", "gpt-4o")

	_, model, err := enricher.Enrich(context.Background(), []string{"BYE"}, "{codes}")
	require.NoError(t, err)
	assert.Equal(t, "gpt-5.2", model, "rate limits retry the same model, not the fallback")
	assert.Equal(t, 2, mock.CallCount())
}

func TestEnrich_FallsBackOnModelError(t *testing.T) {
	ok := provider.ScriptedResult(map[string][]string{"BYE": {"bye"}})
	mock := &provider.MockCaller{
		Responses: map[string][]provider.MockResponse{
			"gpt-5.2": {{Err: &airerrors.HTTPError{StatusCode: 404, Message: "model not found"}}},
		},
		Default: provider.MockResponse{Text: ok},
	}
	enricher := newTestEnricher(mock, "gpt-5.2", "gpt-4o")

	result, model, err := enricher.Enrich(context.Background(), []string{"BYE"}, "{codes}")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", model)
	assert.Equal(t, []string{"bye"}, result["BYE"])

	calls := mock.Calls()
	require.Len(t, calls, 2, "model errors skip straight to the fallback, no retries")
	assert.Equal(t, "gpt-5.2", calls[0].Model)
	assert.Equal(t, "gpt-4o", calls[1].Model)
}

func TestEnrich_FallsBackOnUnparseableOutput(t *testing.T) {
	ok := provider.ScriptedResult(map[string][]string{"BYE": {"bye"}})
	mock := &provider.MockCaller{
		Responses: map[string][]provider.MockResponse{
			"gpt-5.2": {{Text: "Sorry, I can't help with that."}},
		},
		Default: provider.MockResponse{Text: ok},
	}
	enricher := newTestEnricher(mock, "gpt-5.2", "gpt-4o")

	_, model, err := enricher.Enrich(context.Background(), []string{"BYE"}, "{codes}")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", model)
}

func TestEnrich_PermanentErrorStopsImmediately(t *testing.T) {
	mock := &provider.MockCaller{
		Default: provider.MockResponse{
			Err: &airerrors.HTTPError{StatusCode: 401, Message: "invalid api key"},
		},
	}
	enricher := newTestEnricher(mock, "gpt-5.2", "gpt-4o")

	_, _, err := enricher.Enrich(context.Background(), []string{"BYE"}, "{codes}")
	require.Error(t, err)
	assert.NotErrorIs(t, err, provider.ErrModelsExhausted)
	assert.Equal(t, 1, mock.CallCount(), "auth failures must not burn the fallback chain")
}

func TestEnrich_AllModelsExhausted(t *testing.T) {
	mock := &provider.MockCaller{
		Default: provider.MockResponse{
			Err: &airerrors.HTTPError{StatusCode: 404, Message: "model not found"},
		},
	}
	enricher := newTestEnricher(mock, "gpt-5.2", "gpt-4o", "gpt-4o-mini")

	_, _, err := enricher.Enrich(context.Background(), []string{"BYE"}, "{codes}")
	assert.ErrorIs(t, err, provider.ErrModelsExhausted)
	assert.Equal(t, 3, mock.CallCount())
}

func TestEnrich_ExhaustedTransientBudgetTriesNextModel(t *testing.T) {
	ok := provider.ScriptedResult(map[string][]string{"BYE": {"bye"}})
	rateLimited := provider.MockResponse{Err: &airerrors.HTTPError{StatusCode: 429, Message: "rate limited"}}
	mock := &provider.MockCaller{
		Responses: map[string][]provider.MockResponse{
			"gpt-5.2": {rateLimited, rateLimited, rateLimited},
		},
		Default: provider.MockResponse{Text: ok},
	}
	enricher := newTestEnricher(mock, "gpt-5.2", "gpt-4o")

	_, model, err := enricher.Enrich(context.Background(), []string{"BYE"}, "{codes}")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", model)
	assert.Equal(t, fastRetry.MaxAttempts+1, mock.CallCount())
}

func TestEnrich_DeduplicatesModels(t *testing.T) {
	mock := &provider.MockCaller{
		Default: provider.MockResponse{
			Err: &airerrors.HTTPError{StatusCode: 404, Message: "model not found"},
		},
	}
	enricher := newTestEnricher(mock, "gpt-4o", "gpt-4o", "gpt-4o")

	_, _, err := enricher.Enrich(context.Background(), []string{"BYE"}, "{codes}")
	assert.ErrorIs(t, err, provider.ErrModelsExhausted)
	assert.Equal(t, 1, mock.CallCount())
}

func TestEnrich_NoModels(t *testing.T) {
	enricher := newTestEnricher(&provider.MockCaller{})

	_, _, err := enricher.Enrich(context.Background(), []string{"BYE"}, "{codes}")
	assert.ErrorIs(t, err, provider.ErrModelsExhausted)
}

func TestEnrich_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &provider.MockCaller{}
	enricher := newTestEnricher(mock, "gpt-5.2", "gpt-4o")

	_, _, err := enricher.Enrich(ctx, []string{"BYE"}, "{codes}")
	require.Error(t, err)
	assert.Equal(t, airerrors.CategoryPermanent, airerrors.Categorize(err))
	assert.Zero(t, mock.CallCount())
}

// attemptRecorder captures RecordProviderCall invocations.
type attemptRecorder struct {
	models []string
	errs   []error
}

func (r *attemptRecorder) RecordBatch(context.Context, string, int, time.Duration, error) {}
func (r *attemptRecorder) RecordFallback(context.Context, string, string, string)         {}
func (r *attemptRecorder) RecordFlush(context.Context, int64)                             {}

func (r *attemptRecorder) RecordProviderCall(_ context.Context, _, model string, _ time.Duration, err error) {
	r.models = append(r.models, model)
	r.errs = append(r.errs, err)
}

func TestEnrich_RecordsEveryModelAttempt(t *testing.T) {
	ok := provider.ScriptedResult(map[string][]string{"BYE": {"bye"}})
	mock := &provider.MockCaller{
		Responses: map[string][]provider.MockResponse{
			"gpt-5.2": {{Err: &airerrors.HTTPError{StatusCode: 429, Message: "rate limited"}}},
		},
		Default: provider.MockResponse{Text: ok},
	}
	recorder := &attemptRecorder{}
	enricher := &provider.Enricher{
		Caller:  mock,
		Models:  []string{"gpt-5.2"},
		Retry:   fastRetry,
		Metrics: recorder,
	}

	_, _, err := enricher.Enrich(context.Background(), []string{"BYE"}, "{codes}")
	require.NoError(t, err)

	require.Equal(t, []string{"gpt-5.2", "gpt-5.2"}, recorder.models,
		"the rate-limited attempt and the retry are both one call each")
	assert.Error(t, recorder.errs[0])
	assert.NoError(t, recorder.errs[1])
}

func TestEnrich_PromptContainsCodes(t *testing.T) {
	mock := &provider.MockCaller{
		Default: provider.MockResponse{
			Text: provider.ScriptedResult(map[string][]string{"LAX": nil, "BYE": {"bye"}}),
		},
	}
	enricher := newTestEnricher(mock, "gpt-5.2")

	_, _, err := enricher.Enrich(context.Background(), []string{"LAX", "BYE"}, provider.Prompts[provider.PromptGeneric])
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "LAX, BYE")
}
