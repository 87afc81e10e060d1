// Package provider implements LLM provider clients for code enrichment.
//
// A Caller sends one prompt to one model and returns the raw completion
// text. The Enricher layers retry and model fallback on top of a Caller:
// transient failures (rate limits, server errors) retry the same model
// with exponential backoff, while fallback failures (unknown models,
// unparseable output) move to the next model in the list.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Result maps a code to its extracted non-aviation meanings.
// A code mapped to an empty slice was looked up and has none.
type Result map[string][]string

// Caller sends a single prompt to a single model.
// Implementations must be safe for concurrent use.
type Caller interface {
	// Name returns the provider name ("openai", "gemini").
	Name() string

	// Call sends the prompt to the given model and returns the raw
	// completion text. Failures should carry enough type information
	// for categorization (HTTPError for status codes, TimeoutError
	// for deadline overruns).
	Call(ctx context.Context, prompt, model string) (string, error)
}

// ErrModelsExhausted indicates every model in the fallback chain failed.
var ErrModelsExhausted = errors.New("all models exhausted")

// CallError wraps a provider call failure with provider and model context.
type CallError struct {
	Provider string
	Model    string
	Err      error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return fmt.Sprintf("%s call with model %s: %v", e.Provider, e.Model, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CallError) Unwrap() error {
	return e.Err
}

// ParseError indicates a model response could not be turned into a
// complete Result. Missing lists the requested codes absent from the
// response when the JSON itself was valid.
type ParseError struct {
	Model   string
	Missing []string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("parse %s response: missing codes %s",
			e.Model, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("parse %s response: %v", e.Model, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ParseError) Unwrap() error {
	return e.Err
}
