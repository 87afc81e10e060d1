// Package errors provides error handling and categorization for the
// enrichment pipeline.
//
// The package implements a layered error handling approach:
//   - Categorization: Classify errors for appropriate handling
//   - Retry: Handle transient failures with exponential backoff
//   - Fallback: Try the next model in the list when the current one fails
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Category represents how an error should be handled.
type Category int

const (
	// CategoryTransient indicates retrying the same model will likely help.
	// Examples: rate limits, timeouts, temporary network issues.
	CategoryTransient Category = iota

	// CategoryPermanent indicates neither retry nor fallback will help.
	// Examples: authentication failures, invalid configuration.
	CategoryPermanent

	// CategoryFallback indicates the next model in the list might succeed.
	// Examples: unknown model names, malformed JSON output, incomplete responses.
	CategoryFallback
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	case CategoryFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this error should be handled.
	Category Category

	// Retries is the number of attempts that have been made.
	Retries int

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s, attempts: %d)",
			e.Context, e.Err, e.Category, e.Retries)
	}
	return fmt.Sprintf("%s (category: %s, attempts: %d)",
		e.Err, e.Category, e.Retries)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorized creates a new categorized error.
func NewCategorized(err error, category Category, context string) *CategorizedError {
	return &CategorizedError{
		Err:      err,
		Category: category,
		Context:  context,
	}
}

// Transient creates a transient error.
func Transient(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryTransient, context)
}

// Permanent creates a permanent error.
func Permanent(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryPermanent, context)
}

// Fallback creates a fallback error.
func Fallback(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryFallback, context)
}

// Categorize determines how an error should be handled.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent // shouldn't happen, fail safe
	}

	// Check for already-categorized errors
	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	// Check for HTTP errors
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 429, 503, 504:
			return CategoryTransient
		case 401, 403:
			return CategoryPermanent
		case 400, 404:
			// Unknown or retired model names surface as 400/404
			return CategoryFallback
		default:
			if httpErr.StatusCode >= 500 {
				return CategoryTransient // server errors are often transient
			}
			return CategoryPermanent
		}
	}

	// Check for JSON parse errors
	var jsonErr *JSONParseError
	if errors.As(err, &jsonErr) {
		return CategoryFallback // another model might produce valid JSON
	}

	// Check for timeout errors
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return CategoryTransient
	}

	// Cancellation is never worth retrying
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryPermanent
	}

	// Unknown errors are permanent (fail safe)
	return CategoryPermanent
}

// IsRetryable reports whether the error should be retried on the same model.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}

// IsFallback reports whether trying the next model might help.
func IsFallback(err error) bool {
	return Categorize(err) == CategoryFallback
}
