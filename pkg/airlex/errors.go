package airlex

import (
	"fmt"
	"strings"
)

// ReconciliationError indicates the checkpoint and the output table
// disagree: codes marked processed have no value in the output. The run
// refuses to continue because silently re-enriching would double-bill
// and silently skipping would lose data.
type ReconciliationError struct {
	// Output is the output table path.
	Output string

	// Column is the enrichment column that should hold the values.
	Column string

	// Missing lists processed codes with no value in the output.
	Missing []string
}

// Error implements the error interface.
func (e *ReconciliationError) Error() string {
	preview := e.Missing
	suffix := ""
	if len(preview) > 5 {
		preview = preview[:5]
		suffix = fmt.Sprintf(" (and %d more)", len(e.Missing)-5)
	}
	return fmt.Sprintf(
		"checkpoint marks codes processed but %s has no %s value for %s%s; remove the stale checkpoint or restore the output file",
		e.Output, e.Column, strings.Join(preview, ", "), suffix)
}

// BatchError wraps a batch that failed after exhausting every model.
type BatchError struct {
	// Batch is the 1-based batch number.
	Batch int

	// Codes are the codes the batch carried.
	Codes []string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d (%d codes): %v", e.Batch, len(e.Codes), e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BatchError) Unwrap() error {
	return e.Err
}
