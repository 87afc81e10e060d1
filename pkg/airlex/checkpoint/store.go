// Package checkpoint provides durable progress tracking for resumable
// enrichment runs.
//
// A checkpoint entry records that a (provider, code) pair has been
// enriched, together with the model that produced the result. Entries are
// durable before MarkProcessed returns, so a killed run never repeats
// completed work. The checkpoint is the single source of truth for what
// remains to do; the output table is reconciled against it at startup.
package checkpoint

import (
	"errors"
	"fmt"
)

// Store persists per-code enrichment progress.
// Implementations must be safe for concurrent use.
type Store interface {
	// IsProcessed reports whether a code has been enriched for a provider.
	IsProcessed(provider, code string) (bool, error)

	// MarkProcessed durably records that a code has been enriched.
	// The entry must survive process termination immediately after this
	// call returns. Marking an already-processed code overwrites the
	// recorded model.
	MarkProcessed(provider, code, model string) error

	// Pending returns the subset of codes with no processed entry for the
	// provider, preserving the input order.
	Pending(provider string, codes []string) ([]string, error)

	// Processed returns all codes marked processed for the provider, in
	// insertion order. Returns an empty slice (not an error) when none.
	Processed(provider string) ([]string, error)

	// LastModel returns the model recorded by the most recent
	// MarkProcessed for the provider, or "" when no entry exists.
	LastModel(provider string) (string, error)

	// Close releases any resources (connections, files).
	Close() error
}

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("checkpoint store closed")

// CorruptError indicates the underlying storage is unreadable or
// inconsistent. It is fatal: the operator must repair or remove the
// checkpoint rather than let the run guess what has been paid for.
type CorruptError struct {
	// Path is the checkpoint file.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt checkpoint %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CorruptError) Unwrap() error {
	return e.Err
}
