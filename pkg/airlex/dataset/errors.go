package dataset

import "fmt"

// FormatError indicates a malformed input table.
// It aborts the run before any provider calls are made.
type FormatError struct {
	// Path is the file that failed to load.
	Path string

	// Line is the 1-based line number, or 0 when not row-specific.
	Line int

	// Reason describes what is wrong.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid dataset %s (line %d): %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("invalid dataset %s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FormatError) Unwrap() error {
	return e.Err
}
