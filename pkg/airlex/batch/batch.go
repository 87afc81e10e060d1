// Package batch partitions pending codes into fixed-size work units.
package batch

import "fmt"

// Batch is one unit of enrichment work: a contiguous slice of pending
// codes, numbered from 1 for operator-facing progress logs.
type Batch struct {
	// Number is the 1-based position of this batch within the run.
	Number int

	// Codes are the codes to enrich, in catalog order.
	Codes []string
}

// Make partitions codes into batches of at most size codes each,
// preserving order. The final batch may be smaller. An empty input
// yields no batches.
func Make(codes []string, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}

	batches := make([]Batch, 0, (len(codes)+size-1)/size)
	for start := 0; start < len(codes); start += size {
		end := start + size
		if end > len(codes) {
			end = len(codes)
		}
		batches = append(batches, Batch{
			Number: len(batches) + 1,
			Codes:  codes[start:end],
		})
	}
	return batches, nil
}

// Count returns the number of batches needed for n codes at the given
// size, without materializing them.
func Count(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
