// Package dataset loads the airport-code catalog from CSV and writes the
// enriched table back atomically.
//
// The catalog is an ordered set of records keyed by a unique 3-letter code.
// Base columns from the input file are preserved verbatim; enrichment adds
// one meanings_<provider> column per provider run. A present-but-empty
// meanings cell means "processed, no non-aviation meaning found", which is
// distinct from the column being absent for that record ("not yet processed").
package dataset

import (
	"sort"
	"strings"
)

// MeaningsPrefix marks enrichment columns in the CSV header.
const MeaningsPrefix = "meanings_"

// Record is one row of the catalog.
type Record struct {
	// Code is the uppercase 3-letter airport code (unique key).
	Code string

	// Fields holds the base column values from the input file.
	Fields map[string]string

	// meanings maps enrichment column name to the parsed meaning list.
	// A key that is present with an empty slice means "processed, nothing
	// found". A missing key means the record was never processed for that
	// column.
	meanings map[string][]string
}

// Meanings returns the meaning list for an enrichment column.
// The second return value reports whether the record has a value for the
// column at all.
func (r *Record) Meanings(column string) ([]string, bool) {
	m, ok := r.meanings[column]
	return m, ok
}

// SetMeanings sets the meaning list for an enrichment column, overwriting
// any previous value. A nil list is stored as an empty one so that
// "processed, nothing found" survives round trips.
func (r *Record) SetMeanings(column string, meanings []string) {
	if r.meanings == nil {
		r.meanings = make(map[string][]string)
	}
	if meanings == nil {
		meanings = []string{}
	}
	r.meanings[column] = meanings
}

// Table is the ordered catalog plus its enrichment columns.
type Table struct {
	columns []string // base input columns, in file order
	records []*Record
	index   map[string]*Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Columns returns the base column names in input order.
// The returned slice must not be modified.
func (t *Table) Columns() []string {
	return t.columns
}

// Codes returns all codes in catalog order.
func (t *Table) Codes() []string {
	codes := make([]string, len(t.records))
	for i, r := range t.records {
		codes[i] = r.Code
	}
	return codes
}

// Get returns the record for a code.
func (t *Table) Get(code string) (*Record, bool) {
	r, ok := t.index[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Records returns all records in catalog order.
// The returned slice must not be modified.
func (t *Table) Records() []*Record {
	return t.records
}

// MeaningColumns returns all enrichment column names present in the table,
// sorted for a stable output header.
func (t *Table) MeaningColumns() []string {
	seen := make(map[string]bool)
	for _, r := range t.records {
		for col := range r.meanings {
			seen[col] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// SetMeanings sets the meaning list for (column, code).
// Returns false if the code is not in the catalog.
func (t *Table) SetMeanings(column, code string, meanings []string) bool {
	r, ok := t.Get(code)
	if !ok {
		return false
	}
	r.SetMeanings(column, meanings)
	return true
}

// MergeMeanings copies enrichment columns from another table into this one
// for matching codes, without overwriting values already present here.
// Used to preserve other providers' columns when re-flushing the output file.
func (t *Table) MergeMeanings(other *Table) {
	if other == nil {
		return
	}
	for _, or := range other.records {
		r, ok := t.index[or.Code]
		if !ok {
			continue
		}
		for col, meanings := range or.meanings {
			if _, exists := r.meanings[col]; exists {
				continue
			}
			r.SetMeanings(col, meanings)
		}
	}
}

// SplitMeanings parses a semicolon-joined meanings cell into trimmed,
// non-empty strings.
func SplitMeanings(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return []string{}
	}
	parts := strings.Split(cell, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JoinMeanings renders a meaning list as a semicolon-joined cell.
func JoinMeanings(meanings []string) string {
	return strings.Join(meanings, "; ")
}
