package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// codeColumn is the required key column in the input CSV.
const codeColumn = "code"

// Load reads a catalog CSV into a Table.
//
// The file must have a header row containing a "code" column. Codes are
// trimmed and uppercased; empty or duplicate codes are a FormatError.
// Columns prefixed with "meanings_" are parsed as enrichment columns so
// that a previously written output file loads back losslessly.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &FormatError{Path: path, Reason: "malformed CSV", Err: err}
	}
	if len(rows) == 0 {
		return nil, &FormatError{Path: path, Reason: "empty file, expected a header row"}
	}

	header := rows[0]
	codeIdx := -1
	var baseCols []string
	var meaningCols []int
	for i, col := range header {
		if col == codeColumn {
			codeIdx = i
		}
		if strings.HasPrefix(col, MeaningsPrefix) {
			meaningCols = append(meaningCols, i)
		} else {
			baseCols = append(baseCols, col)
		}
	}
	if codeIdx == -1 {
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("missing required column %q", codeColumn)}
	}

	t := &Table{
		columns: baseCols,
		index:   make(map[string]*Record),
	}

	for n, row := range rows[1:] {
		line := n + 2 // 1-based, after header
		code := strings.ToUpper(strings.TrimSpace(row[codeIdx]))
		if code == "" {
			return nil, &FormatError{Path: path, Line: line, Reason: "empty code"}
		}
		if _, dup := t.index[code]; dup {
			return nil, &FormatError{Path: path, Line: line, Reason: fmt.Sprintf("duplicate code %q", code)}
		}

		rec := &Record{
			Code:   code,
			Fields: make(map[string]string, len(baseCols)),
		}
		for i, col := range header {
			if strings.HasPrefix(col, MeaningsPrefix) {
				continue
			}
			rec.Fields[col] = row[i]
		}
		for _, i := range meaningCols {
			rec.SetMeanings(header[i], SplitMeanings(row[i]))
		}

		t.records = append(t.records, rec)
		t.index[code] = rec
	}

	return t, nil
}

// WriteFile writes the table to path atomically (write to a temp file in the
// same directory, then rename). The header is the base columns followed by
// the sorted enrichment columns. Returns the number of bytes written.
//
// A record with no value for an enrichment column gets an empty cell, the
// same rendering as "processed, nothing found". The checkpoint store, not
// the output file, is the source of truth for what remains to do.
func (t *Table) WriteFile(path string) (int64, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after successful rename

	meaningCols := t.MeaningColumns()
	header := make([]string, 0, len(t.columns)+len(meaningCols))
	header = append(header, t.columns...)
	header = append(header, meaningCols...)

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for _, rec := range t.records {
		for i, col := range t.columns {
			row[i] = rec.Fields[col]
		}
		for i, col := range meaningCols {
			cell := ""
			if meanings, ok := rec.Meanings(col); ok {
				cell = JoinMeanings(meanings)
			}
			row[len(t.columns)+i] = cell
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return 0, fmt.Errorf("write row %s: %w", rec.Code, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("flush output: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("sync output: %w", err)
	}

	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("stat output: %w", err)
	}
	size := info.Size()

	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("rename output: %w", err)
	}
	return size, nil
}
