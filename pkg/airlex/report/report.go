// Package report builds an HTML comparison of the meaning columns in an
// enriched dataset: per-column coverage, pairwise overlap, agreement
// rates, and the codes with the most distinct meanings.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/randalmurphal/airlex/pkg/airlex/dataset"
)

// ColumnStats summarizes one meaning column.
type ColumnStats struct {
	Column        string
	Friendly      string
	Count         int     // codes with at least one meaning
	Pct           float64 // Count as a percentage of the catalog
	Avg           float64 // meanings per covered code
	Min           int
	Max           int
	TotalMeanings int
}

// PairStats compares coverage between two columns.
type PairStats struct {
	A, B      string
	FriendlyA string
	FriendlyB string
	Both      int
	OnlyA     int
	OnlyB     int
	Jaccard   float64
}

// AgreementStats reports how often two columns share at least one
// normalized meaning for codes they both cover.
type AgreementStats struct {
	A, B        string
	FriendlyA   string
	FriendlyB   string
	SharedCodes int
	AgreeCount  int
	AgreePct    float64
}

// OverlapStats reports catalog-wide coverage.
type OverlapStats struct {
	Any     int
	AnyPct  float64
	All     int
	AllPct  float64
	None    int
	NonePct float64
}

// TopCode is one entry in the distinct-meanings leaderboard.
type TopCode struct {
	Code      string
	Distinct  int
	PerColumn map[string][]string
}

// Stats is the full comparison result.
type Stats struct {
	TotalCodes int
	Columns    []string
	PerColumn  []ColumnStats
	Pairwise   []PairStats
	Overlap    OverlapStats
	Agreement  []AgreementStats
	TopCodes   []TopCode
}

// topCodeLimit caps the distinct-meanings leaderboard.
const topCodeLimit = 10

// Compute builds comparison statistics over every meaning column in the
// table. Fails when the table carries no meaning columns at all.
func Compute(table *dataset.Table) (*Stats, error) {
	columns := table.MeaningColumns()
	if len(columns) == 0 {
		return nil, fmt.Errorf("no %s columns found", dataset.MeaningsPrefix)
	}

	total := table.Len()
	colCodes := make(map[string]map[string]bool, len(columns))
	colCounts := make(map[string][]int, len(columns))
	codeMeanings := make(map[string]map[string][]string)
	for _, col := range columns {
		colCodes[col] = make(map[string]bool)
	}

	for _, rec := range table.Records() {
		for _, col := range columns {
			meanings, ok := rec.Meanings(col)
			if !ok || len(meanings) == 0 {
				continue
			}
			colCodes[col][rec.Code] = true
			colCounts[col] = append(colCounts[col], len(meanings))
			if codeMeanings[rec.Code] == nil {
				codeMeanings[rec.Code] = make(map[string][]string)
			}
			codeMeanings[rec.Code][col] = meanings
		}
	}

	stats := &Stats{
		TotalCodes: total,
		Columns:    columns,
		PerColumn:  perColumn(columns, colCodes, colCounts, total),
		Pairwise:   pairwise(columns, colCodes),
		Overlap:    overlap(columns, colCodes, total),
		Agreement:  agreement(columns, colCodes, codeMeanings),
		TopCodes:   topCodes(columns, codeMeanings),
	}
	return stats, nil
}

func perColumn(columns []string, colCodes map[string]map[string]bool, colCounts map[string][]int, total int) []ColumnStats {
	out := make([]ColumnStats, 0, len(columns))
	for _, col := range columns {
		n := len(colCodes[col])
		s := ColumnStats{
			Column:   col,
			Friendly: FriendlyName(col),
			Count:    n,
		}
		for _, c := range colCounts[col] {
			s.TotalMeanings += c
			if s.Min == 0 || c < s.Min {
				s.Min = c
			}
			if c > s.Max {
				s.Max = c
			}
		}
		if total > 0 {
			s.Pct = float64(n) / float64(total) * 100
		}
		if n > 0 {
			s.Avg = float64(s.TotalMeanings) / float64(n)
		}
		out = append(out, s)
	}
	return out
}

func pairwise(columns []string, colCodes map[string]map[string]bool) []PairStats {
	var out []PairStats
	for i, a := range columns {
		for _, b := range columns[i+1:] {
			var both, onlyA, onlyB int
			for code := range colCodes[a] {
				if colCodes[b][code] {
					both++
				} else {
					onlyA++
				}
			}
			for code := range colCodes[b] {
				if !colCodes[a][code] {
					onlyB++
				}
			}
			p := PairStats{
				A: a, B: b,
				FriendlyA: FriendlyName(a),
				FriendlyB: FriendlyName(b),
				Both:      both, OnlyA: onlyA, OnlyB: onlyB,
			}
			if union := both + onlyA + onlyB; union > 0 {
				p.Jaccard = float64(both) / float64(union)
			}
			out = append(out, p)
		}
	}
	return out
}

func overlap(columns []string, colCodes map[string]map[string]bool, total int) OverlapStats {
	anySet := make(map[string]bool)
	allCount := 0
	for code := range colCodes[columns[0]] {
		inAll := true
		for _, col := range columns[1:] {
			if !colCodes[col][code] {
				inAll = false
				break
			}
		}
		if inAll {
			allCount++
		}
	}
	for _, col := range columns {
		for code := range colCodes[col] {
			anySet[code] = true
		}
	}

	o := OverlapStats{
		Any:  len(anySet),
		All:  allCount,
		None: total - len(anySet),
	}
	if total > 0 {
		o.AnyPct = float64(o.Any) / float64(total) * 100
		o.AllPct = float64(o.All) / float64(total) * 100
		o.NonePct = float64(o.None) / float64(total) * 100
	}
	return o
}

func agreement(columns []string, colCodes map[string]map[string]bool, codeMeanings map[string]map[string][]string) []AgreementStats {
	var out []AgreementStats
	for i, a := range columns {
		for _, b := range columns[i+1:] {
			s := AgreementStats{
				A: a, B: b,
				FriendlyA: FriendlyName(a),
				FriendlyB: FriendlyName(b),
			}
			for code := range colCodes[a] {
				if !colCodes[b][code] {
					continue
				}
				s.SharedCodes++
				if tokensOverlap(codeMeanings[code][a], codeMeanings[code][b]) {
					s.AgreeCount++
				}
			}
			if s.SharedCodes > 0 {
				s.AgreePct = float64(s.AgreeCount) / float64(s.SharedCodes) * 100
			}
			out = append(out, s)
		}
	}
	return out
}

func tokensOverlap(a, b []string) bool {
	tokens := make(map[string]bool, len(a))
	for _, m := range a {
		tokens[Normalize(m)] = true
	}
	for _, m := range b {
		if tokens[Normalize(m)] {
			return true
		}
	}
	return false
}

func topCodes(columns []string, codeMeanings map[string]map[string][]string) []TopCode {
	entries := make([]TopCode, 0, len(codeMeanings))
	for code, colMap := range codeMeanings {
		distinct := make(map[string]bool)
		perCol := make(map[string][]string, len(colMap))
		for col, meanings := range colMap {
			perCol[col] = meanings
			for _, m := range meanings {
				distinct[Normalize(m)] = true
			}
		}
		entries = append(entries, TopCode{
			Code:      code,
			Distinct:  len(distinct),
			PerColumn: perCol,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Distinct != entries[j].Distinct {
			return entries[i].Distinct > entries[j].Distinct
		}
		return entries[i].Code < entries[j].Code
	})
	if len(entries) > topCodeLimit {
		entries = entries[:topCodeLimit]
	}
	return entries
}

// Normalize lowercases a meaning and drops any trailing parenthetical so
// that "Python (programming language)" and "python" count as agreement.
func Normalize(meaning string) string {
	s := strings.ToLower(strings.TrimSpace(meaning))
	if i := strings.Index(s, "("); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

// FriendlyName turns "meanings_openai_false_positive" into
// "Openai False Positive" for display.
func FriendlyName(column string) string {
	s := strings.TrimPrefix(column, dataset.MeaningsPrefix)
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
