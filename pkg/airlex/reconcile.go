package airlex

import (
	"strings"

	"github.com/randalmurphal/airlex/pkg/airlex/config"
	"github.com/randalmurphal/airlex/pkg/airlex/dataset"
	"github.com/randalmurphal/airlex/pkg/airlex/provider"
)

// ColumnAndKey derives the output column and the checkpoint namespace
// for a provider and prompt variant. The default prompt writes to the
// provider's base column; other variants get a suffixed column and a
// separate checkpoint namespace so variant runs never collide.
func ColumnAndKey(providerName, promptName string) (column, key string) {
	base := dataset.MeaningsPrefix + providerName
	if defaults, ok := config.DefaultsFor(providerName); ok {
		base = defaults.Column
	}

	if promptName == "" || promptName == provider.DefaultPrompt {
		return base, providerName
	}
	suffix := strings.ReplaceAll(promptName, "-", "_")
	return base + "_" + suffix, providerName + "_" + suffix
}

// reconcile verifies that every checkpoint-processed code has a value in
// the merged output table. A present-but-empty meanings cell is a valid
// "processed, nothing found" result; a missing row or missing column is
// not, because the paid-for result no longer exists anywhere.
func reconcile(table *dataset.Table, processed []string, column, outputPath string) error {
	var missing []string
	for _, code := range processed {
		rec, ok := table.Get(code)
		if !ok {
			// No longer in the catalog; nothing to reconcile.
			continue
		}
		if _, ok := rec.Meanings(column); !ok {
			missing = append(missing, code)
		}
	}

	if len(missing) > 0 {
		return &ReconciliationError{Output: outputPath, Column: column, Missing: missing}
	}
	return nil
}
