package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/airlex/pkg/airlex/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCSV writes content to a temp file and returns its path.
func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, "code,name,country\nlax,Los Angeles,US\nJFK,New York,US\n")

	table, err := dataset.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"LAX", "JFK"}, table.Codes())
	assert.Equal(t, []string{"code", "name", "country"}, table.Columns())

	rec, ok := table.Get("lax") // lookup normalizes case
	require.True(t, ok)
	assert.Equal(t, "Los Angeles", rec.Fields["name"])
}

func TestLoad_MissingCodeColumn(t *testing.T) {
	path := writeCSV(t, "iata,name\nLAX,Los Angeles\n")

	_, err := dataset.Load(path)
	var formatErr *dataset.FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Contains(t, formatErr.Reason, "code")
}

func TestLoad_DuplicateCode(t *testing.T) {
	path := writeCSV(t, "code,name\nLAX,Los Angeles\nlax,Duplicate\n")

	_, err := dataset.Load(path)
	var formatErr *dataset.FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, 3, formatErr.Line)
	assert.Contains(t, formatErr.Reason, "duplicate")
}

func TestLoad_EmptyCode(t *testing.T) {
	path := writeCSV(t, "code,name\nLAX,Los Angeles\n,Nowhere\n")

	_, err := dataset.Load(path)
	var formatErr *dataset.FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Contains(t, formatErr.Reason, "empty code")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	_, err := dataset.Load(path)
	var formatErr *dataset.FormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := dataset.Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestLoad_Idempotent(t *testing.T) {
	path := writeCSV(t, "code,name\nLAX,Los Angeles\nJFK,New York\n")

	t1, err := dataset.Load(path)
	require.NoError(t, err)
	t2, err := dataset.Load(path)
	require.NoError(t, err)

	assert.Equal(t, t1.Codes(), t2.Codes())
	assert.Equal(t, t1.Columns(), t2.Columns())
}

func TestSetMeanings_EmptyIsDistinctFromUnset(t *testing.T) {
	path := writeCSV(t, "code,name\nLAX,Los Angeles\nJFK,New York\n")
	table, err := dataset.Load(path)
	require.NoError(t, err)

	require.True(t, table.SetMeanings("meanings_openai", "LAX", nil))

	lax, _ := table.Get("LAX")
	meanings, ok := lax.Meanings("meanings_openai")
	assert.True(t, ok, "processed with nothing found should still be present")
	assert.Empty(t, meanings)

	jfk, _ := table.Get("JFK")
	_, ok = jfk.Meanings("meanings_openai")
	assert.False(t, ok, "never-processed record should have no value")
}

func TestSetMeanings_UnknownCode(t *testing.T) {
	path := writeCSV(t, "code\nLAX\n")
	table, err := dataset.Load(path)
	require.NoError(t, err)

	assert.False(t, table.SetMeanings("meanings_openai", "ZZZ", []string{"x"}))
}

func TestSetMeanings_OverwriteIsIdempotent(t *testing.T) {
	path := writeCSV(t, "code\nAPI\n")
	table, err := dataset.Load(path)
	require.NoError(t, err)

	meanings := []string{"Application Programming Interface"}
	table.SetMeanings("meanings_openai", "API", meanings)
	table.SetMeanings("meanings_openai", "API", meanings)

	rec, _ := table.Get("API")
	got, ok := rec.Meanings("meanings_openai")
	require.True(t, ok)
	assert.Equal(t, meanings, got)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := writeCSV(t, "code,name\nLAX,Los Angeles\nAPI,Apalachicola\n")
	table, err := dataset.Load(path)
	require.NoError(t, err)

	table.SetMeanings("meanings_openai", "API", []string{"Application Programming Interface", "api"})
	table.SetMeanings("meanings_openai", "LAX", nil) // processed, nothing found

	out := filepath.Join(t.TempDir(), "out.csv")
	size, err := table.WriteFile(out)
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))

	loaded, err := dataset.Load(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"LAX", "API"}, loaded.Codes())
	assert.Equal(t, []string{"meanings_openai"}, loaded.MeaningColumns())

	api, _ := loaded.Get("API")
	meanings, ok := api.Meanings("meanings_openai")
	require.True(t, ok)
	assert.Equal(t, []string{"Application Programming Interface", "api"}, meanings)

	lax, _ := loaded.Get("LAX")
	meanings, ok = lax.Meanings("meanings_openai")
	require.True(t, ok)
	assert.Empty(t, meanings)
}

func TestWriteFile_Atomic(t *testing.T) {
	path := writeCSV(t, "code\nLAX\n")
	table, err := dataset.Load(path)
	require.NoError(t, err)

	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	_, err = table.WriteFile(out)
	require.NoError(t, err)
	_, err = table.WriteFile(out)
	require.NoError(t, err)

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())
}

func TestMergeMeanings_PreservesOtherColumns(t *testing.T) {
	path := writeCSV(t, "code\nLAX\nAPI\n")
	current, err := dataset.Load(path)
	require.NoError(t, err)

	previous, err := dataset.Load(path)
	require.NoError(t, err)
	previous.SetMeanings("meanings_gemini", "API", []string{"Application Programming Interface"})
	previous.SetMeanings("meanings_openai", "API", []string{"stale value"})

	// Current run already produced a fresh openai value
	current.SetMeanings("meanings_openai", "API", []string{"fresh value"})
	current.MergeMeanings(previous)

	api, _ := current.Get("API")
	openai, _ := api.Meanings("meanings_openai")
	assert.Equal(t, []string{"fresh value"}, openai, "existing values must not be overwritten")

	gemini, ok := api.Meanings("meanings_gemini")
	require.True(t, ok, "other provider's column should be preserved")
	assert.Equal(t, []string{"Application Programming Interface"}, gemini)
}

func TestSplitJoinMeanings(t *testing.T) {
	assert.Empty(t, dataset.SplitMeanings(""))
	assert.Empty(t, dataset.SplitMeanings("   "))
	assert.Equal(t, []string{"api", "Air Pollution Index"},
		dataset.SplitMeanings("api; Air Pollution Index"))
	assert.Equal(t, []string{"lone"}, dataset.SplitMeanings("lone;"))

	assert.Equal(t, "a; b", dataset.JoinMeanings([]string{"a", "b"}))
	assert.Equal(t, "", dataset.JoinMeanings(nil))
}
