package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/airlex/pkg/airlex/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "airlex", root.Use)

	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "enrich")
	assert.Contains(t, names, "report")
}

func TestEnrich_UnknownProvider(t *testing.T) {
	_, err := execute(t, "enrich", "--provider", "claude")
	assert.ErrorContains(t, err, "unknown provider")
}

func TestEnrich_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	dir := t.TempDir()
	input := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(input, []byte("code\nLAX\n"), 0o644))

	_, err := execute(t, "enrich", "--input", input)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestEnrich_MissingInput(t *testing.T) {
	_, err := execute(t, "enrich", "--input", filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorContains(t, err, "input file not found")
}

func TestEnrich_BadConfigFile(t *testing.T) {
	_, err := execute(t, "enrich", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "load config")
}

func TestEnrich_ConfigFileOverlay(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "airlex.yaml")
	// Provider comes from the file when the flag is not set
	require.NoError(t, os.WriteFile(cfgPath, []byte("provider: nosuch\n"), 0o644))

	_, err := execute(t, "enrich", "--config", cfgPath)
	assert.ErrorContains(t, err, "unknown provider")

	// An explicit flag beats the file
	input := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(input, []byte("code\nLAX\n"), 0o644))
	_, err = execute(t, "enrich", "--config", cfgPath, "--provider", "openai", "--input", input)
	assert.ErrorContains(t, err, "OPENAI_API_KEY", "flag should override the config file provider")
}

func TestResolveModel(t *testing.T) {
	t.Setenv("LLM_MODEL", "")

	store := checkpoint.NewMemoryStore()
	defer store.Close()

	assert.Equal(t, "gpt-5.2", resolveModel("", store, "openai", "gpt-5.2"),
		"fresh checkpoint uses the provider default")

	require.NoError(t, store.MarkProcessed("openai", "LAX", "gpt-4o"))
	assert.Equal(t, "gpt-4o", resolveModel("", store, "openai", "gpt-5.2"),
		"a resumed run starts from the model the last run recorded")
	assert.Equal(t, "gpt-5.2", resolveModel("", store, "openai_false_positive", "gpt-5.2"),
		"other prompt namespaces are unaffected")

	assert.Equal(t, "gpt-4.1", resolveModel("gpt-4.1", store, "openai", "gpt-5.2"),
		"an explicit flag wins")

	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", resolveModel("", store, "openai", "gpt-5.2"),
		"the environment beats the checkpoint")
}

func TestReport_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "enriched.csv")
	content := "code,meanings_openai,meanings_gemini\n" +
		"API,Application Programming Interface,Application Programming Interface\n" +
		"BYE,bye,\n"
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))
	output := filepath.Join(dir, "comparison.html")

	out, err := execute(t, "report", "--input", input, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Meanings Comparison Report")
}

func TestReport_MissingInput(t *testing.T) {
	_, err := execute(t, "report", "--input", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestReport_NoMeaningColumns(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plain.csv")
	require.NoError(t, os.WriteFile(input, []byte("code,name\nLAX,Los Angeles\n"), 0o644))

	_, err := execute(t, "report", "--input", input)
	assert.ErrorContains(t, err, "no meanings_ columns")
}
