package config

// Built-in defaults for the enrichment pipeline.
const (
	// DefaultBatchSize is the number of codes submitted per provider call.
	DefaultBatchSize = 30

	// DefaultInputCSV is the catalog of airport codes to enrich.
	DefaultInputCSV = "airport-code-dataset.csv"

	// DefaultOutputCSV is the enriched catalog written after each batch.
	DefaultOutputCSV = "airport-code-dataset-enriched.csv"

	// DefaultCheckpointDB is the SQLite file recording per-code progress.
	DefaultCheckpointDB = "enrichment-checkpoint.db"
)

// ProviderDefaults holds the per-provider model list and output column.
type ProviderDefaults struct {
	// Model is the primary model tried first for every batch.
	Model string

	// Fallbacks are tried in order when the current model fails.
	Fallbacks []string

	// Column is the output CSV column for this provider's meanings.
	Column string
}

// providerDefaults maps provider name to its defaults.
var providerDefaults = map[string]ProviderDefaults{
	"openai": {
		Model:     "gpt-5.2",
		Fallbacks: []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1"},
		Column:    "meanings_openai",
	},
	"gemini": {
		Model:     "gemini-2.5-pro",
		Fallbacks: []string{"gemini-2.0-flash", "gemini-1.5-pro"},
		Column:    "meanings_gemini",
	},
}

// DefaultsFor returns the defaults for a provider.
// The second return value is false for unknown providers.
func DefaultsFor(provider string) (ProviderDefaults, bool) {
	def, ok := providerDefaults[provider]
	return def, ok
}

// Providers returns the names of all known providers in stable order.
func Providers() []string {
	return []string{"openai", "gemini"}
}
