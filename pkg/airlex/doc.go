// Package airlex enriches a catalog of 3-letter airport codes with their
// non-aviation meanings (dictionary words, abbreviations, acronyms) by
// querying LLM providers in batches.
//
// The pipeline is resumable: every processed code is recorded in a
// durable checkpoint, and a restarted run only pays for codes it has not
// already enriched. The enriched table is flushed atomically after every
// batch, so a crash at any point loses at most the batch in flight.
//
// Typical use:
//
//	store, err := checkpoint.NewSQLiteStore("enrichment-checkpoint.db")
//	if err != nil { ... }
//	defer store.Close()
//
//	p := &airlex.Pipeline{
//		Caller:     provider.NewOpenAIClient(apiKey),
//		Store:      store,
//		InputPath:  "airport-code-dataset.csv",
//		OutputPath: "airport-code-dataset-enriched.csv",
//		Logger:     slog.Default(),
//	}
//	summary, err := p.Run(ctx)
package airlex
