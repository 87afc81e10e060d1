/*
Package config provides type-safe configuration extraction from map[string]any
plus the built-in provider defaults for the enrichment pipeline.

# Overview

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values.
This is useful for extracting configuration values from YAML/JSON structures
without verbose type assertions and nil checks.

# Basic Usage

Create a Config from any map and extract values with defaults:

	cfg := config.New(map[string]any{
	    "provider":   "openai",
	    "batch_size": 30,
	})

	provider := cfg.String("provider", "openai")
	size := cfg.Int("batch_size", config.DefaultBatchSize)

# File Loading

Load configuration from YAML or JSON files:

	cfg, err := config.FromFile("airlex.yaml")
	if err != nil {
	    log.Fatal(err)
	}

# Provider Defaults

DefaultsFor returns the default model, fallback list, and output column
for a known provider:

	def, ok := config.DefaultsFor("gemini")
	// def.Model == "gemini-2.5-pro"

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation. However, if the original map is modified
externally, behavior is undefined.
*/
package config
