// Package observability provides production-grade observability features
// for the enrichment pipeline: structured logging, metrics, and tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds pipeline context to a logger.
// Returns a new logger with run_id and provider fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "run-123", "openai")
//	enriched.Info("doing work") // includes run_id, provider
func EnrichLogger(logger *slog.Logger, runID, provider string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("provider", provider),
	)
}

// LogRunStart logs the start of an enrichment run.
func LogRunStart(logger *slog.Logger, runID string, pending, batches int) {
	if logger == nil {
		return
	}
	logger.Info("enrichment run starting",
		slog.String("run_id", runID),
		slog.Int("pending_codes", pending),
		slog.Int("batches", batches),
	)
}

// LogRunComplete logs successful run completion.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, codes int) {
	if logger == nil {
		return
	}
	logger.Info("enrichment run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("codes_processed", codes),
	)
}

// LogRunError logs run failure.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("enrichment run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogBatchStart logs batch processing start.
func LogBatchStart(logger *slog.Logger, num, total, size int) {
	if logger == nil {
		return
	}
	logger.Info("batch starting",
		slog.Int("batch", num),
		slog.Int("total_batches", total),
		slog.Int("codes", size),
	)
}

// LogBatchComplete logs successful batch completion.
func LogBatchComplete(logger *slog.Logger, num int, model string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("batch completed",
		slog.Int("batch", num),
		slog.String("model", model),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogBatchFailed logs a batch that exhausted every model.
func LogBatchFailed(logger *slog.Logger, num int, err error) {
	if logger == nil {
		return
	}
	logger.Error("batch failed",
		slog.Int("batch", num),
		slog.String("error", err.Error()),
	)
}

// LogModelFallback logs advancing to the next model in the list.
func LogModelFallback(logger *slog.Logger, from, to string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("model failed, trying fallback",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("error", err.Error()),
	)
}

// LogFlush logs an atomic output table write.
func LogFlush(logger *slog.Logger, path string, rows int, bytes int64) {
	if logger == nil {
		return
	}
	logger.Debug("output flushed",
		slog.String("path", path),
		slog.Int("rows", rows),
		slog.Int64("bytes", bytes),
	)
}

// LogCheckpointError logs checkpoint failure.
func LogCheckpointError(logger *slog.Logger, code string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint failed",
		slog.String("code", code),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
