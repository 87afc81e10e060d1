package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records enrichment pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordBatch records a processed batch with its duration and error status.
	RecordBatch(ctx context.Context, provider string, size int, duration time.Duration, err error)

	// RecordProviderCall records one model attempt against a provider.
	RecordProviderCall(ctx context.Context, provider, model string, duration time.Duration, err error)

	// RecordFallback records advancing from one model to the next.
	RecordFallback(ctx context.Context, provider, from, to string)

	// RecordFlush records an atomic output table write.
	RecordFlush(ctx context.Context, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	batches        metric.Int64Counter
	batchLatency   metric.Float64Histogram
	batchErrors    metric.Int64Counter
	codesProcessed metric.Int64Counter
	providerCalls  metric.Int64Counter
	callLatency    metric.Float64Histogram
	fallbacks      metric.Int64Counter
	flushSize      metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("airlex")

	batches, err := meter.Int64Counter("airlex.batches",
		metric.WithDescription("Number of batches processed"),
	)
	if err != nil {
		return nil, err
	}

	batchLatency, err := meter.Float64Histogram("airlex.batch.latency_ms",
		metric.WithDescription("Batch processing latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	batchErrors, err := meter.Int64Counter("airlex.batch.errors",
		metric.WithDescription("Number of batches that exhausted every model"),
	)
	if err != nil {
		return nil, err
	}

	codesProcessed, err := meter.Int64Counter("airlex.codes.processed",
		metric.WithDescription("Number of airport codes enriched"),
	)
	if err != nil {
		return nil, err
	}

	providerCalls, err := meter.Int64Counter("airlex.provider.calls",
		metric.WithDescription("Number of provider model attempts"),
	)
	if err != nil {
		return nil, err
	}

	callLatency, err := meter.Float64Histogram("airlex.provider.latency_ms",
		metric.WithDescription("Provider call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter("airlex.provider.fallbacks",
		metric.WithDescription("Number of model fallback transitions"),
	)
	if err != nil {
		return nil, err
	}

	flushSize, err := meter.Int64Histogram("airlex.flush.size_bytes",
		metric.WithDescription("Output table flush size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		batches:        batches,
		batchLatency:   batchLatency,
		batchErrors:    batchErrors,
		codesProcessed: codesProcessed,
		providerCalls:  providerCalls,
		callLatency:    callLatency,
		fallbacks:      fallbacks,
		flushSize:      flushSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordBatch records a processed batch.
func (m *otelMetrics) RecordBatch(ctx context.Context, provider string, size int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
	}

	m.batches.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.batchLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.batchErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		m.codesProcessed.Add(ctx, int64(size), metric.WithAttributes(attrs...))
	}
}

// RecordProviderCall records one model attempt.
func (m *otelMetrics) RecordProviderCall(ctx context.Context, provider, model string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("model", model),
		attribute.Bool("success", err == nil),
	}
	m.providerCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.callLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordFallback records a model fallback transition.
func (m *otelMetrics) RecordFallback(ctx context.Context, provider, from, to string) {
	m.fallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordFlush records an output table flush.
func (m *otelMetrics) RecordFlush(ctx context.Context, sizeBytes int64) {
	m.flushSize.Record(ctx, sizeBytes)
}
