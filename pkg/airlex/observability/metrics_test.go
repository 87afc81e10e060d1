package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a reader to collect metrics.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
}

func TestRecordBatch(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records batch count and codes", func(t *testing.T) {
		m.RecordBatch(ctx, "openai", 30, 200*time.Millisecond, nil)

		rm := collectMetrics(t, reader)

		batches := findMetric(rm, "airlex.batches")
		require.NotNil(t, batches)
		sum, ok := batches.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		codes := findMetric(rm, "airlex.codes.processed")
		require.NotNil(t, codes)
		codeSum, ok := codes.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		var total int64
		for _, dp := range codeSum.DataPoints {
			total += dp.Value
		}
		assert.GreaterOrEqual(t, total, int64(30))
	})

	t.Run("records batch latency", func(t *testing.T) {
		m.RecordBatch(ctx, "openai", 30, 100*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		latency := findMetric(rm, "airlex.batch.latency_ms")
		require.NotNil(t, latency)

		hist, ok := latency.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("failed batch counts error, not codes", func(t *testing.T) {
		m.RecordBatch(ctx, "gemini", 30, 10*time.Millisecond, errors.New("exhausted"))

		rm := collectMetrics(t, reader)
		batchErrors := findMetric(rm, "airlex.batch.errors")
		require.NotNil(t, batchErrors)

		sum, ok := batchErrors.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)
	})
}

func TestRecordProviderCall(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordProviderCall(context.Background(), "openai", "gpt-4o", 50*time.Millisecond, nil)

	rm := collectMetrics(t, reader)
	calls := findMetric(rm, "airlex.provider.calls")
	require.NotNil(t, calls)

	sum, ok := calls.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")

	found := false
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "model" && attr.Value.AsString() == "gpt-4o" {
				found = true
			}
		}
	}
	assert.True(t, found, "Expected datapoint with model=gpt-4o")
}

func TestRecordFallback(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordFallback(context.Background(), "openai", "gpt-5.2", "gpt-4o")

	rm := collectMetrics(t, reader)
	fallbacks := findMetric(rm, "airlex.provider.fallbacks")
	require.NotNil(t, fallbacks)
}

func TestRecordFlush(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordFlush(context.Background(), 4096)

	rm := collectMetrics(t, reader)
	flush := findMetric(rm, "airlex.flush.size_bytes")
	require.NotNil(t, flush)

	hist, ok := flush.Data.(metricdata.Histogram[int64])
	require.True(t, ok, "Expected Histogram type")
	require.NotEmpty(t, hist.DataPoints)
}
