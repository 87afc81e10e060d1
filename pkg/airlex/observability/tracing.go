package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the airlex tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("airlex")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartRunSpan starts a span for the entire enrichment run.
	// Returns the context with span and the span itself.
	StartRunSpan(ctx context.Context, provider, runID string) (context.Context, trace.Span)

	// StartBatchSpan starts a span for one batch.
	// The batch span should be a child of the run span.
	StartBatchSpan(ctx context.Context, num, size int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartRunSpan starts a span for the entire enrichment run.
func (m *otelSpanManager) StartRunSpan(ctx context.Context, provider, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "airlex.run",
		trace.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("run.id", runID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartBatchSpan starts a span for one batch.
func (m *otelSpanManager) StartBatchSpan(ctx context.Context, num, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "airlex.batch",
		trace.WithAttributes(
			attribute.Int("batch.num", num),
			attribute.Int("batch.size", size),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
