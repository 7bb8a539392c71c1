package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the event-core tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("uaevents")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartTriggerSpan starts a span covering a whole event trigger.
	StartTriggerSpan(ctx context.Context, eventNode, origin string) (context.Context, trace.Span)

	// StartFilterSpan starts a span for one filter evaluation.
	// The filter span should be a child of the trigger span.
	StartFilterSpan(ctx context.Context, eventNode string, clauses int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartTriggerSpan starts a span covering a whole event trigger.
func (m *otelSpanManager) StartTriggerSpan(ctx context.Context, eventNode, origin string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "uaevents.trigger",
		trace.WithAttributes(
			attribute.String("event.node", eventNode),
			attribute.String("event.origin", origin),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartFilterSpan starts a span for one filter evaluation.
func (m *otelSpanManager) StartFilterSpan(ctx context.Context, eventNode string, clauses int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "uaevents.filter",
		trace.WithAttributes(
			attribute.String("event.node", eventNode),
			attribute.Int("filter.select_clauses", clauses),
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
