package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordEventCreated does nothing.
func (NoopMetrics) RecordEventCreated(_ context.Context, _ error) {}

// RecordEventTriggered does nothing.
func (NoopMetrics) RecordEventTriggered(_ context.Context, _ time.Duration, _ int, _ error) {}

// RecordFilterEvaluation does nothing.
func (NoopMetrics) RecordFilterEvaluation(_ context.Context, _ error) {}

// RecordNotificationEnqueued does nothing.
func (NoopMetrics) RecordNotificationEnqueued(_ context.Context) {}

// RecordNotificationDropped does nothing.
func (NoopMetrics) RecordNotificationDropped(_ context.Context, _ string) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartTriggerSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartTriggerSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartFilterSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartFilterSpan(ctx context.Context, _ string, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
