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

// MetricsRecorder records event-core metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEventCreated records an event object creation attempt.
	RecordEventCreated(ctx context.Context, err error)

	// RecordEventTriggered records a trigger with its duration and the
	// number of notifications delivered.
	RecordEventTriggered(ctx context.Context, duration time.Duration, delivered int, err error)

	// RecordFilterEvaluation records one filter evaluation.
	RecordFilterEvaluation(ctx context.Context, err error)

	// RecordNotificationEnqueued records a notification entering a queue.
	RecordNotificationEnqueued(ctx context.Context)

	// RecordNotificationDropped records an eviction by the discard policy.
	RecordNotificationDropped(ctx context.Context, policy string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsCreated  metric.Int64Counter
	triggers       metric.Int64Counter
	triggerLatency metric.Float64Histogram
	triggerErrors  metric.Int64Counter
	deliveries     metric.Int64Histogram
	filterEvals    metric.Int64Counter
	enqueued       metric.Int64Counter
	dropped        metric.Int64Counter
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
	meter := otel.Meter("uaevents")

	eventsCreated, err := meter.Int64Counter("uaevents.events.created",
		metric.WithDescription("Number of event objects created"),
	)
	if err != nil {
		return nil, err
	}

	triggers, err := meter.Int64Counter("uaevents.triggers",
		metric.WithDescription("Number of event triggers"),
	)
	if err != nil {
		return nil, err
	}

	triggerLatency, err := meter.Float64Histogram("uaevents.trigger.latency_ms",
		metric.WithDescription("Trigger latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	triggerErrors, err := meter.Int64Counter("uaevents.trigger.errors",
		metric.WithDescription("Number of failed triggers"),
	)
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Histogram("uaevents.trigger.notifications",
		metric.WithDescription("Notifications delivered per trigger"),
	)
	if err != nil {
		return nil, err
	}

	filterEvals, err := meter.Int64Counter("uaevents.filter.evaluations",
		metric.WithDescription("Number of event filter evaluations"),
	)
	if err != nil {
		return nil, err
	}

	enqueued, err := meter.Int64Counter("uaevents.notifications.enqueued",
		metric.WithDescription("Notifications enqueued to monitored items"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("uaevents.notifications.dropped",
		metric.WithDescription("Notifications evicted by the discard policy"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsCreated:  eventsCreated,
		triggers:       triggers,
		triggerLatency: triggerLatency,
		triggerErrors:  triggerErrors,
		deliveries:     deliveries,
		filterEvals:    filterEvals,
		enqueued:       enqueued,
		dropped:        dropped,
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

// RecordEventCreated records an event object creation attempt.
func (m *otelMetrics) RecordEventCreated(ctx context.Context, err error) {
	m.eventsCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", err == nil),
	))
}

// RecordEventTriggered records a trigger.
func (m *otelMetrics) RecordEventTriggered(ctx context.Context, duration time.Duration, delivered int, err error) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
	}
	m.triggers.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.triggerLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	m.deliveries.Record(ctx, int64(delivered), metric.WithAttributes(attrs...))

	if err != nil {
		m.triggerErrors.Add(ctx, 1)
	}
}

// RecordFilterEvaluation records one filter evaluation.
func (m *otelMetrics) RecordFilterEvaluation(ctx context.Context, err error) {
	m.filterEvals.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", err == nil),
	))
}

// RecordNotificationEnqueued records a notification entering a queue.
func (m *otelMetrics) RecordNotificationEnqueued(ctx context.Context) {
	m.enqueued.Add(ctx, 1)
}

// RecordNotificationDropped records an eviction by the discard policy.
func (m *otelMetrics) RecordNotificationDropped(ctx context.Context, policy string) {
	m.dropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("policy", policy),
	))
}
