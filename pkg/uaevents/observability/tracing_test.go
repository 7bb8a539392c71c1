package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest installs an in-memory span exporter and returns it plus a
// cleanup restoring the original provider.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	// Update the package-level tracer
	tracer = otel.Tracer("uaevents")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}
	return exporter, cleanup
}

func TestStartTriggerSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	m := NewSpanManager()
	_, span := m.StartTriggerSpan(context.Background(), "ns=1;g=abc", "ns=1;i=102")
	require.NotNil(t, span)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "uaevents.trigger", spans[0].Name)

	var eventNode, origin string
	for _, attr := range spans[0].Attributes {
		switch attr.Key {
		case "event.node":
			eventNode = attr.Value.AsString()
		case "event.origin":
			origin = attr.Value.AsString()
		}
	}
	assert.Equal(t, "ns=1;g=abc", eventNode)
	assert.Equal(t, "ns=1;i=102", origin)
}

func TestStartFilterSpan_ChildOfTrigger(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	m := NewSpanManager()
	ctx, trigger := m.StartTriggerSpan(context.Background(), "ev", "origin")
	_, filter := m.StartFilterSpan(ctx, "ev", 2)
	filter.End()
	trigger.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	// Spans flush in end order.
	assert.Equal(t, "uaevents.filter", spans[0].Name)
	assert.Equal(t, "uaevents.trigger", spans[1].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestEndSpanWithError(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	m := NewSpanManager()

	t.Run("records error status", func(t *testing.T) {
		exporter.Reset()
		_, span := m.StartTriggerSpan(context.Background(), "ev", "origin")
		m.EndSpanWithError(span, errors.New("enqueue failed"))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		require.NotEmpty(t, spans[0].Events)
		assert.Equal(t, "exception", spans[0].Events[0].Name)
	})

	t.Run("sets ok status on success", func(t *testing.T) {
		exporter.Reset()
		_, span := m.StartTriggerSpan(context.Background(), "ev", "origin")
		m.EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
	})

	t.Run("tolerates nil span", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.EndSpanWithError(nil, nil)
		})
	})
}

func TestAddSpanEvent(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	m := NewSpanManager()
	ctx, span := m.StartTriggerSpan(context.Background(), "ev", "origin")
	m.AddSpanEvent(ctx, "ancestor.notified")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "ancestor.notified", spans[0].Events[0].Name)
}

func TestAddSpanEvent_NoSpanInContext(t *testing.T) {
	m := NewSpanManager()
	assert.NotPanics(t, func() {
		m.AddSpanEvent(context.Background(), "orphan")
	})
}
