// Package observability provides structured logging, metrics and tracing
// for the event core.
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

// LogEventCreated logs a successful event object creation.
func LogEventCreated(logger *slog.Logger, nodeID, eventType, eventID string) {
	if logger == nil {
		return
	}
	logger.Debug("event object created",
		slog.String("node_id", nodeID),
		slog.String("event_type", eventType),
		slog.String("event_id", eventID),
	)
}

// LogEventCreateError logs a failed event object creation.
func LogEventCreateError(logger *slog.Logger, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Error("adding event object failed",
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogEventTriggered logs a completed trigger with its delivery count.
func LogEventTriggered(logger *slog.Logger, nodeID, origin string, delivered int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("event triggered",
		slog.String("node_id", nodeID),
		slog.String("origin", origin),
		slog.Int("notifications", delivered),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEventDeleteError logs a failed removal of a transient event node
// (non-fatal).
func LogEventDeleteError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("removing event node failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogNotificationDropped logs an eviction by the queue discard policy.
func LogNotificationDropped(logger *slog.Logger, itemID uint32, policy string) {
	if logger == nil {
		return
	}
	logger.Debug("notification dropped",
		slog.Int("monitored_item", int(itemID)),
		slog.String("policy", policy),
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
