package uaevents

import (
	"log/slog"
	"time"

	"github.com/aDogCalledSpot/uaevents/pkg/uaevents/config"
	"github.com/aDogCalledSpot/uaevents/pkg/uaevents/observability"
)

// QueueDefaults are applied to monitored items created through
// Manager.NewMonitoredItem.
type QueueDefaults struct {
	// MaxLength bounds each item's notification queue. Zero means unbounded.
	MaxLength int

	// DiscardOldest drops the oldest queued notification on overflow when
	// true, the newest when false.
	DiscardOldest bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}.
func WithMetrics(recorder observability.MetricsRecorder) Option {
	return func(m *Manager) {
		if recorder != nil {
			m.metrics = recorder
		}
	}
}

// WithSpanManager sets the trace span manager.
// Default: observability.NoopSpanManager{}.
func WithSpanManager(spans observability.SpanManager) Option {
	return func(m *Manager) {
		if spans != nil {
			m.spans = spans
		}
	}
}

// WithClock sets the time source used for ReceiveTime.
// Default: time.Now. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithTraversal sets the traversal options applied to every graph walk the
// manager performs.
func WithTraversal(opts TraversalOptions) Option {
	return func(m *Manager) {
		m.traversal = opts
	}
}

// WithQueueDefaults sets the queue bounds applied by NewMonitoredItem.
func WithQueueDefaults(defaults QueueDefaults) Option {
	return func(m *Manager) {
		m.queueDefaults = defaults
	}
}

// FromConfig maps a loaded configuration onto manager options.
//
// Recognized keys:
//   - traversal_multiplicative (bool): legacy no-dedup traversal
//   - traversal_max_nodes (int): traversal node budget
//   - queue_max_length (int): default monitored-item queue bound
//   - queue_discard_oldest (bool): default overflow policy
func FromConfig(cfg config.Config) []Option {
	return []Option{
		WithTraversal(TraversalOptions{
			Multiplicative: cfg.Bool("traversal_multiplicative", false),
			MaxNodes:       cfg.Int("traversal_max_nodes", 0),
		}),
		WithQueueDefaults(QueueDefaults{
			MaxLength:     cfg.Int("queue_max_length", 0),
			DiscardOldest: cfg.Bool("queue_discard_oldest", true),
		}),
	}
}

// NewMonitoredItem creates a monitored item owned by sub with the manager's
// queue defaults applied. Registration on a node is up to the store.
func (m *Manager) NewMonitoredItem(sub *Subscription, filter EventFilter) *MonitoredItem {
	m.nextItemID++
	return &MonitoredItem{
		ID:             m.nextItemID,
		Filter:         filter,
		MaxQueueLength: m.queueDefaults.MaxLength,
		DiscardOldest:  m.queueDefaults.DiscardOldest,
		Subscription:   sub,
	}
}
