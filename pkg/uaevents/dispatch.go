package uaevents

import (
	"context"

	"github.com/aDogCalledSpot/uaevents/pkg/uaevents/observability"
)

// addToMonitoredItem filters the event through the item's filter and
// enqueues the resulting notification on both the item's queue and its
// subscription's aggregating queue.
//
// A filter failure (including ErrNotSupported from a non-empty where
// clause) discards the notification and is propagated to the caller, which
// aborts the remaining ancestor walk. Sibling monitored items processed
// before the failure keep their notifications.
func (m *Manager) addToMonitoredItem(ctx context.Context, eventNode NodeID, item *MonitoredItem) error {
	fields, err := m.EvaluateFilter(ctx, eventNode, &item.Filter)
	if err != nil {
		return err
	}

	if dropped := item.ensureQueueSpace(); dropped != nil {
		policy := "discard_newest"
		if item.DiscardOldest {
			policy = "discard_oldest"
		}
		observability.LogNotificationDropped(m.logger, item.ID, policy)
		m.metrics.RecordNotificationDropped(ctx, policy)
	}

	item.enqueue(&Notification{Fields: fields, Item: item})
	m.metrics.RecordNotificationEnqueued(ctx)
	return nil
}
