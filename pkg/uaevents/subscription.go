package uaevents

// Notification is one filtered event delivery. It is linked into exactly two
// queues at once, its monitored item's and that item's subscription's, and
// leaves both together: either consumed by the publish path or evicted by
// the discard policy.
type Notification struct {
	// Fields holds one value per select clause of the item's filter, in
	// clause order. A nil entry is an empty field.
	Fields []any

	// Item is the monitored item the notification belongs to.
	Item *MonitoredItem
}

// MonitoredItem is a subscriber-owned unit: one event filter and one bounded
// FIFO queue of notifications. Lifecycle and publishing belong to the
// subscription layer; this core only filters into the queue.
//
// The server runtime serializes calls into the core, so monitored items
// carry no internal locking.
type MonitoredItem struct {
	// ID distinguishes the item within its subscription.
	ID uint32

	// Filter selects and restricts the delivered event fields.
	Filter EventFilter

	// MaxQueueLength bounds the queue. Zero means unbounded.
	MaxQueueLength int

	// DiscardOldest selects which notification the eviction policy drops
	// when the queue is full: the oldest queued one when true, the newest
	// when false.
	DiscardOldest bool

	// Subscription owns the item and aggregates its notifications.
	Subscription *Subscription

	queue []*Notification
}

// QueueLen returns the current number of queued notifications.
func (m *MonitoredItem) QueueLen() int {
	return len(m.queue)
}

// Notifications returns the queued notifications in FIFO order. The slice
// is shared; callers must not mutate it.
func (m *MonitoredItem) Notifications() []*Notification {
	return m.queue
}

// ensureQueueSpace makes room for one more notification, applying the
// discard policy. The evicted notification is removed from both queues so
// the per-item bound is never exceeded and no notification is left queued
// on one side only.
func (m *MonitoredItem) ensureQueueSpace() (dropped *Notification) {
	if m.MaxQueueLength <= 0 || len(m.queue) < m.MaxQueueLength {
		return nil
	}
	if m.DiscardOldest {
		dropped = m.queue[0]
		m.queue = m.queue[1:]
	} else {
		dropped = m.queue[len(m.queue)-1]
		m.queue = m.queue[:len(m.queue)-1]
	}
	if m.Subscription != nil {
		m.Subscription.remove(dropped)
	}
	return dropped
}

// enqueue appends the notification to the item queue and the subscription's
// aggregating queue.
func (m *MonitoredItem) enqueue(n *Notification) {
	m.queue = append(m.queue, n)
	if m.Subscription != nil {
		m.Subscription.queue = append(m.Subscription.queue, n)
	}
}

// Subscription aggregates notifications across its monitored items in one
// FIFO queue. The publish cycle draining it is external to this core.
type Subscription struct {
	// ID identifies the subscription.
	ID uint32

	queue []*Notification
}

// QueueLen returns the number of queued notifications across all items.
func (s *Subscription) QueueLen() int {
	return len(s.queue)
}

// Notifications returns the aggregated queue in FIFO order. The slice is
// shared; callers must not mutate it.
func (s *Subscription) Notifications() []*Notification {
	return s.queue
}

// remove unlinks a notification from the aggregating queue.
func (s *Subscription) remove(n *Notification) {
	for i, queued := range s.queue {
		if queued == n {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}
