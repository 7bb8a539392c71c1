package uaevents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aDogCalledSpot/uaevents/pkg/uaevents/observability"
)

// Browse names of the standard event attributes written by this core.
const (
	attrEventID     = "EventId"
	attrEventType   = "EventType"
	attrSourceNode  = "SourceNode"
	attrReceiveTime = "ReceiveTime"
)

// Manager creates, triggers and delivers transient event objects against an
// externally owned address space.
//
// All operations run to completion within a single logical request; the
// server runtime is expected to serialize calls into one Manager.
type Manager struct {
	store     NodeStore
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	now       func() time.Time
	traversal TraversalOptions

	queueDefaults QueueDefaults
	nextItemID    uint32
}

// NewManager creates a Manager over the given store.
//
// Example:
//
//	mgr := uaevents.NewManager(store,
//	    uaevents.WithLogger(slog.Default()),
//	    uaevents.WithTraversal(uaevents.TraversalOptions{MaxNodes: 4096}),
//	)
func NewManager(store NodeStore, opts ...Option) *Manager {
	if store == nil {
		panic("uaevents: store cannot be nil")
	}
	m := &Manager{
		store:   store,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateEvent instantiates a transient event object of the given type and
// returns its node identifier. The type must be a descendant of
// BaseEventType, otherwise ErrInvalidArgument.
//
// The object is free-standing: no parent, no containment references, display
// name set to the generated EventID's text form. Its EventId and EventType
// attributes are populated; SourceNode and ReceiveTime are written when the
// event is triggered. The object is not visible to any subscriber until
// TriggerEvent.
func (m *Manager) CreateEvent(ctx context.Context, eventTypeID NodeID) (NodeID, error) {
	ok, err := IsNodeInTree(m.store, eventTypeID, IDBaseEventType, []NodeID{IDHasSubtype}, m.traversal)
	if err != nil {
		return NodeID{}, err
	}
	if !ok {
		m.metrics.RecordEventCreated(ctx, ErrInvalidArgument)
		return NodeID{}, fmt.Errorf("%w: event type %s is not a subtype of BaseEventType",
			ErrInvalidArgument, eventTypeID)
	}

	eventID := NewEventID()

	nodeID, err := m.store.AddObjectNode(eventTypeID, eventID.String())
	if err != nil {
		observability.LogEventCreateError(m.logger, eventTypeID.String(), err)
		m.metrics.RecordEventCreated(ctx, err)
		return NodeID{}, fmt.Errorf("add event object: %w", err)
	}

	if err := m.writeAttribute(nodeID, attrEventID, eventID); err != nil {
		m.metrics.RecordEventCreated(ctx, err)
		return NodeID{}, err
	}
	if err := m.writeAttribute(nodeID, attrEventType, eventTypeID); err != nil {
		m.metrics.RecordEventCreated(ctx, err)
		return NodeID{}, err
	}

	observability.LogEventCreated(m.logger, nodeID.String(), eventTypeID.String(), eventID.String())
	m.metrics.RecordEventCreated(ctx, nil)
	return nodeID, nil
}

// TriggerEvent propagates the event up the containment hierarchy from
// origin, delivering a filtered notification to every monitored item
// registered on origin or one of its ancestors, and returns the event's
// EventID.
//
// The origin must be reachable from the Objects folder over inverse
// Organizes or HasComponent references, otherwise ErrInvalidArgument with no
// side effects.
//
// The transient event node is deleted on every exit path past that
// precondition, success or failure; an enqueue failure aborts the remaining
// ancestor walk but never leaks the node.
func (m *Manager) TriggerEvent(ctx context.Context, eventNode, origin NodeID) (EventID, error) {
	ok, err := IsNodeInTree(m.store, origin, IDObjectsFolder, []NodeID{IDOrganizes, IDHasComponent}, m.traversal)
	if err != nil {
		return EventID{}, err
	}
	if !ok {
		m.metrics.RecordEventTriggered(ctx, 0, 0, ErrInvalidArgument)
		return EventID{}, fmt.Errorf("%w: origin %s is not below the Objects folder",
			ErrInvalidArgument, origin)
	}

	ctx, span := m.spans.StartTriggerSpan(ctx, eventNode.String(), origin.String())
	done := observability.TimedOperation()
	delivered := 0
	var triggerErr error
	defer func() {
		m.spans.EndSpanWithError(span, triggerErr)
		m.metrics.RecordEventTriggered(ctx, time.Duration(done()*float64(time.Millisecond)), delivered, triggerErr)
	}()

	// The event object is owned by this trigger from here on. Delete it on
	// every exit path; leaving it behind after a mid-walk failure would
	// accumulate unreachable nodes in the store.
	defer func() {
		if err := m.store.DeleteNode(eventNode, true); err != nil {
			observability.LogEventDeleteError(m.logger, eventNode.String(), err)
		}
	}()

	if err := m.writeAttribute(eventNode, attrSourceNode, origin); err != nil {
		triggerErr = &TriggerError{Event: eventNode, Op: "write", Err: err}
		return EventID{}, triggerErr
	}
	if err := m.writeAttribute(eventNode, attrReceiveTime, m.now().UTC()); err != nil {
		triggerErr = &TriggerError{Event: eventNode, Op: "write", Err: err}
		return EventID{}, triggerErr
	}

	ancestors, err := collectAncestors(m.store, origin, m.traversal)
	if err != nil {
		triggerErr = err
		return EventID{}, err
	}

	for _, ancestor := range ancestors {
		items, err := m.store.MonitoredItems(ancestor)
		if err != nil {
			triggerErr = &TriggerError{Event: eventNode, Ancestor: ancestor, Op: "monitored items", Err: err}
			return EventID{}, triggerErr
		}
		for _, item := range items {
			if err := m.addToMonitoredItem(ctx, eventNode, item); err != nil {
				triggerErr = &TriggerError{Event: eventNode, Ancestor: ancestor, Op: "enqueue", Err: err}
				return EventID{}, triggerErr
			}
			delivered++
		}
	}

	eventID, err := m.readEventID(eventNode)
	if err != nil {
		triggerErr = &TriggerError{Event: eventNode, Op: "read", Err: err}
		return EventID{}, triggerErr
	}

	observability.LogEventTriggered(m.logger, eventNode.String(), origin.String(), delivered, done())
	return eventID, nil
}

// writeAttribute resolves the named attribute one hop below node and writes
// value into it.
func (m *Manager) writeAttribute(node NodeID, name string, value any) error {
	target, err := FindAttributeNode(m.store, NewQualifiedName(0, name), 1, node, m.traversal)
	if err != nil {
		return err
	}
	if err := m.store.WriteValue(target, value); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// readEventID reads the event object's EventId attribute back.
func (m *Manager) readEventID(eventNode NodeID) (EventID, error) {
	target, err := FindAttributeNode(m.store, NewQualifiedName(0, attrEventID), 1, eventNode, m.traversal)
	if err != nil {
		return EventID{}, err
	}
	value, err := m.store.ReadValue(target)
	if err != nil {
		return EventID{}, err
	}
	eventID, ok := value.(EventID)
	if !ok {
		return EventID{}, fmt.Errorf("EventId attribute holds %T, want EventID", value)
	}
	return eventID, nil
}
