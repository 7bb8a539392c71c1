/*
Package uaevents implements the event-notification core of an OPC UA-style
automation server: transient event objects, type-hierarchy validation,
attribute resolution through the address-space graph, propagation up the
containment hierarchy and per-subscriber filtering into bounded notification
queues.

# Overview

Events are ephemeral object nodes instantiated from an event type. They are
never linked into the address space by containment references; they exist
only to be addressed by their identifier between creation and trigger.
Their attributes (EventId, EventType, SourceNode, ReceiveTime, ...) are
ordinary variable children reached by browse-path resolution, because the
reference kind linking an attribute to its event varies by type.

A trigger walks the containment hierarchy upwards from the origin node,
applies each registered monitored item's event filter, and enqueues one
notification per matching item: once on the item's bounded queue and once
on its subscription's aggregating queue. The transient event node is deleted
when the trigger finishes.

# Basic Usage

Create a manager over an address-space store, then create and trigger
events:

	store := nodestore.NewMemoryStore()
	mgr := uaevents.NewManager(store,
	    uaevents.WithLogger(slog.Default()),
	)

	eventNode, err := mgr.CreateEvent(ctx, myEventType)
	if err != nil {
	    return err
	}
	eventID, err := mgr.TriggerEvent(ctx, eventNode, origin)

# Concurrency

All operations run to completion within a single logical request. The server
runtime is expected to serialize calls into one Manager; concurrent triggers
or a trigger concurrent with address-space mutation are not supported.

# Observability

Structured logging uses log/slog, metrics and tracing use OpenTelemetry via
the observability subpackage. All of it is opt-in; the defaults are no-ops.
*/
package uaevents
