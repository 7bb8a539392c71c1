package uaevents

import (
	"errors"
	"fmt"
)

// Sentinel errors for event creation and triggering.
var (
	// ErrInvalidArgument indicates a precondition failure: the event type is
	// not a subtype of BaseEventType, or the trigger origin is not reachable
	// from the Objects folder.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEventFilterInvalid indicates an event filter with no select clauses.
	ErrEventFilterInvalid = errors.New("event filter has no select clauses")

	// ErrNotSupported indicates a filter feature the server does not
	// implement, currently any non-empty where clause.
	ErrNotSupported = errors.New("not supported")

	// ErrTraversalLimit indicates a graph traversal exceeded its configured
	// node budget.
	ErrTraversalLimit = errors.New("traversal node limit exceeded")
)

// Sentinel errors surfaced by store implementations.
var (
	// ErrNodeNotFound indicates a node identifier that resolves to nothing.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoTargets indicates a browse path that resolved to zero targets.
	ErrNoTargets = errors.New("browse path has no targets")
)

// TriggerError wraps a failure during event triggering with the event and
// ancestor being processed.
type TriggerError struct {
	// Event is the transient event node being triggered.
	Event NodeID
	// Ancestor is the containment ancestor being notified, if any.
	Ancestor NodeID
	// Op is the operation that failed ("filter", "enqueue", "write", "read").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *TriggerError) Error() string {
	if e.Ancestor.IsNull() {
		return fmt.Sprintf("trigger event %s: %s: %v", e.Event, e.Op, e.Err)
	}
	return fmt.Sprintf("trigger event %s at %s: %s: %v", e.Event, e.Ancestor, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *TriggerError) Unwrap() error {
	return e.Err
}

// ResolveError wraps a failed attribute-path resolution with the attribute
// name and starting node.
type ResolveError struct {
	// Name is the attribute browse name being resolved.
	Name QualifiedName
	// Start is the node resolution started from.
	Start NodeID
	// Err is the last failure encountered across all candidate reference kinds.
	Err error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve attribute %q from %s: %v", e.Name, e.Start, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ResolveError) Unwrap() error {
	return e.Err
}
