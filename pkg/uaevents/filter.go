package uaevents

import (
	"context"
	"log/slog"
)

// SelectClause requests one attribute of an event: the type definition the
// event must satisfy and the browse path to the attribute.
type SelectClause struct {
	// TypeDefinitionID is the event type declaring the attribute. Events
	// whose type is not a descendant of it yield an empty field for this
	// clause.
	TypeDefinitionID NodeID

	// BrowsePath is the sequence of browse names leading to the attribute.
	BrowsePath []QualifiedName
}

// WhereClause is the boolean filter over event fields. Evaluation is not
// implemented; a non-empty clause passes every event but marks the
// evaluation ErrNotSupported.
type WhereClause struct {
	// Elements is the expression tree in postfix element form. Only its
	// emptiness is inspected.
	Elements []any
}

// EventFilter selects and filters the fields delivered for an event.
type EventFilter struct {
	// SelectClauses are the requested fields, in delivery order. At least
	// one clause is required.
	SelectClauses []SelectClause

	// Where optionally restricts which events are delivered.
	Where WhereClause
}

// WhereOutcome is the result of evaluating a where clause against an event.
type WhereOutcome int

const (
	// WherePassed admits the event.
	WherePassed WhereOutcome = iota

	// WhereFailed rejects the event; the field stays empty without error.
	WhereFailed

	// WhereNotImplemented admits the event but marks the evaluation as
	// unsupported.
	WhereNotImplemented
)

// evaluateWhereClause applies the where clause to the event. Empty clauses
// pass. Non-empty clauses are not evaluated: they pass while signaling
// WhereNotImplemented, so the caller can surface ErrNotSupported without
// losing the pass/fail distinction in the type.
func (m *Manager) evaluateWhereClause(where *WhereClause) WhereOutcome {
	if len(where.Elements) == 0 {
		return WherePassed
	}
	if m.logger != nil {
		m.logger.Warn("where clauses are not supported",
			slog.Int("elements", len(where.Elements)),
		)
	}
	return WhereNotImplemented
}

// EvaluateFilter applies filter to the event object and returns one field
// per select clause, in clause order. A nil field means the clause did not
// yield a value: the event does not satisfy the clause's declared type, the
// attribute path did not resolve, or the attribute read failed. None of
// these fail the evaluation.
//
// A filter without select clauses returns ErrEventFilterInvalid. A filter
// with a non-empty where clause returns ErrNotSupported; any partially
// filled fields are discarded by the caller.
func (m *Manager) EvaluateFilter(ctx context.Context, eventNode NodeID, filter *EventFilter) ([]any, error) {
	if len(filter.SelectClauses) == 0 {
		return nil, ErrEventFilterInvalid
	}

	ctx, span := m.spans.StartFilterSpan(ctx, eventNode.String(), len(filter.SelectClauses))
	var evalErr error
	defer func() { m.spans.EndSpanWithError(span, evalErr) }()

	fields := make([]any, len(filter.SelectClauses))
	for i, clause := range filter.SelectClauses {
		if clause.TypeDefinitionID != IDBaseEventType {
			ok, err := m.eventSatisfiesType(eventNode, clause.TypeDefinitionID)
			if err != nil || !ok {
				continue
			}
		}

		if len(clause.BrowsePath) == 0 {
			continue
		}
		target, err := FindAttributeNode(m.store, clause.BrowsePath[0], len(clause.BrowsePath), eventNode, m.traversal)
		if err != nil {
			continue
		}

		switch m.evaluateWhereClause(&filter.Where) {
		case WhereFailed:
			continue
		case WhereNotImplemented:
			if value, err := m.store.ReadValue(target); err == nil {
				fields[i] = value
			}
			evalErr = ErrNotSupported
			m.metrics.RecordFilterEvaluation(ctx, evalErr)
			return nil, evalErr
		}

		// A read failure yields an empty field, not an error.
		if value, err := m.store.ReadValue(target); err == nil {
			fields[i] = value
		}
	}

	m.metrics.RecordFilterEvaluation(ctx, nil)
	return fields, nil
}

// eventSatisfiesType reports whether the event's own EventType attribute is
// a descendant of typeDef.
func (m *Manager) eventSatisfiesType(eventNode, typeDef NodeID) (bool, error) {
	attr, err := FindAttributeNode(m.store, NewQualifiedName(0, attrEventType), 1, eventNode, m.traversal)
	if err != nil {
		return false, err
	}
	value, err := m.store.ReadValue(attr)
	if err != nil {
		return false, err
	}
	eventType, ok := value.(NodeID)
	if !ok {
		return false, nil
	}
	return IsNodeInTree(m.store, eventType, typeDef, []NodeID{IDHasSubtype}, m.traversal)
}
