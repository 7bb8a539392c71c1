package uaevents_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aDogCalledSpot/uaevents/pkg/uaevents"
	"github.com/aDogCalledSpot/uaevents/pkg/uaevents/nodestore"
)

// Identifiers used by the test address space.
var (
	sampleEventType = uaevents.NewNumericID(1, 5000)
	alarmEventType  = uaevents.NewNumericID(1, 5001)

	areaID    = uaevents.NewNumericID(1, 100)
	lineID    = uaevents.NewNumericID(1, 101)
	machineID = uaevents.NewNumericID(1, 102)
	orphanID  = uaevents.NewNumericID(1, 199)
)

// newTestSpace builds the address space the tests run against:
//
//	Objects --Organizes--> Area --HasComponent--> Line --HasComponent--> Machine
//
// plus an orphan object not linked below Objects, and two event types:
// SampleEventType (with a Temperature property) and AlarmEventType, both
// subtypes of BaseEventType.
func newTestSpace(t *testing.T) *nodestore.MemoryStore {
	t.Helper()
	store := nodestore.NewMemoryStore()

	require.NoError(t, store.AddObjectType(sampleEventType, "SampleEventType", uaevents.IDBaseEventType))
	_, err := store.AddVariable(sampleEventType, uaevents.IDHasProperty, "Temperature", nil)
	require.NoError(t, err)
	require.NoError(t, store.AddObjectType(alarmEventType, "AlarmEventType", uaevents.IDBaseEventType))

	require.NoError(t, store.AddObject(areaID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Area", uaevents.IDBaseObjectType))
	require.NoError(t, store.AddObject(lineID, areaID, uaevents.IDHasComponent, "Line", uaevents.IDBaseObjectType))
	require.NoError(t, store.AddObject(machineID, lineID, uaevents.IDHasComponent, "Machine", uaevents.IDBaseObjectType))
	require.NoError(t, store.AddObject(orphanID, uaevents.NodeID{}, uaevents.NodeID{}, "Orphan", uaevents.IDBaseObjectType))

	return store
}

// standardFilter selects EventType and SourceNode against BaseEventType.
func standardFilter() uaevents.EventFilter {
	return uaevents.EventFilter{
		SelectClauses: []uaevents.SelectClause{
			{
				TypeDefinitionID: uaevents.IDBaseEventType,
				BrowsePath:       []uaevents.QualifiedName{uaevents.NewQualifiedName(0, "EventType")},
			},
			{
				TypeDefinitionID: uaevents.IDBaseEventType,
				BrowsePath:       []uaevents.QualifiedName{uaevents.NewQualifiedName(0, "SourceNode")},
			},
		},
	}
}

// monitorNode registers a fresh monitored item with the standard filter on
// the given node and returns it together with its subscription.
func monitorNode(t *testing.T, store *nodestore.MemoryStore, mgr *uaevents.Manager, node uaevents.NodeID, sub *uaevents.Subscription) *uaevents.MonitoredItem {
	t.Helper()
	item := mgr.NewMonitoredItem(sub, standardFilter())
	require.NoError(t, store.RegisterMonitoredItem(node, item))
	return item
}
