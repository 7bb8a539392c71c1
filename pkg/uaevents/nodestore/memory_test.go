package nodestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aDogCalledSpot/uaevents/pkg/uaevents"
	"github.com/aDogCalledSpot/uaevents/pkg/uaevents/nodestore"
)

func TestMemoryStore_NodeCount(t *testing.T) {
	store := nodestore.NewMemoryStore()
	seeded := store.NodeCount()
	require.Greater(t, seeded, 0, "namespace-0 seed populates the store")

	require.NoError(t, store.AddObject(testMachineID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Machine", uaevents.IDBaseObjectType))
	assert.Equal(t, seeded+1, store.NodeCount())

	require.NoError(t, store.DeleteNode(testMachineID, true))
	assert.Equal(t, seeded, store.NodeCount())
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	store := nodestore.NewMemoryStore()
	require.NoError(t, store.AddObject(testMachineID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Machine", uaevents.IDBaseObjectType))
	assert.Error(t, store.AddObject(testMachineID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Machine", uaevents.IDBaseObjectType))
}

// AddReference links existing nodes, giving a node a second parent.
func TestMemoryStore_AddReference(t *testing.T) {
	store := nodestore.NewMemoryStore()
	lineA := uaevents.NewNumericID(1, 9301)
	lineB := uaevents.NewNumericID(1, 9302)
	shared := uaevents.NewNumericID(1, 9303)
	require.NoError(t, store.AddObject(lineA, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "LineA", uaevents.IDBaseObjectType))
	require.NoError(t, store.AddObject(lineB, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "LineB", uaevents.IDBaseObjectType))
	require.NoError(t, store.AddObject(shared, lineA, uaevents.IDHasComponent, "SharedConveyor", uaevents.IDBaseObjectType))
	require.NoError(t, store.AddReference(lineB, uaevents.IDHasComponent, shared))

	for _, line := range []uaevents.NodeID{lineA, lineB} {
		ok, err := uaevents.IsNodeInTree(store, shared, line, []uaevents.NodeID{uaevents.IDHasComponent}, uaevents.TraversalOptions{})
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestMemoryStore_AddVariableWithID(t *testing.T) {
	store := nodestore.NewMemoryStore()
	id := uaevents.NewNumericID(1, 9400)
	require.NoError(t, store.AddObject(testMachineID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Machine", uaevents.IDBaseObjectType))
	require.NoError(t, store.AddVariableWithID(id, testMachineID, uaevents.IDHasProperty, "Speed", 10.0))

	info, err := store.GetNode(id)
	require.NoError(t, err)
	assert.Equal(t, uaevents.ClassVariable, info.Class)

	assert.Error(t, store.AddVariableWithID(id, testMachineID, uaevents.IDHasProperty, "Speed", 10.0))
}
