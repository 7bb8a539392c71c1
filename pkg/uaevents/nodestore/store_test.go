package nodestore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aDogCalledSpot/uaevents/pkg/uaevents"
	"github.com/aDogCalledSpot/uaevents/pkg/uaevents/nodestore"
)

// builderStore is the construction surface shared by both store
// implementations, on top of the consumer-side NodeStore contract.
type builderStore interface {
	uaevents.NodeStore
	AddReferenceType(id uaevents.NodeID, name string, supertype uaevents.NodeID) error
	AddObjectType(id uaevents.NodeID, name string, supertype uaevents.NodeID) error
	AddObject(id uaevents.NodeID, parent, refType uaevents.NodeID, name string, typeDef uaevents.NodeID) error
	AddVariable(parent, refType uaevents.NodeID, name string, value any) (uaevents.NodeID, error)
	RegisterMonitoredItem(node uaevents.NodeID, item *uaevents.MonitoredItem) error
	UnregisterMonitoredItem(node uaevents.NodeID, item *uaevents.MonitoredItem)
}

// forEachStore runs the test against both store implementations.
func forEachStore(t *testing.T, fn func(t *testing.T, store builderStore)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, nodestore.NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		store, err := nodestore.NewSQLiteStore(filepath.Join(t.TempDir(), "space.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		fn(t, store)
	})
}

var (
	testEventType  = uaevents.NewNumericID(1, 9000)
	testAlarmType  = uaevents.NewNumericID(1, 9001)
	testMachineID  = uaevents.NewNumericID(1, 9100)
	testFurnaceRef = uaevents.NewNumericID(1, 9200)
)

func TestNamespaceZeroSeed(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		base, err := store.GetNode(uaevents.IDBaseEventType)
		require.NoError(t, err)
		assert.Equal(t, uaevents.ClassObjectType, base.Class)
		assert.Equal(t, "BaseEventType", base.BrowseName.Name)

		objects, err := store.GetNode(uaevents.IDObjectsFolder)
		require.NoError(t, err)
		assert.Equal(t, uaevents.ClassObject, objects.Class)

		refType, err := store.GetNode(uaevents.IDHasProperty)
		require.NoError(t, err)
		assert.Equal(t, uaevents.ClassReferenceType, refType.Class)

		// BaseEventType declares the standard event properties.
		refs, err := store.References(uaevents.IDBaseEventType)
		require.NoError(t, err)
		declared := 0
		for _, ref := range refs {
			if !ref.Inverse && ref.ReferenceType == uaevents.IDHasProperty {
				declared++
			}
		}
		assert.Equal(t, 8, declared)
	})
}

func TestGetNode_Unknown(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		_, err := store.GetNode(uaevents.NewNumericID(9, 424242))
		assert.ErrorIs(t, err, uaevents.ErrNodeNotFound)
	})
}

func TestReferences_Mirrored(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		require.NoError(t, store.AddObject(testMachineID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Machine", uaevents.IDBaseObjectType))

		parentRefs, err := store.References(uaevents.IDObjectsFolder)
		require.NoError(t, err)
		assert.Contains(t, parentRefs, uaevents.Reference{
			ReferenceType: uaevents.IDOrganizes,
			Target:        testMachineID,
		})

		childRefs, err := store.References(testMachineID)
		require.NoError(t, err)
		assert.Contains(t, childRefs, uaevents.Reference{
			ReferenceType: uaevents.IDOrganizes,
			Target:        uaevents.IDObjectsFolder,
			Inverse:       true,
		})
	})
}

// AddObjectNode copies the variable declarations of the type and all its
// supertypes onto the instance, subtype declarations shadowing supertype
// ones of the same browse name.
func TestAddObjectNode_Instantiation(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		require.NoError(t, store.AddObjectType(testEventType, "TestEventType", uaevents.IDBaseEventType))
		_, err := store.AddVariable(testEventType, uaevents.IDHasProperty, "Temperature", 0.0)
		require.NoError(t, err)
		require.NoError(t, store.AddObjectType(testAlarmType, "TestAlarmType", testEventType))
		_, err = store.AddVariable(testAlarmType, uaevents.IDHasProperty, "Temperature", 99.0)
		require.NoError(t, err)

		instance, err := store.AddObjectNode(testAlarmType, "alarm-1")
		require.NoError(t, err)

		info, err := store.GetNode(instance)
		require.NoError(t, err)
		assert.Equal(t, uaevents.ClassObject, info.Class)
		assert.Equal(t, testAlarmType, info.TypeDefinition)
		assert.Equal(t, "alarm-1", info.DisplayName)

		// Inherited from BaseEventType.
		targets, err := store.TranslateBrowsePath(instance, []uaevents.RelativePathElement{{
			ReferenceType: uaevents.IDHasProperty,
			TargetName:    uaevents.NewQualifiedName(0, "Severity"),
		}})
		require.NoError(t, err)
		require.Len(t, targets, 1)

		// Declared on the chain, shadowed by the subtype.
		targets, err = store.TranslateBrowsePath(instance, []uaevents.RelativePathElement{{
			ReferenceType: uaevents.IDHasProperty,
			TargetName:    uaevents.NewQualifiedName(0, "Temperature"),
		}})
		require.NoError(t, err)
		require.Len(t, targets, 1, "shadowed declarations instantiate once")

		value, err := store.ReadValue(targets[0])
		require.NoError(t, err)
		assert.Equal(t, 99.0, value, "the subtype's declaration value wins")
	})
}

func TestAddObjectNode_UnknownType(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		_, err := store.AddObjectNode(uaevents.NewNumericID(9, 1), "ghost")
		assert.ErrorIs(t, err, uaevents.ErrNodeNotFound)
	})
}

func TestDeleteNode_Recursive(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		require.NoError(t, store.AddObjectType(testEventType, "TestEventType", uaevents.IDBaseEventType))
		instance, err := store.AddObjectNode(testEventType, "ev")
		require.NoError(t, err)

		targets, err := store.TranslateBrowsePath(instance, []uaevents.RelativePathElement{{
			ReferenceType: uaevents.IDHasProperty,
			TargetName:    uaevents.NewQualifiedName(0, "EventId"),
		}})
		require.NoError(t, err)
		require.Len(t, targets, 1)
		child := targets[0]

		require.NoError(t, store.DeleteNode(instance, true))

		_, err = store.GetNode(instance)
		assert.ErrorIs(t, err, uaevents.ErrNodeNotFound)
		_, err = store.GetNode(child)
		assert.ErrorIs(t, err, uaevents.ErrNodeNotFound, "recursive delete takes aggregated children")

		// The type definition is untouched.
		_, err = store.GetNode(testEventType)
		assert.NoError(t, err)
	})
}

func TestTranslateBrowsePath_IncludeSubtypes(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		require.NoError(t, store.AddObjectType(testEventType, "TestEventType", uaevents.IDBaseEventType))
		instance, err := store.AddObjectNode(testEventType, "ev")
		require.NoError(t, err)

		// HasProperty is a subtype of Aggregates; the hop only resolves
		// with IncludeSubtypes set.
		path := []uaevents.RelativePathElement{{
			ReferenceType:   uaevents.IDAggregates,
			IncludeSubtypes: true,
			TargetName:      uaevents.NewQualifiedName(0, "Message"),
		}}
		targets, err := store.TranslateBrowsePath(instance, path)
		require.NoError(t, err)
		assert.Len(t, targets, 1)

		path[0].IncludeSubtypes = false
		_, err = store.TranslateBrowsePath(instance, path)
		assert.ErrorIs(t, err, uaevents.ErrNoTargets)
	})
}

func TestTranslateBrowsePath_MultiHop(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		require.NoError(t, store.AddObject(testMachineID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Machine", uaevents.IDBaseObjectType))
		sensor := uaevents.NewNumericID(1, 9101)
		require.NoError(t, store.AddObject(sensor, testMachineID, uaevents.IDHasComponent, "Sensor", uaevents.IDBaseObjectType))

		targets, err := store.TranslateBrowsePath(uaevents.IDObjectsFolder, []uaevents.RelativePathElement{
			{ReferenceType: uaevents.IDOrganizes, TargetName: uaevents.NewQualifiedName(1, "Machine")},
			{ReferenceType: uaevents.IDHasComponent, TargetName: uaevents.NewQualifiedName(1, "Sensor")},
		})
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.Equal(t, sensor, targets[0])
	})
}

func TestReadWriteValue(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		require.NoError(t, store.AddObject(testMachineID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Machine", uaevents.IDBaseObjectType))
		variable, err := store.AddVariable(testMachineID, uaevents.IDHasProperty, "Speed", nil)
		require.NoError(t, err)

		value, err := store.ReadValue(variable)
		require.NoError(t, err)
		assert.Nil(t, value)

		require.NoError(t, store.WriteValue(variable, 1500.0))
		value, err = store.ReadValue(variable)
		require.NoError(t, err)
		assert.Equal(t, 1500.0, value)

		// Values live on variables only.
		err = store.WriteValue(testMachineID, 1.0)
		assert.Error(t, err)
		_, err = store.ReadValue(testMachineID)
		assert.Error(t, err)
	})
}

func TestMonitoredItems(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		require.NoError(t, store.AddObject(testMachineID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Machine", uaevents.IDBaseObjectType))

		items, err := store.MonitoredItems(testMachineID)
		require.NoError(t, err)
		assert.Empty(t, items)

		item := &uaevents.MonitoredItem{ID: 1}
		require.NoError(t, store.RegisterMonitoredItem(testMachineID, item))

		items, err = store.MonitoredItems(testMachineID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Same(t, item, items[0])

		store.UnregisterMonitoredItem(testMachineID, item)
		items, err = store.MonitoredItems(testMachineID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

// A custom reference type below Aggregates participates in attribute
// resolution like the built-in kinds.
func TestCustomAggregationKind(t *testing.T) {
	forEachStore(t, func(t *testing.T, store builderStore) {
		require.NoError(t, store.AddReferenceType(testFurnaceRef, "HasFurnacePart", uaevents.IDAggregates))
		require.NoError(t, store.AddObject(testMachineID, uaevents.IDObjectsFolder, uaevents.IDOrganizes, "Furnace", uaevents.IDBaseObjectType))
		_, err := store.AddVariable(testMachineID, testFurnaceRef, "CoreTemperature", 300.0)
		require.NoError(t, err)

		target, err := uaevents.FindAttributeNode(store, uaevents.NewQualifiedName(0, "CoreTemperature"), 1, testMachineID, uaevents.TraversalOptions{})
		require.NoError(t, err)

		value, err := store.ReadValue(target)
		require.NoError(t, err)
		assert.Equal(t, 300.0, value)
	})
}
