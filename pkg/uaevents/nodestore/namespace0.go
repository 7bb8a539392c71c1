package nodestore

import "github.com/aDogCalledSpot/uaevents/pkg/uaevents"

// Well-known identifiers of the BaseEventType property declarations.
var (
	idEventIDDecl     = uaevents.NewNumericID(0, 2042)
	idEventTypeDecl   = uaevents.NewNumericID(0, 2043)
	idSourceNodeDecl  = uaevents.NewNumericID(0, 2044)
	idSourceNameDecl  = uaevents.NewNumericID(0, 2045)
	idTimeDecl        = uaevents.NewNumericID(0, 2046)
	idReceiveTimeDecl = uaevents.NewNumericID(0, 2047)
	idMessageDecl     = uaevents.NewNumericID(0, 2050)
	idSeverityDecl    = uaevents.NewNumericID(0, 2051)
)

// spaceBuilder is the construction surface the namespace-0 seed needs from a
// store implementation.
type spaceBuilder interface {
	addNode(info uaevents.NodeInfo, value any) error
	addReference(source, refType, target uaevents.NodeID) error
}

// seedNamespaceZero boots the subset of the standard namespace the event
// path touches: the reference-type hierarchy, the Objects folder, the base
// object type and BaseEventType with its standard property declarations.
func seedNamespaceZero(b spaceBuilder) error {
	refTypes := []struct {
		id        uaevents.NodeID
		name      string
		supertype uaevents.NodeID
	}{
		{uaevents.IDReferences, "References", uaevents.NodeID{}},
		{uaevents.IDHierarchicalReferences, "HierarchicalReferences", uaevents.IDReferences},
		{uaevents.IDHasChild, "HasChild", uaevents.IDHierarchicalReferences},
		{uaevents.IDOrganizes, "Organizes", uaevents.IDHierarchicalReferences},
		{uaevents.IDAggregates, "Aggregates", uaevents.IDHasChild},
		{uaevents.IDHasSubtype, "HasSubtype", uaevents.IDHasChild},
		{uaevents.IDHasProperty, "HasProperty", uaevents.IDAggregates},
		{uaevents.IDHasComponent, "HasComponent", uaevents.IDAggregates},
		{uaevents.IDHasTypeDefinition, "HasTypeDefinition", uaevents.IDReferences},
	}
	for _, rt := range refTypes {
		info := uaevents.NodeInfo{
			ID:          rt.id,
			Class:       uaevents.ClassReferenceType,
			BrowseName:  uaevents.NewQualifiedName(0, rt.name),
			DisplayName: rt.name,
		}
		if err := b.addNode(info, nil); err != nil {
			return err
		}
		if !rt.supertype.IsNull() {
			if err := b.addReference(rt.supertype, uaevents.IDHasSubtype, rt.id); err != nil {
				return err
			}
		}
	}

	objectTypes := []struct {
		id        uaevents.NodeID
		name      string
		supertype uaevents.NodeID
	}{
		{uaevents.IDBaseObjectType, "BaseObjectType", uaevents.NodeID{}},
		{uaevents.IDBaseEventType, "BaseEventType", uaevents.IDBaseObjectType},
	}
	for _, ot := range objectTypes {
		info := uaevents.NodeInfo{
			ID:          ot.id,
			Class:       uaevents.ClassObjectType,
			BrowseName:  uaevents.NewQualifiedName(0, ot.name),
			DisplayName: ot.name,
		}
		if err := b.addNode(info, nil); err != nil {
			return err
		}
		if !ot.supertype.IsNull() {
			if err := b.addReference(ot.supertype, uaevents.IDHasSubtype, ot.id); err != nil {
				return err
			}
		}
	}

	objects := uaevents.NodeInfo{
		ID:          uaevents.IDObjectsFolder,
		Class:       uaevents.ClassObject,
		BrowseName:  uaevents.NewQualifiedName(0, "Objects"),
		DisplayName: "Objects",
	}
	if err := b.addNode(objects, nil); err != nil {
		return err
	}

	// Property declarations copied onto every event instance.
	properties := []struct {
		id   uaevents.NodeID
		name string
	}{
		{idEventIDDecl, "EventId"},
		{idEventTypeDecl, "EventType"},
		{idSourceNodeDecl, "SourceNode"},
		{idSourceNameDecl, "SourceName"},
		{idTimeDecl, "Time"},
		{idReceiveTimeDecl, "ReceiveTime"},
		{idMessageDecl, "Message"},
		{idSeverityDecl, "Severity"},
	}
	for _, p := range properties {
		info := uaevents.NodeInfo{
			ID:          p.id,
			Class:       uaevents.ClassVariable,
			BrowseName:  uaevents.NewQualifiedName(0, p.name),
			DisplayName: p.name,
		}
		if err := b.addNode(info, nil); err != nil {
			return err
		}
		if err := b.addReference(uaevents.IDBaseEventType, uaevents.IDHasProperty, p.id); err != nil {
			return err
		}
	}
	return nil
}
