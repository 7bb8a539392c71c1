package uaevents

// NodeClass categorizes nodes in the address space.
type NodeClass uint8

const (
	// ClassObject is an instance object (folders, devices, events).
	ClassObject NodeClass = iota

	// ClassObjectType is a type-definition node.
	ClassObjectType

	// ClassVariable is a value-carrying node.
	ClassVariable

	// ClassReferenceType defines a reference kind.
	ClassReferenceType
)

// String returns the class name.
func (c NodeClass) String() string {
	switch c {
	case ClassObject:
		return "object"
	case ClassObjectType:
		return "object_type"
	case ClassVariable:
		return "variable"
	case ClassReferenceType:
		return "reference_type"
	default:
		return "unknown"
	}
}

// Reference is one edge of the address-space graph as seen from a node:
// the reference kind, the neighbor, and whether the edge points backwards.
type Reference struct {
	// ReferenceType is the reference kind (a ClassReferenceType node).
	ReferenceType NodeID

	// Target is the neighbor on the other end.
	Target NodeID

	// Inverse is true when the edge is seen against its direction, i.e.
	// the neighbor is a source pointing at this node.
	Inverse bool
}

// NodeInfo is the externally visible description of a node.
type NodeInfo struct {
	ID             NodeID
	Class          NodeClass
	BrowseName     QualifiedName
	DisplayName    string
	TypeDefinition NodeID
}

// NodeStore is the address-space contract this core consumes. The graph is
// externally owned; the core never mutates it beyond adding the transient
// event object, writing its attributes and deleting it after delivery.
//
// Calls into the core are serialized by the server runtime, so
// implementations are not required to support concurrent mutation during a
// trigger.
type NodeStore interface {
	// GetNode returns the node's description, or ErrNodeNotFound.
	GetNode(id NodeID) (NodeInfo, error)

	// AddObjectNode creates a free-standing object node of the given type
	// definition with no parent and no containment references, instantiating
	// the attribute children declared by the type and its supertypes.
	AddObjectNode(typeDef NodeID, displayName string) (NodeID, error)

	// DeleteNode removes a node. With recursive set, nodes reachable over
	// forward aggregation references are removed as well.
	DeleteNode(id NodeID, recursive bool) error

	// References returns a snapshot of the node's edges, forward and
	// inverse. Callers compose their own filtering over the slice.
	References(id NodeID) ([]Reference, error)

	// MonitoredItems returns the monitored items registered on the node.
	MonitoredItems(id NodeID) ([]*MonitoredItem, error)

	// TranslateBrowsePath resolves a relative path from a starting node and
	// returns the matching target identifiers. An empty result is reported
	// as ErrNoTargets.
	TranslateBrowsePath(start NodeID, path []RelativePathElement) ([]NodeID, error)

	// ReadValue reads a variable node's value. An untyped nil means the
	// variable carries no value.
	ReadValue(id NodeID) (any, error)

	// WriteValue replaces a variable node's value.
	WriteValue(id NodeID, value any) error
}
