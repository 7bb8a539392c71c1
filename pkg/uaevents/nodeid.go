package uaevents

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// IDKind discriminates the identifier variant carried by a NodeID.
type IDKind uint8

const (
	// IDNumeric is a 32-bit numeric identifier.
	IDNumeric IDKind = iota

	// IDString is a string identifier.
	IDString

	// IDGUID is a GUID identifier, stored in canonical textual form.
	IDGUID

	// IDByteString is an opaque byte-sequence identifier, stored hex-encoded.
	IDByteString
)

// NodeID identifies a node in the address space. It is an immutable value
// type, compared by value, and usable as a map key.
//
// The zero NodeID is the null identifier (namespace 0, numeric 0).
type NodeID struct {
	// Namespace is the namespace index. Namespace 0 holds the well-known
	// reference types and base types.
	Namespace uint16

	// Kind selects which identifier variant is in use.
	Kind IDKind

	// Numeric holds the identifier for IDNumeric.
	Numeric uint32

	// Text holds the identifier for IDString, IDGUID (canonical GUID form)
	// and IDByteString (hex-encoded).
	Text string
}

// NewNumericID creates a numeric NodeID.
func NewNumericID(ns uint16, id uint32) NodeID {
	return NodeID{Namespace: ns, Kind: IDNumeric, Numeric: id}
}

// NewStringID creates a string NodeID.
func NewStringID(ns uint16, id string) NodeID {
	return NodeID{Namespace: ns, Kind: IDString, Text: id}
}

// NewGUIDID creates a GUID NodeID.
func NewGUIDID(ns uint16, id uuid.UUID) NodeID {
	return NodeID{Namespace: ns, Kind: IDGUID, Text: id.String()}
}

// NewByteStringID creates a byte-string NodeID.
func NewByteStringID(ns uint16, id []byte) NodeID {
	return NodeID{Namespace: ns, Kind: IDByteString, Text: hex.EncodeToString(id)}
}

// IsNull reports whether the NodeID is the null identifier.
func (n NodeID) IsNull() bool {
	switch n.Kind {
	case IDNumeric:
		return n.Namespace == 0 && n.Numeric == 0
	default:
		return n.Text == ""
	}
}

// String returns a readable form of the NodeID.
func (n NodeID) String() string {
	switch n.Kind {
	case IDNumeric:
		return fmt.Sprintf("ns=%d;i=%d", n.Namespace, n.Numeric)
	case IDString:
		return fmt.Sprintf("ns=%d;s=%s", n.Namespace, n.Text)
	case IDGUID:
		return fmt.Sprintf("ns=%d;g=%s", n.Namespace, n.Text)
	case IDByteString:
		return fmt.Sprintf("ns=%d;b=%s", n.Namespace, n.Text)
	default:
		return fmt.Sprintf("ns=%d;?", n.Namespace)
	}
}

// QualifiedName is a namespace-scoped browse label.
type QualifiedName struct {
	Namespace uint16
	Name      string
}

// NewQualifiedName creates a QualifiedName.
func NewQualifiedName(ns uint16, name string) QualifiedName {
	return QualifiedName{Namespace: ns, Name: name}
}

// String returns "ns:name", or just the name for namespace 0.
func (q QualifiedName) String() string {
	if q.Namespace == 0 {
		return q.Name
	}
	return fmt.Sprintf("%d:%s", q.Namespace, q.Name)
}

// RelativePathElement is a single hop in a browse-path traversal.
type RelativePathElement struct {
	// ReferenceType is the reference kind to follow.
	ReferenceType NodeID

	// Inverse follows the reference against its direction when true.
	Inverse bool

	// IncludeSubtypes also follows subtypes of ReferenceType when true.
	IncludeSubtypes bool

	// TargetName is the browse name the hop must land on.
	TargetName QualifiedName
}

// Well-known namespace-0 node identifiers. The numeric assignments follow
// the OPC UA namespace-0 standard so address spaces seeded elsewhere remain
// interoperable.
var (
	IDReferences             = NewNumericID(0, 31)
	IDHierarchicalReferences = NewNumericID(0, 33)
	IDHasChild               = NewNumericID(0, 34)
	IDOrganizes              = NewNumericID(0, 35)
	IDAggregates             = NewNumericID(0, 44)
	IDHasSubtype             = NewNumericID(0, 45)
	IDHasProperty            = NewNumericID(0, 46)
	IDHasComponent           = NewNumericID(0, 47)
	IDHasTypeDefinition      = NewNumericID(0, 40)
	IDBaseObjectType         = NewNumericID(0, 58)
	IDObjectsFolder          = NewNumericID(0, 85)
	IDBaseEventType          = NewNumericID(0, 2041)
)

// EventID is the 16-byte unique identifier assigned to every event object.
// GUIDs are 16 bytes and already have a uniform random generator, so the
// identifier is drawn from one.
type EventID [16]byte

// NewEventID generates a fresh EventID from a cryptographically strong
// random source.
func NewEventID() EventID {
	return EventID(uuid.New())
}

// String returns the canonical GUID text form of the EventID.
func (e EventID) String() string {
	return uuid.UUID(e).String()
}

// Bytes returns the identifier as a 16-byte slice copy.
func (e EventID) Bytes() []byte {
	b := make([]byte, len(e))
	copy(b, e[:])
	return b
}
