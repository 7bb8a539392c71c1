// Package nodestore provides address-space store implementations for the
// event core: an in-memory store and a SQLite-backed persistent store. Both
// boot with the namespace-0 subset the event path relies on (reference-type
// hierarchy, Objects folder, BaseEventType with its property declarations).
package nodestore

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aDogCalledSpot/uaevents/pkg/uaevents"
)

// memNode is one node of the in-memory address space.
type memNode struct {
	info  uaevents.NodeInfo
	value any

	// refs holds the node's edges in insertion order. Forward edges are
	// stored on the source, and a mirrored inverse entry on the target, so
	// both directions list in a single pass.
	refs []uaevents.Reference
}

// MemoryStore is an in-memory address space. It implements the store
// contract consumed by the event core and adds the construction surface
// (types, objects, variables, references, monitored-item registration) the
// core treats as externally owned.
type MemoryStore struct {
	mu        sync.RWMutex
	nodes     map[uaevents.NodeID]*memNode
	monitored map[uaevents.NodeID][]*uaevents.MonitoredItem
}

// Compile-time interface check.
var _ uaevents.NodeStore = (*MemoryStore)(nil)

// NewMemoryStore creates a memory store seeded with the namespace-0 subset.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		nodes:     make(map[uaevents.NodeID]*memNode),
		monitored: make(map[uaevents.NodeID][]*uaevents.MonitoredItem),
	}
	// Seeding only fails on duplicate identifiers, impossible on a fresh store.
	if err := seedNamespaceZero(s); err != nil {
		panic(fmt.Sprintf("nodestore: namespace-0 seed: %v", err))
	}
	return s
}

// addNode inserts a bare node. Part of the spaceBuilder contract shared with
// the seed.
func (s *MemoryStore) addNode(info uaevents.NodeInfo, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNodeLocked(info, value)
}

func (s *MemoryStore) addNodeLocked(info uaevents.NodeInfo, value any) error {
	if _, exists := s.nodes[info.ID]; exists {
		return fmt.Errorf("node %s already exists", info.ID)
	}
	s.nodes[info.ID] = &memNode{info: info, value: value}
	return nil
}

// addReference links source to target with the given reference type,
// mirroring an inverse entry on the target. Part of the spaceBuilder
// contract shared with the seed.
func (s *MemoryStore) addReference(source, refType, target uaevents.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addReferenceLocked(source, refType, target)
}

func (s *MemoryStore) addReferenceLocked(source, refType, target uaevents.NodeID) error {
	src, ok := s.nodes[source]
	if !ok {
		return fmt.Errorf("reference source: %w: %s", uaevents.ErrNodeNotFound, source)
	}
	dst, ok := s.nodes[target]
	if !ok {
		return fmt.Errorf("reference target: %w: %s", uaevents.ErrNodeNotFound, target)
	}
	src.refs = append(src.refs, uaevents.Reference{ReferenceType: refType, Target: target})
	dst.refs = append(dst.refs, uaevents.Reference{ReferenceType: refType, Target: source, Inverse: true})
	return nil
}

// AddReferenceType adds a reference-type node below the given supertype.
func (s *MemoryStore) AddReferenceType(id uaevents.NodeID, name string, supertype uaevents.NodeID) error {
	return s.addTypeNode(id, name, supertype, uaevents.ClassReferenceType)
}

// AddObjectType adds an object-type node below the given supertype.
// Event types are object types descending from BaseEventType.
func (s *MemoryStore) AddObjectType(id uaevents.NodeID, name string, supertype uaevents.NodeID) error {
	return s.addTypeNode(id, name, supertype, uaevents.ClassObjectType)
}

func (s *MemoryStore) addTypeNode(id uaevents.NodeID, name string, supertype uaevents.NodeID, class uaevents.NodeClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := uaevents.NodeInfo{
		ID:          id,
		Class:       class,
		BrowseName:  uaevents.NewQualifiedName(id.Namespace, name),
		DisplayName: name,
	}
	if err := s.addNodeLocked(info, nil); err != nil {
		return err
	}
	if !supertype.IsNull() {
		return s.addReferenceLocked(supertype, uaevents.IDHasSubtype, id)
	}
	return nil
}

// AddObject adds an object node under parent via refType.
func (s *MemoryStore) AddObject(id uaevents.NodeID, parent, refType uaevents.NodeID, name string, typeDef uaevents.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := uaevents.NodeInfo{
		ID:             id,
		Class:          uaevents.ClassObject,
		BrowseName:     uaevents.NewQualifiedName(id.Namespace, name),
		DisplayName:    name,
		TypeDefinition: typeDef,
	}
	if err := s.addNodeLocked(info, nil); err != nil {
		return err
	}
	if !parent.IsNull() {
		return s.addReferenceLocked(parent, refType, id)
	}
	return nil
}

// AddVariable adds a variable node under parent via refType and returns its
// identifier.
func (s *MemoryStore) AddVariable(parent, refType uaevents.NodeID, name string, value any) (uaevents.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addVariableLocked(parent, refType, name, value)
}

func (s *MemoryStore) addVariableLocked(parent, refType uaevents.NodeID, name string, value any) (uaevents.NodeID, error) {
	id := uaevents.NewGUIDID(1, uuid.New())
	info := uaevents.NodeInfo{
		ID:          id,
		Class:       uaevents.ClassVariable,
		BrowseName:  uaevents.NewQualifiedName(0, name),
		DisplayName: name,
	}
	if err := s.addNodeLocked(info, value); err != nil {
		return uaevents.NodeID{}, err
	}
	if !parent.IsNull() {
		if err := s.addReferenceLocked(parent, refType, id); err != nil {
			return uaevents.NodeID{}, err
		}
	}
	return id, nil
}

// AddVariableWithID adds a variable node with a caller-chosen identifier.
// The seed uses it for the well-known BaseEventType property declarations.
func (s *MemoryStore) AddVariableWithID(id uaevents.NodeID, parent, refType uaevents.NodeID, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := uaevents.NodeInfo{
		ID:          id,
		Class:       uaevents.ClassVariable,
		BrowseName:  uaevents.NewQualifiedName(id.Namespace, name),
		DisplayName: name,
	}
	if err := s.addNodeLocked(info, value); err != nil {
		return err
	}
	if !parent.IsNull() {
		return s.addReferenceLocked(parent, refType, id)
	}
	return nil
}

// AddReference links two existing nodes.
func (s *MemoryStore) AddReference(source, refType, target uaevents.NodeID) error {
	return s.addReference(source, refType, target)
}

// RegisterMonitoredItem registers a monitored item on a node. Registered
// items receive notifications for events triggered on the node or any of
// its containment descendants.
func (s *MemoryStore) RegisterMonitoredItem(node uaevents.NodeID, item *uaevents.MonitoredItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[node]; !ok {
		return fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, node)
	}
	s.monitored[node] = append(s.monitored[node], item)
	return nil
}

// UnregisterMonitoredItem removes a monitored item registration.
func (s *MemoryStore) UnregisterMonitoredItem(node uaevents.NodeID, item *uaevents.MonitoredItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.monitored[node]
	for i, registered := range items {
		if registered == item {
			s.monitored[node] = append(items[:i], items[i+1:]...)
			return
		}
	}
}

// NodeCount returns the number of nodes in the store.
func (s *MemoryStore) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// GetNode implements uaevents.NodeStore.
func (s *MemoryStore) GetNode(id uaevents.NodeID) (uaevents.NodeInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok {
		return uaevents.NodeInfo{}, fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, id)
	}
	return node.info, nil
}

// AddObjectNode implements uaevents.NodeStore. The node is free-standing
// and the attribute children declared by the type definition and its
// supertypes are instantiated on it.
func (s *MemoryStore) AddObjectNode(typeDef uaevents.NodeID, displayName string) (uaevents.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	typeNode, ok := s.nodes[typeDef]
	if !ok {
		return uaevents.NodeID{}, fmt.Errorf("type definition: %w: %s", uaevents.ErrNodeNotFound, typeDef)
	}
	if typeNode.info.Class != uaevents.ClassObjectType {
		return uaevents.NodeID{}, fmt.Errorf("type definition %s is a %s, not an object type", typeDef, typeNode.info.Class)
	}

	id := uaevents.NewGUIDID(1, uuid.New())
	info := uaevents.NodeInfo{
		ID:             id,
		Class:          uaevents.ClassObject,
		BrowseName:     uaevents.QualifiedName{},
		DisplayName:    displayName,
		TypeDefinition: typeDef,
	}
	if err := s.addNodeLocked(info, nil); err != nil {
		return uaevents.NodeID{}, err
	}

	if err := s.instantiateChildrenLocked(id, typeDef); err != nil {
		return uaevents.NodeID{}, err
	}
	return id, nil
}

// instantiateChildrenLocked copies the variable declarations of the type
// definition chain (type first, then supertypes) onto the instance. A browse
// name instantiated by a subtype shadows the same name on a supertype.
func (s *MemoryStore) instantiateChildrenLocked(instance, typeDef uaevents.NodeID) error {
	aggregates := s.aggregationKindsLocked()
	seen := make(map[uaevents.QualifiedName]bool)

	for _, typeID := range s.typeChainLocked(typeDef) {
		typeNode, ok := s.nodes[typeID]
		if !ok {
			continue
		}
		for _, ref := range typeNode.refs {
			if ref.Inverse || !aggregates[ref.ReferenceType] {
				continue
			}
			decl, ok := s.nodes[ref.Target]
			if !ok || decl.info.Class != uaevents.ClassVariable {
				continue
			}
			if seen[decl.info.BrowseName] {
				continue
			}
			seen[decl.info.BrowseName] = true
			if _, err := s.addVariableLocked(instance, ref.ReferenceType, decl.info.BrowseName.Name, decl.value); err != nil {
				return err
			}
		}
	}
	return nil
}

// typeChainLocked returns typeDef followed by its supertypes in order.
func (s *MemoryStore) typeChainLocked(typeDef uaevents.NodeID) []uaevents.NodeID {
	chain := []uaevents.NodeID{typeDef}
	visited := map[uaevents.NodeID]bool{typeDef: true}
	current := typeDef
	for {
		node, ok := s.nodes[current]
		if !ok {
			return chain
		}
		next := uaevents.NodeID{}
		for _, ref := range node.refs {
			if ref.Inverse && ref.ReferenceType == uaevents.IDHasSubtype {
				next = ref.Target
				break
			}
		}
		if next.IsNull() || visited[next] {
			return chain
		}
		visited[next] = true
		chain = append(chain, next)
		current = next
	}
}

// aggregationKindsLocked returns the Aggregates reference kind and all its
// subtypes currently in the store.
func (s *MemoryStore) aggregationKindsLocked() map[uaevents.NodeID]bool {
	kinds := map[uaevents.NodeID]bool{uaevents.IDAggregates: true}
	stack := []uaevents.NodeID{uaevents.IDAggregates}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := s.nodes[current]
		if !ok {
			continue
		}
		for _, ref := range node.refs {
			if ref.Inverse || ref.ReferenceType != uaevents.IDHasSubtype || kinds[ref.Target] {
				continue
			}
			kinds[ref.Target] = true
			stack = append(stack, ref.Target)
		}
	}
	return kinds
}

// DeleteNode implements uaevents.NodeStore. With recursive set, nodes
// reachable over forward aggregation references are removed first.
func (s *MemoryStore) DeleteNode(id uaevents.NodeID, recursive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteNodeLocked(id, recursive)
}

func (s *MemoryStore) deleteNodeLocked(id uaevents.NodeID, recursive bool) error {
	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, id)
	}

	if recursive {
		aggregates := s.aggregationKindsLocked()
		// Snapshot: child deletion rewrites the parent's reference slice.
		children := make([]uaevents.NodeID, 0, len(node.refs))
		for _, ref := range node.refs {
			if !ref.Inverse && aggregates[ref.ReferenceType] {
				children = append(children, ref.Target)
			}
		}
		for _, child := range children {
			if _, exists := s.nodes[child]; !exists {
				continue
			}
			if err := s.deleteNodeLocked(child, true); err != nil {
				return err
			}
		}
	}

	// Unlink from neighbors.
	for _, ref := range s.nodes[id].refs {
		neighbor, ok := s.nodes[ref.Target]
		if !ok {
			continue
		}
		kept := neighbor.refs[:0]
		for _, back := range neighbor.refs {
			if back.Target != id {
				kept = append(kept, back)
			}
		}
		neighbor.refs = kept
	}

	delete(s.nodes, id)
	delete(s.monitored, id)
	return nil
}

// References implements uaevents.NodeStore.
func (s *MemoryStore) References(id uaevents.NodeID) ([]uaevents.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, id)
	}
	refs := make([]uaevents.Reference, len(node.refs))
	copy(refs, node.refs)
	return refs, nil
}

// MonitoredItems implements uaevents.NodeStore.
func (s *MemoryStore) MonitoredItems(id uaevents.NodeID) ([]*uaevents.MonitoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, id)
	}
	return s.monitored[id], nil
}

// TranslateBrowsePath implements uaevents.NodeStore.
func (s *MemoryStore) TranslateBrowsePath(start uaevents.NodeID, path []uaevents.RelativePathElement) ([]uaevents.NodeID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[start]; !ok {
		return nil, fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, start)
	}

	frontier := []uaevents.NodeID{start}
	for _, elem := range path {
		var matchKinds map[uaevents.NodeID]bool
		if elem.IncludeSubtypes {
			matchKinds = s.subtypeClosureLocked(elem.ReferenceType)
		}

		var next []uaevents.NodeID
		for _, current := range frontier {
			node, ok := s.nodes[current]
			if !ok {
				continue
			}
			for _, ref := range node.refs {
				if ref.Inverse != elem.Inverse {
					continue
				}
				if ref.ReferenceType != elem.ReferenceType && !matchKinds[ref.ReferenceType] {
					continue
				}
				target, ok := s.nodes[ref.Target]
				if !ok || target.info.BrowseName != elem.TargetName {
					continue
				}
				next = append(next, ref.Target)
			}
		}
		if len(next) == 0 {
			return nil, uaevents.ErrNoTargets
		}
		frontier = next
	}
	return frontier, nil
}

// subtypeClosureLocked returns base and all its subtypes.
func (s *MemoryStore) subtypeClosureLocked(base uaevents.NodeID) map[uaevents.NodeID]bool {
	closure := map[uaevents.NodeID]bool{base: true}
	stack := []uaevents.NodeID{base}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := s.nodes[current]
		if !ok {
			continue
		}
		for _, ref := range node.refs {
			if ref.Inverse || ref.ReferenceType != uaevents.IDHasSubtype || closure[ref.Target] {
				continue
			}
			closure[ref.Target] = true
			stack = append(stack, ref.Target)
		}
	}
	return closure
}

// ReadValue implements uaevents.NodeStore.
func (s *MemoryStore) ReadValue(id uaevents.NodeID) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, id)
	}
	if node.info.Class != uaevents.ClassVariable {
		return nil, fmt.Errorf("node %s is a %s, not a variable", id, node.info.Class)
	}
	return node.value, nil
}

// WriteValue implements uaevents.NodeStore.
func (s *MemoryStore) WriteValue(id uaevents.NodeID, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", uaevents.ErrNodeNotFound, id)
	}
	if node.info.Class != uaevents.ClassVariable {
		return fmt.Errorf("node %s is a %s, not a variable", id, node.info.Class)
	}
	node.value = value
	return nil
}
