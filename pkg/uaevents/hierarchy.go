package uaevents

// DefaultMaxTraversalNodes bounds graph traversals that have no structural
// termination guarantee of their own.
const DefaultMaxTraversalNodes = 1 << 16

// TraversalOptions controls graph traversals over the address space.
type TraversalOptions struct {
	// Multiplicative disables the visited-set: a node reachable via two
	// distinct parents is recorded once per discovery, matching the legacy
	// behavior some interoperability suites expect. Termination is then
	// guaranteed only by MaxNodes.
	Multiplicative bool

	// MaxNodes bounds the number of nodes a single traversal may visit.
	// Zero means DefaultMaxTraversalNodes.
	MaxNodes int
}

func (o TraversalOptions) maxNodes() int {
	if o.MaxNodes <= 0 {
		return DefaultMaxTraversalNodes
	}
	return o.MaxNodes
}

// CollectSubtypes returns every descendant of root reachable over forward
// references of refType, in depth-first discovery order. The root itself is
// not included.
//
// With the default options each node appears at most once. Exceeding the
// traversal budget returns ErrTraversalLimit.
func CollectSubtypes(store NodeStore, root, refType NodeID, opts TraversalOptions) ([]NodeID, error) {
	limit := opts.maxNodes()

	var out []NodeID
	var visited map[NodeID]bool
	if !opts.Multiplicative {
		visited = map[NodeID]bool{root: true}
	}

	stack := []NodeID{root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		refs, err := store.References(current)
		if err != nil {
			return nil, err
		}

		// Children are pushed in reverse so the first child found is the
		// next node expanded, preserving depth-first discovery order.
		var children []NodeID
		for _, ref := range refs {
			if ref.Inverse || ref.ReferenceType != refType {
				continue
			}
			if visited != nil {
				if visited[ref.Target] {
					continue
				}
				visited[ref.Target] = true
			}
			out = append(out, ref.Target)
			if len(out) > limit {
				return nil, ErrTraversalLimit
			}
			children = append(children, ref.Target)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out, nil
}

// IsNodeInTree reports whether candidate is reachable from root by following
// inverse references of any of the given reference kinds. A node is
// considered to be in its own tree.
func IsNodeInTree(store NodeStore, candidate, root NodeID, refTypes []NodeID, opts TraversalOptions) (bool, error) {
	if candidate == root {
		return true, nil
	}
	limit := opts.maxNodes()

	visited := map[NodeID]bool{candidate: true}
	stack := []NodeID{candidate}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		refs, err := store.References(current)
		if err != nil {
			return false, err
		}
		for _, ref := range refs {
			if !ref.Inverse || !containsID(refTypes, ref.ReferenceType) {
				continue
			}
			if ref.Target == root {
				return true, nil
			}
			if visited[ref.Target] {
				continue
			}
			visited[ref.Target] = true
			if len(visited) > limit {
				return false, ErrTraversalLimit
			}
			stack = append(stack, ref.Target)
		}
	}
	return false, nil
}

// collectAncestors returns origin plus every node reachable from it over
// inverse references of any kind. Monitored items on the origin itself
// receive the event, so the origin leads the result.
func collectAncestors(store NodeStore, origin NodeID, opts TraversalOptions) ([]NodeID, error) {
	limit := opts.maxNodes()

	out := []NodeID{origin}
	var visited map[NodeID]bool
	if !opts.Multiplicative {
		visited = map[NodeID]bool{origin: true}
	}

	stack := []NodeID{origin}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		refs, err := store.References(current)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			if !ref.Inverse {
				continue
			}
			if visited != nil {
				if visited[ref.Target] {
					continue
				}
				visited[ref.Target] = true
			}
			out = append(out, ref.Target)
			if len(out) > limit {
				return nil, ErrTraversalLimit
			}
			stack = append(stack, ref.Target)
		}
	}
	return out, nil
}

func containsID(ids []NodeID, id NodeID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
