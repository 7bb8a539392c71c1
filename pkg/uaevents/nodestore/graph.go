package nodestore

import "github.com/aDogCalledSpot/uaevents/pkg/uaevents"

// graphReader is the minimal read surface the shared graph helpers need.
type graphReader interface {
	nodeInfo(id uaevents.NodeID) (uaevents.NodeInfo, error)
	nodeRefs(id uaevents.NodeID) ([]uaevents.Reference, error)
}

// subtypeClosure returns base and all nodes reachable over forward
// HasSubtype references.
func subtypeClosure(g graphReader, base uaevents.NodeID) (map[uaevents.NodeID]bool, error) {
	closure := map[uaevents.NodeID]bool{base: true}
	stack := []uaevents.NodeID{base}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		refs, err := g.nodeRefs(current)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			if ref.Inverse || ref.ReferenceType != uaevents.IDHasSubtype || closure[ref.Target] {
				continue
			}
			closure[ref.Target] = true
			stack = append(stack, ref.Target)
		}
	}
	return closure, nil
}

// aggregationKinds returns the Aggregates reference kind and its subtypes.
func aggregationKinds(g graphReader) (map[uaevents.NodeID]bool, error) {
	return subtypeClosure(g, uaevents.IDAggregates)
}

// typeChain returns typeDef followed by its supertypes, nearest first.
func typeChain(g graphReader, typeDef uaevents.NodeID) ([]uaevents.NodeID, error) {
	chain := []uaevents.NodeID{typeDef}
	visited := map[uaevents.NodeID]bool{typeDef: true}
	current := typeDef
	for {
		refs, err := g.nodeRefs(current)
		if err != nil {
			return chain, nil
		}
		next := uaevents.NodeID{}
		for _, ref := range refs {
			if ref.Inverse && ref.ReferenceType == uaevents.IDHasSubtype {
				next = ref.Target
				break
			}
		}
		if next.IsNull() || visited[next] {
			return chain, nil
		}
		visited[next] = true
		chain = append(chain, next)
		current = next
	}
}

// translatePath resolves a relative path from start and returns the final
// frontier, or uaevents.ErrNoTargets when any hop matches nothing.
func translatePath(g graphReader, start uaevents.NodeID, path []uaevents.RelativePathElement) ([]uaevents.NodeID, error) {
	if _, err := g.nodeInfo(start); err != nil {
		return nil, err
	}

	frontier := []uaevents.NodeID{start}
	for _, elem := range path {
		var matchKinds map[uaevents.NodeID]bool
		if elem.IncludeSubtypes {
			closure, err := subtypeClosure(g, elem.ReferenceType)
			if err != nil {
				return nil, err
			}
			matchKinds = closure
		}

		var next []uaevents.NodeID
		for _, current := range frontier {
			refs, err := g.nodeRefs(current)
			if err != nil {
				continue
			}
			for _, ref := range refs {
				if ref.Inverse != elem.Inverse {
					continue
				}
				if ref.ReferenceType != elem.ReferenceType && !matchKinds[ref.ReferenceType] {
					continue
				}
				target, err := g.nodeInfo(ref.Target)
				if err != nil || target.BrowseName != elem.TargetName {
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
