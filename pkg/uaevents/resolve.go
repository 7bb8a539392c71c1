package uaevents

// FindAttributeNode locates the variable node holding the attribute named
// name, reachable from start over a path of pathDepth hops.
//
// Attributes are ordinary children in the address space, reached over an
// aggregation reference whose exact kind varies by node and type. The
// resolver therefore computes the subtype set of Aggregates and tries each
// candidate kind in turn, most recently discovered first; the first kind
// that yields a target wins. If no candidate resolves, the last failure is
// returned wrapped in a ResolveError.
func FindAttributeNode(store NodeStore, name QualifiedName, pathDepth int, start NodeID, opts TraversalOptions) (NodeID, error) {
	candidates, err := CollectSubtypes(store, IDAggregates, IDHasSubtype, opts)
	if err != nil {
		return NodeID{}, &ResolveError{Name: name, Start: start, Err: err}
	}

	lastErr := error(ErrNoTargets)
	for i := len(candidates) - 1; i >= 0; i-- {
		path := make([]RelativePathElement, pathDepth)
		for j := range path {
			path[j] = RelativePathElement{
				ReferenceType: candidates[i],
				TargetName:    name,
			}
		}

		targets, err := store.TranslateBrowsePath(start, path)
		if err != nil {
			lastErr = err
			continue
		}
		if len(targets) == 0 {
			lastErr = ErrNoTargets
			continue
		}
		return targets[0], nil
	}
	return NodeID{}, &ResolveError{Name: name, Start: start, Err: lastErr}
}
