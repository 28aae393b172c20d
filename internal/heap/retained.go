package heap

// computeRetained fills the retained-size table in one post-order sweep of
// the dominator tree. retained[n] starts at shallow size; walking the post
// order guarantees every node is folded into its dominator only after its
// own subtree is complete, so a single pass with no stack suffices.
//
// Unreachable nodes are skipped by construction: they never appear in the
// post order, keep retained == shallow, and have no dominator to fold into.
func computeRetained(g *HeapGraph, postOrder []NodeHandle, iDom []NodeHandle) []uint64 {
	retained := make([]uint64, g.NodeCount())
	for n := range retained {
		retained[n] = g.ShallowSize(NodeHandle(n))
	}

	// The last entry is the root; it has no dominator.
	for i := 0; i < len(postOrder)-1; i++ {
		n := postOrder[i]
		d := iDom[n]
		if d != InvalidNode {
			retained[d] += retained[n]
		}
	}

	return retained
}
