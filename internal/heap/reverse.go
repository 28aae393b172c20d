package heap

// reverseIndex is the predecessor index: the exact inverse of the child
// relation, stored in the same CSR layout as the forward edges. Duplicate
// forward edges yield duplicate predecessor entries (multiset semantics).
type reverseIndex struct {
	offsets []int32
	preds   []NodeHandle
}

// buildReverseIndex builds the predecessor index in two linear passes over
// the forward edges: a counting pass that becomes a prefix sum, then a fill
// pass. O(N+E) time, O(N+E) storage, no per-node allocations.
func buildReverseIndex(g *HeapGraph) *reverseIndex {
	n := g.NodeCount()
	idx := &reverseIndex{
		offsets: make([]int32, n+1),
		preds:   make([]NodeHandle, g.EdgeCount()),
	}

	for p := NodeHandle(0); int(p) < n; p++ {
		for _, child := range g.Children(p) {
			idx.offsets[child+1]++
		}
	}
	for i := 1; i <= n; i++ {
		idx.offsets[i] += idx.offsets[i-1]
	}

	// fill[c] is the next free slot in c's bucket.
	fill := make([]int32, n)
	copy(fill, idx.offsets[:n])
	for p := NodeHandle(0); int(p) < n; p++ {
		for _, child := range g.Children(p) {
			idx.preds[fill[child]] = p
			fill[child]++
		}
	}

	return idx
}

// predecessorsOf returns the predecessors of a node. Enumeration order is
// forward-scan order, which is stable for a given snapshot. The returned
// slice aliases the index storage and must not be modified.
func (r *reverseIndex) predecessorsOf(n NodeHandle) []NodeHandle {
	return r.preds[r.offsets[n]:r.offsets[n+1]]
}
