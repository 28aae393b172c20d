package heap

// Dominator tree construction using the Lengauer-Tarjan algorithm with
// path compression. This is the algorithm Eclipse MAT and the major heap
// tools use for retained-size computation.
//
// Reference: "A Fast Algorithm for Finding Dominators in a Flowgraph",
// Thomas Lengauer and Robert Endre Tarjan, 1979.

// ltState holds the Lengauer-Tarjan working arrays, indexed by DFS number
// except dfn and parents, which are indexed by node handle. int32 keeps the footprint at O(N) words for graphs up to 2^31-1
// nodes.
type ltState struct {
	graph *HeapGraph

	// dfn[node] = DFS number, or -1 for unreachable nodes.
	dfn []int32
	// vertex[i] = node with DFS number i.
	vertex []NodeHandle
	// parent[i] = DFS number of the spanning-tree parent of vertex i.
	parent []int32
	// semi[i] = DFS number of the semidominator of vertex i.
	semi []int32
	// idom[i] = DFS number of the immediate dominator of vertex i.
	idom []int32
	// ancestor/label implement the eval/link forest with path compression.
	ancestor []int32
	label    []int32
	// bucket[i] = vertices whose semidominator is i.
	bucket [][]int32

	// parents[node] = spanning-tree parent handle, set during numbering.
	parents []NodeHandle
	// pathScratch is reused across compress calls.
	pathScratch []int32
}

// buildDominators assigns each reachable non-root node its immediate
// dominator. The root and unreachable nodes get InvalidNode. The DFS
// numbering reuses the graph's stable child order, so results are
// deterministic for a fixed loader input.
func buildDominators(g *HeapGraph, preds *reverseIndex) []NodeHandle {
	n := g.NodeCount()
	st := &ltState{
		graph:  g,
		dfn:    make([]int32, n),
		vertex: make([]NodeHandle, 0, n),
	}
	for i := range st.dfn {
		st.dfn[i] = -1
	}

	st.numberDFS()

	count := int32(len(st.vertex))
	st.parent = st.parentNumbers()
	st.semi = make([]int32, count)
	st.idom = make([]int32, count)
	st.ancestor = make([]int32, count)
	st.label = make([]int32, count)
	st.bucket = make([][]int32, count)
	for i := int32(0); i < count; i++ {
		st.semi[i] = i
		st.ancestor[i] = -1
		st.label[i] = i
	}

	// Process vertices in reverse DFS order, skipping the root (number 0).
	for w := count - 1; w > 0; w-- {
		node := st.vertex[w]

		// Step 2: semidominator of w.
		for _, p := range preds.predecessorsOf(node) {
			pn := st.dfn[p]
			if pn < 0 {
				continue // unreachable predecessor
			}
			u := st.eval(pn)
			if st.semi[u] < st.semi[w] {
				st.semi[w] = st.semi[u]
			}
		}
		st.bucket[st.semi[w]] = append(st.bucket[st.semi[w]], w)
		st.ancestor[w] = st.parent[w]

		// Step 3: implicit immediate dominators for parent[w]'s bucket.
		for _, v := range st.bucket[st.parent[w]] {
			u := st.eval(v)
			if st.semi[u] < st.semi[v] {
				st.idom[v] = u
			} else {
				st.idom[v] = st.parent[w]
			}
		}
		st.bucket[st.parent[w]] = nil
	}

	// Step 4: fill in the deferred immediate dominators.
	for w := int32(1); w < count; w++ {
		if st.idom[w] != st.semi[w] {
			st.idom[w] = st.idom[st.idom[w]]
		}
	}

	result := make([]NodeHandle, n)
	for i := range result {
		result[i] = InvalidNode
	}
	for w := int32(1); w < count; w++ {
		result[st.vertex[w]] = st.vertex[st.idom[w]]
	}
	return result
}

// numberDFS assigns DFS numbers from the root using an explicit stack with
// per-frame child cursors, mirroring the post-order traversal.
func (st *ltState) numberDFS() {
	g := st.graph
	root := g.Root()
	st.dfn[root] = 0
	st.vertex = append(st.vertex, root)

	type numFrame struct {
		node   NodeHandle
		cursor ChildCursor
	}
	stack := make([]numFrame, 0, 64)
	stack = append(stack, numFrame{node: root, cursor: g.Cursor(root)})
	dfsParent := make([]NodeHandle, g.NodeCount())
	dfsParent[root] = InvalidNode
	st.parents = dfsParent

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		child := top.cursor.Next()
		if child == InvalidNode {
			stack = stack[:len(stack)-1]
			continue
		}
		if st.dfn[child] >= 0 {
			continue
		}
		st.dfn[child] = int32(len(st.vertex))
		st.vertex = append(st.vertex, child)
		dfsParent[child] = top.node
		stack = append(stack, numFrame{node: child, cursor: g.Cursor(child)})
	}
}

// parentNumbers converts the per-node spanning-tree parents to DFS numbers.
func (st *ltState) parentNumbers() []int32 {
	parent := make([]int32, len(st.vertex))
	parent[0] = -1
	for i := 1; i < len(st.vertex); i++ {
		parent[i] = st.dfn[st.parents[st.vertex[i]]]
	}
	return parent
}

// eval returns the vertex with minimal semidominator on the forest path
// from v's root to v, compressing the path as it goes. Compression is
// iterative for the same reason the DFS is: forest paths can be as deep as
// the graph.
func (st *ltState) eval(v int32) int32 {
	if st.ancestor[v] < 0 {
		return v
	}
	st.compress(v)
	return st.label[v]
}

func (st *ltState) compress(v int32) {
	// Collect the path to the forest root, then fold labels back down.
	path := st.pathScratch[:0]
	for st.ancestor[st.ancestor[v]] >= 0 {
		path = append(path, v)
		v = st.ancestor[v]
	}
	for i := len(path) - 1; i >= 0; i-- {
		w := path[i]
		anc := st.ancestor[w]
		if st.semi[st.label[anc]] < st.semi[st.label[w]] {
			st.label[w] = st.label[anc]
		}
		st.ancestor[w] = st.ancestor[anc]
	}
	st.pathScratch = path
}
