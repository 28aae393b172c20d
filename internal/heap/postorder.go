package heap

import (
	"github.com/heap-analysis/pkg/collections"
)

// dfsFrame is one entry of the explicit DFS stack: a node plus its own
// child cursor. Heap dumps regularly hold millions of nodes, so the native
// call stack is not an option for either traversal direction.
type dfsFrame struct {
	node   NodeHandle
	cursor ChildCursor
}

// buildPostOrder computes the post-order permutation of the nodes reachable
// from the root: every node appears after all of its descendants under the
// DFS spanning tree, and the root occupies the final slot.
//
// Unreachable nodes do not appear in the returned slice, so its length is
// the reachable-node count, not necessarily N.
func buildPostOrder(g *HeapGraph) ([]NodeHandle, *collections.Bitset) {
	n := g.NodeCount()
	order := make([]NodeHandle, 0, n)
	visited := collections.NewBitset(n)

	stack := make([]dfsFrame, 0, 64)
	root := g.Root()
	visited.Set(int(root))
	stack = append(stack, dfsFrame{node: root, cursor: g.Cursor(root)})

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		child := top.cursor.Next()
		if child == InvalidNode {
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
			continue
		}
		// A child already visited (shared or duplicate edge, or a cycle
		// back-edge) is skipped; the cursor has advanced, so the loop
		// proceeds with the next sibling rather than popping the frame.
		if visited.Test(int(child)) {
			continue
		}
		visited.Set(int(child))
		stack = append(stack, dfsFrame{node: child, cursor: g.Cursor(child)})
	}

	return order, visited
}
