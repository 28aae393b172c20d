// Package heap implements the heap snapshot engine: an immutable object
// graph with dense integer handles, dominator-tree based retained sizes,
// type aggregation, retainer path search and snapshot comparison.
package heap

import (
	apperrors "github.com/heap-analysis/pkg/errors"
)

// NodeHandle is a dense index identifying a node in a graph, in [0, N).
type NodeHandle = int32

// TypeHandle is a dense index identifying an object type, in [0, T).
type TypeHandle = int32

// InvalidNode is the sentinel for "no node": the root's dominator,
// an exhausted child cursor, unreachable nodes.
const InvalidNode NodeHandle = -1

// ============================================================================
// HeapGraph - Immutable node/edge/type tables (CSR layout)
// ============================================================================

// HeapGraph is the read-only object graph a snapshot is built from.
// Nodes and types are addressed by dense integer handles; child edges are
// stored in a CSR layout (offsets of length N+1 plus a flat target array)
// so that derived tables are plain slices indexed by handle.
//
// Memory comparison for 1M objects with avg 3 refs each:
//   - map[uint64][]uint64 adjacency: ~200MB (bucket overhead + slice headers)
//   - CSR slices: ~36MB (offsets 4MB + targets 12MB + node tables 20MB)
type HeapGraph struct {
	// Per-node tables, indexed by NodeHandle.
	typeHandles  []TypeHandle
	shallowSizes []uint64
	addresses    []uint64

	// CSR child storage: children of node n are
	// childTargets[childOffsets[n]:childOffsets[n+1]], in loader order.
	childOffsets []int32
	childTargets []NodeHandle

	// Type table, indexed by TypeHandle.
	typeNames []string

	root NodeHandle

	// Counters are free-form runtime metrics passed through by the loader.
	counters map[string]int64
}

// NodeInput describes one node as supplied by a loader.
type NodeInput struct {
	Type     TypeHandle
	Size     uint64
	Address  uint64
	Children []NodeHandle
}

// NewHeapGraph builds a HeapGraph from loader-supplied tables and validates
// it. Child order is preserved exactly as given; post-order and dominator
// determinism depend on it.
func NewHeapGraph(nodes []NodeInput, typeNames []string, root NodeHandle, counters map[string]int64) (*HeapGraph, error) {
	n := len(nodes)
	if n == 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidGraph, "graph has no nodes", apperrors.ErrInvalidGraph)
	}
	if root < 0 || int(root) >= n {
		return nil, apperrors.Wrap(apperrors.CodeInvalidGraph,
			"root handle out of range", apperrors.ErrInvalidGraph)
	}

	g := &HeapGraph{
		typeHandles:  make([]TypeHandle, n),
		shallowSizes: make([]uint64, n),
		addresses:    make([]uint64, n),
		childOffsets: make([]int32, n+1),
		typeNames:    typeNames,
		root:         root,
		counters:     counters,
	}

	edgeCount := 0
	for _, node := range nodes {
		edgeCount += len(node.Children)
	}
	g.childTargets = make([]NodeHandle, 0, edgeCount)

	for i, node := range nodes {
		if node.Type < 0 || int(node.Type) >= len(typeNames) {
			return nil, apperrors.Wrap(apperrors.CodeInvalidGraph,
				"type handle out of range", apperrors.ErrInvalidGraph)
		}
		g.typeHandles[i] = node.Type
		g.shallowSizes[i] = node.Size
		g.addresses[i] = node.Address
		g.childOffsets[i] = int32(len(g.childTargets))
		for _, child := range node.Children {
			if child < 0 || int(child) >= n {
				return nil, apperrors.Wrap(apperrors.CodeInvalidGraph,
					"child handle out of range", apperrors.ErrInvalidGraph)
			}
			g.childTargets = append(g.childTargets, child)
		}
	}
	g.childOffsets[n] = int32(len(g.childTargets))

	return g, nil
}

// NodeCount returns N, the number of nodes.
func (g *HeapGraph) NodeCount() int {
	return len(g.typeHandles)
}

// EdgeCount returns E, the total number of child edges.
func (g *HeapGraph) EdgeCount() int {
	return len(g.childTargets)
}

// TypeCount returns T, the number of distinct types.
func (g *HeapGraph) TypeCount() int {
	return len(g.typeNames)
}

// Root returns the designated root handle.
func (g *HeapGraph) Root() NodeHandle {
	return g.root
}

// TypeOf returns the type handle for a node.
func (g *HeapGraph) TypeOf(n NodeHandle) TypeHandle {
	return g.typeHandles[n]
}

// ShallowSize returns the shallow size in bytes for a node.
func (g *HeapGraph) ShallowSize(n NodeHandle) uint64 {
	return g.shallowSizes[n]
}

// Address returns the opaque display address for a node.
func (g *HeapGraph) Address(n NodeHandle) uint64 {
	return g.addresses[n]
}

// TypeName returns the raw name for a type handle.
func (g *HeapGraph) TypeName(t TypeHandle) string {
	return g.typeNames[t]
}

// Counters returns the loader-supplied counter map. May be nil.
func (g *HeapGraph) Counters() map[string]int64 {
	return g.counters
}

// ChildCount returns the number of outgoing edges of a node.
func (g *HeapGraph) ChildCount(n NodeHandle) int {
	return int(g.childOffsets[n+1] - g.childOffsets[n])
}

// Children returns the child handles of a node in loader order.
// The returned slice aliases the graph's storage and must not be modified.
func (g *HeapGraph) Children(n NodeHandle) []NodeHandle {
	return g.childTargets[g.childOffsets[n]:g.childOffsets[n+1]]
}

// ============================================================================
// ChildCursor - Resettable child enumerator
// ============================================================================

// ChildCursor enumerates the children of one node. Each DFS stack frame
// owns its own cursor; cursor state is per-frame, never per-node, so a node
// re-entered from another parent starts from its first child again.
type ChildCursor struct {
	graph *HeapGraph
	node  NodeHandle
	pos   int32
	end   int32
}

// Cursor returns a fresh child cursor for a node.
func (g *HeapGraph) Cursor(n NodeHandle) ChildCursor {
	return ChildCursor{
		graph: g,
		node:  n,
		pos:   g.childOffsets[n],
		end:   g.childOffsets[n+1],
	}
}

// Reset rewinds the cursor to the first child.
func (c *ChildCursor) Reset() {
	c.pos = c.graph.childOffsets[c.node]
}

// Next returns the next child handle, or InvalidNode when exhausted.
func (c *ChildCursor) Next() NodeHandle {
	if c.pos >= c.end {
		return InvalidNode
	}
	child := c.graph.childTargets[c.pos]
	c.pos++
	return child
}
