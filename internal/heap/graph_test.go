package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/heap-analysis/pkg/errors"
)

// buildGraph constructs a graph for tests. Each entry of children is the
// child list of the node at the same index; sizes and types run parallel.
func buildGraph(t *testing.T, types []string, nodeTypes []TypeHandle, sizes []uint64, children [][]NodeHandle, root NodeHandle) *HeapGraph {
	t.Helper()

	nodes := make([]NodeInput, len(sizes))
	for i := range nodes {
		nodes[i] = NodeInput{
			Type:     nodeTypes[i],
			Size:     sizes[i],
			Address:  uint64(0x1000 + i*0x10),
			Children: children[i],
		}
	}
	g, err := NewHeapGraph(nodes, types, root, nil)
	require.NoError(t, err)
	return g
}

// chainGraph is scenario S1: 0(root, size 0) -> 1(10) -> 2(20) -> 3(30).
func chainGraph(t *testing.T) *HeapGraph {
	return buildGraph(t,
		[]string{"[.NET Roots]", "A", "B", "C"},
		[]TypeHandle{0, 1, 2, 3},
		[]uint64{0, 10, 20, 30},
		[][]NodeHandle{{1}, {2}, {3}, {}},
		0)
}

// diamondGraph is scenario S2: 0(0) -> {1(10), 2(10)}; 1 -> 3(100); 2 -> 3.
func diamondGraph(t *testing.T) *HeapGraph {
	return buildGraph(t,
		[]string{"[.NET Roots]", "Left", "Right", "Shared"},
		[]TypeHandle{0, 1, 2, 3},
		[]uint64{0, 10, 10, 100},
		[][]NodeHandle{{1, 2}, {3}, {3}, {}},
		0)
}

// cycleGraph is scenario S3: 0(0) -> 1(5); 1 -> 2(5); 2 -> 1.
func cycleGraph(t *testing.T) *HeapGraph {
	return buildGraph(t,
		[]string{"[.NET Roots]", "Node"},
		[]TypeHandle{0, 1, 1},
		[]uint64{0, 5, 5},
		[][]NodeHandle{{1}, {2}, {1}},
		0)
}

func TestNewHeapGraph_Valid(t *testing.T) {
	g := chainGraph(t)

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, 4, g.TypeCount())
	assert.Equal(t, NodeHandle(0), g.Root())
	assert.Equal(t, uint64(20), g.ShallowSize(2))
	assert.Equal(t, "B", g.TypeName(g.TypeOf(2)))
	assert.Equal(t, []NodeHandle{1}, g.Children(0))
	assert.Empty(t, g.Children(3))
}

func TestNewHeapGraph_Invalid(t *testing.T) {
	types := []string{"T"}

	tests := []struct {
		name  string
		nodes []NodeInput
		root  NodeHandle
	}{
		{
			name:  "empty graph",
			nodes: nil,
			root:  0,
		},
		{
			name:  "root out of range",
			nodes: []NodeInput{{Type: 0, Size: 1}},
			root:  5,
		},
		{
			name:  "child out of range",
			nodes: []NodeInput{{Type: 0, Size: 1, Children: []NodeHandle{7}}},
			root:  0,
		},
		{
			name:  "negative child",
			nodes: []NodeInput{{Type: 0, Size: 1, Children: []NodeHandle{-2}}},
			root:  0,
		},
		{
			name:  "type handle out of range",
			nodes: []NodeInput{{Type: 3, Size: 1}},
			root:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHeapGraph(tt.nodes, types, tt.root, nil)
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidGraph(err))
		})
	}
}

func TestChildCursor(t *testing.T) {
	g := diamondGraph(t)

	cursor := g.Cursor(0)
	assert.Equal(t, NodeHandle(1), cursor.Next())
	assert.Equal(t, NodeHandle(2), cursor.Next())
	assert.Equal(t, InvalidNode, cursor.Next())
	assert.Equal(t, InvalidNode, cursor.Next())

	cursor.Reset()
	assert.Equal(t, NodeHandle(1), cursor.Next())

	// Cursors are independent per holder, not shared per node.
	first := g.Cursor(0)
	second := g.Cursor(0)
	assert.Equal(t, NodeHandle(1), first.Next())
	assert.Equal(t, NodeHandle(1), second.Next())
}

func TestHeapGraph_Counters(t *testing.T) {
	nodes := []NodeInput{{Type: 0, Size: 0}}
	counters := map[string]int64{"gc_count": 7, "gen2_size": 1024}
	g, err := NewHeapGraph(nodes, []string{"[.NET Roots]"}, 0, counters)
	require.NoError(t, err)
	assert.Equal(t, counters, g.Counters())
}
