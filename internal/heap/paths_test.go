package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferencePaths_Chain(t *testing.T) {
	s := NewSnapshot(chainGraph(t))
	paths := s.ReferencePaths(3, 0)

	require.Len(t, paths, 1)
	assert.Equal(t, []NodeHandle{3, 2, 1, 0}, paths[0].Nodes)
	assert.False(t, paths[0].Rootless)
}

func TestReferencePaths_Diamond(t *testing.T) {
	s := NewSnapshot(diamondGraph(t))
	paths := s.ReferencePaths(3, 0)

	require.Len(t, paths, 2)
	assert.Equal(t, []NodeHandle{3, 1, 0}, paths[0].Nodes)
	assert.Equal(t, []NodeHandle{3, 2, 0}, paths[1].Nodes)
}

// Scenario S3: the cycle must not recurse forever, and the path through
// it is reported once.
func TestReferencePaths_Cycle(t *testing.T) {
	s := NewSnapshot(cycleGraph(t))
	paths := s.ReferencePaths(2, 0)

	require.Len(t, paths, 1)
	assert.Equal(t, []NodeHandle{2, 1, 0}, paths[0].Nodes)
}

func TestReferencePaths_TargetIsRoot(t *testing.T) {
	s := NewSnapshot(chainGraph(t))
	paths := s.ReferencePaths(0, 0)

	require.Len(t, paths, 1)
	assert.Equal(t, []NodeHandle{0}, paths[0].Nodes)
	assert.False(t, paths[0].Rootless)
}

func TestReferencePaths_Rootless(t *testing.T) {
	g := buildGraph(t,
		[]string{"R", "T"},
		[]TypeHandle{0, 1, 1},
		[]uint64{0, 1, 1},
		[][]NodeHandle{{1}, {}, {}},
		0)
	s := NewSnapshot(g)

	paths := s.ReferencePaths(2, 0)
	require.Len(t, paths, 1)
	assert.True(t, paths[0].Rootless)
	assert.Equal(t, []NodeHandle{2}, paths[0].Nodes)
}

// Scenario S6: five binary layers give 32 distinct acyclic paths; the
// default cap returns exactly 5, each within the depth cap.
func TestReferencePaths_PathCap(t *testing.T) {
	// Layers of two nodes each; every node points at both nodes of the
	// next layer, the last layer points at the target.
	const layers = 5
	n := 2 + 2*layers // root + layers + target
	target := NodeHandle(n - 1)

	types := make([]TypeHandle, n)
	sizes := make([]uint64, n)
	children := make([][]NodeHandle, n)
	for i := 1; i < n; i++ {
		types[i] = 1
		sizes[i] = 1
	}
	children[0] = []NodeHandle{1, 2}
	for l := 0; l < layers-1; l++ {
		a := NodeHandle(1 + 2*l)
		next := []NodeHandle{a + 2, a + 3}
		children[a] = next
		children[a+1] = append([]NodeHandle(nil), next...)
	}
	last := NodeHandle(1 + 2*(layers-1))
	children[last] = []NodeHandle{target}
	children[last+1] = []NodeHandle{target}

	g := buildGraph(t, []string{"R", "T"}, types, sizes, children, 0)
	s := NewSnapshot(g)

	paths := s.ReferencePaths(target, DefaultMaxPaths)
	require.Len(t, paths, DefaultMaxPaths)
	for _, p := range paths {
		assert.False(t, p.Rootless)
		assert.LessOrEqual(t, len(p.Nodes), MaxPathDepth+1)
		assert.Equal(t, target, p.Nodes[0])
		assert.Equal(t, NodeHandle(0), p.Nodes[len(p.Nodes)-1])
	}
}

func TestReferencePaths_DepthCap(t *testing.T) {
	// A chain longer than the depth cap has no admissible path.
	const n = MaxPathDepth + 10
	types := make([]TypeHandle, n)
	sizes := make([]uint64, n)
	children := make([][]NodeHandle, n)
	for i := 0; i < n-1; i++ {
		children[i] = []NodeHandle{NodeHandle(i + 1)}
		types[i] = 1
		sizes[i] = 1
	}
	types[0] = 0
	sizes[0] = 0

	g := buildGraph(t, []string{"R", "T"}, types, sizes, children, 0)
	s := NewSnapshot(g)

	paths := s.ReferencePaths(NodeHandle(n-1), 0)
	require.Len(t, paths, 1)
	assert.True(t, paths[0].Rootless)
}

func TestFormatReferencePaths(t *testing.T) {
	s := NewSnapshot(chainGraph(t))
	lines := s.FormatReferencePaths(2, 0)

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "B")
	assert.Contains(t, lines[0], " <- ")
	assert.Contains(t, lines[0], "[GC Root]")
}

func TestReferencePaths_Deterministic(t *testing.T) {
	s := NewSnapshot(diamondGraph(t))
	first := s.ReferencePaths(3, 0)
	second := s.ReferencePaths(3, 0)
	assert.Equal(t, first, second)
}
