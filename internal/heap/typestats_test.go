package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario S4: nodes 1..4 sizes [10,10,20,0], types [A,A,B,C]; node 0 is
// the root with size 0.
func typeAggGraph(t *testing.T) *HeapGraph {
	return buildGraph(t,
		[]string{"[.NET Roots]", "A", "B", "C"},
		[]TypeHandle{0, 1, 1, 2, 3},
		[]uint64{0, 10, 10, 20, 0},
		[][]NodeHandle{{1, 2, 3, 4}, {}, {}, {}, {}},
		0)
}

func TestTypeStatistics_Aggregation(t *testing.T) {
	s := NewSnapshot(typeAggGraph(t))
	stats := s.TypeStatistics(0)

	require.Len(t, stats, 2)

	// A and B both retain 20 bytes; the tie breaks on name ascending.
	assert.Equal(t, "A", stats[0].Name)
	assert.Equal(t, int64(2), stats[0].Count)
	assert.Equal(t, uint64(20), stats[0].TotalShallow)
	assert.Equal(t, uint64(20), stats[0].TotalRetained)
	assert.Equal(t, []NodeHandle{1, 2}, stats[0].Instances)

	assert.Equal(t, "B", stats[1].Name)
	assert.Equal(t, int64(1), stats[1].Count)
	assert.Equal(t, uint64(20), stats[1].TotalShallow)
	assert.GreaterOrEqual(t, stats[1].TotalRetained, uint64(20))
}

func TestTypeStatistics_ZeroSizeExcluded(t *testing.T) {
	s := NewSnapshot(typeAggGraph(t))

	for _, st := range s.TypeStatistics(0) {
		assert.NotEqual(t, "C", st.Name)
		assert.NotEqual(t, "[.NET Roots]", st.Name)
	}
}

func TestTypeStatistics_SortOrder(t *testing.T) {
	// Root holds a chain x -> y so x retains more than its shallow size.
	g := buildGraph(t,
		[]string{"[.NET Roots]", "Big", "Small", "Held"},
		[]TypeHandle{0, 1, 2, 3},
		[]uint64{0, 10, 5, 100},
		[][]NodeHandle{{1, 2}, {3}, {}, {}},
		0)
	s := NewSnapshot(g)
	stats := s.TypeStatistics(0)

	require.Len(t, stats, 3)
	assert.Equal(t, "Big", stats[0].Name)  // retained 110
	assert.Equal(t, "Held", stats[1].Name) // retained 100
	assert.Equal(t, "Small", stats[2].Name)
}

func TestTypeStatistics_Limit(t *testing.T) {
	s := NewSnapshot(typeAggGraph(t))

	assert.Len(t, s.TypeStatistics(1), 1)
	assert.Len(t, s.TypeStatistics(0), 2)
	assert.Len(t, s.TypeStatistics(100), 2)
}

func TestTypeStatistics_StableAcrossCalls(t *testing.T) {
	s := NewSnapshot(typeAggGraph(t))
	first := s.TypeStatistics(0)
	second := s.TypeStatistics(0)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Same(t, first[i], second[i])
	}
}

// Distinct type handles sharing a name stay separate in the aggregation;
// only the comparator merges by name.
func TestTypeStatistics_DuplicateNamesKeptSeparate(t *testing.T) {
	g := buildGraph(t,
		[]string{"[.NET Roots]", "Dup", "Dup"},
		[]TypeHandle{0, 1, 2},
		[]uint64{0, 10, 30},
		[][]NodeHandle{{1, 2}, {}, {}},
		0)
	s := NewSnapshot(g)
	stats := s.TypeStatistics(0)

	require.Len(t, stats, 2)
	assert.Equal(t, "Dup", stats[0].Name)
	assert.Equal(t, "Dup", stats[1].Name)
	assert.NotEqual(t, stats[0].Type, stats[1].Type)
}

func TestDisplayName_CachedNamer(t *testing.T) {
	g := buildGraph(t,
		[]string{"[.NET Roots]", "My.App.Widget"},
		[]TypeHandle{0, 1},
		[]uint64{0, 10},
		[][]NodeHandle{{1}, {}},
		0)
	s := NewSnapshot(g)

	assert.Equal(t, "Widget", s.DisplayName(1))
	assert.Same(t, s.Namer(), s.Namer())
}
