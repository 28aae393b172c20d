package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deltaByName(t *testing.T, result *ComparisonResult, name string) TypeDelta {
	t.Helper()
	for _, d := range result.TypeDeltas {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("no delta for type %q", name)
	return TypeDelta{}
}

// Scenario S5: X grows from 3 instances / 300 retained to 5 / 600; Y is
// new with 1 instance / 50 retained.
func TestCompare_AddedAndChanged(t *testing.T) {
	baseline := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "X"},
		[]TypeHandle{0, 1, 1, 1},
		[]uint64{0, 100, 100, 100},
		[][]NodeHandle{{1, 2, 3}, {}, {}, {}},
		0))
	current := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "X", "Y"},
		[]TypeHandle{0, 1, 1, 1, 1, 1, 2},
		[]uint64{0, 120, 120, 120, 120, 120, 50},
		[][]NodeHandle{{1, 2, 3, 4, 5, 6}, {}, {}, {}, {}, {}, {}},
		0))

	result := NewComparator().Compare(baseline, current)

	x := deltaByName(t, result, "X")
	assert.Equal(t, StatusChanged, x.Status)
	assert.Equal(t, int64(2), x.CountDelta)
	assert.Equal(t, int64(300), x.RetainedDelta)

	y := deltaByName(t, result, "Y")
	assert.Equal(t, StatusAdded, y.Status)
	assert.Equal(t, int64(1), y.CountDelta)

	assert.Equal(t, []string{"Y"}, result.NewTypes)
	assert.Empty(t, result.RemovedTypes)
	assert.Equal(t, int64(3), result.ObjectCountDelta)
}

func TestCompare_Removed(t *testing.T) {
	baseline := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "Gone"},
		[]TypeHandle{0, 1},
		[]uint64{0, 40},
		[][]NodeHandle{{1}, {}},
		0))
	current := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]"},
		[]TypeHandle{0},
		[]uint64{0},
		[][]NodeHandle{{}},
		0))

	result := NewComparator().Compare(baseline, current)

	gone := deltaByName(t, result, "Gone")
	assert.Equal(t, StatusRemoved, gone.Status)
	assert.Equal(t, int64(-1), gone.CountDelta)
	assert.Equal(t, []string{"Gone"}, result.RemovedTypes)
	assert.Equal(t, int64(-40), result.TotalRetainedDelta)
}

// Invariant 7: comparing a snapshot with itself yields zero deltas and
// Unchanged for every type.
func TestCompare_SelfIsUnchanged(t *testing.T) {
	s := NewSnapshot(typeAggGraph(t))
	result := NewComparator().Compare(s, s)

	assert.Zero(t, result.ObjectCountDelta)
	assert.Zero(t, result.TotalShallowDelta)
	assert.Zero(t, result.TotalRetainedDelta)
	assert.Empty(t, result.NewTypes)
	assert.Empty(t, result.RemovedTypes)
	require.NotEmpty(t, result.TypeDeltas)
	for _, d := range result.TypeDeltas {
		assert.Equal(t, StatusUnchanged, d.Status, "type %s", d.Name)
	}
}

// Invariant 6: exactly one status applies to every joined type.
func TestCompare_StatusExhaustive(t *testing.T) {
	baseline := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "Same", "Grown", "Gone"},
		[]TypeHandle{0, 1, 2, 3},
		[]uint64{0, 10, 10, 10},
		[][]NodeHandle{{1, 2, 3}, {}, {}, {}},
		0))
	current := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "Same", "Grown", "New"},
		[]TypeHandle{0, 1, 2, 2, 3},
		[]uint64{0, 10, 10, 10, 10},
		[][]NodeHandle{{1, 2, 3, 4}, {}, {}, {}, {}},
		0))

	result := NewComparator().Compare(baseline, current)

	assert.Equal(t, StatusUnchanged, deltaByName(t, result, "Same").Status)
	assert.Equal(t, StatusChanged, deltaByName(t, result, "Grown").Status)
	assert.Equal(t, StatusRemoved, deltaByName(t, result, "Gone").Status)
	assert.Equal(t, StatusAdded, deltaByName(t, result, "New").Status)
}

// Distinct type handles sharing a name are summed before joining.
func TestCompare_DuplicateNamesSummed(t *testing.T) {
	baseline := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "Dup", "Dup"},
		[]TypeHandle{0, 1, 2},
		[]uint64{0, 10, 30},
		[][]NodeHandle{{1, 2}, {}, {}},
		0))
	current := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "Dup"},
		[]TypeHandle{0, 1},
		[]uint64{0, 40},
		[][]NodeHandle{{1}, {}},
		0))

	result := NewComparator().Compare(baseline, current)

	dup := deltaByName(t, result, "Dup")
	assert.Equal(t, int64(2), dup.BaselineCount)
	assert.Equal(t, int64(1), dup.CurrentCount)
	assert.Equal(t, uint64(40), dup.BaselineShallow)
	assert.Equal(t, uint64(40), dup.CurrentShallow)
	// Counts differ but retained does not; count delta alone makes it
	// Changed.
	assert.Equal(t, StatusChanged, dup.Status)
}

func TestCompareInstances(t *testing.T) {
	baseline := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "X"},
		[]TypeHandle{0, 1, 1, 1},
		[]uint64{0, 10, 20, 30},
		[][]NodeHandle{{1, 2, 3}, {}, {}, {}},
		0))
	current := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "X"},
		[]TypeHandle{0, 1},
		[]uint64{0, 15},
		[][]NodeHandle{{1}, {}},
		0))

	result := NewComparator().CompareInstances(baseline, current, "X", 2)

	assert.Equal(t, "X", result.TypeName)
	require.Len(t, result.BaselineInstances, 2)
	require.Len(t, result.CurrentInstances, 1)

	first := result.BaselineInstances[0]
	assert.Equal(t, NodeHandle(1), first.Handle)
	assert.Equal(t, uint64(10), first.Size)
	assert.Equal(t, uint64(10), first.Retained)
	assert.NotZero(t, first.Address)
}

func TestCompareInstances_DefaultMax(t *testing.T) {
	s := NewSnapshot(typeAggGraph(t))
	result := NewComparator().CompareInstances(s, s, "A", 0)
	assert.Len(t, result.BaselineInstances, 2)
}

func TestCompare_SortedByAbsRetainedDelta(t *testing.T) {
	baseline := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "Big", "Small"},
		[]TypeHandle{0, 1, 2},
		[]uint64{0, 100, 10},
		[][]NodeHandle{{1, 2}, {}, {}},
		0))
	current := NewSnapshot(buildGraph(t,
		[]string{"[.NET Roots]", "Big", "Small"},
		[]TypeHandle{0, 1, 2},
		[]uint64{0, 500, 15},
		[][]NodeHandle{{1, 2}, {}, {}},
		0))

	result := NewComparator().Compare(baseline, current)
	require.Len(t, result.TypeDeltas, 2)
	assert.Equal(t, "Big", result.TypeDeltas[0].Name)
	assert.Equal(t, "Small", result.TypeDeltas[1].Name)
}
