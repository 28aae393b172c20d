package heap

import "sort"

// TypeStatus classifies how a type changed between two snapshots.
type TypeStatus string

// Status values, in precedence order: Added and Removed win over Changed,
// Changed wins over Unchanged.
const (
	StatusUnchanged TypeStatus = "Unchanged"
	StatusChanged   TypeStatus = "Changed"
	StatusAdded     TypeStatus = "Added"
	StatusRemoved   TypeStatus = "Removed"
)

// TypeDelta is the per-type comparison record, joined by raw type name.
type TypeDelta struct {
	Name string `json:"name"`

	BaselineCount    int64  `json:"baseline_count"`
	CurrentCount     int64  `json:"current_count"`
	BaselineShallow  uint64 `json:"baseline_shallow"`
	CurrentShallow   uint64 `json:"current_shallow"`
	BaselineRetained uint64 `json:"baseline_retained"`
	CurrentRetained  uint64 `json:"current_retained"`

	CountDelta    int64 `json:"count_delta"`
	ShallowDelta  int64 `json:"shallow_delta"`
	RetainedDelta int64 `json:"retained_delta"`

	Status TypeStatus `json:"status"`
}

// InstanceDetail describes one instance for side-by-side comparison.
type InstanceDetail struct {
	Handle   NodeHandle `json:"handle"`
	Address  uint64     `json:"address"`
	Size     uint64     `json:"size"`
	Retained uint64     `json:"retained"`
}

// ComparisonResult is the output of comparing two snapshots.
type ComparisonResult struct {
	ObjectCountDelta   int64 `json:"object_count_delta"`
	TotalShallowDelta  int64 `json:"total_shallow_delta"`
	TotalRetainedDelta int64 `json:"total_retained_delta"`

	TypeDeltas   []TypeDelta `json:"type_deltas"`
	NewTypes     []string    `json:"new_types"`
	RemovedTypes []string    `json:"removed_types"`

	// Instance details are populated by CompareInstances only.
	TypeName          string           `json:"type_name,omitempty"`
	BaselineInstances []InstanceDetail `json:"baseline_instances,omitempty"`
	CurrentInstances  []InstanceDetail `json:"current_instances,omitempty"`
}

// Comparator joins two snapshots' type aggregations. Any two snapshots are
// comparable; there is no compatibility requirement between them.
type Comparator struct{}

// NewComparator creates a Comparator.
func NewComparator() *Comparator {
	return &Comparator{}
}

// nameTotals is one side of the name-keyed join. Distinct type handles
// sharing a name are summed here before joining; the aggregator itself
// keys by handle, the comparator keys by name. The asymmetry is what makes
// cross-snapshot joining possible and is deliberate.
type nameTotals struct {
	count    int64
	shallow  uint64
	retained uint64
}

// Compare produces aggregate and per-type deltas between two snapshots.
func (c *Comparator) Compare(baseline, current *Snapshot) *ComparisonResult {
	baseStats := baseline.HeapStatistics()
	currStats := current.HeapStatistics()

	result := &ComparisonResult{
		ObjectCountDelta:   currStats.TotalObjects - baseStats.TotalObjects,
		TotalShallowDelta:  int64(currStats.TotalShallow) - int64(baseStats.TotalShallow),
		TotalRetainedDelta: int64(currStats.TotalRetained) - int64(baseStats.TotalRetained),
	}

	baseTotals := totalsByName(baseline)
	currTotals := totalsByName(current)

	names := make([]string, 0, len(baseTotals)+len(currTotals))
	for name := range baseTotals {
		names = append(names, name)
	}
	for name := range currTotals {
		if _, ok := baseTotals[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		b := baseTotals[name]
		cur := currTotals[name]

		delta := TypeDelta{
			Name:             name,
			BaselineCount:    b.count,
			CurrentCount:     cur.count,
			BaselineShallow:  b.shallow,
			CurrentShallow:   cur.shallow,
			BaselineRetained: b.retained,
			CurrentRetained:  cur.retained,
			CountDelta:       cur.count - b.count,
			ShallowDelta:     int64(cur.shallow) - int64(b.shallow),
			RetainedDelta:    int64(cur.retained) - int64(b.retained),
		}

		switch {
		case b.count == 0 && cur.count > 0:
			delta.Status = StatusAdded
			result.NewTypes = append(result.NewTypes, name)
		case b.count > 0 && cur.count == 0:
			delta.Status = StatusRemoved
			result.RemovedTypes = append(result.RemovedTypes, name)
		case delta.CountDelta != 0 || delta.RetainedDelta != 0:
			delta.Status = StatusChanged
		default:
			delta.Status = StatusUnchanged
		}

		result.TypeDeltas = append(result.TypeDeltas, delta)
	}

	// Largest movement first; name ascending keeps ties deterministic.
	sort.SliceStable(result.TypeDeltas, func(i, j int) bool {
		a, b := result.TypeDeltas[i], result.TypeDeltas[j]
		if absInt64(a.RetainedDelta) != absInt64(b.RetainedDelta) {
			return absInt64(a.RetainedDelta) > absInt64(b.RetainedDelta)
		}
		return a.Name < b.Name
	})

	return result
}

// CompareInstances compares the first maxInstances instances of one type
// name on each side, on top of the full comparison. maxInstances <= 0
// selects 10.
func (c *Comparator) CompareInstances(baseline, current *Snapshot, typeName string, maxInstances int) *ComparisonResult {
	if maxInstances <= 0 {
		maxInstances = 10
	}

	result := c.Compare(baseline, current)
	result.TypeName = typeName
	result.BaselineInstances = instanceDetails(baseline, typeName, maxInstances)
	result.CurrentInstances = instanceDetails(current, typeName, maxInstances)
	return result
}

// totalsByName folds a snapshot's handle-keyed aggregation into name keys.
func totalsByName(s *Snapshot) map[string]nameTotals {
	totals := make(map[string]nameTotals)
	for _, st := range s.TypeStatistics(0) {
		t := totals[st.Name]
		t.count += st.Count
		t.shallow += st.TotalShallow
		t.retained += st.TotalRetained
		totals[st.Name] = t
	}
	return totals
}

// instanceDetails collects the first max instances of a type name, in
// node-handle order across all handles sharing the name.
func instanceDetails(s *Snapshot, typeName string, max int) []InstanceDetail {
	var handles []NodeHandle
	for _, st := range s.TypeStatistics(0) {
		if st.Name != typeName {
			continue
		}
		handles = append(handles, st.Instances...)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	if len(handles) > max {
		handles = handles[:max]
	}
	details := make([]InstanceDetail, 0, len(handles))
	for _, h := range handles {
		details = append(details, InstanceDetail{
			Handle:   h,
			Address:  s.graph.Address(h),
			Size:     s.graph.ShallowSize(h),
			Retained: s.RetainedSize(h),
		})
	}
	return details
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
