package heap

import "sort"

// TypeStats aggregates all instances of one type handle.
type TypeStats struct {
	// Type is the aggregation key. Distinct handles may share a name; the
	// aggregator never merges them (the comparator does, by name).
	Type TypeHandle
	// Name is the raw type name.
	Name string
	// DisplayName is the shortened name produced by the snapshot's namer.
	// Display only; never an identity key.
	DisplayName string
	// Count is the number of instances with shallow size > 0.
	Count int64
	// TotalShallow is the summed shallow size of those instances.
	TotalShallow uint64
	// TotalRetained is the summed retained size of those instances.
	TotalRetained uint64
	// Instances lists the instance handles in node-handle order.
	Instances []NodeHandle
}

// TypeStatistics returns per-type statistics for all types with at least
// one reachable instance of non-zero shallow size, sorted by total retained
// size descending, ties broken by raw name ascending. limit <= 0 means no
// limit.
//
// Zero-sized nodes are synthetic (roots and other placeholders), not user
// data, and are excluded from aggregation while remaining in the graph.
func (s *Snapshot) TypeStatistics(limit int) []*TypeStats {
	s.buildTypeStats()

	stats := s.stats
	if limit > 0 && limit < len(stats) {
		stats = stats[:limit]
	}
	return stats
}

// Namer returns the snapshot's display-name formatter, building it (and
// the aggregation it derives from) on first use.
func (s *Snapshot) Namer() *TypeNamer {
	s.buildTypeStats()
	return s.namer
}

// DisplayName returns the display name for a type handle.
func (s *Snapshot) DisplayName(t TypeHandle) string {
	return s.Namer().Format(s.graph.TypeName(t))
}

func (s *Snapshot) buildTypeStats() {
	s.statsOnce.Do(func() {
		g := s.graph
		byType := make(map[TypeHandle]*TypeStats)

		// Node-handle order gives stable instance lists.
		for n := 0; n < g.NodeCount(); n++ {
			handle := NodeHandle(n)
			if !s.reachable.Test(n) || g.ShallowSize(handle) == 0 {
				continue
			}
			t := g.TypeOf(handle)
			st, ok := byType[t]
			if !ok {
				st = &TypeStats{Type: t, Name: g.TypeName(t)}
				byType[t] = st
			}
			st.Count++
			st.TotalShallow += g.ShallowSize(handle)
			st.TotalRetained += s.retained[handle]
			st.Instances = append(st.Instances, handle)
		}

		stats := make([]*TypeStats, 0, len(byType))
		observed := make([]string, 0, len(byType))
		for _, st := range byType {
			stats = append(stats, st)
			observed = append(observed, st.Name)
		}
		sort.Slice(stats, func(i, j int) bool {
			if stats[i].TotalRetained != stats[j].TotalRetained {
				return stats[i].TotalRetained > stats[j].TotalRetained
			}
			return stats[i].Name < stats[j].Name
		})

		s.namer = newTypeNamer(observed)
		for _, st := range stats {
			st.DisplayName = s.namer.Format(st.Name)
		}
		s.stats = stats
	})
}
