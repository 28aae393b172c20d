// Package model defines the serializable result types exchanged between
// the analyzers, formatters, repository and CLI.
package model

import "time"

// TypeStatRow is one row of the per-type heap breakdown.
type TypeStatRow struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	Count         int64  `json:"count"`
	ShallowBytes  uint64 `json:"shallow_bytes"`
	RetainedBytes uint64 `json:"retained_bytes"`
}

// HeapReport is the result of analyzing one heap dump.
type HeapReport struct {
	TaskUUID   string    `json:"tid"`
	InputFile  string    `json:"input_file"`
	AnalyzedAt time.Time `json:"analyzed_at"`
	Version    string    `json:"version"`

	TotalObjects  int64            `json:"total_objects"`
	TotalShallow  uint64           `json:"total_shallow"`
	TotalRetained uint64           `json:"total_retained"`
	Counters      map[string]int64 `json:"counters,omitempty"`

	TopTypes []TypeStatRow `json:"top_types"`

	// RetainerPaths maps a type display name to sample retainer chains of
	// its largest instance.
	RetainerPaths map[string][]string `json:"retainer_paths,omitempty"`
}

// TypeDeltaRow is one row of a snapshot comparison.
type TypeDeltaRow struct {
	Name   string `json:"name"`
	Status string `json:"status"`

	BaselineCount    int64  `json:"baseline_count"`
	CurrentCount     int64  `json:"current_count"`
	BaselineRetained uint64 `json:"baseline_retained"`
	CurrentRetained  uint64 `json:"current_retained"`

	CountDelta    int64 `json:"count_delta"`
	ShallowDelta  int64 `json:"shallow_delta"`
	RetainedDelta int64 `json:"retained_delta"`
}

// InstanceRow describes one instance in an instance-level comparison.
type InstanceRow struct {
	Handle   int32  `json:"handle"`
	Address  uint64 `json:"address"`
	Size     uint64 `json:"size"`
	Retained uint64 `json:"retained"`
}

// ComparisonReport is the result of comparing two heap dumps.
type ComparisonReport struct {
	TaskUUID     string    `json:"tid"`
	BaselineFile string    `json:"baseline_file"`
	CurrentFile  string    `json:"current_file"`
	AnalyzedAt   time.Time `json:"analyzed_at"`

	ObjectCountDelta   int64 `json:"object_count_delta"`
	TotalShallowDelta  int64 `json:"total_shallow_delta"`
	TotalRetainedDelta int64 `json:"total_retained_delta"`

	TypeDeltas   []TypeDeltaRow `json:"type_deltas"`
	NewTypes     []string       `json:"new_types,omitempty"`
	RemovedTypes []string       `json:"removed_types,omitempty"`

	// Instance drill-down, present when a type name was requested.
	TypeName          string        `json:"type_name,omitempty"`
	BaselineInstances []InstanceRow `json:"baseline_instances,omitempty"`
	CurrentInstances  []InstanceRow `json:"current_instances,omitempty"`
}
