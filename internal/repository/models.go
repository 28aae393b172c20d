package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/heap-analysis/pkg/model"
)

// JSONField stores arbitrary JSON in a database column.
type JSONField []byte

// Value implements driver.Valuer.
func (f JSONField) Value() (driver.Value, error) {
	if len(f) == 0 {
		return nil, nil
	}
	return []byte(f), nil
}

// Scan implements sql.Scanner.
func (f *JSONField) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*f = append((*f)[:0], v...)
	case string:
		*f = JSONField(v)
	default:
		return errors.New("unsupported type for JSONField")
	}
	return nil
}

// HeapSnapshotRecord represents the heap_snapshots table: one row per
// analyzed dump.
type HeapSnapshotRecord struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TID           string    `gorm:"column:tid;type:varchar(64);uniqueIndex"`
	InputFile     string    `gorm:"column:input_file;type:varchar(512)"`
	Version       string    `gorm:"column:version;type:varchar(32)"`
	TotalObjects  int64     `gorm:"column:total_objects"`
	TotalShallow  uint64    `gorm:"column:total_shallow"`
	TotalRetained uint64    `gorm:"column:total_retained"`
	Counters      JSONField `gorm:"column:counters;type:json"`
	AnalyzedAt    time.Time `gorm:"column:analyzed_at"`
	CreateTime    time.Time `gorm:"column:create_time;autoCreateTime"`
}

// TableName returns the table name for HeapSnapshotRecord.
func (HeapSnapshotRecord) TableName() string {
	return "heap_snapshots"
}

// TypeStatRecord represents the heap_type_stats table: one row per type of
// an analyzed dump.
type TypeStatRecord struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement"`
	TID           string `gorm:"column:tid;type:varchar(64);index"`
	Rank          int    `gorm:"column:rank"`
	TypeName      string `gorm:"column:type_name;type:varchar(512)"`
	DisplayName   string `gorm:"column:display_name;type:varchar(256)"`
	InstanceCount int64  `gorm:"column:instance_count"`
	ShallowBytes  uint64 `gorm:"column:shallow_bytes"`
	RetainedBytes uint64 `gorm:"column:retained_bytes"`
}

// TableName returns the table name for TypeStatRecord.
func (TypeStatRecord) TableName() string {
	return "heap_type_stats"
}

// toRecord converts a heap report to its snapshot row.
func toRecord(report *model.HeapReport) (*HeapSnapshotRecord, error) {
	record := &HeapSnapshotRecord{
		TID:           report.TaskUUID,
		InputFile:     report.InputFile,
		Version:       report.Version,
		TotalObjects:  report.TotalObjects,
		TotalShallow:  report.TotalShallow,
		TotalRetained: report.TotalRetained,
		AnalyzedAt:    report.AnalyzedAt,
	}
	if len(report.Counters) > 0 {
		data, err := json.Marshal(report.Counters)
		if err != nil {
			return nil, err
		}
		record.Counters = data
	}
	return record, nil
}

// ToModel converts a snapshot row back to a heap report shell (type rows
// are attached separately).
func (r *HeapSnapshotRecord) ToModel() (*model.HeapReport, error) {
	report := &model.HeapReport{
		TaskUUID:      r.TID,
		InputFile:     r.InputFile,
		Version:       r.Version,
		TotalObjects:  r.TotalObjects,
		TotalShallow:  r.TotalShallow,
		TotalRetained: r.TotalRetained,
		AnalyzedAt:    r.AnalyzedAt,
	}
	if len(r.Counters) > 0 {
		if err := json.Unmarshal(r.Counters, &report.Counters); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// toModelRow converts a type stat row to its report row.
func (r *TypeStatRecord) toModelRow() model.TypeStatRow {
	return model.TypeStatRow{
		Name:          r.TypeName,
		DisplayName:   r.DisplayName,
		Count:         r.InstanceCount,
		ShallowBytes:  r.ShallowBytes,
		RetainedBytes: r.RetainedBytes,
	}
}
