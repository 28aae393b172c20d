// Package repository provides database persistence for analysis results.
package repository

import (
	"context"

	"github.com/heap-analysis/pkg/model"
)

// SnapshotRepository defines the interface for persisted heap reports.
type SnapshotRepository interface {
	// SaveReport persists a heap report and its per-type rows.
	SaveReport(ctx context.Context, report *model.HeapReport) error

	// GetReportByUUID retrieves a heap report by its task UUID.
	GetReportByUUID(ctx context.Context, uuid string) (*model.HeapReport, error)

	// ListRecentReports retrieves the most recent heap reports, newest
	// first, without their per-type rows.
	ListRecentReports(ctx context.Context, limit int) ([]*model.HeapReport, error)

	// DeleteReport removes a heap report and its per-type rows.
	DeleteReport(ctx context.Context, uuid string) error
}
