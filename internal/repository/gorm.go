package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/heap-analysis/pkg/errors"
	"github.com/heap-analysis/pkg/model"
)

// GormSnapshotRepository implements SnapshotRepository using GORM.
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository.
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// AutoMigrate creates or updates the repository tables.
func (r *GormSnapshotRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&HeapSnapshotRecord{}, &TypeStatRecord{})
}

// SaveReport implements SnapshotRepository. The snapshot row and its type
// rows are written in one transaction.
func (r *GormSnapshotRepository) SaveReport(ctx context.Context, report *model.HeapReport) error {
	record, err := toRecord(report)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to encode report", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
		for i, row := range report.TopTypes {
			statRecord := &TypeStatRecord{
				TID:           report.TaskUUID,
				Rank:          i + 1,
				TypeName:      row.Name,
				DisplayName:   row.DisplayName,
				InstanceCount: row.Count,
				ShallowBytes:  row.ShallowBytes,
				RetainedBytes: row.RetainedBytes,
			}
			if err := tx.Create(statRecord).Error; err != nil {
				return fmt.Errorf("failed to insert type stat: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to save report", err)
	}
	return nil
}

// GetReportByUUID implements SnapshotRepository.
func (r *GormSnapshotRepository) GetReportByUUID(ctx context.Context, uuid string) (*model.HeapReport, error) {
	var record HeapSnapshotRecord
	err := r.db.WithContext(ctx).Where("tid = ?", uuid).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeNotFound,
				fmt.Sprintf("report not found: %s", uuid), apperrors.ErrNotFound)
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to get report", err)
	}

	report, err := record.ToModel()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to decode report", err)
	}

	var rows []TypeStatRecord
	err = r.db.WithContext(ctx).Where("tid = ?", uuid).Order("rank ASC").Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to get type stats", err)
	}
	for _, row := range rows {
		report.TopTypes = append(report.TopTypes, row.toModelRow())
	}
	return report, nil
}

// ListRecentReports implements SnapshotRepository.
func (r *GormSnapshotRepository) ListRecentReports(ctx context.Context, limit int) ([]*model.HeapReport, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []HeapSnapshotRecord
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to list reports", err)
	}

	reports := make([]*model.HeapReport, 0, len(records))
	for i := range records {
		report, err := records[i].ToModel()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to decode report", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// DeleteReport implements SnapshotRepository.
func (r *GormSnapshotRepository) DeleteReport(ctx context.Context, uuid string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tid = ?", uuid).Delete(&TypeStatRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("tid = ?", uuid).Delete(&HeapSnapshotRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.CodeNotFound,
				fmt.Sprintf("report not found: %s", uuid), apperrors.ErrNotFound)
		}
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to delete report", err)
	}
	return nil
}
