package analyzer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/heap-analysis/internal/heap"
	"github.com/heap-analysis/internal/storage"
	"github.com/heap-analysis/pkg/model"
	"github.com/heap-analysis/pkg/utils"
)

// CompareOptions configures a snapshot comparison run.
type CompareOptions struct {
	// TypeName requests an instance-level drill-down for one type.
	TypeName string
	// MaxInstances caps the drill-down per side. <= 0 uses the engine
	// default.
	MaxInstances int
	// MaxDeltas caps the number of reported type deltas. <= 0 keeps all.
	MaxDeltas int
}

// CompareAnalyzer compares two heap dumps.
type CompareAnalyzer struct {
	heapAnalyzer *HeapAnalyzer
	store        storage.Storage
	logger       utils.Logger
}

// NewCompareAnalyzer creates a comparison analyzer.
func NewCompareAnalyzer(store storage.Storage, logger utils.Logger) *CompareAnalyzer {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	return &CompareAnalyzer{
		heapAnalyzer: NewHeapAnalyzer(store, logger, DefaultOptions()),
		store:        store,
		logger:       logger,
	}
}

// Compare loads both dumps and produces a comparison report.
func (a *CompareAnalyzer) Compare(ctx context.Context, baselineKey, currentKey, taskUUID string, opts CompareOptions) (*model.ComparisonReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analyze.compare")
	defer span.End()
	span.SetAttributes(
		attribute.String("dump.baseline", baselineKey),
		attribute.String("dump.current", currentKey),
	)

	baseline, err := a.heapAnalyzer.loadSnapshot(ctx, baselineKey)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	current, err := a.heapAnalyzer.loadSnapshot(ctx, currentKey)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	comparator := heap.NewComparator()
	var result *heap.ComparisonResult
	if opts.TypeName != "" {
		result = comparator.CompareInstances(baseline, current, opts.TypeName, opts.MaxInstances)
	} else {
		result = comparator.Compare(baseline, current)
	}

	report := toComparisonReport(result, baselineKey, currentKey, taskUUID, opts.MaxDeltas)
	a.logger.Info("compared %s -> %s: %+d objects, %+d bytes retained",
		baselineKey, currentKey, report.ObjectCountDelta, report.TotalRetainedDelta)
	return report, nil
}

// toComparisonReport projects the engine result into the report model.
func toComparisonReport(result *heap.ComparisonResult, baselineKey, currentKey, taskUUID string, maxDeltas int) *model.ComparisonReport {
	report := &model.ComparisonReport{
		TaskUUID:           taskUUID,
		BaselineFile:       baselineKey,
		CurrentFile:        currentKey,
		AnalyzedAt:         time.Now(),
		ObjectCountDelta:   result.ObjectCountDelta,
		TotalShallowDelta:  result.TotalShallowDelta,
		TotalRetainedDelta: result.TotalRetainedDelta,
		NewTypes:           result.NewTypes,
		RemovedTypes:       result.RemovedTypes,
		TypeName:           result.TypeName,
	}

	deltas := result.TypeDeltas
	if maxDeltas > 0 && maxDeltas < len(deltas) {
		deltas = deltas[:maxDeltas]
	}
	report.TypeDeltas = make([]model.TypeDeltaRow, 0, len(deltas))
	for _, d := range deltas {
		report.TypeDeltas = append(report.TypeDeltas, model.TypeDeltaRow{
			Name:             d.Name,
			Status:           string(d.Status),
			BaselineCount:    d.BaselineCount,
			CurrentCount:     d.CurrentCount,
			BaselineRetained: d.BaselineRetained,
			CurrentRetained:  d.CurrentRetained,
			CountDelta:       d.CountDelta,
			ShallowDelta:     d.ShallowDelta,
			RetainedDelta:    d.RetainedDelta,
		})
	}

	report.BaselineInstances = toInstanceRows(result.BaselineInstances)
	report.CurrentInstances = toInstanceRows(result.CurrentInstances)
	return report
}

func toInstanceRows(details []heap.InstanceDetail) []model.InstanceRow {
	if len(details) == 0 {
		return nil
	}
	rows := make([]model.InstanceRow, 0, len(details))
	for _, d := range details {
		rows = append(rows, model.InstanceRow{
			Handle:   int32(d.Handle),
			Address:  d.Address,
			Size:     d.Size,
			Retained: d.Retained,
		})
	}
	return rows
}
