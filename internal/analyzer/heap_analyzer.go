// Package analyzer orchestrates dump loading, snapshot construction and
// report building.
package analyzer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/heap-analysis/internal/heap"
	"github.com/heap-analysis/internal/loader"
	"github.com/heap-analysis/internal/storage"
	"github.com/heap-analysis/pkg/model"
	"github.com/heap-analysis/pkg/utils"
)

// tracerName identifies this package's tracer.
const tracerName = "github.com/heap-analysis/internal/analyzer"

// Version is stamped into reports; overridden at build time.
var Version = "dev"

// Options configures a heap analysis run.
type Options struct {
	// TopTypes caps the number of type rows in the report. <= 0 keeps all.
	TopTypes int
	// MaxPaths caps retainer paths per sampled type. <= 0 uses the engine
	// default.
	MaxPaths int
	// PathTypes is the number of top types to sample retainer paths for.
	// 0 disables path sampling.
	PathTypes int
}

// DefaultOptions returns the default analysis options.
func DefaultOptions() Options {
	return Options{
		TopTypes:  50,
		MaxPaths:  heap.DefaultMaxPaths,
		PathTypes: 0,
	}
}

// HeapAnalyzer analyzes a single heap dump into a report.
type HeapAnalyzer struct {
	store  storage.Storage
	logger utils.Logger
	opts   Options
}

// NewHeapAnalyzer creates a heap analyzer.
func NewHeapAnalyzer(store storage.Storage, logger utils.Logger, opts Options) *HeapAnalyzer {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	return &HeapAnalyzer{store: store, logger: logger, opts: opts}
}

// Analyze fetches the dump at key, builds a snapshot and returns a report.
func (a *HeapAnalyzer) Analyze(ctx context.Context, key string, taskUUID string) (*model.HeapReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "analyze.heap")
	defer span.End()
	span.SetAttributes(attribute.String("dump.key", key))

	snapshot, err := a.loadSnapshot(ctx, key)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return a.buildReport(snapshot, key, taskUUID), nil
}

// loadSnapshot downloads, parses and indexes one dump.
func (a *HeapAnalyzer) loadSnapshot(ctx context.Context, key string) (*heap.Snapshot, error) {
	timer := utils.NewTimer("snapshot", utils.WithLogger(a.logger))

	ctx, loadSpan := otel.Tracer(tracerName).Start(ctx, "dump.load")
	phase := timer.StartPhase("load")
	reader, err := a.store.Download(ctx, key)
	if err != nil {
		loadSpan.RecordError(err)
		loadSpan.End()
		return nil, err
	}
	graph, err := loader.Open(reader)
	reader.Close()
	phase.Stop()
	loadSpan.End()
	if err != nil {
		return nil, err
	}

	_, buildSpan := otel.Tracer(tracerName).Start(ctx, "snapshot.build")
	buildSpan.SetAttributes(
		attribute.Int("graph.nodes", graph.NodeCount()),
		attribute.Int("graph.edges", graph.EdgeCount()),
	)
	phase = timer.StartPhase("index")
	snapshot := heap.NewSnapshot(graph)
	phase.Stop()
	buildSpan.End()

	timer.Report()
	return snapshot, nil
}

// buildReport projects a snapshot into the serializable report model.
func (a *HeapAnalyzer) buildReport(snapshot *heap.Snapshot, key, taskUUID string) *model.HeapReport {
	stats := snapshot.HeapStatistics()
	report := &model.HeapReport{
		TaskUUID:      taskUUID,
		InputFile:     key,
		AnalyzedAt:    time.Now(),
		Version:       Version,
		TotalObjects:  stats.TotalObjects,
		TotalShallow:  stats.TotalShallow,
		TotalRetained: stats.TotalRetained,
		Counters:      stats.Counters,
	}

	typeStats := snapshot.TypeStatistics(a.opts.TopTypes)
	report.TopTypes = make([]model.TypeStatRow, 0, len(typeStats))
	for _, st := range typeStats {
		report.TopTypes = append(report.TopTypes, model.TypeStatRow{
			Name:          st.Name,
			DisplayName:   st.DisplayName,
			Count:         st.Count,
			ShallowBytes:  st.TotalShallow,
			RetainedBytes: st.TotalRetained,
		})
	}

	if a.opts.PathTypes > 0 {
		report.RetainerPaths = a.sampleRetainerPaths(snapshot, typeStats)
	}

	a.logger.Info("analyzed %s: %d objects, %d bytes retained",
		key, stats.TotalObjects, stats.TotalRetained)
	return report
}

// sampleRetainerPaths collects retainer chains for the largest instance of
// each of the top types.
func (a *HeapAnalyzer) sampleRetainerPaths(snapshot *heap.Snapshot, typeStats []*heap.TypeStats) map[string][]string {
	paths := make(map[string][]string)
	for i, st := range typeStats {
		if i >= a.opts.PathTypes {
			break
		}
		target := largestInstance(snapshot, st)
		if target == heap.InvalidNode {
			continue
		}
		paths[st.DisplayName] = snapshot.FormatReferencePaths(target, a.opts.MaxPaths)
	}
	return paths
}

// largestInstance returns the instance with the highest retained size.
func largestInstance(snapshot *heap.Snapshot, st *heap.TypeStats) heap.NodeHandle {
	best := heap.InvalidNode
	var bestRetained uint64
	for _, n := range st.Instances {
		if r := snapshot.RetainedSize(n); best == heap.InvalidNode || r > bestRetained {
			best = n
			bestRetained = r
		}
	}
	return best
}
