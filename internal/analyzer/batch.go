package analyzer

import (
	"context"
	"strconv"

	"github.com/heap-analysis/internal/storage"
	"github.com/heap-analysis/pkg/model"
	"github.com/heap-analysis/pkg/parallel"
	"github.com/heap-analysis/pkg/utils"
)

// BatchResult pairs one dump key with its report or failure.
type BatchResult struct {
	Key    string
	Report *model.HeapReport
	Err    error
}

// BatchAnalyzer analyzes many dumps concurrently. Each snapshot build is
// single-threaded; only whole dumps run in parallel.
type BatchAnalyzer struct {
	heapAnalyzer *HeapAnalyzer
	pool         *parallel.WorkerPool[string, *model.HeapReport]
	logger       utils.Logger
}

// NewBatchAnalyzer creates a batch analyzer with at most maxWorkers
// concurrent dump analyses.
func NewBatchAnalyzer(store storage.Storage, logger utils.Logger, opts Options, maxWorkers int) *BatchAnalyzer {
	if logger == nil {
		logger = utils.NopLogger{}
	}
	poolCfg := parallel.DefaultPoolConfig()
	if maxWorkers > 0 {
		poolCfg = poolCfg.WithWorkers(maxWorkers)
	}
	return &BatchAnalyzer{
		heapAnalyzer: NewHeapAnalyzer(store, logger, opts),
		pool:         parallel.NewWorkerPool[string, *model.HeapReport](poolCfg),
		logger:       logger,
	}
}

// AnalyzeAll analyzes every key and returns results in input order. Task
// UUIDs are derived from the base UUID with a numeric suffix.
func (a *BatchAnalyzer) AnalyzeAll(ctx context.Context, keys []string, baseUUID string) []BatchResult {
	uuids := make(map[string]string, len(keys))
	for i, key := range keys {
		uuids[key] = batchUUID(baseUUID, i)
	}

	taskResults := a.pool.ExecuteFunc(ctx, keys, func(ctx context.Context, key string) (*model.HeapReport, error) {
		return a.heapAnalyzer.Analyze(ctx, key, uuids[key])
	})

	results := make([]BatchResult, len(taskResults))
	for i, tr := range taskResults {
		results[i] = BatchResult{Key: tr.Input, Report: tr.Result, Err: tr.Error}
		if tr.Error != nil {
			a.logger.Warn("analysis of %s failed: %v", tr.Input, tr.Error)
		}
	}
	return results
}

// batchUUID derives a per-dump UUID from the batch UUID.
func batchUUID(base string, index int) string {
	if base == "" {
		base = "batch"
	}
	return base + "-" + strconv.Itoa(index)
}
