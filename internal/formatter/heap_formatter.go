package formatter

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/heap-analysis/pkg/model"
	"github.com/heap-analysis/pkg/utils"
)

// HeapFormatter renders heap analysis reports.
type HeapFormatter struct{}

// Format outputs the heap report to the logger as a table.
func (f *HeapFormatter) Format(report *model.HeapReport, log utils.Logger) {
	log.Info("=== Heap Analysis Results ===")
	log.Info("Task UUID:      %s", report.TaskUUID)
	log.Info("Input:          %s", report.InputFile)
	log.Info("")

	log.Info("=== Heap Summary ===")
	log.Info("  Total Objects:  %d", report.TotalObjects)
	log.Info("  Total Shallow:  %s (%d bytes)", formatBytes(report.TotalShallow), report.TotalShallow)
	log.Info("  Total Retained: %s (%d bytes)", formatBytes(report.TotalRetained), report.TotalRetained)
	f.printCounters(report, log)
	log.Info("")

	log.Info("=== Top Types by Retained Size ===")
	for i, row := range report.TopTypes {
		if i >= 10 {
			log.Info("  ... and %d more types", len(report.TopTypes)-10)
			break
		}
		pct := 0.0
		if report.TotalRetained > 0 {
			pct = float64(row.RetainedBytes) / float64(report.TotalRetained) * 100
		}
		log.Info("  %2d. %6.2f%%  %s", i+1, pct, truncateString(row.DisplayName, 60))
		log.Info("              Retained: %s, Shallow: %s, Instances: %d",
			formatBytes(row.RetainedBytes), formatBytes(row.ShallowBytes), row.Count)
	}

	f.printRetainerPaths(report, log)
}

// printCounters prints loader counters in a stable order.
func (f *HeapFormatter) printCounters(report *model.HeapReport, log utils.Logger) {
	if len(report.Counters) == 0 {
		return
	}
	keys := make([]string, 0, len(report.Counters))
	for k := range report.Counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		log.Info("  %-15s %d", k+":", report.Counters[k])
	}
}

// printRetainerPaths prints sampled retainer chains.
func (f *HeapFormatter) printRetainerPaths(report *model.HeapReport, log utils.Logger) {
	if len(report.RetainerPaths) == 0 {
		return
	}
	names := make([]string, 0, len(report.RetainerPaths))
	for name := range report.RetainerPaths {
		names = append(names, name)
	}
	sort.Strings(names)

	log.Info("")
	log.Info("=== Sample Retainer Paths ===")
	for _, name := range names {
		log.Info("  %s:", name)
		for _, path := range report.RetainerPaths[name] {
			log.Info("    %s", path)
		}
	}
}

// WriteJSON writes the report as indented JSON.
func (f *HeapFormatter) WriteJSON(report *model.HeapReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
