package formatter

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/heap-analysis/pkg/model"
	"github.com/heap-analysis/pkg/utils"
)

// CompareFormatter renders snapshot comparison reports.
type CompareFormatter struct{}

// Format outputs the comparison report to the logger as a table.
func (f *CompareFormatter) Format(report *model.ComparisonReport, log utils.Logger) {
	log.Info("=== Heap Comparison Results ===")
	log.Info("Baseline:       %s", report.BaselineFile)
	log.Info("Current:        %s", report.CurrentFile)
	log.Info("")

	log.Info("=== Aggregate Deltas ===")
	log.Info("  Objects:        %+d", report.ObjectCountDelta)
	log.Info("  Shallow Bytes:  %s", formatSignedBytes(report.TotalShallowDelta))
	log.Info("  Retained Bytes: %s", formatSignedBytes(report.TotalRetainedDelta))
	log.Info("")

	if len(report.NewTypes) > 0 {
		log.Info("New types:      %s", strings.Join(report.NewTypes, ", "))
	}
	if len(report.RemovedTypes) > 0 {
		log.Info("Removed types:  %s", strings.Join(report.RemovedTypes, ", "))
	}

	log.Info("=== Type Deltas ===")
	printed := 0
	for _, d := range report.TypeDeltas {
		if d.Status == "Unchanged" {
			continue
		}
		if printed >= 20 {
			log.Info("  ... more types changed; use --format json for the full list")
			break
		}
		log.Info("  %-9s %s", d.Status, truncateString(d.Name, 60))
		log.Info("            count %d -> %d (%+d), retained %s -> %s (%s)",
			d.BaselineCount, d.CurrentCount, d.CountDelta,
			formatBytes(d.BaselineRetained), formatBytes(d.CurrentRetained),
			formatSignedBytes(d.RetainedDelta))
		printed++
	}
	if printed == 0 {
		log.Info("  (no changes)")
	}

	f.printInstances(report, log)
}

// printInstances prints the per-instance drill-down when present.
func (f *CompareFormatter) printInstances(report *model.ComparisonReport, log utils.Logger) {
	if report.TypeName == "" {
		return
	}
	log.Info("")
	log.Info("=== Instances of %s ===", report.TypeName)
	log.Info("  Baseline:")
	printInstanceRows(report.BaselineInstances, log)
	log.Info("  Current:")
	printInstanceRows(report.CurrentInstances, log)
}

func printInstanceRows(rows []model.InstanceRow, log utils.Logger) {
	if len(rows) == 0 {
		log.Info("    (none)")
		return
	}
	for _, r := range rows {
		log.Info("    0x%012x  size %-10s retained %s",
			r.Address, formatBytes(r.Size), formatBytes(r.Retained))
	}
}

// WriteJSON writes the report as indented JSON.
func (f *CompareFormatter) WriteJSON(report *model.ComparisonReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
