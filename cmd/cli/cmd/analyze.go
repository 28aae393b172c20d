package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heap-analysis/internal/analyzer"
	"github.com/heap-analysis/internal/formatter"
	"github.com/heap-analysis/internal/repository"
	"github.com/heap-analysis/internal/storage"
	"github.com/heap-analysis/pkg/model"
)

var (
	// Analyze command flags
	inputPattern string
	taskUUID     string
	topN         int
	pathTypes    int
	maxPaths     int
	saveReport   bool
	outputFormat string
)

// analyzeCmd represents the analyze command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze heap dumps and report retained sizes by type",
	Long: `Analyze one or more heap dumps.

The input is a dump file path or a glob pattern. Each dump is loaded,
indexed (post order, reverse references, dominator tree, retained sizes)
and summarized as a per-type retained-size breakdown. Multiple dumps are
analyzed concurrently; each individual snapshot build is single-threaded.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	binName := BinName()
	analyzeCmd.Example = fmt.Sprintf(`  # Analyze one dump
  %s analyze -i ./app.heap.json

  # Report the 20 biggest types with retainer paths
  %s analyze -i ./app.heap.json -n 20 --paths 3

  # Analyze a batch and save reports to the database
  %s analyze -i './dumps/*.json' --save

  # Emit the report as JSON
  %s analyze -i ./app.heap.json --format json`,
		binName, binName, binName, binName)

	analyzeCmd.Flags().StringVarP(&inputPattern, "input", "i", "", "Input dump file or glob pattern (required)")
	analyzeCmd.MarkFlagRequired("input")

	analyzeCmd.Flags().StringVar(&taskUUID, "uuid", "", "Task UUID (auto-generated if empty)")
	analyzeCmd.Flags().IntVarP(&topN, "top", "n", 0, "Number of top types to report (0 = config default)")
	analyzeCmd.Flags().IntVar(&pathTypes, "paths", 0, "Sample retainer paths for the N biggest types")
	analyzeCmd.Flags().IntVar(&maxPaths, "max-paths", 0, "Retainer paths per type (0 = config default)")
	analyzeCmd.Flags().BoolVar(&saveReport, "save", false, "Persist reports to the configured database")
	analyzeCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table or json")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	keys, err := resolveInputs(inputPattern)
	if err != nil {
		return err
	}

	store, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return err
	}

	opts := analyzer.DefaultOptions()
	opts.TopTypes = cfg.Analysis.TopTypes
	if topN > 0 {
		opts.TopTypes = topN
	}
	opts.MaxPaths = cfg.Analysis.MaxPaths
	if maxPaths > 0 {
		opts.MaxPaths = maxPaths
	}
	opts.PathTypes = pathTypes

	uuid := taskUUID
	if uuid == "" {
		uuid = generateUUID()
	}

	var reports []*model.HeapReport
	if len(keys) == 1 {
		a := analyzer.NewHeapAnalyzer(store, log, opts)
		report, err := a.Analyze(cmd.Context(), keys[0], uuid)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	} else {
		batch := analyzer.NewBatchAnalyzer(store, log, opts, cfg.Analysis.MaxWorker)
		results := batch.AnalyzeAll(cmd.Context(), keys, uuid)
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				continue
			}
			reports = append(reports, r.Report)
		}
		if failed > 0 {
			log.Warn("%d of %d dumps failed to analyze", failed, len(results))
		}
		if len(reports) == 0 {
			return fmt.Errorf("all %d dumps failed to analyze", len(results))
		}
	}

	heapFormatter := &formatter.HeapFormatter{}
	for _, report := range reports {
		if outputFormat == "json" {
			if err := heapFormatter.WriteJSON(report, os.Stdout); err != nil {
				return err
			}
		} else {
			heapFormatter.Format(report, log)
		}
	}

	if saveReport {
		return persistReports(cmd, reports)
	}
	return nil
}

// persistReports saves all reports through the gorm repository.
func persistReports(cmd *cobra.Command, reports []*model.HeapReport) error {
	db, err := repository.NewGormDB(&cfg.Database)
	if err != nil {
		return err
	}
	repo := repository.NewGormSnapshotRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		return err
	}
	for _, report := range reports {
		if err := repo.SaveReport(cmd.Context(), report); err != nil {
			return err
		}
	}
	GetLogger().Info("saved %d report(s)", len(reports))
	return nil
}

// resolveInputs expands a path or glob pattern into dump keys.
func resolveInputs(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		if _, err := os.Stat(pattern); os.IsNotExist(err) {
			return nil, fmt.Errorf("input file not found: %s", pattern)
		}
		return []string{pattern}, nil
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	return matches, nil
}

// generateUUID returns a random hex task identifier.
func generateUUID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "task-unknown"
	}
	return hex.EncodeToString(buf)
}
