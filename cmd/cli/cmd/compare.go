package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heap-analysis/internal/analyzer"
	"github.com/heap-analysis/internal/formatter"
	"github.com/heap-analysis/internal/storage"
)

var (
	// Compare command flags
	compareType   string
	maxInstances  int
	maxDeltas     int
	compareFormat string
)

// compareCmd represents the compare command.
var compareCmd = &cobra.Command{
	Use:   "compare <baseline> <current>",
	Short: "Compare two heap dumps and quantify per-type growth",
	Long: `Compare a baseline dump against a current dump.

Both dumps are analyzed independently; their type aggregations are joined
by type name and every type is classified as Added, Removed, Changed or
Unchanged, with count and byte deltas. With --type, the first instances of
that type on each side are listed for drill-down.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	binName := BinName()
	compareCmd.Example = fmt.Sprintf(`  # Compare two snapshots
  %s compare ./before.heap.json ./after.heap.json

  # Show instance details for one type
  %s compare ./before.heap.json ./after.heap.json --type My.App.Cache -m 20`,
		binName, binName)

	compareCmd.Flags().StringVar(&compareType, "type", "", "Type name for instance-level comparison")
	compareCmd.Flags().IntVarP(&maxInstances, "max-instances", "m", 0, "Instances per side for --type (0 = default)")
	compareCmd.Flags().IntVar(&maxDeltas, "max-deltas", 0, "Number of type deltas to report (0 = all)")
	compareCmd.Flags().StringVar(&compareFormat, "format", "table", "Output format: table or json")
}

func runCompare(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	for _, path := range args {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", path)
		}
	}

	store, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return err
	}

	a := analyzer.NewCompareAnalyzer(store, log)
	report, err := a.Compare(cmd.Context(), args[0], args[1], generateUUID(), analyzer.CompareOptions{
		TypeName:     compareType,
		MaxInstances: maxInstances,
		MaxDeltas:    maxDeltas,
	})
	if err != nil {
		return err
	}

	compareFormatter := &formatter.CompareFormatter{}
	if compareFormat == "json" {
		return compareFormatter.WriteJSON(report, os.Stdout)
	}
	compareFormatter.Format(report, log)
	return nil
}
