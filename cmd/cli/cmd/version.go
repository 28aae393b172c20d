package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/heap-analysis/internal/analyzer"
)

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("heap-analysis %s (%s, %s/%s)\n",
			analyzer.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
