// Package cmd implements the CLI commands.
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/heap-analysis/pkg/config"
	"github.com/heap-analysis/pkg/telemetry"
	"github.com/heap-analysis/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
	cfg    *config.Config

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "heap-analysis",
	Short: "A heap snapshot analysis tool",
	Long: `heap-analysis explains why memory is retained in managed-runtime heap
snapshots. It computes per-object retained sizes via dominator trees,
aggregates them by type, samples retainer paths to the GC roots, and
compares snapshots pairwise to quantify per-type growth.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			level = utils.LevelDebug
		}
		if cfg.Log.OutputPath != "" {
			logger, err = utils.NewFileLogger(level, cfg.Log.OutputPath)
			if err != nil {
				return err
			}
		} else {
			logger = utils.NewDefaultLogger(level, os.Stdout)
		}

		telemetryShutdown, err = telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("failed to initialize telemetry: %v", err)
			telemetryShutdown = nil
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(context.Background())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetLogger returns the process logger, initializing a default if the
// persistent pre-run has not executed (tests).
func GetLogger() utils.Logger {
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, os.Stdout)
	}
	return logger
}

// BinName returns the invoked binary name for help examples.
func BinName() string {
	return filepath.Base(os.Args[0])
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	binName := BinName()
	rootCmd.Example = `  # Analyze a heap dump
  ` + binName + ` analyze -i ./app.heap.json

  # Analyze every dump in a directory and persist the reports
  ` + binName + ` analyze -i './dumps/*.json' --save

  # Compare two snapshots
  ` + binName + ` compare ./before.heap.json ./after.heap.json

  # Drill into one type's instances
  ` + binName + ` compare ./before.heap.json ./after.heap.json --type My.App.Cache`
}
