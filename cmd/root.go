// =============================================================================
// Bill Report Generator - Root Command
// =============================================================================
//
// COBRA CLI STRUCTURE:
//   rootCmd (billreport)
//   ├── processCmd (billreport process)
//   ├── showCmd    (billreport show)
//   └── versionCmd (billreport version)
//
// The root command owns the persistent flags, loads the main configuration
// and builds the zap logger shared by every subcommand.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/billreport/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

var (
	// cfgFile holds the path to the main configuration file.
	cfgFile string

	// verbose forces debug logging regardless of log_level.
	verbose bool

	// mainConfig is loaded once in PersistentPreRunE.
	mainConfig *config.MainConfig

	logger *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "billreport",
	Short: "Bill Report Generator - Aggregate bill statements into a markdown report",
	Long: `billreport reads a directory of bill statements (CSV or XLSX), one file
per bill, named <date>_<name>.<ext>. Every statement is parsed concurrently,
its total is computed, and one markdown section per bill is appended to the
report.

If any statement fails to parse, the report is left untouched.

Example Usage:
  billreport process                          # ./csv -> tables.md
  billreport process --input ./bills --truncate
  billreport process --dry-run                # Print the report to stdout
  billreport show                             # Render tables.md in the terminal`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		mainConfig, err = config.LoadMainConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}

		logger, err = newLogger(mainConfig.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the production zap logger at the configured level.
// verbose always wins and selects debug.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)

	return zapConfig.Build()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (optional)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
