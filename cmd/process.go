// =============================================================================
// Bill Report Generator - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the whole pipeline.
//
// COMMAND USAGE:
//   billreport process [flags]
//
// FLAGS:
//   --input     : Directory holding the bill statements (overrides input_dir)
//   --output    : Markdown report path (overrides output_file)
//   --truncate  : Empty the report before writing instead of appending
//   --dry-run   : Print the report sections to stdout, leave the report alone
//
// PROCESSING PIPELINE:
//   1. Apply flag overrides to the loaded configuration
//   2. Scan the input directory and parse every statement concurrently
//   3. Join: any scan or parse failure aborts the run before the report is
//      opened
//   4. Open the report (append or truncate) and write one section per bill
//   5. Print the processing summary
//
// EXIT STATUS:
//   Non-zero on a scan or parse failure. Failed section writes are logged and
//   counted in the summary but do not fail the command.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/billreport/internal/batch"
	"github.com/ginjaninja78/billreport/internal/config"
	"github.com/ginjaninja78/billreport/internal/converter"
	"github.com/ginjaninja78/billreport/internal/report"
	"github.com/ginjaninja78/billreport/internal/scanner"
	"github.com/ginjaninja78/billreport/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processOptions collects the flags of the process command.
type processOptions struct {
	inputDir   string
	outputFile string
	truncate   bool
	dryRun     bool
}

var processOpts processOptions

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Aggregate bill statements into the markdown report",
	Long: `The process command scans the input directory for bill statements named
<date>_<name>.<ext>, parses every statement concurrently and appends one
markdown section per bill to the report:

  ## Alice 7.5
  Position | Amount | Price
  ---------|--------|-------
  Coffee | 2 | 4.5
  Tea | 1 | 3

The total of a bill is the sum of its line item prices.

If the directory cannot be read, or any statement fails to parse, nothing
is written and the command exits with an error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := processOpts.apply(mainConfig)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return runProcess(cmd.Context(), cfg, processOpts.dryRun, logger, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(
		&processOpts.inputDir,
		"input",
		"i",
		"",
		"Directory holding the bill statements (default from config, ./csv)",
	)
	processCmd.Flags().StringVarP(
		&processOpts.outputFile,
		"output",
		"o",
		"",
		"Markdown report path (default from config, tables.md)",
	)
	processCmd.Flags().BoolVar(
		&processOpts.truncate,
		"truncate",
		false,
		"Empty the report before writing instead of appending",
	)
	processCmd.Flags().BoolVar(
		&processOpts.dryRun,
		"dry-run",
		false,
		"Print the report sections to stdout without touching the report",
	)
}

// apply returns a copy of base with the flag overrides applied.
func (o processOptions) apply(base *config.MainConfig) *config.MainConfig {
	cfg := *base
	if o.inputDir != "" {
		cfg.InputDir = o.inputDir
	}
	if o.outputFile != "" {
		cfg.OutputFile = o.outputFile
	}
	if o.truncate {
		cfg.ReportMode = config.ReportModeTruncate
	}
	return &cfg
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess runs one batch and writes the report.
//
// PARAMETERS:
//   - ctx: Cancels the batch and any remaining section writes.
//   - cfg: The effective configuration, flags already applied.
//   - dryRun: Write the sections to stdout instead of the report.
//   - logger: Structured logger. nil discards output.
//   - stdout: Receives the summary, and the sections in dry-run mode.
//
// RETURNS:
//   - The scan or parse error that aborted the batch, or an error opening
//     the report. Section write failures are not returned.
func runProcess(ctx context.Context, cfg *config.MainConfig, dryRun bool, logger *zap.Logger, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	startTime := time.Now()

	// =========================================================================
	// STEP 1: SCAN, PARSE, JOIN
	// =========================================================================

	coord := batch.NewCoordinator(
		scanner.New(cfg.Separator, cfg.StrictFilenames, logger),
		converter.New(cfg, logger),
		logger,
	)

	result, err := coord.Run(ctx, cfg.InputDir)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: OPEN THE REPORT
	// =========================================================================
	// Only reached once every statement parsed.

	var out io.Writer = stdout
	if !dryRun {
		fm := utils.NewFileManager(cfg.OutputFile)
		file, err := fm.OpenReport(cfg.ReportMode == config.ReportModeTruncate)
		if err != nil {
			return err
		}
		defer func() {
			if err := file.Close(); err != nil {
				logger.Error("Failed to close report", zap.String("report", cfg.OutputFile), zap.Error(err))
			}
		}()
		out = file
	}

	// =========================================================================
	// STEP 3: WRITE SECTIONS
	// =========================================================================

	writeErrs := report.NewRenderer(out, logger).Render(ctx, result.Bills)
	for _, err := range writeErrs {
		logger.Warn("Report section lost", zap.String("run_id", result.RunID), zap.Error(err))
	}

	// =========================================================================
	// STEP 4: SUMMARY
	// =========================================================================

	if dryRun {
		return nil
	}

	lineItems := 0
	for _, bill := range result.Bills {
		lineItems += len(bill.LineItems)
	}

	return utils.WriteSummary(stdout, utils.ProcessingSummary{
		RunID:          result.RunID,
		StartTime:      startTime,
		EndTime:        time.Now(),
		TotalFiles:     len(result.Bills),
		TotalLineItems: lineItems,
		SectionsOK:     len(result.Bills) - len(writeErrs),
		WriteErrors:    len(writeErrs),
		OutputFile:     cfg.OutputFile,
	})
}
