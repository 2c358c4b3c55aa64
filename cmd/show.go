// =============================================================================
// Bill Report Generator - Show Command
// =============================================================================
//
// COMMAND USAGE:
//   billreport show [--output tables.md] [--raw]
//
// Renders the markdown report in the terminal with glamour. --raw prints the
// file unchanged.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	showOutputFile string
	showRaw        bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the markdown report in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := mainConfig.OutputFile
		if showOutputFile != "" {
			path = showOutputFile
		}
		return runShow(path, showRaw, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&showOutputFile, "output", "o", "", "Report to render (default from config, tables.md)")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the markdown without rendering it")
}

// runShow renders the report at path to w.
func runShow(path string, raw bool, w io.Writer) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("report %s does not exist, run 'billreport process' first", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	if raw {
		_, err = w.Write(data)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(string(data))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if logger != nil {
		logger.Debug("Rendered report", zap.String("report", path), zap.Int("bytes", len(data)))
	}

	_, err = io.WriteString(w, out)
	return err
}
