// =============================================================================
// Bill Report Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the billreport CLI. It delegates command
// execution to the cmd package.
//
// USAGE:
//   billreport process   - Turn every bill statement in the input directory
//                          into a section of the markdown report
//   billreport show      - Render the report in the terminal
//   billreport version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : Scanner, parsers, validation, batch coordinator, report
//   - pkg/        : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/billreport/cmd"
)

func main() {
	cmd.Execute()
}
