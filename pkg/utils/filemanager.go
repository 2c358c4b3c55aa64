// =============================================================================
// Bill Report Generator - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the generator:
//   - Opening the report target (append or truncate)
//   - Directory management for the report's parent directory
//   - The end-of-run processing summary
//
// REPORT HANDLE LIFECYCLE:
//   The report is opened once per run, only after the batch has joined
//   successfully, and closed by the caller when the run ends. A failed batch
//   never touches the report.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the generator.
type FileManager struct {
	// OutputFile is the markdown report path.
	OutputFile string
}

// NewFileManager creates a new FileManager for the given report path.
func NewFileManager(outputFile string) *FileManager {
	return &FileManager{OutputFile: outputFile}
}

// =============================================================================
// REPORT TARGET
// =============================================================================

// OpenReport opens the report for writing, creating it and its parent
// directory if needed.
//
// PARAMETERS:
//   - truncate: Empty the report first instead of appending to it.
//
// RETURNS:
//   - The open file. Every Write appends at the end of the file.
//   - An error if the directory or file cannot be created.
func (fm *FileManager) OpenReport(truncate bool) (*os.File, error) {
	if err := fm.EnsureOutputDir(); err != nil {
		return nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fm.OutputFile, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report %s: %w", fm.OutputFile, err)
	}
	return file, nil
}

// EnsureOutputDir creates the report's parent directory if it doesn't exist.
func (fm *FileManager) EnsureOutputDir() error {
	dir := filepath.Dir(fm.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID          string
	StartTime      time.Time
	EndTime        time.Time
	TotalFiles     int
	TotalLineItems int
	SectionsOK     int
	WriteErrors    int
	OutputFile     string
}

// WriteSummary writes a human-readable processing summary to w.
func WriteSummary(w io.Writer, summary ProcessingSummary) error {
	duration := summary.EndTime.Sub(summary.StartTime)
	_, err := fmt.Fprintf(w, "\n=== Processing Complete ===\n"+
		"Run ID:          %s\n"+
		"Total files:     %d\n"+
		"Line items:      %d\n"+
		"Sections:        %d\n"+
		"Write errors:    %d\n"+
		"Report:          %s\n"+
		"Time elapsed:    %s\n",
		summary.RunID,
		summary.TotalFiles,
		summary.TotalLineItems,
		summary.SectionsOK,
		summary.WriteErrors,
		summary.OutputFile,
		duration)
	return err
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
