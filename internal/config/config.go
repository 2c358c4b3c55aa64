// =============================================================================
// Bill Report Generator - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
//
// CONFIGURATION SOURCES (lowest to highest precedence):
//   1. Built-in defaults
//   2. Main Config (config.yaml), optional
//   3. Environment variables (a .env file is loaded first if present)
//   4. Command-line flags (applied by the cmd package)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// REPORT MODES
// =============================================================================

const (
	// ReportModeAppend appends every run to the existing report.
	// Re-running against the same report duplicates its sections.
	ReportModeAppend = "append"

	// ReportModeTruncate empties the report before the run writes to it.
	ReportModeTruncate = "truncate"
)

// Environment variables that override the YAML configuration.
const (
	EnvInputDir   = "BILLREPORT_INPUT_DIR"
	EnvOutputFile = "BILLREPORT_OUTPUT_FILE"
	EnvReportMode = "BILLREPORT_REPORT_MODE"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for statement files.
	// Default: "./csv"
	InputDir string `yaml:"input_dir"`

	// OutputFile is the markdown report every run writes to.
	// Default: "tables.md"
	OutputFile string `yaml:"output_file"`

	// =========================================================================
	// FILE NAMING SETTINGS
	// =========================================================================

	// Separator splits a file name into its date and name tokens.
	// Default: "_"
	Separator string `yaml:"separator"`

	// StrictFilenames fails the whole batch on a file name without a valid
	// date or name instead of skipping it with a warning.
	// Default: false
	StrictFilenames bool `yaml:"strict_filenames"`

	// =========================================================================
	// PARSING SETTINGS
	// =========================================================================

	// CSVSettings contains settings for parsing delimited statement files.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// XLSXSheet is the sheet read from .xlsx statements.
	// Empty means the first sheet.
	XLSXSheet string `yaml:"xlsx_sheet"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// ReportMode is either "append" or "truncate".
	// Default: "append"
	ReportMode string `yaml:"report_mode"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" (tab), ";" (semicolon)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// TrimLeadingSpace ignores leading white space in a field.
	// Default: true
	TrimLeadingSpace *bool `yaml:"trim_leading_space"`
}

// TrimSpace reports whether leading white space is trimmed, honoring the default.
func (s CSVSettings) TrimSpace() bool {
	if s.TrimLeadingSpace == nil {
		return true
	}
	return *s.TrimLeadingSpace
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A missing file is
//     not an error: the defaults are used instead.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file exists but cannot be read or parsed, or if the
//     resulting configuration is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No config file, defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment overrides, .env included.
	if err := applyEnvOverrides(&config); err != nil {
		return nil, err
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// Validate the configuration.
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides loads a .env file from the working directory (if any) and
// copies the BILLREPORT_* variables over the YAML values.
func applyEnvOverrides(config *MainConfig) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	if v := os.Getenv(EnvInputDir); v != "" {
		config.InputDir = v
	}
	if v := os.Getenv(EnvOutputFile); v != "" {
		config.OutputFile = v
	}
	if v := os.Getenv(EnvReportMode); v != "" {
		config.ReportMode = v
	}
	return nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./csv"
	}
	if config.OutputFile == "" {
		config.OutputFile = "tables.md"
	}
	if config.Separator == "" {
		config.Separator = "_"
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.ReportMode == "" {
		config.ReportMode = ReportModeAppend
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c *MainConfig) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return fmt.Errorf("input_dir must not be empty")
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return fmt.Errorf("output_file must not be empty")
	}
	if c.Separator == "" {
		return fmt.Errorf("separator must not be empty")
	}

	switch c.ReportMode {
	case ReportModeAppend, ReportModeTruncate:
	default:
		return fmt.Errorf("unknown report_mode %q (want %q or %q)", c.ReportMode, ReportModeAppend, ReportModeTruncate)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	return nil
}
