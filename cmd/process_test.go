package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/billreport/internal/config"
	"github.com/ginjaninja78/billreport/internal/converter"
	"github.com/ginjaninja78/billreport/internal/scanner"
)

const aliceSection = "## Alice 7.5\n" +
	"Position | Amount | Price\n" +
	"---------|--------|-------\n" +
	"Coffee | 2 | 4.5\n" +
	"Tea | 1 | 3\n" +
	"\n"

// setupRun creates an input directory with the given statements and returns
// a configuration pointing at it and at a report inside the same temp dir.
func setupRun(t *testing.T, statements map[string]string) *config.MainConfig {
	t.Helper()
	root := t.TempDir()
	inputDir := filepath.Join(root, "csv")
	require.NoError(t, os.Mkdir(inputDir, 0755))
	for name, body := range statements {
		require.NoError(t, os.WriteFile(filepath.Join(inputDir, name), []byte(body), 0644))
	}

	cfg := config.Default()
	cfg.InputDir = inputDir
	cfg.OutputFile = filepath.Join(root, "tables.md")
	return cfg
}

func readReport(t *testing.T, cfg *config.MainConfig) string {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(data)
}

var aliceStatement = map[string]string{
	"2021-01-01_Alice.csv": "name,amount,price\nCoffee,2,4.50\nTea,1,3.00\n",
}

func TestRunProcess_WritesReport(t *testing.T) {
	cfg := setupRun(t, aliceStatement)
	var stdout bytes.Buffer

	require.NoError(t, runProcess(context.Background(), cfg, false, nil, &stdout))

	assert.Equal(t, aliceSection, readReport(t, cfg))
	assert.Contains(t, stdout.String(), "Total files:     1")
	assert.Contains(t, stdout.String(), "Line items:      2")
}

func TestRunProcess_AppendsByDefault(t *testing.T) {
	cfg := setupRun(t, aliceStatement)

	require.NoError(t, runProcess(context.Background(), cfg, false, nil, &bytes.Buffer{}))
	require.NoError(t, runProcess(context.Background(), cfg, false, nil, &bytes.Buffer{}))

	assert.Equal(t, aliceSection+aliceSection, readReport(t, cfg))
}

func TestRunProcess_Truncate(t *testing.T) {
	cfg := setupRun(t, aliceStatement)
	require.NoError(t, runProcess(context.Background(), cfg, false, nil, &bytes.Buffer{}))

	cfg = processOptions{truncate: true}.apply(cfg)
	require.NoError(t, runProcess(context.Background(), cfg, false, nil, &bytes.Buffer{}))

	assert.Equal(t, aliceSection, readReport(t, cfg))
}

func TestRunProcess_DryRunLeavesReportAlone(t *testing.T) {
	cfg := setupRun(t, aliceStatement)
	var stdout bytes.Buffer

	require.NoError(t, runProcess(context.Background(), cfg, true, nil, &stdout))

	assert.Equal(t, aliceSection, stdout.String())
	assert.NoFileExists(t, cfg.OutputFile)
}

func TestRunProcess_MissingDirectoryWritesNothing(t *testing.T) {
	cfg := setupRun(t, nil)
	cfg.InputDir = filepath.Join(filepath.Dir(cfg.InputDir), "missing")

	err := runProcess(context.Background(), cfg, false, nil, &bytes.Buffer{})

	var dirErr *scanner.DirectoryReadError
	assert.True(t, errors.As(err, &dirErr))
	assert.NoFileExists(t, cfg.OutputFile)
}

func TestRunProcess_OneBadStatementWritesNothing(t *testing.T) {
	cfg := setupRun(t, map[string]string{
		"2021-01-01_Alice.csv": "name,amount,price\nCoffee,2,4.50\n",
		"2021-01-02_Bob.csv":   "name,amount,price\nCake,1,cheap\n",
	})

	err := runProcess(context.Background(), cfg, false, nil, &bytes.Buffer{})

	var parseErr *converter.RecordParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "2021-01-02_Bob.csv", parseErr.FileName)
	assert.NoFileExists(t, cfg.OutputFile)
}

func TestRunProcess_EmptyDirectory(t *testing.T) {
	cfg := setupRun(t, nil)

	require.NoError(t, runProcess(context.Background(), cfg, false, nil, &bytes.Buffer{}))
	assert.Equal(t, "", readReport(t, cfg))
}

func TestProcessOptions_Apply(t *testing.T) {
	base := config.Default()

	cfg := processOptions{inputDir: "./bills", outputFile: "out.md", truncate: true}.apply(base)
	assert.Equal(t, "./bills", cfg.InputDir)
	assert.Equal(t, "out.md", cfg.OutputFile)
	assert.Equal(t, config.ReportModeTruncate, cfg.ReportMode)

	// The base configuration is not modified.
	assert.Equal(t, "./csv", base.InputDir)
	assert.Equal(t, config.ReportModeAppend, base.ReportMode)

	assert.Equal(t, base, processOptions{}.apply(base))
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = newLogger("info", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}
