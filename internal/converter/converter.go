// =============================================================================
// Bill Report Generator - Converter Module
// =============================================================================
//
// This module turns one statement file into a types.Bill.
//
// CONVERSION PIPELINE:
//   1. Locate the file (input directory + identity file name)
//   2. Parse its rows (.xlsx via xlsxparser, anything else via csvparser)
//   3. Validate the header and coerce every row into a LineItem
//   4. Sum the prices into the bill total
//
// CONCURRENCY:
//   A Converter holds only read-only settings. Parse may be called from any
//   number of goroutines at once.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/billreport/internal/config"
	"github.com/ginjaninja78/billreport/internal/csvparser"
	"github.com/ginjaninja78/billreport/internal/types"
	"github.com/ginjaninja78/billreport/internal/validation"
	"github.com/ginjaninja78/billreport/internal/xlsxparser"
)

// =============================================================================
// ERRORS
// =============================================================================

// RecordParseError is returned when a statement file cannot be turned into a
// bill. Err is the underlying I/O, format or validation error.
type RecordParseError struct {
	FileName string
	Err      error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.FileName, e.Err)
}

func (e *RecordParseError) Unwrap() error { return e.Err }

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter parses statement files into bills.
type Converter struct {
	// csvSettings configures the delimited-text parser.
	csvSettings config.CSVSettings

	// xlsxSheet is the sheet read from spreadsheet statements.
	xlsxSheet string

	logger *zap.Logger
}

// New creates a Converter from the main configuration. A nil logger discards output.
func New(mainConfig *config.MainConfig, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		csvSettings: mainConfig.CSVSettings,
		xlsxSheet:   mainConfig.XLSXSheet,
		logger:      logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Parse reads inputDir/identity.FileName and builds its bill.
//
// RETURNS:
//   - The bill, with line items in file order and Total = sum of prices.
//   - A *RecordParseError if the file cannot be read, parsed or coerced.
func (c *Converter) Parse(ctx context.Context, inputDir string, identity types.RecordIdentity) (*types.Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(inputDir, identity.FileName)
	c.logger.Debug("Parsing statement", zap.String("file", path))

	table, err := c.readTable(path)
	if err != nil {
		return nil, &RecordParseError{FileName: identity.FileName, Err: err}
	}

	lineItems, errs := validation.ValidateTable(table)
	if len(errs) > 0 {
		for _, ve := range errs {
			c.logger.Debug("Validation error", zap.String("file", identity.FileName), zap.Error(ve))
		}
		return nil, &RecordParseError{FileName: identity.FileName, Err: errs}
	}

	bill := &types.Bill{
		Date:      identity.Date,
		Name:      identity.Name,
		LineItems: lineItems,
		Total:     types.SumPrices(lineItems),
	}

	c.logger.Debug("Parsed statement",
		zap.String("file", identity.FileName),
		zap.Int("line_items", len(lineItems)),
		zap.Float64("total", bill.Total))

	return bill, nil
}

// readTable dispatches on the file extension.
func (c *Converter) readTable(path string) (*types.Table, error) {
	if strings.EqualFold(filepath.Ext(path), xlsxparser.Extension) {
		return xlsxparser.Parse(path, c.xlsxSheet)
	}
	return csvparser.Parse(path, c.csvSettings)
}
