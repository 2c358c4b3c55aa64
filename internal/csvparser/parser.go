// =============================================================================
// Bill Report Generator - CSV Parser Module
// =============================================================================
//
// This module turns a delimited statement file into a types.Table. It knows
// nothing about bills: it consumes raw bytes and emits rows of string fields
// keyed by the header row.
//
// FEATURES:
//   - Configurable delimiter (comma, pipe, tab, semicolon, ...)
//   - A single header row, cleaned and de-blanked
//   - Empty rows are skipped
//   - Ragged rows are tolerated (missing cells read as "")
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/billreport/internal/config"
	"github.com/ginjaninja78/billreport/internal/types"
)

// ErrEmptyFile is returned when the file has no header row.
var ErrEmptyFile = errors.New("CSV file is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the main configuration.
//
// RETURNS:
//   - A pointer to the Table containing the parsed data.
//   - An error if the file cannot be opened or parsed.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath
	return table, nil
}

// ParseReader parses CSV content from r. The first record is the header row.
func ParseReader(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	csvReader := csv.NewReader(stripBOM(r))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, ErrEmptyFile
	}

	headers := cleanHeaders(allRows[0])

	return &types.Table{
		Headers: headers,
		Rows:    extractDataRows(allRows, headers),
	}, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	// Handle special cases for common delimiters.
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Ragged rows are padded in extractDataRows.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	// A tab delimiter would be eaten as leading space of an empty field.
	reader.TrimLeadingSpace = settings.TrimSpace() && reader.Comma != '\t'
}

// stripBOM drops a leading UTF-8 byte order mark, common in spreadsheet exports.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if rn, _, err := br.ReadRune(); err == nil && rn != '\uFEFF' {
		_ = br.UnreadRune()
	}
	return br
}

// cleanHeaders trims header values and names blank headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts every non-empty record after the header into a Row.
func extractDataRows(allRows [][]string, headers []string) []types.Row {
	dataRows := make([]types.Row, 0, len(allRows)-1)

	for rowIndex := 1; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]

		if IsRowEmpty(row) {
			continue
		}

		fields := make(map[string]string, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(row) {
				fields[header] = strings.TrimSpace(row[colIndex])
			} else {
				fields[header] = ""
			}
		}

		dataRows = append(dataRows, types.Row{
			Number: rowIndex + 1,
			Fields: fields,
		})
	}

	return dataRows
}

// IsRowEmpty checks if a row contains only empty values.
func IsRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
