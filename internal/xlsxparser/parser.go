// =============================================================================
// Bill Report Generator - XLSX Statement Parser
// =============================================================================
//
// This module reads statements exported as spreadsheets. It produces the same
// types.Table as the CSV parser so the converter does not care which format a
// statement came in.
//
// SHEET LAYOUT (Expected):
//
//   | Column A | Column B | Column C |
//   |----------|----------|----------|
//   | name     | amount   | price    |   <- header row (row 1)
//   | Coffee   | 2        | 4.50     |
//   | Tea      | 1        | 3.00     |
//
//   Column order is free; columns are looked up by header. Extra columns are
//   carried along and ignored by the converter.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/billreport/internal/types"
)

// Extension is the file extension routed to this parser.
const Extension = ".xlsx"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one sheet of an XLSX statement.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - sheet: The sheet to read. Empty means the first sheet.
//
// RETURNS:
//   - A pointer to the Table containing the parsed rows.
//   - An error if the file cannot be opened, the sheet does not exist or it
//     has no header row.
func Parse(filePath, sheet string) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheetName, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	// Skip leading blank rows to find the header.
	headerIndex := 0
	for headerIndex < len(rows) && isRowEmpty(rows[headerIndex]) {
		headerIndex++
	}
	if headerIndex == len(rows) {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	headers := cleanHeaders(rows[headerIndex])
	table := &types.Table{
		SourceFile: filePath,
		Headers:    headers,
		Rows:       make([]types.Row, 0, len(rows)-headerIndex-1),
	}

	for i := headerIndex + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, parseRow(row, headers, i))
	}

	return table, nil
}

// resolveSheet returns the sheet to read, defaulting to the first one.
func resolveSheet(f *excelize.File, sheet string) (string, error) {
	if sheet == "" {
		name := f.GetSheetName(0)
		if name == "" {
			return "", fmt.Errorf("spreadsheet has no sheets")
		}
		return name, nil
	}

	for _, name := range f.GetSheetList() {
		if strings.EqualFold(name, sheet) {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found", sheet)
}

// parseRow maps a spreadsheet row onto the headers.
// rowIndex is 0-based; the returned Row.Number is 1-based like the sheet.
func parseRow(row, headers []string, rowIndex int) types.Row {
	// Helper function to safely get a cell value.
	getCell := func(index int) string {
		if index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	fields := make(map[string]string, len(headers))
	for col, header := range headers {
		fields[header] = getCell(col)
	}

	return types.Row{Number: rowIndex + 1, Fields: fields}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims header cells and names blank ones by column letter.
func cleanHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				name = fmt.Sprintf("%d", i+1)
			}
			cell = "Column_" + name
		}
		headers[i] = cell
	}
	return headers
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
