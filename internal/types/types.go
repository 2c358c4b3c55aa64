// =============================================================================
// Bill Report Generator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - scanner   (RecordIdentity)
//   - csvparser / xlsxparser (Table, Row)
//   - converter (LineItem, Bill)
//   - batch / report
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORD IDENTITY
// =============================================================================

// RecordIdentity is the structured identity of one input file, derived purely
// from its file name.
type RecordIdentity struct {
	// FileName is the bare file name (no directory), e.g. "2021-01-01_Alice.csv".
	// It is used to locate the file inside the input directory.
	FileName string

	// Name is the logical bill name (second separator-delimited token).
	// Empty if the file name has no second token.
	Name string

	// Date is the parsed date token.
	// The zero time.Time marks a date that could not be parsed.
	Date time.Time
}

// HasDate reports whether the date token was parsed successfully.
func (r RecordIdentity) HasDate() bool {
	return !r.Date.IsZero()
}

// =============================================================================
// BILL TYPES
// =============================================================================

// LineItem is one row of a statement after numeric coercion.
type LineItem struct {
	// Name is the position label from the "name" column.
	Name string

	// Amount is the quantity from the "amount" column.
	Amount int

	// Price is the price from the "price" column.
	Price float64
}

// Bill is the parsed representation of one input file.
type Bill struct {
	// Date comes from the record identity.
	Date time.Time

	// Name comes from the record identity.
	Name string

	// LineItems keeps the row order of the source file.
	LineItems []LineItem

	// Total is the sum of every line item's Price.
	// Amount is not taken into account, see ExtendedTotal.
	Total float64
}

// SumPrices returns the sum of the Price field across items.
// Summation is done in decimal so that e.g. 0.1 + 0.2 yields 0.3.
func SumPrices(items []LineItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price))
	}
	return total.InexactFloat64()
}

// ExtendedTotal returns the sum of Price * Amount across all line items.
// It is not used for the report; it exists so callers can compare it with Total.
func (b Bill) ExtendedTotal() float64 {
	total := decimal.Zero
	for _, item := range b.LineItems {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Amount))))
	}
	return total.InexactFloat64()
}

// =============================================================================
// TABLE TYPES
// =============================================================================

// Table is the neutral row structure produced by the row parsers
// (csvparser for delimited text, xlsxparser for spreadsheets).
type Table struct {
	// SourceFile is the path the table was read from.
	SourceFile string

	// Headers contains the cleaned column headers.
	Headers []string

	// Rows contains the non-empty data rows in file order.
	Rows []Row
}

// Row is a single data row.
type Row struct {
	// Number is the 1-indexed record number in the source file, header included.
	// Useful for error reporting.
	Number int

	// Fields maps header -> trimmed cell value.
	Fields map[string]string
}

// HasHeader reports whether the table has a column with the given header.
func (t *Table) HasHeader(header string) bool {
	for _, h := range t.Headers {
		if h == header {
			return true
		}
	}
	return false
}
