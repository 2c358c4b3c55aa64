// =============================================================================
// Bill Report Generator - Validation Module
// =============================================================================
//
// This module checks parsed statement tables and coerces their text cells into
// typed line items.
//
// VALIDATION RULES:
//   - The header row must contain every required column (name, amount, price)
//   - "amount" must be an integer
//   - "price" must be a finite decimal number
//   - "name" may be empty
//
// A coercion failure is never turned into a zero or NaN value: it is reported
// as a ValidationError carrying the row number, field and offending value.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ginjaninja78/billreport/internal/types"
)

// Column names every statement must provide.
const (
	ColumnName   = "name"
	ColumnAmount = "amount"
	ColumnPrice  = "price"
)

// RequiredColumns lists the columns checked by ValidateHeaders.
var RequiredColumns = []string{ColumnName, ColumnAmount, ColumnPrice}

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation error.
type ValidationError struct {
	// RowNumber is the record number in the source file (1 = header row).
	RowNumber int

	// Field is the name of the column that failed validation.
	Field string

	// Value is the actual value that failed validation.
	Value string

	// Rule is the validation rule that was violated.
	// One of "required_column", "integer", "decimal".
	Rule string

	// Message is a human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Rule == RuleRequiredColumn {
		return fmt.Sprintf("row %d: %s", e.RowNumber, e.Message)
	}
	return fmt.Sprintf("row %d, field '%s': %s (value: '%s')", e.RowNumber, e.Field, e.Message, e.Value)
}

// Validation rules.
const (
	RuleRequiredColumn = "required_column"
	RuleInteger        = "integer"
	RuleDecimal        = "decimal"
)

// Errors is the list of validation errors found in one table.
type Errors []*ValidationError

// Error implements the error interface.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "no validation errors"
	case 1:
		return errs[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", errs[0].Error(), len(errs)-1)
	}
}

// Unwrap exposes every ValidationError to errors.As.
func (errs Errors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// Err returns errs as an error, or nil when it is empty.
func (errs Errors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ErrNonFinite is reported for prices such as "NaN" or "Inf".
var ErrNonFinite = errors.New("value is not a finite number")

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// ValidateHeaders checks that the table has every required column.
func ValidateHeaders(table *types.Table) Errors {
	var errs Errors
	for _, column := range RequiredColumns {
		if !table.HasHeader(column) {
			errs = append(errs, &ValidationError{
				RowNumber: 1,
				Field:     column,
				Rule:      RuleRequiredColumn,
				Message:   fmt.Sprintf("missing required column '%s'", column),
			})
		}
	}
	return errs
}

// Coerce converts one row into a LineItem.
//
// RETURNS:
//   - The line item (only meaningful when no errors are returned).
//   - Every field error found in the row.
func Coerce(row types.Row) (types.LineItem, Errors) {
	var errs Errors

	item := types.LineItem{Name: row.Fields[ColumnName]}

	amount, err := ParseAmount(row.Fields[ColumnAmount])
	if err != nil {
		errs = append(errs, fieldError(row, ColumnAmount, RuleInteger, err))
	}
	item.Amount = amount

	price, err := ParsePrice(row.Fields[ColumnPrice])
	if err != nil {
		errs = append(errs, fieldError(row, ColumnPrice, RuleDecimal, err))
	}
	item.Price = price

	return item, errs
}

// ValidateTable checks headers and coerces every row.
//
// RETURNS:
//   - The line items in row order.
//   - All validation errors; the line items must be discarded if any.
func ValidateTable(table *types.Table) ([]types.LineItem, Errors) {
	if errs := ValidateHeaders(table); len(errs) > 0 {
		return nil, errs
	}

	items := make([]types.LineItem, 0, len(table.Rows))
	var errs Errors
	for _, row := range table.Rows {
		item, rowErrs := Coerce(row)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		items = append(items, item)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return items, nil
}

// ParseAmount parses an integer amount such as "2" or "-1".
func ParseAmount(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}

// ParsePrice parses a decimal price such as "4.50".
func ParsePrice(value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNonFinite
	}
	return f, nil
}

// fieldError builds a ValidationError for a coercion failure.
func fieldError(row types.Row, field, rule string, err error) *ValidationError {
	message := "not a valid integer"
	if rule == RuleDecimal {
		message = "not a valid decimal number"
	}
	if errors.Is(err, ErrNonFinite) {
		message = ErrNonFinite.Error()
	}
	return &ValidationError{
		RowNumber: row.Number,
		Field:     field,
		Value:     row.Fields[field],
		Rule:      rule,
		Message:   message,
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errs Errors) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n", len(errs)))
	for i, err := range errs {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}
