// =============================================================================
// Bill Report Generator - Markdown Report Writer
// =============================================================================
//
// This module renders bills into the markdown report.
//
// OUTPUT FORMAT (one section per bill):
//
//   ## Alice 7.5
//   Position | Amount | Price
//   ---------|--------|-------
//   Coffee | 2 | 4.5
//   Tea | 1 | 3
//   <blank line>
//
// Each section is written with a single Write call so concurrent writers to
// an O_APPEND file never interleave inside a section. A failed write is
// reported and the remaining sections are still attempted.
//
// =============================================================================

package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/billreport/internal/types"
)

// TableHeader precedes the line items of every section.
const TableHeader = "Position | Amount | Price\n---------|--------|-------\n"

// =============================================================================
// ERRORS
// =============================================================================

// WriteError is reported when one section could not be written.
type WriteError struct {
	// Bill is the name of the bill whose section was lost.
	Bill string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write report section for %s: %v", e.Bill, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// =============================================================================
// FORMATTING
// =============================================================================

// FormatBill renders one bill section, trailing blank line included.
func FormatBill(bill types.Bill) string {
	var b strings.Builder

	b.WriteString("## ")
	b.WriteString(bill.Name)
	b.WriteString(" ")
	b.WriteString(FormatNumber(bill.Total))
	b.WriteString("\n")
	b.WriteString(TableHeader)

	for i, item := range bill.LineItems {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s | %d | %s", item.Name, item.Amount, FormatNumber(item.Price))
	}

	b.WriteString("\n\n")
	return b.String()
}

// FormatNumber prints f in its shortest form: 7.5, 3, 0.25.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer writes bill sections to a report target.
type Renderer struct {
	out    io.Writer
	logger *zap.Logger
}

// NewRenderer creates a Renderer writing to out. A nil logger discards output.
func NewRenderer(out io.Writer, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{out: out, logger: logger}
}

// Render writes one section per bill, in order.
//
// RETURNS:
//   - One *WriteError per section that could not be written. A failure does
//     not stop the remaining sections. If ctx is cancelled, the sections not
//     yet written are reported with the context error.
func (r *Renderer) Render(ctx context.Context, bills []types.Bill) []error {
	var errs []error

	for _, bill := range bills {
		if err := ctx.Err(); err != nil {
			errs = append(errs, &WriteError{Bill: bill.Name, Err: err})
			continue
		}

		section := FormatBill(bill)
		n, err := io.WriteString(r.out, section)
		if err == nil && n < len(section) {
			err = io.ErrShortWrite
		}
		if err != nil {
			writeErr := &WriteError{Bill: bill.Name, Err: err}
			r.logger.Error("Report write failed", zap.String("bill", bill.Name), zap.Error(err))
			errs = append(errs, writeErr)
			continue
		}

		r.logger.Debug("Wrote report section", zap.String("bill", bill.Name), zap.Int("bytes", n))
	}

	return errs
}
