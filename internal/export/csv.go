// Package export writes registration export rows as CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/eventdesk/eventdesk/api/internal/domain"
)

// Header is the first row of every registrations export
var Header = []string{
	"registration_id",
	"first_name",
	"last_name",
	"email",
	"company",
	"ticket",
	"status",
	"payment_status",
	"amount",
	"currency",
	"created_at",
	"checked_in_at",
}

// Writer writes export rows with RFC 4180 quoting
type Writer struct {
	w    *csv.Writer
	rows int
}

// NewWriter writes the header to w and returns a row writer
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	return &Writer{w: cw}, nil
}

// Write appends one registration row
func (w *Writer) Write(row *domain.ExportRow) error {
	checkedIn := ""
	if row.CheckedInAt != nil {
		checkedIn = row.CheckedInAt.UTC().Format(time.RFC3339)
	}

	w.rows++
	return w.w.Write([]string{
		row.RegistrationID.String(),
		row.FirstName,
		row.LastName,
		row.Email,
		row.Company,
		row.TicketName,
		row.Status,
		row.PaymentStatus,
		formatMinor(row.Amount),
		row.Currency,
		row.CreatedAt.UTC().Format(time.RFC3339),
		checkedIn,
	})
}

// Flush flushes buffered rows and reports any write error
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// Rows returns the number of rows written, header excluded
func (w *Writer) Rows() int {
	return w.rows
}

// formatMinor renders minor units with two decimals
func formatMinor(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount/100, 10) + "." + leftPad(strconv.FormatInt(amount%100, 10))
	if neg {
		return "-" + s
	}
	return s
}

func leftPad(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
