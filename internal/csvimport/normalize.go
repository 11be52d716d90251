package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

// Summary counts what Normalize did with its input.
type Summary struct {
	Written  int
	Errors   []string
	Warnings []string
}

// Normalize rewrites a raw spreadsheet into the Columns layout: headers resolved, numbers
// cleaned up, status and stage mapped to the vocabulary. Cells that would fall back to a
// default stay placeholders. Rejected rows are left out and listed in the summary.
func Normalize(in io.Reader, out io.Writer, policy Policy, validate *validator.Validate) (Summary, error) {
	var summary Summary

	reader, err := NewReader(in, policy, validate)
	if err != nil {
		return summary, err
	}

	w := csv.NewWriter(out)
	if err := w.Write(Columns); err != nil {
		return summary, fmt.Errorf("write header: %w", err)
	}

	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			summary.Errors = append(summary.Errors, rowErr.Error())
			continue
		}
		if err != nil {
			return summary, err
		}
		if err := w.Write(row.Record()); err != nil {
			return summary, fmt.Errorf("write row %d: %w", row.Number, err)
		}
		summary.Written++
		summary.Warnings = append(summary.Warnings, row.Warnings...)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return summary, fmt.Errorf("flush csv: %w", err)
	}
	return summary, nil
}
