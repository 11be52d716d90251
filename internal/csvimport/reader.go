package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("csv file is empty")

// Reader yields validated rows from a spreadsheet export. Rows are numbered from 1
// starting after the header.
type Reader struct {
	csv      *csv.Reader
	header   Header
	policy   Policy
	validate *validator.Validate
	row      int
}

// NewReader consumes the header row of r.
func NewReader(r io.Reader, policy Policy, validate *validator.Validate) (*Reader, error) {
	if validate == nil {
		validate = validator.New()
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	record, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	return &Reader{csv: cr, header: ParseHeader(record), policy: policy, validate: validate}, nil
}

// Header returns the resolved column index.
func (r *Reader) Header() Header {
	return r.header
}

// Policy returns the default substitution policy in effect.
func (r *Reader) Policy() Policy {
	return r.policy
}

// Next returns the next row. A malformed row yields a *RowError and reading may
// continue; io.EOF marks the end of input.
func (r *Reader) Next() (Row, error) {
	record, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, io.EOF
	}
	r.row++
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return Row{}, rowErrorf(r.row, "unreadable row: %v", parseErr.Err)
		}
		return Row{}, fmt.Errorf("read csv row %d: %w", r.row, err)
	}
	return extract(r.header, r.row, record, r.policy, r.validate)
}
