package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrRowLimit is returned once the input has more than the allowed
	// number of data rows.
	ErrRowLimit = errors.New("row limit exceeded")
)

// DecodeOptions bounds DecodeCSV. Zero values use MaxRows and MaxInputBytes.
type DecodeOptions struct {
	MaxRows  int
	MaxBytes int64
}

func (o DecodeOptions) withDefaults() DecodeOptions {
	if o.MaxRows <= 0 {
		o.MaxRows = MaxRows
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = MaxInputBytes
	}
	return o
}

// DecodeCSV reads a header row and the data rows that follow it. Records
// whose cells are all blank are skipped. Row arity is not enforced here;
// the classifier reports mismatches per row.
func DecodeCSV(r io.Reader, opts DecodeOptions) ([]string, []RawRow, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(WrapForDecoding(r, opts.MaxBytes))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header []string
	for header == nil {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrEmptyFile
		}
		if err != nil {
			return nil, nil, decodeError(err)
		}
		if !isEmptyRow(rec) {
			header = rec
		}
	}

	var rows []RawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, decodeError(err)
		}
		if isEmptyRow(rec) {
			continue
		}
		if len(rows) >= opts.MaxRows {
			return nil, nil, fmt.Errorf("%w: more than %d data rows", ErrRowLimit, opts.MaxRows)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, RawRow{Line: line, Cells: rec})
	}

	return header, rows, nil
}

func decodeError(err error) error {
	if errors.Is(err, ErrInputTooLarge) {
		return err
	}
	return fmt.Errorf("invalid csv: %w", err)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
