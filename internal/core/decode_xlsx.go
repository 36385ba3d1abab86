package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Decoder reads a header and data rows from an upload.
type Decoder func(r io.Reader, opts DecodeOptions) ([]string, []RawRow, error)

// DecoderFor picks a decoder from a file name. Workbooks (.xlsx, .xlsm) are
// read with DecodeXLSX, legacy .xls files with DecodeXLS, and everything
// else is treated as CSV.
func DecoderFor(name string) Decoder {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return DecodeXLSX
	case ".xls":
		return DecodeXLS
	default:
		return DecodeCSV
	}
}

// DecodeXLSX reads the first worksheet of a workbook. Line numbers are
// worksheet row numbers.
func DecodeXLSX(r io.Reader, opts DecodeOptions) ([]string, []RawRow, error) {
	opts = opts.withDefaults()

	data, err := readSheetFile(r, opts, "xlsx")
	if err != nil {
		return nil, nil, err
	}

	xl, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{
		UnzipSizeLimit:    opts.MaxBytes * 8,
		UnzipXMLSizeLimit: opts.MaxBytes * 4,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	if sheet == "" {
		return nil, nil, ErrEmptyFile
	}
	it, err := xl.Rows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer it.Close()

	sr := sheetRows{opts: opts}
	for line := 1; it.Next(); line++ {
		cells, err := it.Columns()
		if err != nil {
			return nil, nil, fmt.Errorf("invalid xlsx: row %d: %w", line, err)
		}
		if err := sr.add(line, cells); err != nil {
			return nil, nil, err
		}
	}
	if err := it.Error(); err != nil {
		return nil, nil, fmt.Errorf("invalid xlsx: %w", err)
	}

	return sr.result()
}

// readSheetFile buffers a spreadsheet upload, which has to be fully in
// memory before it can be opened.
func readSheetFile(r io.Reader, opts DecodeOptions, kind string) ([]byte, error) {
	data, err := io.ReadAll(&SizeLimitReader{R: r, Limit: opts.MaxBytes})
	if err != nil {
		if errors.Is(err, ErrInputTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid %s: %w", kind, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}

// sheetRows collects worksheet rows the way DecodeCSV collects records:
// blank rows are skipped, the first non-blank row is the header and the row
// limit applies to data rows. Spreadsheets drop trailing empty cells, so
// short rows are padded back to the header width.
type sheetRows struct {
	opts   DecodeOptions
	header []string
	rows   []RawRow
}

func (s *sheetRows) add(line int, cells []string) error {
	if isEmptyRow(cells) {
		return nil
	}
	if s.header == nil {
		s.header = cells
		return nil
	}
	if len(s.rows) >= s.opts.MaxRows {
		return fmt.Errorf("%w: more than %d data rows", ErrRowLimit, s.opts.MaxRows)
	}
	if len(cells) < len(s.header) {
		cells = append(cells, make([]string, len(s.header)-len(cells))...)
	}
	s.rows = append(s.rows, RawRow{Line: line, Cells: cells})
	return nil
}

func (s *sheetRows) result() ([]string, []RawRow, error) {
	if s.header == nil {
		return nil, nil, ErrEmptyFile
	}
	return s.header, s.rows, nil
}
