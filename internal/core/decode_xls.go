package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
)

// xlsCharset is used for BIFF5 workbooks that carry no code page of their own.
const xlsCharset = "utf-8"

// DecodeXLS reads the first worksheet of a legacy Excel 97-2003 workbook.
// Line numbers are worksheet row numbers.
func DecodeXLS(r io.Reader, opts DecodeOptions) (header []string, rows []RawRow, err error) {
	opts = opts.withDefaults()

	data, err := readSheetFile(r, opts, "xls")
	if err != nil {
		return nil, nil, err
	}

	// The BIFF parser panics on some truncated files.
	defer func() {
		if p := recover(); p != nil {
			header, rows, err = nil, nil, fmt.Errorf("invalid xls: %v", p)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), xlsCharset)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, nil, ErrEmptyFile
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil, ErrEmptyFile
	}

	sr := sheetRows{opts: opts}
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = strings.TrimRight(row.Col(j), "\x00")
		}
		if err := sr.add(i+1, cells); err != nil {
			return nil, nil, err
		}
	}

	return sr.result()
}
