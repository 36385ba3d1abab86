package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into Sheet1 starting at the given 1-based row
// numbers and returns the encoded workbook.
func buildWorkbook(t *testing.T, rows map[int][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for n, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &values); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeXLSX(t *testing.T) {
	data := buildWorkbook(t, map[int][]any{
		2: {"a", "b", "c"},
		3: {"1", "2", "3"},
		5: {"x"},
	})

	header, rows, err := DecodeXLSX(bytes.NewReader(data), DecodeOptions{})
	if err != nil {
		t.Fatalf("DecodeXLSX() error = %v", err)
	}
	if strings.Join(header, "|") != "a|b|c" {
		t.Errorf("header = %q", header)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Line != 3 || rows[1].Line != 5 {
		t.Errorf("lines = %d, %d, want 3, 5", rows[0].Line, rows[1].Line)
	}
	if len(rows[1].Cells) != 3 {
		t.Errorf("short row has %d cells, want it padded to 3", len(rows[1].Cells))
	}
}

func TestDecodeXLSX_Errors(t *testing.T) {
	headerOnly := buildWorkbook(t, map[int][]any{1: {"h"}})
	manyRows := buildWorkbook(t, map[int][]any{1: {"h"}, 2: {"1"}, 3: {"2"}})
	blank := buildWorkbook(t, map[int][]any{})

	tests := []struct {
		name string
		data []byte
		opts DecodeOptions
		want error
	}{
		{"empty input", nil, DecodeOptions{}, ErrEmptyFile},
		{"blank sheet", blank, DecodeOptions{}, ErrEmptyFile},
		{"row limit", manyRows, DecodeOptions{MaxRows: 1}, ErrRowLimit},
		{"too large", headerOnly, DecodeOptions{MaxBytes: 64}, ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeXLSX(bytes.NewReader(tt.data), tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeXLSX() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeXLSX_NotAWorkbook(t *testing.T) {
	_, _, err := DecodeXLSX(strings.NewReader("a,b\n1,2\n"), DecodeOptions{})
	if err == nil || !strings.Contains(err.Error(), "invalid xlsx") {
		t.Errorf("DecodeXLSX() error = %v, want invalid xlsx", err)
	}
}

func TestDecodeXLS_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  DecodeOptions
		want  error
	}{
		{"empty input", "", DecodeOptions{}, ErrEmptyFile},
		{"too large", strings.Repeat("x", 128), DecodeOptions{MaxBytes: 64}, ErrInputTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeXLS(strings.NewReader(tt.input), tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeXLS() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeXLS_NotAWorkbook(t *testing.T) {
	_, _, err := DecodeXLS(strings.NewReader(strings.Repeat("not a compound file\n", 40)), DecodeOptions{})
	if err == nil || !strings.Contains(err.Error(), "invalid xls") {
		t.Errorf("DecodeXLS() error = %v, want invalid xls", err)
	}
}

func TestSheetRows(t *testing.T) {
	sr := sheetRows{opts: DecodeOptions{MaxRows: 2}}
	for line, cells := range [][]string{{"", " "}, {"h1", "h2", "h3"}, {"a"}, {}, {"b", "c", "d"}} {
		if err := sr.add(line+1, cells); err != nil {
			t.Fatalf("add(%d) error = %v", line+1, err)
		}
	}

	header, rows, err := sr.result()
	if err != nil {
		t.Fatalf("result() error = %v", err)
	}
	if len(header) != 3 || len(rows) != 2 {
		t.Fatalf("result() = %q, %d rows", header, len(rows))
	}
	if rows[0].Line != 3 || len(rows[0].Cells) != 3 || rows[1].Line != 5 {
		t.Errorf("rows = %+v", rows)
	}

	if err := sr.add(6, []string{"x"}); !errors.Is(err, ErrRowLimit) {
		t.Errorf("add past limit error = %v, want ErrRowLimit", err)
	}
}
