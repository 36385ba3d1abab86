package core

// validation.go checks the header row and builds the Layout used to read
// fields out of every data row.
//
// Missing or duplicated required columns fail the whole run. Extra columns
// and a non-template column order are reported as warnings only.

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/prfbulk/internal/core/tables"
)

// Logical column positions within tables.RequiredHeaders.
const (
	colCardID = iota
	colName
	colEmail
	colCountry
	colTotalAmount
	colCurrency
	colMonth
	colPaymentDate
	colSupportRegion
	colNote
	colPlatform
	colTransactionID
	colCampaign
	numColumns
)

// Layout maps each logical column to its position in the input file.
type Layout struct {
	pos   [numColumns]int
	arity int
}

// Arity is the number of cells every data row must have.
func (l Layout) Arity() int { return l.arity }

func (l Layout) cell(row []string, col int) string {
	if p := l.pos[col]; p < len(row) {
		return CleanCell(row[p])
	}
	return ""
}

// CanonicalLayout returns the layout of a file whose header is exactly
// tables.RequiredHeaders.
func CanonicalLayout() Layout {
	var l Layout
	for i := range l.pos {
		l.pos[i] = i
	}
	l.arity = numColumns
	return l
}

// HeaderResult is the outcome of ValidateHeader.
type HeaderResult struct {
	Layout   Layout
	Errors   []Message
	Warnings []Message
}

// OK reports whether the header allows the run to continue.
func (h HeaderResult) OK() bool { return len(h.Errors) == 0 }

// headerLine is the line number reported for header messages.
const headerLine = 1

// ValidateHeader checks that every required column is present exactly once.
func ValidateHeader(header []string) HeaderResult {
	required := make(map[string]int, numColumns)
	for i, h := range tables.RequiredHeaders {
		required[NormalizeHeaderName(h)] = i
	}

	var (
		res     HeaderResult
		found   [numColumns]bool
		order   []int
		extras  []string
		doubled []string
	)

	for pos, raw := range header {
		name := CleanCell(raw)
		col, ok := required[NormalizeHeaderName(name)]
		if !ok {
			if name == "" {
				name = fmt.Sprintf("(blank column %d)", pos+1)
			}
			extras = append(extras, name)
			continue
		}
		if found[col] {
			doubled = append(doubled, tables.RequiredHeaders[col])
			continue
		}
		found[col] = true
		res.Layout.pos[col] = pos
		order = append(order, col)
	}
	res.Layout.arity = len(header)

	var missing []string
	for i, ok := range found {
		if !ok {
			missing = append(missing, tables.RequiredHeaders[i])
		}
	}

	if len(missing) > 0 {
		res.Errors = append(res.Errors, newMessage(headerLine, CodeMissingHeaders,
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))))
	}
	if len(doubled) > 0 {
		res.Errors = append(res.Errors, newMessage(headerLine, CodeDuplicateHeaders,
			fmt.Sprintf("duplicate columns: %s", strings.Join(doubled, ", "))))
	}
	if !res.OK() {
		return res
	}

	if len(extras) > 0 {
		res.Warnings = append(res.Warnings, newMessage(headerLine, CodeExtraHeaders,
			fmt.Sprintf("ignored columns: %s", strings.Join(extras, ", "))))
	}
	for i := 1; i < len(order); i++ {
		if order[i] < order[i-1] {
			res.Warnings = append(res.Warnings, newMessage(headerLine, CodeHeadersReordered, ""))
			break
		}
	}

	return res
}
