package core

// codes.go is the closed catalog of message codes emitted by a run.
//
// Codes are namespaced by severity: ERR_* codes block a row (or the whole
// run), WARN_* codes never block. The default text is what lands in the
// error/warning report when a more specific message is not available.
//
// Run-level errors:
//
//	ERR_MISSING_HEADERS    one or more required columns are absent
//	ERR_DUPLICATE_HEADERS  a required column appears more than once
//	ERR_EMPTY_FILE         no header row could be read
//	ERR_DECODE             the file is not readable CSV
//	ERR_FILE_TOO_LARGE     input exceeds MaxInputBytes
//	ERR_ROW_LIMIT          input exceeds MaxRows data rows
//	ERR_INVALID_START_SEQ  starting sequence is not a digit string
//	ERR_SEQUENCE_OVERFLOW  file numbering would overflow
//	ERR_PACKAGING          the archive could not be produced
//	ERR_CANCELLED          the run was cancelled before it finished
//
// Row-level errors:
//
//	ERR_COLUMN_COUNT       row arity differs from the header
//	ERR_INVALID_EMAIL      email is not local@domain.tld
//	ERR_INVALID_AMOUNT     amount is not a positive number with <= 2 decimals
//	ERR_INVALID_CURRENCY   currency is not three letters
//	ERR_INVALID_MONTH      month is not 1-12
//	ERR_INVALID_DATE       payment date is not a real YYYY-MM-DD date
//	ERR_INVALID_CARD_ID    card id is not a digit string of allowed width
//	ERR_EMAIL_REQUIRED     new member row without an email
//
// Warnings:
//
//	WARN_EXTRA_HEADERS     unrecognised columns were ignored
//	WARN_HEADERS_REORDERED required columns are not in template order
//	WARN_UNMAPPED_COUNTRY  country fell back to the sentinel code
//	WARN_DUPLICATE_ROW     an exact duplicate row was dropped

import (
	"slices"
	"strings"
)

// Code is a machine-readable message identifier.
type Code string

const (
	CodeMissingHeaders   Code = "ERR_MISSING_HEADERS"
	CodeDuplicateHeaders Code = "ERR_DUPLICATE_HEADERS"
	CodeEmptyFile        Code = "ERR_EMPTY_FILE"
	CodeDecode           Code = "ERR_DECODE"
	CodeFileTooLarge     Code = "ERR_FILE_TOO_LARGE"
	CodeRowLimit         Code = "ERR_ROW_LIMIT"
	CodeInvalidStartSeq  Code = "ERR_INVALID_START_SEQ"
	CodeSequenceOverflow Code = "ERR_SEQUENCE_OVERFLOW"
	CodePackaging        Code = "ERR_PACKAGING"
	CodeCancelled        Code = "ERR_CANCELLED"

	CodeColumnCount     Code = "ERR_COLUMN_COUNT"
	CodeInvalidEmail    Code = "ERR_INVALID_EMAIL"
	CodeInvalidAmount   Code = "ERR_INVALID_AMOUNT"
	CodeInvalidCurrency Code = "ERR_INVALID_CURRENCY"
	CodeInvalidMonth    Code = "ERR_INVALID_MONTH"
	CodeInvalidDate     Code = "ERR_INVALID_DATE"
	CodeInvalidCardID   Code = "ERR_INVALID_CARD_ID"
	CodeEmailRequired   Code = "ERR_EMAIL_REQUIRED"

	CodeExtraHeaders     Code = "WARN_EXTRA_HEADERS"
	CodeHeadersReordered Code = "WARN_HEADERS_REORDERED"
	CodeUnmappedCountry  Code = "WARN_UNMAPPED_COUNTRY"
	CodeDuplicateRow     Code = "WARN_DUPLICATE_ROW"
)

const (
	errorPrefix   = "ERR_"
	warningPrefix = "WARN_"
)

var codeText = map[Code]string{
	CodeMissingHeaders:   "Required columns are missing",
	CodeDuplicateHeaders: "A required column appears more than once",
	CodeEmptyFile:        "The file has no header row",
	CodeDecode:           "The file could not be read as CSV",
	CodeFileTooLarge:     "The file exceeds the maximum size",
	CodeRowLimit:         "The file exceeds the maximum number of rows",
	CodeInvalidStartSeq:  "Starting sequence must be a non-negative whole number",
	CodeSequenceOverflow: "File sequence numbers would overflow",
	CodePackaging:        "The output archive could not be created",
	CodeCancelled:        "The run was cancelled",

	CodeColumnCount:     "Row has the wrong number of columns",
	CodeInvalidEmail:    "Email address is not valid",
	CodeInvalidAmount:   "Total amount must be a positive number with at most 2 decimals",
	CodeInvalidCurrency: "Currency must be a 3-letter code",
	CodeInvalidMonth:    "Month must be between 1 and 12",
	CodeInvalidDate:     "Payment date must be a valid YYYY-MM-DD date",
	CodeInvalidCardID:   "Card ID must contain digits only",
	CodeEmailRequired:   "Email is required for new members",

	CodeExtraHeaders:     "Unrecognised columns were ignored",
	CodeHeadersReordered: "Columns are not in template order",
	CodeUnmappedCountry:  "Country could not be mapped",
	CodeDuplicateRow:     "Duplicate row removed",
}

// IsError reports whether c blocks a row or run.
func (c Code) IsError() bool { return strings.HasPrefix(string(c), errorPrefix) }

// IsWarning reports whether c is informational only.
func (c Code) IsWarning() bool { return strings.HasPrefix(string(c), warningPrefix) }

// Text returns the catalog's default message for c.
func (c Code) Text() string {
	if t, ok := codeText[c]; ok {
		return t
	}
	return string(c)
}

// Codes returns every code in the catalog, sorted.
func Codes() []Code {
	out := make([]Code, 0, len(codeText))
	for c := range codeText {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
