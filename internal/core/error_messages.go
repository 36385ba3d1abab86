package core

// # Error Codes Reference
//
// Environment and transport failures (anything that is not a per-row or
// per-header finding in the error report) are mapped to short user messages
// with a support code. Row findings keep their ERR_*/WARN_* codes.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the 25 MB upload limit
//	          Patterns: "file too large"
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Patterns: "invalid csv"
//	FILE003 - No file: No file was selected
//	          Patterns: "no file provided"
//	FILE004 - Empty file: The uploaded file has no header row
//	          Patterns: "empty file"
//	FILE005 - Row limit: File has more than 50,000 data rows
//	          Patterns: "row limit"
//	FILE006 - Invalid workbook: File is not a readable Excel workbook
//	          Patterns: "invalid xls" (covers .xlsx too)
//
// # Sequence Errors (SEQ001-SEQ099)
//
//	SEQ001 - Invalid start sequence: start_seq is not a digit string
//	         Patterns: "invalid start sequence"
//	SEQ002 - Sequence overflow: Naming would run past the largest sequence
//	         Patterns: "sequence number overflow"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Too many runs in progress
//	         Patterns: "too many runs"
//	RUN002 - Run busy: The pipeline is already running
//	         Patterns: "pipeline is not idle"
//	RUN003 - Run reset: The run was reset before it finished
//	         Patterns: "run was reset"
//	RUN004 - Request cancelled
//	         Patterns: "context canceled"
//	RUN005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - An unexpected error occurred. Check the server logs.
//
// Patterns are matched case-insensitively with strings.Contains, first match
// wins.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: specific patterns before general ones.
var errorPatterns = []errorPattern{
	// File
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the 25 MB upload limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Export the sheet as comma-separated UTF-8 and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Download the template and add a header row",
			Code:    "FILE004",
		},
	},
	{
		pattern: "row limit",
		msg: UserMessage{
			Message: "File has more than 50,000 data rows",
			Action:  "Split the file into smaller files",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid xls",
		msg: UserMessage{
			Message: "File is not a readable Excel workbook",
			Action:  "Save the workbook again in Excel or export it as CSV",
			Code:    "FILE006",
		},
	},

	// Sequence
	{
		pattern: "invalid start sequence",
		msg: UserMessage{
			Message: "Start sequence must contain only digits",
			Action:  "Enter a start sequence such as 001",
			Code:    "SEQ001",
		},
	},
	{
		pattern: "sequence number overflow",
		msg: UserMessage{
			Message: "Start sequence is too large for this many files",
			Action:  "Use a smaller start sequence",
			Code:    "SEQ002",
		},
	},

	// Run
	{
		pattern: "too many runs",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "pipeline is not idle",
		msg: UserMessage{
			Message: "A conversion is already running",
			Action:  "Wait for it to finish or reset it",
			Code:    "RUN002",
		},
	},
	{
		pattern: "run was reset",
		msg: UserMessage{
			Message: "The conversion was reset before it finished",
			Action:  "Start a new conversion when ready",
			Code:    "RUN003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "RUN005",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches. Support staff should
// check the server logs for the original error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unknown
// errors map to ERR000.
//
//	msg := MapError(fmt.Errorf("decode: %w", ErrInputTooLarge))
//	// msg.Code == "FILE001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
