package core

import (
	"fmt"
	"time"
)

// ChunkSize is the maximum number of rows written to one output file.
const ChunkSize = 300

// Entry limits checked before any row is classified.
const (
	MaxRows       = 50_000
	MaxInputBytes = 25 << 20
)

// RawRow is one decoded CSV record. Line is the 1-based physical line on
// which the record starts.
type RawRow struct {
	Line  int
	Cells []string
}

// RowKind tags a ClassifiedRow.
type RowKind int

const (
	KindRejected RowKind = iota
	KindNewMember
	KindExistingMember
)

func (k RowKind) String() string {
	switch k {
	case KindNewMember:
		return "new"
	case KindExistingMember:
		return "existing"
	default:
		return "rejected"
	}
}

// NewMember is an output record for a payer without a card.
type NewMember struct {
	Name          string
	Email         string
	CountryCode   string
	TotalAmount   string
	Currency      string
	Month         int
	SupportRegion string
	Note          string
}

// ExistingMember is an output record for a payer with a known card.
type ExistingMember struct {
	CardID        string
	TotalAmount   string
	Currency      string
	Month         int
	SupportRegion string
	Note          string
}

// Rejection explains why a row was excluded.
type Rejection struct {
	Line    int
	Code    Code
	Message string
}

// ClassifiedRow is the outcome for one input row. Exactly one of New,
// Existing or Rejected is set, matching Kind.
type ClassifiedRow struct {
	Kind     RowKind
	Line     int
	New      *NewMember
	Existing *ExistingMember
	Rejected *Rejection
}

// Valid reports whether the row carries an output payload.
func (r ClassifiedRow) Valid() bool {
	return r.Kind == KindNewMember || r.Kind == KindExistingMember
}

// Message is one entry of the error or warning report.
type Message struct {
	Line int    `json:"line"`
	Code Code   `json:"code"`
	Text string `json:"message"`
}

func (m Message) String() string {
	if m.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", m.Line, m.Code, m.Text)
	}
	return fmt.Sprintf("%s: %s", m.Code, m.Text)
}

func newMessage(line int, code Code, text string) Message {
	if text == "" {
		text = code.Text()
	}
	return Message{Line: line, Code: code, Text: text}
}

// RunCounts aggregates a run's outcome.
type RunCounts struct {
	TotalRows           int `json:"totalRows"`
	ValidRows           int `json:"validRows"`
	NewMemberCount      int `json:"newMemberCount"`
	ExistingMemberCount int `json:"existingMemberCount"`
	WarningCount        int `json:"warningCount"`
	ErrorCount          int `json:"errorCount"`
}

// Category identifies an output file family.
type Category string

const (
	CategoryNew      Category = "new"
	CategoryExisting Category = "existing"
)

// NamedFile describes one generated output file.
type NamedFile struct {
	FileName string   `json:"fileName"`
	Category Category `json:"category"`
	Sequence int64    `json:"sequence"`
	RowCount int      `json:"rowCount"`
}

// Manifest is serialized into the bundle as manifest.json.
type Manifest struct {
	JobID              string    `json:"jobId"`
	DateUTC            string    `json:"dateUTC"`
	StartSeq           string    `json:"startSeq"`
	SequenceRangeStart string    `json:"sequenceRangeStart"`
	SequenceRangeEnd   string    `json:"sequenceRangeEnd"`
	NewFileNames       []string  `json:"newFileNames"`
	ExistingFileNames  []string  `json:"existingFileNames"`
	Counts             RunCounts `json:"counts"`
	GeneratedAt        time.Time `json:"generatedAt"`
}
