package core

// naming.go assigns output file names. A single counter runs across both
// categories: new member files are numbered first, then existing member
// files, so no two files of a run ever share a sequence number.

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidStartSeq is returned for a starting sequence that is not a
	// non-empty digit string.
	ErrInvalidStartSeq = errors.New("invalid start sequence")

	// ErrSequenceOverflow is returned when numbering would exceed the
	// largest representable sequence.
	ErrSequenceOverflow = errors.New("sequence number overflow")
)

// MaxSequence is the largest sequence number a file can carry.
const MaxSequence = math.MaxInt64

const dateStampLayout = "20060102"

// StartSeq is a parsed starting sequence. Width is the digit count of the
// seed as typed, which becomes the minimum zero-padded width.
type StartSeq struct {
	Value int64
	Width int
}

func (s StartSeq) String() string {
	return pad(s.Value, s.Width)
}

// ParseStartSeq parses a seed such as "001".
func ParseStartSeq(s string) (StartSeq, error) {
	s = strings.TrimSpace(s)
	if !IsDigits(s) {
		return StartSeq{}, fmt.Errorf("%w: %q", ErrInvalidStartSeq, s)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return StartSeq{}, fmt.Errorf("%w: %q: %w", ErrSequenceOverflow, s, err)
	}
	return StartSeq{Value: v, Width: len(s)}, nil
}

// NameAssignment is the result of AssignNames.
type NameAssignment struct {
	New      []NamedFile
	Existing []NamedFile
	// Next is the first sequence number not used by this run. Exhausted is
	// set instead when the run used MaxSequence itself.
	Next      int64
	Exhausted bool
	Width     int
}

// NewNames returns the new member file names in order.
func (a NameAssignment) NewNames() []string { return fileNames(a.New) }

// ExistingNames returns the existing member file names in order.
func (a NameAssignment) ExistingNames() []string { return fileNames(a.Existing) }

// Range returns the first and last sequence used, formatted like the file
// names. Both are empty when no files were named.
func (a NameAssignment) Range() (first, last string) {
	all := append(append([]NamedFile(nil), a.New...), a.Existing...)
	if len(all) == 0 {
		return "", ""
	}
	return pad(all[0].Sequence, a.Width), pad(all[len(all)-1].Sequence, a.Width)
}

// NewMemberFileName and ExistingMemberFileName build the two name shapes.
func NewMemberFileName(seq string, date time.Time) string {
	return fmt.Sprintf("%s_prf_bulk_import_%s.csv", seq, date.UTC().Format(dateStampLayout))
}

func ExistingMemberFileName(seq string, date time.Time) string {
	return fmt.Sprintf("%s_extension_prf_bulk_import_%s.csv", seq, date.UTC().Format(dateStampLayout))
}

// AssignNames numbers newCount new member files followed by existingCount
// existing member files, starting at start. All names share one zero-padded
// width: the larger of the seed's width and the digit count of the last
// sequence used. RowCount is left for the caller to fill.
func AssignNames(newCount, existingCount int, start StartSeq, date time.Time) (NameAssignment, error) {
	if newCount < 0 || existingCount < 0 {
		return NameAssignment{}, fmt.Errorf("negative chunk count: new=%d existing=%d", newCount, existingCount)
	}
	if start.Value < 0 {
		return NameAssignment{}, fmt.Errorf("%w: %d", ErrInvalidStartSeq, start.Value)
	}

	total := int64(newCount) + int64(existingCount)
	width := max(start.Width, 1)
	if total == 0 {
		return NameAssignment{Next: start.Value, Width: width}, nil
	}
	if start.Value > MaxSequence-(total-1) {
		return NameAssignment{}, fmt.Errorf("%w: %d files from %d", ErrSequenceOverflow, total, start.Value)
	}
	last := start.Value + total - 1
	width = max(width, len(strconv.FormatInt(last, 10)))

	a := NameAssignment{
		New:      make([]NamedFile, 0, newCount),
		Existing: make([]NamedFile, 0, existingCount),
		Width:    width,
	}

	for i := range newCount {
		seq := start.Value + int64(i)
		a.New = append(a.New, NamedFile{
			FileName: NewMemberFileName(pad(seq, width), date),
			Category: CategoryNew,
			Sequence: seq,
		})
	}
	for i := range existingCount {
		seq := start.Value + int64(newCount) + int64(i)
		a.Existing = append(a.Existing, NamedFile{
			FileName: ExistingMemberFileName(pad(seq, width), date),
			Category: CategoryExisting,
			Sequence: seq,
		})
	}

	if last == MaxSequence {
		a.Exhausted = true
	} else {
		a.Next = last + 1
	}
	return a, nil
}

func pad(v int64, width int) string {
	s := strconv.FormatInt(v, 10)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func fileNames(files []NamedFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.FileName
	}
	return names
}
