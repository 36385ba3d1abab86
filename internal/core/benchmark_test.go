package core

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

// ============================================================================
// Field Validator Benchmarks
// ============================================================================

// BenchmarkNormalizeAmount runs once per data row.
func BenchmarkNormalizeAmount(b *testing.B) {
	testCases := []string{"10", "10.5", "1234.56", " 99.99 ", "0", "1,000"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			NormalizeAmount(tc)
		}
	}
}

// BenchmarkIsValidEmail benchmarks the email regex, including the length
// guard for oversized input.
func BenchmarkIsValidEmail(b *testing.B) {
	testCases := []string{
		"ann@example.com",
		"first.last+tag@sub.example.org",
		"not-an-email",
		strings.Repeat("a", 300) + "@x.com",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			IsValidEmail(tc)
		}
	}
}

// BenchmarkCleanCell is called for every cell read by the classifier.
func BenchmarkCleanCell(b *testing.B) {
	testCases := []string{"plain", "  padded  ", `="00042"`, ""}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			CleanCell(tc)
		}
	}
}

// ============================================================================
// Classification Benchmarks
// ============================================================================

// BenchmarkClassify_NewMember benchmarks the longest classification path,
// including the country lookup.
func BenchmarkClassify_NewMember(b *testing.B) {
	row := RawRow{Line: 2, Cells: newMemberFields().cells()}
	layout := CanonicalLayout()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Classify(row, layout)
	}
}

// BenchmarkClassify_Rejected benchmarks an early rejection.
func BenchmarkClassify_Rejected(b *testing.B) {
	f := newMemberFields()
	f.Email = "nope"
	row := RawRow{Line: 2, Cells: f.cells()}
	layout := CanonicalLayout()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Classify(row, layout)
	}
}

// BenchmarkDedupe benchmarks fingerprinting a full chunk of distinct rows.
func BenchmarkDedupe(b *testing.B) {
	rows := make([]ClassifiedRow, ChunkSize)
	for i := range rows {
		rows[i] = existingRow(i+2, "PRF"+strconv.Itoa(100000+i))
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Dedupe(rows)
	}
}

// ============================================================================
// Decode and Pipeline Benchmarks
// ============================================================================

// generateTestCSV builds an input of n distinct valid rows, alternating new
// and existing members.
func generateTestCSV(n int) []byte {
	rows := make([]rowFields, n)
	for i := range rows {
		if i%2 == 0 {
			rows[i] = newMemberFields()
		} else {
			rows[i] = existingMemberFields()
			rows[i].CardID = strconv.Itoa(i)
		}
		rows[i].Note = "row " + strconv.Itoa(i)
	}
	return []byte(csvInput(rows...))
}

// BenchmarkDecodeCSV benchmarks the reader chain plus record parsing.
func BenchmarkDecodeCSV(b *testing.B) {
	data := generateTestCSV(1000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		DecodeCSV(bytes.NewReader(data), DecodeOptions{})
	}
}

// BenchmarkPipeline compares sequential and parallel classification over
// the same input.
func BenchmarkPipeline(b *testing.B) {
	data := generateTestCSV(5000)

	for _, workers := range []int{1, 4} {
		b.Run("workers="+strconv.Itoa(workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				p := NewPipeline(Options{Workers: workers})
				if _, err := p.RunCSV(b.Context(), bytes.NewReader(data), "001"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
