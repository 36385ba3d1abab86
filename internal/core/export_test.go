package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestWriteRecord(t *testing.T) {
	var buf bytes.Buffer
	WriteRecord(&buf, []string{"plain", `say "hi"`, "a,b", ""})
	WriteRecord(&buf, []string{"two\nlines"})

	want := "\"plain\",\"say \"\"hi\"\"\",\"a,b\",\"\"\r\n\"two\nlines\"\r\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteRecord() = %q, want %q", got, want)
	}
}

func TestRenderNewMembers(t *testing.T) {
	rows := []ClassifiedRow{newRow(2, "Ann"), existingRow(3, "PRF000001")}
	rows[0].New.Note = `VIP, "gold"`

	got := string(RenderNewMembers(rows))
	want := "\"Name\",\"Email\",\"Country\",\"Total Amount\",\"Currency\",\"Month\",\"SupportRegion\",\"Note\"\r\n" +
		"\"Ann\",\"a@example.com\",\"MM\",\"10.00\",\"USD\",\"1\",\"\",\"VIP, \"\"gold\"\"\"\r\n"
	if got != want {
		t.Errorf("RenderNewMembers() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderExistingMembers(t *testing.T) {
	rows := []ClassifiedRow{existingRow(3, "PRF000001"), newRow(2, "Ann")}

	got := string(RenderExistingMembers(rows))
	want := "\"PRF Card No\",\"TotalAmount\",\"Currency\",\"Month\",\"SupportRegion\",\"Note\"\r\n" +
		"\"PRF000001\",\"10.00\",\"USD\",\"1\",\"\",\"\"\r\n"
	if got != want {
		t.Errorf("RenderExistingMembers() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderReport(t *testing.T) {
	got := string(RenderReport([]Message{
		{Line: 0, Code: CodeSequenceOverflow, Text: "too many"},
		{Line: 4, Code: CodeInvalidEmail, Text: `invalid email "x"`},
	}))
	want := "\"Line\",\"Code\",\"Message\"\r\n" +
		"\"\",\"ERR_SEQUENCE_OVERFLOW\",\"too many\"\r\n" +
		"\"4\",\"ERR_INVALID_EMAIL\",\"invalid email \"\"x\"\"\"\r\n"
	if got != want {
		t.Errorf("RenderReport() =\n%q\nwant\n%q", got, want)
	}

	if empty := string(RenderReport(nil)); empty != "\"Line\",\"Code\",\"Message\"\r\n" {
		t.Errorf("RenderReport(nil) = %q, want header only", empty)
	}
}

func TestRenderManifest(t *testing.T) {
	m := Manifest{
		JobID:             "job-1",
		DateUTC:           "2024-03-09",
		StartSeq:          "001",
		NewFileNames:      []string{"001_prf_bulk_import_20240309.csv"},
		ExistingFileNames: []string{},
		Counts:            RunCounts{TotalRows: 1, ValidRows: 1, NewMemberCount: 1},
		GeneratedAt:       time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
	}

	data, err := RenderManifest(m)
	if err != nil {
		t.Fatalf("RenderManifest() error = %v", err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("manifest should end with a newline")
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	for _, key := range []string{"jobId", "dateUTC", "startSeq", "sequenceRangeStart", "newFileNames", "existingFileNames", "counts", "generatedAt"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("manifest missing key %q", key)
		}
	}
}

func TestRenderTemplate(t *testing.T) {
	got := string(RenderTemplate())
	if !strings.HasPrefix(got, "\"Card ID\",\"Name\",\"Email\"") || !strings.HasSuffix(got, "\"Campaign\"\r\n") {
		t.Errorf("RenderTemplate() = %q", got)
	}

	header, rows, err := DecodeCSV(strings.NewReader(got), DecodeOptions{})
	if err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if len(rows) != 0 || !ValidateHeader(header).OK() {
		t.Errorf("template header rejected: %q", header)
	}
}
