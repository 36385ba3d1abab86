package core

// export.go renders run output into named text buffers: the member files,
// the error and warning reports, and manifest.json.
//
// encoding/csv only quotes fields that need it. The import target expects
// every field quoted and CRLF line endings, so records are written by hand.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/prfbulk/internal/core/tables"
)

// Report file names inside a bundle.
const (
	ErrorReportName   = "errors.csv"
	WarningReportName = "warnings.csv"
	ManifestName      = "manifest.json"
)

// BundleFile is one named buffer handed to the packaging sink.
type BundleFile struct {
	Name    string
	Content []byte
}

// Bundle is everything a packaging sink needs to build the artifact.
type Bundle struct {
	Files    []BundleFile
	Manifest Manifest
}

// WriteRecord appends one quoted, CRLF-terminated record to buf.
func WriteRecord(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}

// RenderNewMembers renders one new member file.
func RenderNewMembers(rows []ClassifiedRow) []byte {
	var buf bytes.Buffer
	WriteRecord(&buf, tables.NewMemberColumns)
	for _, r := range rows {
		n := r.New
		if n == nil {
			continue
		}
		WriteRecord(&buf, []string{
			n.Name, n.Email, n.CountryCode, n.TotalAmount, n.Currency,
			strconv.Itoa(n.Month), n.SupportRegion, n.Note,
		})
	}
	return buf.Bytes()
}

// RenderExistingMembers renders one existing member file.
func RenderExistingMembers(rows []ClassifiedRow) []byte {
	var buf bytes.Buffer
	WriteRecord(&buf, tables.ExistingMemberColumns)
	for _, r := range rows {
		e := r.Existing
		if e == nil {
			continue
		}
		WriteRecord(&buf, []string{
			e.CardID, e.TotalAmount, e.Currency,
			strconv.Itoa(e.Month), e.SupportRegion, e.Note,
		})
	}
	return buf.Bytes()
}

// RenderReport renders an error or warning report.
func RenderReport(msgs []Message) []byte {
	var buf bytes.Buffer
	WriteRecord(&buf, tables.ReportColumns)
	for _, m := range msgs {
		line := ""
		if m.Line > 0 {
			line = strconv.Itoa(m.Line)
		}
		WriteRecord(&buf, []string{line, string(m.Code), m.Text})
	}
	return buf.Bytes()
}

// RenderManifest renders manifest.json.
func RenderManifest(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderTemplate renders a header-only input template.
func RenderTemplate() []byte {
	var buf bytes.Buffer
	WriteRecord(&buf, tables.RequiredHeaders)
	return buf.Bytes()
}
