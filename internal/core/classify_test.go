package core

import (
	"slices"
	"strings"
	"testing"

	"github.com/JonMunkholm/prfbulk/internal/core/tables"
)

// rowFields holds the logical input columns used to build a canonical row.
type rowFields struct {
	CardID, Name, Email, Country, Amount, Currency, Month, Date, Region, Note string
}

func (f rowFields) cells() []string {
	return []string{
		f.CardID, f.Name, f.Email, f.Country, f.Amount, f.Currency, f.Month,
		f.Date, f.Region, f.Note, "Web", "tx-1", "spring",
	}
}

func newMemberFields() rowFields {
	return rowFields{
		Name: "Aung Aung", Email: "aung@example.com", Country: "Myanmar",
		Amount: "10", Currency: "usd", Month: "03", Date: "2024-03-01",
		Region: "Yangon", Note: "first",
	}
}

func existingMemberFields() rowFields {
	return rowFields{
		CardID: "123456", Country: "Wakanda", Amount: "25.5", Currency: "MMK",
		Month: "12", Region: "Mandalay",
	}
}

func TestClassify_NewMember(t *testing.T) {
	c := Classify(RawRow{Line: 2, Cells: newMemberFields().cells()}, CanonicalLayout())

	if c.Row.Kind != KindNewMember || c.Row.New == nil {
		t.Fatalf("Kind = %s, want new (rejection: %+v)", c.Row.Kind, c.Row.Rejected)
	}
	if len(c.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", c.Warnings)
	}
	want := NewMember{
		Name: "Aung Aung", Email: "aung@example.com", CountryCode: "MM",
		TotalAmount: "10.00", Currency: "USD", Month: 3,
		SupportRegion: "Yangon", Note: "first",
	}
	if *c.Row.New != want {
		t.Errorf("New = %+v, want %+v", *c.Row.New, want)
	}
	if c.Row.Line != 2 {
		t.Errorf("Line = %d, want 2", c.Row.Line)
	}
}

func TestClassify_ExistingMember(t *testing.T) {
	c := Classify(RawRow{Line: 5, Cells: existingMemberFields().cells()}, CanonicalLayout())

	if c.Row.Kind != KindExistingMember || c.Row.Existing == nil {
		t.Fatalf("Kind = %s, want existing (rejection: %+v)", c.Row.Kind, c.Row.Rejected)
	}
	want := ExistingMember{
		CardID: "PRF123456", TotalAmount: "25.50", Currency: "MMK", Month: 12,
		SupportRegion: "Mandalay",
	}
	if *c.Row.Existing != want {
		t.Errorf("Existing = %+v, want %+v", *c.Row.Existing, want)
	}
	if len(c.Warnings) != 1 || c.Warnings[0].Code != CodeUnmappedCountry {
		t.Fatalf("warnings = %v, want one %s", c.Warnings, CodeUnmappedCountry)
	}
	if c.Warnings[0].Line != 5 || !strings.Contains(c.Warnings[0].Text, tables.FallbackCountryCode) {
		t.Errorf("warning = %+v", c.Warnings[0])
	}
}

func TestClassify_ShortCardIDPadded(t *testing.T) {
	f := existingMemberFields()
	f.CardID = `="42"`
	f.Country = "MM"

	c := Classify(RawRow{Line: 2, Cells: f.cells()}, CanonicalLayout())
	if c.Row.Existing == nil || c.Row.Existing.CardID != "PRF000042" {
		t.Fatalf("Existing = %+v, want CardID PRF000042", c.Row.Existing)
	}
	if len(c.Warnings) != 0 {
		t.Errorf("warnings = %v, want none for ISO code input", c.Warnings)
	}
}

func TestClassify_NewMemberWithoutName(t *testing.T) {
	f := newMemberFields()
	f.Name = ""

	c := Classify(RawRow{Line: 2, Cells: f.cells()}, CanonicalLayout())
	if c.Row.Kind != KindNewMember || c.Row.New == nil {
		t.Fatalf("Kind = %s, want new (rejection: %+v)", c.Row.Kind, c.Row.Rejected)
	}
	if c.Row.New.Name != "" {
		t.Errorf("Name = %q, want empty", c.Row.New.Name)
	}
}

func TestClassify_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*rowFields)
		want   Code
	}{
		{"bad email", func(f *rowFields) { f.Email = "nope" }, CodeInvalidEmail},
		{"zero amount", func(f *rowFields) { f.Amount = "0" }, CodeInvalidAmount},
		{"three decimals", func(f *rowFields) { f.Amount = "1.005" }, CodeInvalidAmount},
		{"blank amount", func(f *rowFields) { f.Amount = "" }, CodeInvalidAmount},
		{"bad currency", func(f *rowFields) { f.Currency = "US" }, CodeInvalidCurrency},
		{"month 13", func(f *rowFields) { f.Month = "13" }, CodeInvalidMonth},
		{"bad date", func(f *rowFields) { f.Date = "2024-02-30" }, CodeInvalidDate},
		{"card letters", func(f *rowFields) { f.CardID = "AB12" }, CodeInvalidCardID},
		{"card too long", func(f *rowFields) { f.CardID = "1234567" }, CodeInvalidCardID},
		{"no email", func(f *rowFields) { f.Email = "" }, CodeEmailRequired},
		{"email before amount", func(f *rowFields) { f.Email = "x"; f.Amount = "-1" }, CodeInvalidEmail},
		{"amount before month", func(f *rowFields) { f.Amount = "abc"; f.Month = "0" }, CodeInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMemberFields()
			tt.mutate(&f)

			c := Classify(RawRow{Line: 9, Cells: f.cells()}, CanonicalLayout())
			if c.Row.Kind != KindRejected || c.Row.Rejected == nil {
				t.Fatalf("Kind = %s, want rejected", c.Row.Kind)
			}
			if c.Row.Rejected.Code != tt.want {
				t.Errorf("Code = %s, want %s (%s)", c.Row.Rejected.Code, tt.want, c.Row.Rejected.Message)
			}
			if c.Row.Rejected.Line != 9 || c.Row.Rejected.Message == "" {
				t.Errorf("Rejected = %+v", c.Row.Rejected)
			}
			if c.Row.New != nil || c.Row.Existing != nil {
				t.Error("rejected row carries an output payload")
			}
			if len(c.Warnings) != 0 {
				t.Errorf("warnings = %v, want none on a rejected row", c.Warnings)
			}
		})
	}
}

func TestClassify_ExistingMemberNeedsNoNameOrEmail(t *testing.T) {
	f := existingMemberFields()
	f.Name, f.Email = "", ""
	c := Classify(RawRow{Line: 2, Cells: f.cells()}, CanonicalLayout())
	if c.Row.Kind != KindExistingMember {
		t.Errorf("Kind = %s, want existing", c.Row.Kind)
	}
}

func TestClassify_ColumnCount(t *testing.T) {
	cells := newMemberFields().cells()

	for _, row := range [][]string{cells[:5], append(cells, "extra")} {
		c := Classify(RawRow{Line: 3, Cells: row}, CanonicalLayout())
		if c.Row.Rejected == nil || c.Row.Rejected.Code != CodeColumnCount {
			t.Errorf("Classify(%d cells) = %+v, want %s", len(row), c.Row, CodeColumnCount)
		}
	}
}

func TestClassify_ReorderedLayout(t *testing.T) {
	header := canonicalHeader()
	header[0], header[2] = header[2], header[0] // Email first, Card ID third
	res := ValidateHeader(header)
	if !res.OK() {
		t.Fatalf("ValidateHeader() errors = %v", res.Errors)
	}

	cells := newMemberFields().cells()
	cells[0], cells[2] = cells[2], cells[0]

	c := Classify(RawRow{Line: 2, Cells: cells}, res.Layout)
	if c.Row.New == nil || c.Row.New.Email != "aung@example.com" {
		t.Fatalf("New = %+v, want email read from column 0", c.Row.New)
	}
}

func TestRowKindString(t *testing.T) {
	for k, want := range map[RowKind]string{KindNewMember: "new", KindExistingMember: "existing", KindRejected: "rejected"} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}

func FuzzClassify(f *testing.F) {
	const sep = "\x1f"
	f.Add(strings.Join(newMemberFields().cells(), sep), uint8(0))
	f.Add(strings.Join(existingMemberFields().cells(), sep), uint8(3))
	f.Add(strings.Join(make([]string, numColumns), sep), uint8(12))
	f.Add("", uint8(1))
	f.Add("a"+sep+"b", uint8(7))

	f.Fuzz(func(t *testing.T, joined string, rotate uint8) {
		header := canonicalHeader()
		r := int(rotate) % len(header)
		hdr := ValidateHeader(slices.Concat(header[r:], header[:r]))
		if !hdr.OK() {
			t.Fatalf("rotated header rejected: %v", hdr.Errors)
		}

		c := Classify(RawRow{Line: 7, Cells: strings.Split(joined, sep)}, hdr.Layout)

		payloads := 0
		for _, set := range []bool{c.Row.New != nil, c.Row.Existing != nil, c.Row.Rejected != nil} {
			if set {
				payloads++
			}
		}
		if payloads != 1 {
			t.Fatalf("%d payloads set, want exactly 1: %+v", payloads, c.Row)
		}

		switch c.Row.Kind {
		case KindNewMember:
			if c.Row.New == nil {
				t.Fatal("new member row without New payload")
			}
		case KindExistingMember:
			if c.Row.Existing == nil {
				t.Fatal("existing member row without Existing payload")
			}
		case KindRejected:
			if c.Row.Rejected == nil {
				t.Fatal("rejected row without Rejected payload")
			}
			if !c.Row.Rejected.Code.IsError() {
				t.Errorf("rejection code %s is not an error code", c.Row.Rejected.Code)
			}
			if len(c.Warnings) != 0 {
				t.Errorf("rejected row has warnings: %v", c.Warnings)
			}
		default:
			t.Fatalf("unknown kind %v", c.Row.Kind)
		}

		if c.Row.Line != 7 {
			t.Errorf("Line = %d, want 7", c.Row.Line)
		}
		for _, w := range c.Warnings {
			if !w.Code.IsWarning() {
				t.Errorf("warning with code %s", w.Code)
			}
		}
	})
}
