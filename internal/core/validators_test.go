package core

import (
	"errors"
	"strings"
	"testing"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{`="00123"`, "00123"},
		{`=" 42 "`, "42"},
		{`="`, `="`},
		{"", ""},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ann@example.com", true},
		{"A.B+tag@sub.example.org", true},
		{" ann@example.com ", true},
		{"ann@example", false},
		{"ann example@x.com", false},
		{"@example.com", false},
		{"ann@@example.com", false},
		{"ann@example.c", false},
		{"ann@example.c0m", false},
		{"", false},
		{strings.Repeat("a", 250) + "@x.com", false},
	}

	for _, tt := range tests {
		if got := IsValidEmail(tt.in); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"10", "10.00", true},
		{"10.5", "10.50", true},
		{"0.01", "0.01", true},
		{" 7.25 ", "7.25", true},
		{"0", "", false},
		{"0.00", "", false},
		{"-5", "", false},
		{"+5", "", false},
		{"1.234", "", false},
		{"1,000", "", false},
		{"1e3", "", false},
		{".5", "", false},
		{"5.", "", false},
		{"$5", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeAmount(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeAmount(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
		if IsValidAmount(tt.in) != tt.wantOK {
			t.Errorf("IsValidAmount(%q) = %v, want %v", tt.in, !tt.wantOK, tt.wantOK)
		}
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"USD", "USD", true},
		{"eur", "EUR", true},
		{" mmk ", "MMK", true},
		{"US", "", false},
		{"USDT", "", false},
		{"U$D", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeCurrency(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeCurrency(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
		if IsValidCurrency(tt.in) != tt.wantOK {
			t.Errorf("IsValidCurrency(%q) = %v, want %v", tt.in, !tt.wantOK, tt.wantOK)
		}
	}
}

func TestIsValidISODate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-01-15", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-13-01", false},
		{"2024-1-5", false},
		{"15/01/2024", false},
		{"2024-01-15T00:00:00Z", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidISODate(tt.in); got != tt.want {
			t.Errorf("IsValidISODate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{"01", 1, true},
		{"12", 12, true},
		{" 7 ", 7, true},
		{"0", 0, false},
		{"13", 0, false},
		{"-1", 0, false},
		{"1.0", 0, false},
		{"Jan", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := NormalizeMonth(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeMonth(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
		if IsValidMonth(tt.in) != tt.wantOK {
			t.Errorf("IsValidMonth(%q) = %v, want %v", tt.in, !tt.wantOK, tt.wantOK)
		}
	}
}

func TestNormalizeHeaderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Card ID", "cardid"},
		{"card_id", "cardid"},
		{"  CARDID ", "cardid"},
		{"\ufeffCard ID", "cardid"},
		{"Total\tAmount", "totalamount"},
	}

	for _, tt := range tests {
		if got := NormalizeHeaderName(tt.in); got != tt.want {
			t.Errorf("NormalizeHeaderName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildCardID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"123456", "PRF123456", false},
		{"42", "PRF000042", false},
		{"0", "PRF000000", false},
		{" 7 ", "PRF000007", false},
		{"1234567", "", true},
		{"12a", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := BuildCardID(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCardID) {
				t.Errorf("BuildCardID(%q) error = %v, want ErrInvalidCardID", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("BuildCardID(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("BuildCardID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsDigits(t *testing.T) {
	for in, want := range map[string]bool{"0": true, "0042": true, "": false, "4 2": false, "\u0664\u0662": false, "-1": false} {
		if got := IsDigits(in); got != want {
			t.Errorf("IsDigits(%q) = %v, want %v", in, got, want)
		}
	}
}
