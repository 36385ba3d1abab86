package core

// validators.go holds the per-field predicates and normalizers used by the
// row classifier. Every function here is pure and safe to call from many
// goroutines at once.

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// CardIDPrefix and CardIDWidth define the PRF card number format: the prefix
// followed by the card digits left-padded with zeros to CardIDWidth.
const (
	CardIDPrefix = "PRF"
	CardIDWidth  = 6
)

// maxEmailLength is the length at which an address is rejected before the
// regex ever runs.
const maxEmailLength = 255

var (
	emailRegex    = regexp.MustCompile(`(?i)^[^\s@]+@[^\s@]+\.[a-z]{2,}$`)
	amountRegex   = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	currencyRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)
	digitsRegex   = regexp.MustCompile(`^\d+$`)
)

// ErrInvalidCardID is returned by BuildCardID for input that cannot become
// a card number.
var ErrInvalidCardID = errors.New("invalid card id")

// CleanCell trims whitespace and unwraps the Excel text-formula form ="...".
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// IsValidEmail reports whether s has the shape local@domain.tld.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) >= maxEmailLength {
		return false
	}
	return emailRegex.MatchString(s)
}

// IsValidAmount reports whether s is a positive decimal with at most two
// fraction digits. Signs, exponents and thousands separators are rejected.
func IsValidAmount(s string) bool {
	_, ok := NormalizeAmount(s)
	return ok
}

// NormalizeAmount returns s with exactly two fraction digits ("10.5" becomes
// "10.50").
func NormalizeAmount(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !amountRegex.MatchString(s) {
		return "", false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return "", false
	}
	return d.StringFixed(2), true
}

// IsValidCurrency reports whether s is three ASCII letters. There is no
// lookup against real ISO 4217 codes.
func IsValidCurrency(s string) bool {
	return currencyRegex.MatchString(strings.TrimSpace(s))
}

// NormalizeCurrency upper-cases a valid currency code.
func NormalizeCurrency(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !currencyRegex.MatchString(s) {
		return "", false
	}
	return strings.ToUpper(s), true
}

// IsValidISODate reports whether s is a real calendar date in strict
// YYYY-MM-DD form.
func IsValidISODate(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != len(time.DateOnly) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// NormalizeMonth parses a month number, tolerating surrounding whitespace
// and leading zeros. Valid months are 1 through 12.
func NormalizeMonth(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !digitsRegex.MatchString(s) {
		return 0, false
	}
	s = strings.TrimLeft(s, "0")
	if s == "" || len(s) > 2 {
		return 0, false
	}
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// IsValidMonth reports whether NormalizeMonth accepts s.
func IsValidMonth(s string) bool {
	_, ok := NormalizeMonth(s)
	return ok
}

// NormalizeHeaderName lower-cases h and removes whitespace and underscores,
// so "Card ID", "card_id" and "CardID" compare equal.
func NormalizeHeaderName(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		if unicode.IsSpace(r) || r == '_' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	return digitsRegex.MatchString(s)
}

// BuildCardID formats raw card digits as a fixed-width PRF card number.
func BuildCardID(digits string) (string, error) {
	digits = strings.TrimSpace(digits)
	if !IsDigits(digits) {
		return "", fmt.Errorf("%w: %q is not a digit string", ErrInvalidCardID, digits)
	}
	if len(digits) > CardIDWidth {
		return "", fmt.Errorf("%w: %q has more than %d digits", ErrInvalidCardID, digits, CardIDWidth)
	}
	return CardIDPrefix + strings.Repeat("0", CardIDWidth-len(digits)) + digits, nil
}
