package tables

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// FallbackCountryCode is returned by MapCountry when a name is not in the table.
const FallbackCountryCode = "ZZ"

//go:embed countries.yaml
var countriesYAML []byte

type countryFile struct {
	Countries map[string]string `yaml:"countries"`
}

var (
	countriesOnce sync.Once
	countryByName map[string]string
	countryCodes  map[string]bool
	countriesErr  error
)

// loadCountries parses the embedded table once. Keys are stored folded so
// lookups only have to fold the input.
func loadCountries() {
	var f countryFile
	if err := yaml.Unmarshal(countriesYAML, &f); err != nil {
		countriesErr = fmt.Errorf("parse countries.yaml: %w", err)
		return
	}

	countryByName = make(map[string]string, len(f.Countries))
	countryCodes = make(map[string]bool, len(f.Countries))
	for name, code := range f.Countries {
		code = strings.ToUpper(strings.TrimSpace(code))
		if len(code) != 2 {
			countriesErr = fmt.Errorf("countries.yaml: %q has invalid code %q", name, code)
			return
		}
		countryByName[FoldCountryName(name)] = code
		countryCodes[code] = true
	}
}

func countries() (map[string]string, map[string]bool) {
	countriesOnce.Do(loadCountries)
	if countriesErr != nil {
		// The table is embedded at build time; a parse failure is a broken build.
		panic(countriesErr)
	}
	return countryByName, countryCodes
}

// MapCountry resolves a country name (or an ISO-2 code) to its ISO-2 code.
// It never fails: unknown input yields FallbackCountryCode and ok=false.
func MapCountry(name string) (code string, ok bool) {
	byName, codes := countries()

	key := FoldCountryName(name)
	if key == "" {
		return FallbackCountryCode, false
	}
	if code, found := byName[key]; found {
		return code, true
	}
	if upper := strings.ToUpper(key); len(upper) == 2 && codes[upper] {
		return upper, true
	}
	return FallbackCountryCode, false
}

// CountryCount returns the number of names in the country table.
func CountryCount() int {
	byName, _ := countries()
	return len(byName)
}

// FoldCountryName prepares a country name for comparison: accents are
// stripped, case is folded, typographic apostrophes become ASCII and runs of
// whitespace collapse to a single space.
func FoldCountryName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	stripped = strings.NewReplacer("\u2019", "'", "\u2018", "'", "`", "'").Replace(stripped)
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}
