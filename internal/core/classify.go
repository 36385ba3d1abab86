package core

import (
	"fmt"

	"github.com/JonMunkholm/prfbulk/internal/core/tables"
)

// Classification is the classifier's result for one row: the row outcome
// plus any warnings raised while reading it.
type Classification struct {
	Row      ClassifiedRow
	Warnings []Message
}

// Classify maps one raw row to exactly one ClassifiedRow. The first hard
// failure rejects the row; soft problems accumulate as warnings.
//
// Checks run in a fixed order so the reported code is deterministic:
// column count, email, amount, currency, month, payment date, card id.
func Classify(row RawRow, layout Layout) Classification {
	if len(row.Cells) != layout.arity {
		return reject(row.Line, CodeColumnCount,
			fmt.Sprintf("row has %d columns, expected %d", len(row.Cells), layout.arity))
	}

	cells := row.Cells

	email := layout.cell(cells, colEmail)
	if email != "" && !IsValidEmail(email) {
		return reject(row.Line, CodeInvalidEmail, fmt.Sprintf("invalid email %q", email))
	}

	amountRaw := layout.cell(cells, colTotalAmount)
	amount, ok := NormalizeAmount(amountRaw)
	if !ok {
		return reject(row.Line, CodeInvalidAmount, fmt.Sprintf("invalid total amount %q", amountRaw))
	}

	currencyRaw := layout.cell(cells, colCurrency)
	currency, ok := NormalizeCurrency(currencyRaw)
	if !ok {
		return reject(row.Line, CodeInvalidCurrency, fmt.Sprintf("invalid currency %q", currencyRaw))
	}

	monthRaw := layout.cell(cells, colMonth)
	month, ok := NormalizeMonth(monthRaw)
	if !ok {
		return reject(row.Line, CodeInvalidMonth, fmt.Sprintf("invalid month %q", monthRaw))
	}

	// Payment date is optional, but must be a real date when given.
	if date := layout.cell(cells, colPaymentDate); date != "" && !IsValidISODate(date) {
		return reject(row.Line, CodeInvalidDate, fmt.Sprintf("invalid payment date %q", date))
	}

	region := layout.cell(cells, colSupportRegion)
	note := layout.cell(cells, colNote)

	var out ClassifiedRow
	switch cardRaw := layout.cell(cells, colCardID); {
	case cardRaw == "":
		if email == "" {
			return reject(row.Line, CodeEmailRequired, "")
		}
		out = ClassifiedRow{
			Kind: KindNewMember,
			Line: row.Line,
			New: &NewMember{
				Name:          layout.cell(cells, colName),
				Email:         email,
				TotalAmount:   amount,
				Currency:      currency,
				Month:         month,
				SupportRegion: region,
				Note:          note,
			},
		}
	case IsDigits(cardRaw):
		cardID, err := BuildCardID(cardRaw)
		if err != nil {
			return reject(row.Line, CodeInvalidCardID, err.Error())
		}
		out = ClassifiedRow{
			Kind: KindExistingMember,
			Line: row.Line,
			Existing: &ExistingMember{
				CardID:        cardID,
				TotalAmount:   amount,
				Currency:      currency,
				Month:         month,
				SupportRegion: region,
				Note:          note,
			},
		}
	default:
		return reject(row.Line, CodeInvalidCardID, fmt.Sprintf("card id %q must contain digits only", cardRaw))
	}

	// Country is read for every accepted row, although only the new member
	// export carries it.
	var warnings []Message
	countryRaw := layout.cell(cells, colCountry)
	code, mapped := tables.MapCountry(countryRaw)
	if !mapped {
		warnings = append(warnings, newMessage(row.Line, CodeUnmappedCountry,
			fmt.Sprintf("country %q not recognised, using %s", countryRaw, tables.FallbackCountryCode)))
	}
	if out.New != nil {
		out.New.CountryCode = code
	}

	return Classification{Row: out, Warnings: warnings}
}

func reject(line int, code Code, text string) Classification {
	msg := newMessage(line, code, text)
	return Classification{
		Row: ClassifiedRow{
			Kind:     KindRejected,
			Line:     line,
			Rejected: &Rejection{Line: line, Code: code, Message: msg.Text},
		},
	}
}
