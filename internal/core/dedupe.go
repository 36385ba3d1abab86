package core

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"strconv"
)

// Fingerprint identifies a valid row by its output fields. Each field is
// written with a length prefix, so no field content can shift bytes into a
// neighbouring field.
type Fingerprint [sha256.Size]byte

// FingerprintRow returns the fingerprint of a valid row. Rejected rows all
// share the zero fingerprint.
func FingerprintRow(r ClassifiedRow) Fingerprint {
	var fp Fingerprint
	h := sha256.New()

	switch {
	case r.Kind == KindNewMember && r.New != nil:
		n := r.New
		writeFields(h, r.Kind.String(), n.Name, n.Email, n.CountryCode, n.TotalAmount,
			n.Currency, strconv.Itoa(n.Month), n.SupportRegion, n.Note)
	case r.Kind == KindExistingMember && r.Existing != nil:
		e := r.Existing
		writeFields(h, r.Kind.String(), e.CardID, e.TotalAmount, e.Currency,
			strconv.Itoa(e.Month), e.SupportRegion, e.Note)
	default:
		return fp
	}

	copy(fp[:], h.Sum(nil))
	return fp
}

func writeFields(h hash.Hash, fields ...string) {
	var n [binary.MaxVarintLen64]byte
	for _, f := range fields {
		l := binary.PutUvarint(n[:], uint64(len(f)))
		h.Write(n[:l])
		h.Write([]byte(f))
	}
}

// Dedupe drops exact repeats from an ordered stream of valid rows. The first
// occurrence is kept and every later copy produces one WARN_DUPLICATE_ROW
// message naming both lines. Rejected rows pass through untouched.
func Dedupe(rows []ClassifiedRow) ([]ClassifiedRow, []Message) {
	seen := make(map[Fingerprint]int, len(rows))
	kept := make([]ClassifiedRow, 0, len(rows))
	var warnings []Message

	for _, r := range rows {
		if !r.Valid() {
			kept = append(kept, r)
			continue
		}
		fp := FingerprintRow(r)
		if first, dup := seen[fp]; dup {
			warnings = append(warnings, newMessage(r.Line, CodeDuplicateRow,
				fmt.Sprintf("duplicate of line %d, row removed", first)))
			continue
		}
		seen[fp] = r.Line
		kept = append(kept, r)
	}

	return kept, warnings
}
