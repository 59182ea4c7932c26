package dedup

import (
	"strings"
	"unicode"

	"github.com/docuflow/pdf2csv-api/internal/models"
)

// Fingerprint derives the identity key used to link records describing the
// same contact. The normalized mobile number is the strong signal; when a
// record has none, the normalized name plus address is used instead. Records
// with neither yield an empty fingerprint and are excluded from grouping —
// matching on weak or empty keys would flag unrelated records as duplicates.
func Fingerprint(r models.Record) string {
	if mobile := digitsOnly(r.Mobile); mobile != "" {
		return "m:" + mobile
	}

	name := normalizeText(r.FirstName) + " " + normalizeText(r.LastName)
	name = strings.TrimSpace(name)
	address := normalizeText(r.Address)
	if name == "" || address == "" {
		return ""
	}
	return "na:" + name + "|" + address
}

// digitsOnly strips every non-digit character from a phone number.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeText lower-cases and collapses interior whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
