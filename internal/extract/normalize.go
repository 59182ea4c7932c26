package extract

import (
	"regexp"
	"strings"
)

var (
	digitRe    = regexp.MustCompile(`\d`)
	nonDigitRe = regexp.MustCompile(`\D`)
	latinRe    = regexp.MustCompile(`[A-Za-z]`)
	alnumRe    = regexp.MustCompile(`[A-Za-z0-9]`)
	nonAlnumRe = regexp.MustCompile(`[^A-Za-z0-9]`)
	splitRe    = regexp.MustCompile(`[;,/\\]\s*`)
)

// addressWords are street/state tokens that disqualify a candidate name;
// extraction occasionally swaps name and address fields on noisy scans.
var addressWords = []string{
	"street", "avenue", "road", "drive", "lane", "court", "place", "way",
	"crescent", "close", "terrace", "parade", "boulevard",
	"qld", "nsw", "vic", "wa", "sa", "tas", "nt", "act",
}

// Normalize cleans a raw extracted record in place and reports whether it is
// usable. A record needs a parseable first and last name to survive; phone,
// email and address fields are cleaned independently and blanked when they
// fail their shape checks.
func Normalize(raw RawRecord) (RawRecord, bool) {
	first, last := ParseName(strings.TrimSpace(raw.FirstName + " " + raw.LastName))
	if first == "" || last == "" {
		return RawRecord{}, false
	}

	out := raw
	out.FirstName = first
	out.LastName = last
	out.Mobile = CleanPhoneNumber(raw.Mobile)
	out.Landline = CleanPhoneNumber(raw.Landline)
	out.Email = CleanEmail(raw.Email)
	out.Address = CleanAddress(raw.Address)
	out.DateOfBirth = strings.TrimSpace(raw.DateOfBirth)
	out.LastSeenDate = strings.TrimSpace(raw.LastSeenDate)
	if out.Confidence <= 0 {
		out.Confidence = 0.8
	}
	return out, true
}

// ParseName splits a free-form name into first and last name. It drops junk
// tokens, rejects strings containing digits, address vocabulary, or fewer
// than two parts.
func ParseName(fullName string) (string, string) {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return "", ""
	}

	// Multi-segment values keep the most latin-lettered segment.
	if parts := splitRe.Split(name, -1); len(parts) > 1 {
		best := parts[0]
		bestScore := latinScore(best)
		for _, p := range parts[1:] {
			if s := latinScore(p); s > bestScore || (s == bestScore && len(p) > len(best)) {
				best, bestScore = p, s
			}
		}
		if bestScore >= 1 || len(strings.Fields(best)) >= 2 {
			name = strings.TrimSpace(best)
		}
	}

	tokens := strings.Fields(name)
	for len(tokens) > 0 && isJunkToken(tokens[0]) {
		tokens = tokens[1:]
	}
	name = strings.Join(tokens, " ")
	if name == "" || digitRe.MatchString(name) {
		return "", ""
	}

	padded := " " + strings.ToLower(name) + " "
	for _, word := range addressWords {
		if strings.Contains(padded, " "+word+" ") {
			return "", ""
		}
	}

	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", ""
	}
	first := parts[0]
	last := strings.Join(parts[1:], " ")

	if len(nonAlnumRe.ReplaceAllString(first, "")) < 2 || !latinRe.MatchString(first) {
		return "", ""
	}
	return first, last
}

// CleanPhoneNumber strips formatting and accepts exactly 10 digits, the
// national number length for both mobiles and landlines.
func CleanPhoneNumber(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	if len(digits) == 10 {
		return digits
	}
	return ""
}

// CleanEmail lower-cases and keeps only values with a plausible shape.
func CleanEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	if !strings.Contains(email[at+1:], ".") {
		return ""
	}
	return email
}

// CleanAddress rejects addresses that are too short or do not start with a
// street number within the first ten characters.
func CleanAddress(address string) string {
	address = strings.TrimSpace(address)
	if len(address) < 15 {
		return ""
	}
	head := address
	if len(head) > 10 {
		head = head[:10]
	}
	if !digitRe.MatchString(head) {
		return ""
	}
	return address
}

func latinScore(s string) int {
	return len(latinRe.FindAllString(s, -1))
}

func isJunkToken(tok string) bool {
	stripped := strings.Trim(tok, " ,.;:-_()[]{}\"'`")
	if stripped == "" {
		return true
	}
	return !alnumRe.MatchString(stripped)
}
