package reconcile

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion biases parsing of national-format numbers. The pipeline's
// lead sources are Brazilian.
const defaultRegion = "BR"

// PhoneDigits strips everything but digits from a phone value.
func PhoneDigits(v any) string {
	s := Stringify(v)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhonesAreSimilar reports whether two phone values plausibly refer to the
// same line. Exact digit equality always matches; otherwise a number of at
// least 8 digits that is a suffix of the other matches, which absorbs
// country-code and trunk-prefix differences. Symmetric in its arguments.
func PhonesAreSimilar(a, b any) bool {
	pa := PhoneDigits(a)
	pb := PhoneDigits(b)
	if pa == "" || pb == "" {
		return false
	}
	if pa == pb {
		return true
	}
	if len(pa) < 8 || len(pb) < 8 {
		return false
	}
	return strings.HasSuffix(pa, pb) || strings.HasSuffix(pb, pa)
}

// CanonicalPhone formats a phone number to E.164 when it parses as a valid
// number for the default region. Invalid or unparseable input is returned
// trimmed, so callers can use this unconditionally at intake.
func CanonicalPhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
