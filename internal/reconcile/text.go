// Package reconcile implements the lead import pipeline: record
// normalization, stage classification, fuzzy matching against an existing
// collection, and provenance-aware field merging.
//
// Every parser in this package is total over its input domain: unparseable
// input degrades to a safe default instead of returning an error. The only
// batch-level failure is a malformed top-level payload, which is rejected
// before any record is touched.
package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeComparable lowercases, strips diacritics, collapses
// non-alphanumeric runs to single spaces, and trims. Used for case and
// accent-insensitive comparison of names, owners, origins, stage labels,
// and spreadsheet headers.
func NormalizeComparable(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// SanitizeString coerces a value to a trimmed string capped at maxLen runes.
func SanitizeString(v any, maxLen int) string {
	s := strings.TrimSpace(Stringify(v))
	if r := []rune(s); len(r) > maxLen {
		return string(r[:maxLen])
	}
	return s
}

// SanitizePhone trims and caps a phone value, keeping only digits and the
// characters "+()- " (space).
func SanitizePhone(v any, maxLen int) string {
	s := SanitizeString(v, maxLen)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == '(' || r == ')' || r == '-' || r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseTags accepts a tag list or a delimiter-split string (',' or ';') and
// returns lowercase, deduplicated tags capped at 20 entries.
func ParseTags(v any) []string {
	var parts []string
	switch t := v.(type) {
	case nil:
		return []string{}
	case []string:
		parts = t
	case []any:
		for _, e := range t {
			parts = append(parts, Stringify(e))
		}
	default:
		raw := SanitizeString(v, 2000)
		parts = strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	}

	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.ToLower(SanitizeString(p, 40))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == 20 {
			break
		}
	}
	return tags
}
