package reconcile

import (
	"strconv"
	"strings"
)

// ParseCurrency converts heterogeneous currency input to a number. Numeric
// input passes through unchanged. Strings are stripped of whitespace and
// currency symbols; when both comma and dot appear, the rightmost separator
// is taken as the decimal point and the other is removed as a thousands
// separator. A lone comma is decimal. ParseCurrency is total: unparseable
// input yields 0.
func ParseCurrency(v any) float64 {
	if n, ok := numeric(v); ok {
		return n
	}

	raw := strings.TrimSpace(Stringify(v))
	if raw == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	commas := strings.Count(cleaned, ",")
	dots := strings.Count(cleaned, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case commas == 1:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case commas > 1:
		// Repeated commas can only be thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}
