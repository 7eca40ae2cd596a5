package reconcile

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	msPerDay = 24 * 60 * 60 * 1000
	// Days from the spreadsheet epoch (1899-12-30) to the unix epoch.
	excelEpochOffsetDays = 25569
)

var dayFirstPattern = regexp.MustCompile(
	`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)

// ExcelSerialToEpochMs interprets a number as a spreadsheet serial date
// (roughly 20000–90000 days since 1899-12-30). Values resembling unix
// milliseconds or unix seconds are detected by magnitude and passed through.
// Returns nil when the number fits none of those windows.
func ExcelSerialToEpochMs(v float64) *int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	switch {
	case v > 1e11:
		return epochPtr(int64(v))
	case v > 1e9 && v < 1e10:
		return epochPtr(int64(v * 1000))
	case v >= 20000 && v <= 90000:
		return epochPtr(int64(math.Round((v - excelEpochOffsetDays) * msPerDay)))
	}
	return nil
}

// ParseDate converts heterogeneous date input to epoch milliseconds.
// Numeric input is tried as a spreadsheet serial first; strings are tried
// against a day/month/year[ hour:minute[:second]] pattern (2-digit years
// are 2000-offset) before generic date parsing. ParseDate never fails:
// unparseable input yields nil.
func ParseDate(v any) *int64 {
	if v == nil {
		return nil
	}

	if n, ok := numeric(v); ok {
		if ms := ExcelSerialToEpochMs(n); ms != nil {
			return ms
		}
		return epochPtr(int64(n))
	}

	str := strings.TrimSpace(Stringify(v))
	if str == "" {
		return nil
	}

	if n, err := strconv.ParseFloat(str, 64); err == nil {
		if ms := ExcelSerialToEpochMs(n); ms != nil {
			return ms
		}
	}

	if m := dayFirstPattern.FindStringSubmatch(str); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		hour, minute, second := 0, 0, 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
			if m[6] != "" {
				second, _ = strconv.Atoi(m[6])
			}
		}
		dt := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
		return epochPtr(dt.UnixMilli())
	}

	return coerceEpochMs(str)
}

var genericLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerceEpochMs(str string) *int64 {
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return epochPtr(t.UnixMilli())
		}
	}
	return nil
}

// FormatDateTime renders a parseable date value as localized dd/mm/yyyy
// hh:mm text for display fields. Unparseable input falls back to the
// sanitized raw text.
func FormatDateTime(v any) string {
	ms := ParseDate(v)
	if ms == nil {
		return SanitizeString(v, 160)
	}
	return time.UnixMilli(*ms).Format("02/01/2006 15:04")
}

func epochPtr(ms int64) *int64 {
	return &ms
}
