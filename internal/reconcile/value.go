package reconcile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Stringify renders an arbitrary imported cell value as a string. Floats
// that carry no fractional part print without a decimal point, matching how
// spreadsheet libraries surface integer cells.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(v)
	}
}

// ParseBool interprets common truthy spellings from spreadsheet exports
// ("1", "true", "yes", "sim", "x", "ok", ...). Anything else is false.
func ParseBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	}
	switch strings.ToLower(strings.TrimSpace(Stringify(v))) {
	case "1", "true", "t", "yes", "y", "sim", "s", "x", "ok":
		return true
	}
	return false
}

// numeric reports v as a float64 when it is already a number.
func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
