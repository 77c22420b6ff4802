package valuation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceInt converts a loosely typed value (JSON number, numeric string, Go
// integer or float) into an int. Integers parse directly; anything else is
// parsed as a float and rounded half to even. Currency symbols, commas, and
// surrounding whitespace in strings are ignored. It reports false for nil,
// empty, or non-numeric input.
func CoerceInt(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case json.Number:
		return parseIntString(x.String())
	case string:
		return parseIntString(x)
	case *int:
		if x == nil {
			return 0, false
		}
		return *x, true
	default:
		return 0, false
	}
}

// CoerceIntPtr is CoerceInt returning nil when the value is absent or not
// numeric.
func CoerceIntPtr(v any) *int {
	n, ok := CoerceInt(v)
	if !ok {
		return nil
	}
	return &n
}

func parseIntString(s string) (int, bool) {
	s = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt(f)
}

// floatToInt reports false for values that do not fit in an int.
func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	r := math.RoundToEven(f)
	if r >= math.MaxInt || r < math.MinInt {
		return 0, false
	}
	return int(r), true
}
