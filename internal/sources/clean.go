package sources

import (
	"math"
	"strconv"
	"strings"
)

// cleanNumber coerces a raw feed value into VND. Strings are stripped to
// their digits ("121,500,000 đ" -> 121500000); floats are rounded after
// scaling. Anything non-coercible comes back nil.
func cleanNumber(value any, multiplier, divisor float64) *int64 {
	var numeric float64
	switch t := value.(type) {
	case nil:
		return nil
	case int:
		numeric = float64(t)
	case int64:
		numeric = float64(t)
	case float64:
		numeric = t
	case string:
		cleaned := digitsOnly(t)
		if cleaned == "" {
			return nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		numeric = f
	default:
		return nil
	}

	numeric = numeric * multiplier / divisor
	n := int64(math.Round(numeric))
	return &n
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// numOrNil unwraps a cleaned value for storage in an Entry, so a missing
// price serializes as a plain nil instead of a typed nil pointer.
func numOrNil(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
