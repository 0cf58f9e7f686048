package snapshot

import (
	"encoding/json"
	"math"
	"strings"

	"goldpricebot/internal/sources"
)

// Normalize folds raw entries into a canonical snapshot. Entries with a
// blank source or product are dropped silently; duplicate (source,
// product) keys resolve last-write-wins; source and product order follow
// first appearance in the input.
func Normalize(entries []sources.Entry) *Snapshot {
	snap := New()
	for _, e := range entries {
		source := strings.TrimSpace(e.Source)
		product := strings.TrimSpace(e.Product)
		if source == "" || product == "" {
			continue
		}

		q := Quote{
			Buy:  coerceInt(e.Buy),
			Sell: coerceInt(e.Sell),
		}
		if unit := strings.TrimSpace(e.Unit); unit != "" {
			q.Unit = &unit
		}
		snap.Set(source, product, q)
	}
	return snap
}

// coerceInt turns an arbitrary raw value into a non-negative integer or
// nil. Integers pass through, floats round to nearest, strings are
// stripped to their digits ("12,345 VND" -> 12345). Nothing here ever
// errors; non-coercible inputs degrade to nil.
func coerceInt(v any) *int64 {
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		return nonNegative(int64(t))
	case int64:
		return nonNegative(t)
	case *int64:
		if t == nil {
			return nil
		}
		return nonNegative(*t)
	case float64:
		return nonNegative(int64(math.Round(t)))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		return nonNegative(int64(math.Round(f)))
	case string:
		digits := strings.Map(keepDigit, t)
		if digits == "" {
			return nil
		}
		var n int64
		for _, r := range digits {
			if n > (math.MaxInt64-9)/10 {
				return nil
			}
			n = n*10 + int64(r-'0')
		}
		return &n
	default:
		return nil
	}
}

func keepDigit(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

// Stored values are non-negative by invariant; a negative number cannot
// come from a price feed and is treated as non-coercible.
func nonNegative(n int64) *int64 {
	if n < 0 {
		return nil
	}
	return &n
}
