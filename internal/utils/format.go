package utils

import (
	"fmt"
	"strings"
)

// GroupThousands renders n with dot separators, Vietnamese style:
// 12345678 -> "12.345.678".
func GroupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 1)
	b.WriteString(sign)
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// RoundThousands divides by 1000 rounding to nearest, matching how prices
// in VND are reported in thousands.
func RoundThousands(v int64) int64 {
	if v >= 0 {
		return (v + 500) / 1000
	}
	return -((-v + 500) / 1000)
}
