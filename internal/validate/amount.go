package validate

import (
	"strconv"
	"strings"
)

// ParseAmount normalizes an OCR'd amount to whole Chilean pesos. Either "."
// or "," acts as a thousand separator; a trailing two-digit group is a
// decimal suffix and is dropped, since boleta amounts are whole CLP.
// "$45.000" and "$45,000" both yield 45000.
func ParseAmount(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// trailing 2-digit group after a separator is a decimal part
	if n := len(s); n > 3 && (s[n-3] == '.' || s[n-3] == ',') {
		s = s[:n-3]
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// AmountInRange reports whether v lies within the configured plausibility
// bounds, inclusive.
func AmountInRange(v, min, max int64) bool {
	return v >= min && v <= max
}
