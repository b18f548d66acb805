package validate

import (
	"strings"
)

// NormalizeRUT strips thousand-separator dots and uppercases the check
// character: "12.345.678-5" -> "12345678-5". It does not verify the check
// digit; see ValidRUT.
func NormalizeRUT(raw string) (body, dv string, ok bool) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), ".", ""))
	i := strings.LastIndexByte(s, '-')
	if i <= 0 || i != len(s)-2 {
		return "", "", false
	}
	body, dv = s[:i], s[i+1:]
	if body == "" {
		return "", "", false
	}
	for _, r := range body {
		if r < '0' || r > '9' {
			return "", "", false
		}
	}
	if dv != "K" && (dv[0] < '0' || dv[0] > '9') {
		return "", "", false
	}
	return body, dv, true
}

// CheckDigit computes the Chilean modulus-11 check digit for a numeric RUT
// body: factors 2..7 cycling from the rightmost digit, 11-(sum mod 11), with
// 11 -> "0" and 10 -> "K".
func CheckDigit(body string) string {
	sum := 0
	factor := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch d := 11 - sum%11; d {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return string(rune('0' + d))
	}
}

// ValidRUT verifies the check digit and returns the canonical "12345678-5"
// form. A mismatched check digit invalidates the value; it is never
// corrected.
func ValidRUT(raw string) (string, bool) {
	body, dv, ok := NormalizeRUT(raw)
	if !ok {
		return "", false
	}
	if CheckDigit(body) != dv {
		return "", false
	}
	return body + "-" + dv, true
}
