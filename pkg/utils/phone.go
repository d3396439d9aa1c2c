package utils

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// ExtractPhoneDigits returns just the digits in a phone number string.
// Useful for loose comparisons where formatting differences are expected.
func ExtractPhoneDigits(phone string) string {
	return nonDigit.ReplaceAllString(phone, "")
}

// PhonePrefix returns the first n digits of a phone number, or "" when it has fewer.
func PhonePrefix(phone string, n int) string {
	d := ExtractPhoneDigits(phone)
	if n <= 0 || len(d) < n {
		return ""
	}
	return d[:n]
}

// PhoneDigitsList extracts digits from every non-empty phone, preserving order.
func PhoneDigitsList(phones ...string) []string {
	out := make([]string, 0, len(phones))
	for _, p := range phones {
		if d := ExtractPhoneDigits(p); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// NormalizeBRPhone strips formatting and the 55 country code, leaving DDD + number.
// Rules:
// - "+55 (11) 98765-4321" => "11987654321"
// - "011 3333-4444" => "1133334444" (leading trunk zero dropped)
// - anything else keeps its digits
func NormalizeBRPhone(phone string) string {
	d := ExtractPhoneDigits(phone)
	if (len(d) == 12 || len(d) == 13) && strings.HasPrefix(d, "55") {
		d = d[2:]
	}
	if (len(d) == 11 || len(d) == 12) && strings.HasPrefix(d, "0") {
		d = d[1:]
	}
	return d
}
