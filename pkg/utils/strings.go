package utils

import "strings"

// Similarity returns a token-overlap score between two free-text values in the range [0,100].
// Both inputs are trimmed and lower-cased. Empty input on either side scores 0, identical
// input scores 100, anything else is the Jaccard index of the whitespace token sets.
// NOTE: no stemming and no edit distance; "Transportes" and "Transporte" share nothing.
func Similarity(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 {
		return 100
	}

	t1 := tokenSet(s1)
	t2 := tokenSet(s2)
	union := len(t1)
	inter := 0
	for tok := range t2 {
		if _, ok := t1[tok]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union) * 100
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// ContainsAny reports whether s (lower-cased) contains any of the given lower-case keywords.
func ContainsAny(s string, keywords []string) bool {
	l := strings.ToLower(s)
	if l == "" {
		return false
	}
	for _, k := range keywords {
		if k != "" && strings.Contains(l, k) {
			return true
		}
	}
	return false
}

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool { return strings.TrimSpace(s) == "" }

// AllPresent reports whether every value is non-blank.
func AllPresent(values ...string) bool {
	for _, v := range values {
		if Blank(v) {
			return false
		}
	}
	return true
}
