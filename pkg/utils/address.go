package utils

import (
	"regexp"
	"strings"
)

var ufs = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true, "DF": true,
	"ES": true, "GO": true, "MA": true, "MT": true, "MS": true, "MG": true, "PA": true,
	"PB": true, "PR": true, "PE": true, "PI": true, "RJ": true, "RN": true, "RS": true,
	"RO": true, "RR": true, "SC": true, "SP": true, "SE": true, "TO": true,
}

var punct = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// NormalizeCEP keeps the digits of a postal code; returns "" unless exactly 8 remain.
func NormalizeCEP(cep string) string {
	d := ExtractPhoneDigits(cep)
	if len(d) != 8 {
		return ""
	}
	return d
}

// NormalizeUF upper-cases a state abbreviation and returns "" for unknown states.
func NormalizeUF(uf string) string {
	u := strings.ToUpper(strings.TrimSpace(uf))
	if !ufs[u] {
		return ""
	}
	return u
}

// IsUF reports whether uf is a Brazilian state abbreviation.
func IsUF(uf string) bool { return NormalizeUF(uf) != "" }

// NormalizeStreet lowercases a street line, expands common abbreviations and strips punctuation.
func NormalizeStreet(street string) string {
	if street == "" {
		return ""
	}

	abbr := map[string]string{
		"r":    "rua",
		"av":   "avenida",
		"al":   "alameda",
		"tv":   "travessa",
		"trav": "travessa",
		"rod":  "rodovia",
		"est":  "estrada",
		"pc":   "praca",
		"pca":  "praca",
	}

	words := strings.Fields(strings.ToLower(punct.ReplaceAllString(street, " ")))
	for i, w := range words {
		if a, ok := abbr[w]; ok {
			words[i] = a
		}
	}
	return strings.Join(words, " ")
}
