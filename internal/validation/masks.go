package validation

import (
	"strings"

	"fleet-crm/pkg/utils"
)

// applyMask fills '#' slots with digits, stopping when the digits run out (as-you-type).
func applyMask(digits, pattern string) string {
	if digits == "" {
		return ""
	}
	var b strings.Builder
	i := 0
	for _, r := range pattern {
		if i >= len(digits) {
			break
		}
		if r == '#' {
			b.WriteByte(digits[i])
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func limit(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// FormatCPF renders 000.000.000-00.
func FormatCPF(v string) string {
	return applyMask(limit(utils.ExtractPhoneDigits(v), 11), "###.###.###-##")
}

// FormatCNPJ renders 00.000.000/0000-00.
func FormatCNPJ(v string) string {
	return applyMask(limit(utils.ExtractPhoneDigits(v), 14), "##.###.###/####-##")
}

// FormatCEP renders 00000-000.
func FormatCEP(v string) string {
	return applyMask(limit(utils.ExtractPhoneDigits(v), 8), "#####-###")
}

// FormatPhone renders (11) 3333-4444 or (11) 98765-4321 depending on length.
func FormatPhone(v string) string {
	d := limit(utils.NormalizeBRPhone(v), 11)
	if len(d) == 11 {
		return applyMask(d, "(##) #####-####")
	}
	return applyMask(d, "(##) ####-####")
}

// FormatTaxID picks the CPF or CNPJ mask by digit count.
func FormatTaxID(v string) string {
	if len(utils.ExtractPhoneDigits(v)) > 11 {
		return FormatCNPJ(v)
	}
	return FormatCPF(v)
}

// OnlyDigits strips every non-digit character.
func OnlyDigits(v string) string { return utils.ExtractPhoneDigits(v) }
