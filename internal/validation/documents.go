package validation

import (
	"fmt"
	"regexp"
	"strings"

	"fleet-crm/pkg/utils"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	oldPlateRegex = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	mercosulRegex = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)
)

var (
	cpfWeights1  = []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfWeights2  = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	renavamW     = []int{3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidateCPF checks length, repeated digits and both check digits of an individual taxpayer id.
// Formatting characters are ignored.
func ValidateCPF(cpf string) error {
	d := utils.ExtractPhoneDigits(cpf)
	if len(d) != 11 {
		return fmt.Errorf("CPF deve ter 11 dígitos")
	}
	if repeated(d) {
		return fmt.Errorf("CPF inválido")
	}
	if checkDigit(d[:9], cpfWeights1) != int(d[9]-'0') || checkDigit(d[:10], cpfWeights2) != int(d[10]-'0') {
		return fmt.Errorf("CPF inválido")
	}
	return nil
}

// ValidateCNPJ checks length, repeated digits and both check digits of a company registration.
func ValidateCNPJ(cnpj string) error {
	d := utils.ExtractPhoneDigits(cnpj)
	if len(d) != 14 {
		return fmt.Errorf("CNPJ deve ter 14 dígitos")
	}
	if repeated(d) {
		return fmt.Errorf("CNPJ inválido")
	}
	if checkDigit(d[:12], cnpjWeights1) != int(d[12]-'0') || checkDigit(d[:13], cnpjWeights2) != int(d[13]-'0') {
		return fmt.Errorf("CNPJ inválido")
	}
	return nil
}

// checkDigit computes a mod-11 check digit; remainders below 2 map to 0.
func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func repeated(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

// ValidateCEP requires exactly 8 digits.
func ValidateCEP(cep string) error {
	if len(utils.ExtractPhoneDigits(cep)) != 8 {
		return fmt.Errorf("CEP deve ter 8 dígitos")
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil // Optional field
	}
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return fmt.Errorf("email inválido")
	}
	return nil
}

// ValidatePhone accepts DDD + number (10 digits landline, 11 digits mobile), with or without +55.
func ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return nil // Optional field
	}
	d := utils.NormalizeBRPhone(phone)
	if len(d) != 10 && len(d) != 11 {
		return fmt.Errorf("telefone deve ter DDD e 8 ou 9 dígitos")
	}
	if d[0] == '0' {
		return fmt.Errorf("DDD inválido")
	}
	if len(d) == 11 && d[2] != '9' {
		return fmt.Errorf("celular deve começar com 9")
	}
	return nil
}

// NormalizePlate upper-cases a plate and drops separators.
func NormalizePlate(plate string) string {
	p := strings.ToUpper(strings.TrimSpace(plate))
	return strings.NewReplacer("-", "", " ", "").Replace(p)
}

// ValidatePlate accepts the old (ABC1234) and Mercosul (ABC1D23) formats.
func ValidatePlate(plate string) error {
	p := NormalizePlate(plate)
	if !oldPlateRegex.MatchString(p) && !mercosulRegex.MatchString(p) {
		return fmt.Errorf("placa inválida")
	}
	return nil
}

// ValidateRenavam checks the 11-digit vehicle registry number; 9-digit legacy numbers are zero padded.
func ValidateRenavam(renavam string) error {
	d := utils.ExtractPhoneDigits(renavam)
	if len(d) == 9 {
		d = "00" + d
	}
	if len(d) != 11 {
		return fmt.Errorf("RENAVAM deve ter 11 dígitos")
	}
	if repeated(d) {
		return fmt.Errorf("RENAVAM inválido")
	}
	sum := 0
	for i, w := range renavamW {
		sum += int(d[i]-'0') * w
	}
	dv := 11 - sum%11
	if dv >= 10 {
		dv = 0
	}
	if dv != int(d[10]-'0') {
		return fmt.Errorf("RENAVAM inválido")
	}
	return nil
}

// ValidateDocument dispatches by document kind: cpf, cnpj, cep, phone, email, plate, renavam.
func ValidateDocument(kind, value string) error {
	switch strings.ToLower(kind) {
	case "cpf":
		return ValidateCPF(value)
	case "cnpj":
		return ValidateCNPJ(value)
	case "cep":
		return ValidateCEP(value)
	case "phone", "telefone":
		return ValidatePhone(value)
	case "email":
		return ValidateEmail(value)
	case "plate", "placa":
		return ValidatePlate(value)
	case "renavam":
		return ValidateRenavam(value)
	default:
		return fmt.Errorf("tipo de documento desconhecido: %s", kind)
	}
}
