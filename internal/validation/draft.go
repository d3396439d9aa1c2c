package validation

import (
	"fmt"
	"strings"

	"fleet-crm/internal/drafts"
)

var draftValidators = map[drafts.Wizard]map[string]func(string) error{
	drafts.WizardContact: {
		"full_name": validateName,
		"tax_id":    ValidateCPF,
		"email":     ValidateEmail,
		"phone":     ValidatePhone,
		"mobile":    ValidatePhone,
		"whatsapp":  ValidatePhone,
		"zip":       ValidateCEP,
	},
	drafts.WizardCompany: {
		"legal_name": validateName,
		"cnpj":       ValidateCNPJ,
		"email":      ValidateEmail,
		"phone":      ValidatePhone,
		"whatsapp":   ValidatePhone,
		"zip":        ValidateCEP,
	},
	drafts.WizardVehicle: {
		"plate":   ValidatePlate,
		"renavam": ValidateRenavam,
	},
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return fmt.Errorf("nome deve ter pelo menos 2 caracteres")
	}
	if len(name) > 200 {
		return fmt.Errorf("nome deve ter menos de 200 caracteres")
	}
	return nil
}

// ValidateDraft validates the known fields of a wizard draft.
// Blank values are skipped since drafts are incomplete by nature.
// Returns a map of field names to error messages; an unknown wizard yields a "_wizard" entry.
func ValidateDraft(wizard drafts.Wizard, data map[string]any) map[string]string {
	errors := make(map[string]string)

	rules, ok := draftValidators[wizard]
	if !ok {
		errors["_wizard"] = fmt.Sprintf("wizard desconhecido: %s", wizard)
		return errors
	}

	for field, fn := range rules {
		raw, present := data[field]
		if !present || raw == nil {
			continue
		}
		val, ok := raw.(string)
		if !ok {
			errors[field] = fmt.Sprintf("tipo inválido para %s", field)
			continue
		}
		if strings.TrimSpace(val) == "" {
			continue
		}
		if err := fn(val); err != nil {
			errors[field] = err.Error()
		}
	}

	return errors
}
