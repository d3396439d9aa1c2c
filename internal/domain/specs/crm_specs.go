package specs

import (
	"context"
	"strings"

	"fleet-crm/internal/kyc"
	"fleet-crm/internal/models"
	"fleet-crm/pkg/utils"
)

// ContactInState matches contacts whose address UF equals uf (case-insensitive).
func ContactInState(uf string) Specification[models.Contact] {
	uf = utils.NormalizeUF(uf)
	return New(func(_ context.Context, c models.Contact) bool {
		return uf != "" && utils.NormalizeUF(c.Address.State) == uf
	})
}

// ContactInCity matches on the address city, ignoring case and surrounding blanks.
func ContactInCity(city string) Specification[models.Contact] {
	city = strings.ToLower(strings.TrimSpace(city))
	return New(func(_ context.Context, c models.Contact) bool {
		return strings.ToLower(strings.TrimSpace(c.Address.City)) == city
	})
}

// ContactMatches searches name, email, CPF and employer.
func ContactMatches(term string) Specification[models.Contact] {
	term = strings.ToLower(strings.TrimSpace(term))
	return New(func(_ context.Context, c models.Contact) bool {
		return utils.ContainsAny(strings.Join([]string{c.FullName, c.Email, c.TaxID, c.Employer}, " "), []string{term})
	})
}

// ContactMatchable holds when a contact carries at least one signal the matcher can use.
func ContactMatchable() Specification[models.Contact] {
	return New(func(_ context.Context, c models.Contact) bool {
		if !utils.Blank(c.Employer) || !utils.Blank(c.Email) {
			return true
		}
		for _, p := range c.Phones() {
			if !utils.Blank(p) {
				return true
			}
		}
		return !utils.Blank(c.Address.City)
	})
}

// ContactTierIs classifies the contact on the fly.
func ContactTierIs(tier models.RiskTier) Specification[models.Contact] {
	return New(func(_ context.Context, c models.Contact) bool {
		return kyc.Classify(kyc.ScoreContact(c)).Tier == tier
	})
}

func CompanyInState(uf string) Specification[models.Company] {
	uf = utils.NormalizeUF(uf)
	return New(func(_ context.Context, c models.Company) bool {
		return uf != "" && utils.NormalizeUF(c.Address.State) == uf
	})
}

// CompanyMatches searches legal name, trade name, CNPJ and website.
func CompanyMatches(term string) Specification[models.Company] {
	term = strings.ToLower(strings.TrimSpace(term))
	return New(func(_ context.Context, c models.Company) bool {
		return utils.ContainsAny(strings.Join([]string{c.LegalName, c.TradeName, c.CNPJ, c.Website}, " "), []string{term})
	})
}

func CompanyTierIs(tier models.RiskTier) Specification[models.Company] {
	return New(func(_ context.Context, c models.Company) bool {
		return kyc.ClassifyCompany(kyc.ScoreCompany(c)).Tier == tier
	})
}

func VehicleOfCompany(companyID string) Specification[models.Vehicle] {
	return New(func(_ context.Context, v models.Vehicle) bool { return v.CompanyID == companyID })
}

// VehicleMatches searches plate, brand and model.
func VehicleMatches(term string) Specification[models.Vehicle] {
	term = strings.ToLower(strings.TrimSpace(term))
	return New(func(_ context.Context, v models.Vehicle) bool {
		return utils.ContainsAny(strings.Join([]string{v.Plate, v.Brand, v.Model}, " "), []string{term})
	})
}
