package kyc

import (
	"fleet-crm/internal/models"
)

// CategoryBusiness is the company-only business profile category.
const CategoryBusiness = "perfil_empresarial"

// CompanyBreakdown returns the company's points per category.
// Caps: identification 30, address/contact 20, business profile 20, banking 10,
// compliance 10, attachments 10.
func CompanyBreakdown(c models.Company) Breakdown {
	return Breakdown{
		CategoryIdentification: points(allPresent(c.LegalName, c.CNPJ), 20) +
			points(present(c.StateRegistration), 5) +
			points(c.FoundedAt != nil && !c.FoundedAt.IsZero(), 5),
		CategoryAddressContact: points(allPresent(c.Address.Street, c.Address.City, c.Address.Zip), 10) +
			points(present(c.Email), 5) +
			points(present(c.Phone) || present(c.WhatsApp), 5),
		CategoryBusiness: points(present(c.Segment), 5) +
			points(present(c.Size), 5) +
			points(present(c.RevenueBracket), 10),
		CategoryBanking: points(present(c.Bank.BankName), 10),
		CategoryCompliance: points(c.DeclaredNotPEP(), 5) +
			declarationPoints(c.Declarations),
		CategoryAttachments: points(c.Attachments.ArticlesOfIncorporation, 4) +
			points(c.Attachments.CNPJCard, 3) +
			points(c.Attachments.AddressProof, 3),
	}
}

// ScoreCompany returns the company's own KYC score. Vehicles never contribute.
func ScoreCompany(c models.Company) int {
	return CompanyBreakdown(c).Total()
}

func CompanyPendencies(c models.Company) []string {
	var p []string
	if !c.Attachments.ArticlesOfIncorporation {
		p = append(p, "Contrato social")
	}
	if !c.Attachments.CNPJCard {
		p = append(p, "Cartão CNPJ")
	}
	if !c.Attachments.AddressProof {
		p = append(p, "Comprovante de endereço")
	}
	if !present(c.Bank.BankName) {
		p = append(p, "Dados bancários")
	}
	if c.IsRepresentativePEP() {
		p = append(p, "Revisão PEP do representante legal")
	}
	return p
}

func CompanyCompleteness(c models.Company) int {
	return percent(
		present(c.LegalName),
		present(c.TradeName),
		present(c.CNPJ),
		present(c.StateRegistration),
		c.FoundedAt != nil && !c.FoundedAt.IsZero(),
		present(c.Email),
		present(c.Phone) || present(c.WhatsApp),
		present(c.Website),
		present(c.Address.Street),
		present(c.Address.City),
		present(c.Address.State),
		present(c.Address.Zip),
		present(c.Segment),
		present(c.Size),
		present(c.RevenueBracket),
		present(c.Bank.BankName),
		c.Attachments.ArticlesOfIncorporation,
		c.Attachments.CNPJCard,
		c.Attachments.AddressProof,
	)
}
