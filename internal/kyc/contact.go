package kyc

import (
	"fleet-crm/internal/models"
)

// Contact categories and their caps.
const (
	CategoryIdentification = "identificacao"
	CategoryAddressContact = "endereco_contato"
	CategoryProfessional   = "profissional_renda"
	CategoryBanking        = "bancario"
	CategoryCompliance     = "compliance"
	CategoryAttachments    = "anexos"
)

// ContactBreakdown returns the points earned per category.
func ContactBreakdown(c models.Contact) Breakdown {
	return Breakdown{
		CategoryIdentification: points(allPresent(c.FullName, c.TaxID), 20) +
			points(allPresent(c.DocumentType, c.DocumentNumber), 10),
		CategoryAddressContact: points(allPresent(c.Address.Street, c.Address.City, c.Address.Zip), 15) +
			points(present(c.Email), 5),
		CategoryProfessional: points(present(c.Occupation), 10) +
			points(c.TotalIncome.IsPositive(), 10),
		CategoryBanking: points(present(c.Bank.BankName), 10),
		CategoryCompliance: points(c.DeclaredNotPEP(), 5) +
			declarationPoints(c.Declarations),
		CategoryAttachments: points(c.Attachments.IdentityDoc, 4) +
			points(c.Attachments.AddressProof, 3) +
			points(c.Attachments.IncomeProof, 3),
	}
}

// ScoreContact returns the contact's KYC score in [0,100].
func ScoreContact(c models.Contact) int {
	return ContactBreakdown(c).Total()
}

// ContactPendencies lists missing items for display. It does not affect the score.
func ContactPendencies(c models.Contact) []string {
	var p []string
	if !c.Attachments.IdentityDoc {
		p = append(p, "Documento de identidade")
	}
	if !c.Attachments.AddressProof {
		p = append(p, "Comprovante de residência")
	}
	if !c.Attachments.IncomeProof {
		p = append(p, "Comprovante de renda")
	}
	if !present(c.Bank.BankName) {
		p = append(p, "Dados bancários")
	}
	if c.IsPEP() {
		p = append(p, "Revisão PEP (pessoa politicamente exposta)")
	}
	return p
}

// ContactCompleteness is the share of tracked fields that are filled in.
func ContactCompleteness(c models.Contact) int {
	return percent(
		present(c.FullName),
		present(c.TaxID),
		present(c.DocumentType),
		present(c.DocumentNumber),
		present(c.Email),
		present(c.Phone) || present(c.Mobile) || present(c.WhatsApp),
		present(c.Address.Street),
		present(c.Address.City),
		present(c.Address.State),
		present(c.Address.Zip),
		present(c.Occupation),
		c.TotalIncome.IsPositive(),
		present(c.Bank.BankName),
		c.Attachments.IdentityDoc,
		c.Attachments.AddressProof,
		c.Attachments.IncomeProof,
	)
}
