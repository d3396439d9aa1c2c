package models

import "time"

// CompanyAttachments marks which corporate documents were uploaded.
type CompanyAttachments struct {
	ArticlesOfIncorporation bool `json:"articles_of_incorporation" yaml:"articles_of_incorporation"`
	CNPJCard                bool `json:"cnpj_card" yaml:"cnpj_card"`
	AddressProof            bool `json:"address_proof" yaml:"address_proof"`
}

// Company is a legal entity (pessoa jurídica).
type Company struct {
	ID                string             `json:"id" yaml:"id"`
	LegalName         string             `json:"legal_name" yaml:"legal_name" validate:"required"`
	TradeName         string             `json:"trade_name,omitempty" yaml:"trade_name"`
	CNPJ              string             `json:"cnpj" yaml:"cnpj" validate:"omitempty,cnpj"`
	StateRegistration string             `json:"state_registration,omitempty" yaml:"state_registration"`
	FoundedAt         *time.Time         `json:"founded_at,omitempty" yaml:"founded_at"`
	Email             string             `json:"email,omitempty" yaml:"email" validate:"omitempty,email"`
	Phone             string             `json:"phone,omitempty" yaml:"phone" validate:"omitempty,br_phone"`
	WhatsApp          string             `json:"whatsapp,omitempty" yaml:"whatsapp" validate:"omitempty,br_phone"`
	Website           string             `json:"website,omitempty" yaml:"website"`
	Address           Address            `json:"address" yaml:"address"`
	Segment           string             `json:"segment,omitempty" yaml:"segment"`
	Size              string             `json:"size,omitempty" yaml:"size" validate:"omitempty,oneof=MEI ME EPP MEDIO GRANDE"`
	RevenueBracket    string             `json:"revenue_bracket,omitempty" yaml:"revenue_bracket"`
	Bank              BankAccount        `json:"bank" yaml:"bank"`
	RepresentativePEP *bool              `json:"representative_pep" yaml:"representative_pep"`
	Declarations      Declarations       `json:"declarations" yaml:"declarations"`
	Attachments       CompanyAttachments `json:"attachments" yaml:"attachments"`
	CreatedAt         time.Time          `json:"created_at" yaml:"-"`
	UpdatedAt         time.Time          `json:"updated_at" yaml:"-"`
}

// Phones returns the company's phone numbers in match order.
func (c Company) Phones() []string { return []string{c.Phone, c.WhatsApp} }

// DeclaredNotPEP reports whether the legal representative was declared not politically exposed.
func (c Company) DeclaredNotPEP() bool { return c.RepresentativePEP != nil && !*c.RepresentativePEP }

func (c Company) IsRepresentativePEP() bool { return c.RepresentativePEP != nil && *c.RepresentativePEP }

// DisplayName prefers the trade name.
func (c Company) DisplayName() string {
	if c.TradeName != "" {
		return c.TradeName
	}
	return c.LegalName
}
