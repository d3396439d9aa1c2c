package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is shared by contacts and companies.
type Address struct {
	Street   string `json:"street" yaml:"street"`
	Number   string `json:"number,omitempty" yaml:"number"`
	District string `json:"district,omitempty" yaml:"district"`
	City     string `json:"city" yaml:"city"`
	State    string `json:"state" yaml:"state" validate:"omitempty,len=2"`
	Zip      string `json:"zip" yaml:"zip" validate:"omitempty,cep"`
}

// BankAccount holds the payout account; only the bank name counts towards KYC.
type BankAccount struct {
	BankName string `json:"bank_name" yaml:"bank_name"`
	Agency   string `json:"agency,omitempty" yaml:"agency"`
	Account  string `json:"account,omitempty" yaml:"account"`
}

// Declarations are the four compliance statements signed during onboarding.
type Declarations struct {
	TruthfulInformation bool `json:"truthful_information" yaml:"truthful_information"`
	LawfulFunds         bool `json:"lawful_funds" yaml:"lawful_funds"`
	DataProcessing      bool `json:"data_processing" yaml:"data_processing"`
	UpdateCommitment    bool `json:"update_commitment" yaml:"update_commitment"`
}

// Count returns how many declarations were accepted.
func (d Declarations) Count() int {
	n := 0
	for _, ok := range []bool{d.TruthfulInformation, d.LawfulFunds, d.DataProcessing, d.UpdateCommitment} {
		if ok {
			n++
		}
	}
	return n
}

// ContactAttachments marks which documents were uploaded for a contact.
type ContactAttachments struct {
	IdentityDoc  bool `json:"identity_doc" yaml:"identity_doc"`
	AddressProof bool `json:"address_proof" yaml:"address_proof"`
	IncomeProof  bool `json:"income_proof" yaml:"income_proof"`
}

// Contact is an individual (pessoa física).
type Contact struct {
	ID             string             `json:"id" yaml:"id"`
	FullName       string             `json:"full_name" yaml:"full_name" validate:"required"`
	TaxID          string             `json:"tax_id" yaml:"tax_id" validate:"omitempty,cpf"`
	DocumentType   string             `json:"document_type,omitempty" yaml:"document_type" validate:"omitempty,oneof=RG CNH PASSAPORTE RNE"`
	DocumentNumber string             `json:"document_number,omitempty" yaml:"document_number"`
	Email          string             `json:"email,omitempty" yaml:"email" validate:"omitempty,email"`
	Phone          string             `json:"phone,omitempty" yaml:"phone" validate:"omitempty,br_phone"`
	Mobile         string             `json:"mobile,omitempty" yaml:"mobile" validate:"omitempty,br_phone"`
	WhatsApp       string             `json:"whatsapp,omitempty" yaml:"whatsapp" validate:"omitempty,br_phone"`
	Address        Address            `json:"address" yaml:"address"`
	Employer       string             `json:"employer,omitempty" yaml:"employer"`
	JobTitle       string             `json:"job_title,omitempty" yaml:"job_title"`
	Department     string             `json:"department,omitempty" yaml:"department"`
	Occupation     string             `json:"occupation,omitempty" yaml:"occupation"`
	TotalIncome    decimal.Decimal    `json:"total_income" yaml:"total_income" validate:"omitempty,gte=0"`
	Bank           BankAccount        `json:"bank" yaml:"bank"`
	PEP            *bool              `json:"pep" yaml:"pep"`
	Declarations   Declarations       `json:"declarations" yaml:"declarations"`
	Attachments    ContactAttachments `json:"attachments" yaml:"attachments"`
	CreatedAt      time.Time          `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time          `json:"updated_at" yaml:"-"`
}

// DeclaredNotPEP reports whether the contact explicitly answered "not politically exposed".
func (c Contact) DeclaredNotPEP() bool { return c.PEP != nil && !*c.PEP }

// IsPEP reports whether the contact was flagged as politically exposed.
func (c Contact) IsPEP() bool { return c.PEP != nil && *c.PEP }

// Phones returns the contact's phone numbers in match order.
func (c Contact) Phones() []string { return []string{c.Phone, c.Mobile, c.WhatsApp} }
