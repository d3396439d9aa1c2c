package matching

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"fleet-crm/internal/models"
)

var (
	contactNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fleet-crm/contact"))
	companyNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fleet-crm/company"))
)

// EnsureIDs assigns stable ids to records that arrive without one (CLI fixtures, imports).
// The same input always gets the same ids, so repeated runs stay comparable.
// Slices are modified in place.
func EnsureIDs(contacts []models.Contact, companies []models.Company) {
	for i := range contacts {
		if contacts[i].ID == "" {
			key := fmt.Sprintf("%d|%s|%s", i, contacts[i].FullName, contacts[i].TaxID)
			contacts[i].ID = uuid.NewSHA1(contactNamespace, []byte(key)).String()
		}
	}
	for i := range companies {
		if companies[i].ID == "" {
			key := fmt.Sprintf("%d|%s|%s", i, companies[i].LegalName, companies[i].CNPJ)
			companies[i].ID = uuid.NewSHA1(companyNamespace, []byte(key)).String()
		}
	}
}

// WithIDs returns the inputs with missing ids filled in by EnsureIDs. The caller's slices
// are never modified: they are copied only when at least one id is missing.
func WithIDs(contacts []models.Contact, companies []models.Company) ([]models.Contact, []models.Company) {
	if slices.ContainsFunc(contacts, func(c models.Contact) bool { return c.ID == "" }) {
		contacts = slices.Clone(contacts)
	}
	if slices.ContainsFunc(companies, func(c models.Company) bool { return c.ID == "" }) {
		companies = slices.Clone(companies)
	}
	EnsureIDs(contacts, companies)
	return contacts, companies
}
