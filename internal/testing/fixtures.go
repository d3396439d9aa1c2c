package testutil

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"fleet-crm/internal/models"
)

// Contacts returns three contacts: c2 matches k2 at 95, c1 ties k1/k3 at 70, c3 matches nothing.
func Contacts() []models.Contact {
	return []models.Contact{
		{ID: "c2", FullName: "Bruno", Employer: "Frota Sul", Email: "b@frotasul.com.br"},
		{ID: "c1", FullName: "Ana", Employer: "Tech Solutions", Email: "a@techsolutions.com"},
		{ID: "c3", FullName: "Caio", Employer: "Outra Coisa"},
	}
}

func Companies() []models.Company {
	return []models.Company{
		{ID: "k2", TradeName: "Frota Sul", LegalName: "Frota Sul Locacoes Ltda", Email: "x@frotasul.com.br", Website: "frotasul.com.br"},
		{ID: "k1", TradeName: "Tech Solutions", LegalName: "Tech Solutions Ltda", Email: "y@techsolutions.com"},
		{ID: "k3", TradeName: "Tech Solutions", LegalName: "Tech Solutions Servicos Ltda", Email: "z@techsolutions.com"},
	}
}

// Vehicles returns two k2 vehicles: one complete (KYC 100) and one with only a plate (KYC 15).
func Vehicles() []models.Vehicle {
	return []models.Vehicle{
		{
			ID: "v1", CompanyID: "k2", Plate: "ABC1D23", Renavam: "00639884962", Chassis: "9BWZZZ377VT004251",
			Brand: "Fiat", Model: "Strada", Year: 2022, MarketValue: decimal.NewFromInt(98000),
			Insured: true, LicensingUpToDate: true,
			Attachments: models.VehicleAttachments{CRLV: true, InsurancePolicy: true},
		},
		{ID: "v2", CompanyID: "k2", Plate: "XYZ9876"},
	}
}

// RandomDataset builds n contacts and m companies drawn from a small vocabulary so that
// matches, ties and duplicates occur often.
func RandomDataset(seed int64, n, m int) ([]models.Contact, []models.Company) {
	rng := rand.New(rand.NewSource(seed))
	employers := []string{"Frota Sul", "Tech Solutions", "Locadora Central", "Transportes Silva", ""}
	domains := []string{"frotasul.com.br", "techsolutions.com", "central.com.br", "gmail.com"}
	titles := []string{"Diretor Comercial", "Analista", "CEO", "Gerente de Frota", ""}
	cities := []string{"São Paulo", "Porto Alegre", "Curitiba"}
	states := []string{"SP", "RS", "PR"}

	contacts := make([]models.Contact, 0, n)
	for i := 0; i < n; i++ {
		ci := rng.Intn(len(cities))
		contacts = append(contacts, models.Contact{
			ID:       fmt.Sprintf("c%03d", i),
			FullName: fmt.Sprintf("Contato %d", i),
			Employer: employers[rng.Intn(len(employers))],
			Email:    fmt.Sprintf("p%d@%s", i, domains[rng.Intn(len(domains))]),
			Mobile:   fmt.Sprintf("(11) 9%04d-%04d", rng.Intn(3), rng.Intn(3)),
			JobTitle: titles[rng.Intn(len(titles))],
			Address:  models.Address{City: cities[ci], State: states[ci]},
		})
	}

	companies := make([]models.Company, 0, m)
	for i := 0; i < m; i++ {
		ci := rng.Intn(len(cities))
		d := domains[rng.Intn(len(domains))]
		companies = append(companies, models.Company{
			ID:        fmt.Sprintf("k%03d", i),
			TradeName: employers[rng.Intn(len(employers)-1)],
			LegalName: fmt.Sprintf("Empresa %d Ltda", i),
			Email:     "contato@" + d,
			Website:   "https://www." + d,
			WhatsApp:  fmt.Sprintf("(11) 9%04d-%04d", rng.Intn(3), rng.Intn(3)),
			Address:   models.Address{City: cities[ci], State: states[ci]},
		})
	}
	return contacts, companies
}
