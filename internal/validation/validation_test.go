package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"fleet-crm/internal/drafts"
	"fleet-crm/internal/models"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"529.982.247-25", true},
		{"52998224725", true},
		{"111.111.111-11", false},
		{"000.000.000-00", false},
		{"529.982.247-24", false},
		{"529.982.247", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidateCPF(tt.in)
		if tt.valid {
			assert.NoError(t, err, tt.in)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestValidateCNPJ(t *testing.T) {
	assert.NoError(t, ValidateCNPJ("11.222.333/0001-81"))
	assert.NoError(t, ValidateCNPJ("11222333000181"))
	assert.Error(t, ValidateCNPJ("11.222.333/0001-82"))
	assert.Error(t, ValidateCNPJ("22.222.222/2222-22"))
	assert.Error(t, ValidateCNPJ("1122233300018"))
}

func TestValidateOtherDocuments(t *testing.T) {
	assert.NoError(t, ValidateCEP("01310-100"))
	assert.Error(t, ValidateCEP("0131-100"))

	assert.NoError(t, ValidateEmail("ana@frotasul.com.br"))
	assert.NoError(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("ana@"))

	assert.NoError(t, ValidatePhone("(11) 98765-4321"))
	assert.NoError(t, ValidatePhone("+55 11 3333-4444"))
	assert.Error(t, ValidatePhone("(11) 88765-4321"))
	assert.Error(t, ValidatePhone("3333-4444"))

	assert.NoError(t, ValidatePlate("abc-1234"))
	assert.NoError(t, ValidatePlate("BRA2E19"))
	assert.Error(t, ValidatePlate("AB12345"))

	assert.NoError(t, ValidateRenavam("00639884962"))
	assert.NoError(t, ValidateRenavam("639884962"))
	assert.Error(t, ValidateRenavam("00639884961"))
	assert.Error(t, ValidateRenavam("11111111111"))

	assert.NoError(t, ValidateDocument("CPF", "529.982.247-25"))
	assert.Error(t, ValidateDocument("passport", "x"))
}

func TestMasks(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatCPF("52998224725"))
	assert.Equal(t, "529.98", FormatCPF("52998"))
	assert.Equal(t, "11.222.333/0001-81", FormatCNPJ("11222333000181"))
	assert.Equal(t, "01310-100", FormatCEP("01310100"))
	assert.Equal(t, "(11) 98765-4321", FormatPhone("11987654321"))
	assert.Equal(t, "(11) 3333-4444", FormatPhone("+55 11 3333 4444"))
	assert.Equal(t, "11.222.333/0001-81", FormatTaxID("11222333000181"))
	assert.Equal(t, "", FormatCEP(""))
	assert.Equal(t, "52998224725", OnlyDigits("529.982.247-25"))
}

func TestValidator_Structs(t *testing.T) {
	v := New()

	ok := models.Contact{
		FullName:    "Ana Souza",
		TaxID:       "529.982.247-25",
		Email:       "ana@x.com",
		Mobile:      "(11) 98765-4321",
		Address:     models.Address{Zip: "01310-100", State: "SP"},
		TotalIncome: decimal.NewFromInt(1000),
	}
	assert.Nil(t, v.ValidateStructured(ok))
	assert.NoError(t, v.Validate(ok))

	bad := ok
	bad.FullName = ""
	bad.TaxID = "111.111.111-11"
	bad.Address.Zip = "123"
	bad.TotalIncome = decimal.NewFromInt(-5)
	errs := v.ValidateStructured(bad)
	assert.Equal(t, "Campo obrigatório", errs["full_name"])
	assert.Equal(t, "CPF inválido", errs["tax_id"])
	assert.Equal(t, "CEP deve ter 8 dígitos", errs["address.zip"])
	assert.Contains(t, errs, "total_income")
	assert.Error(t, v.Validate(bad))

	company := models.Company{LegalName: "Frota Sul Ltda", CNPJ: "11.222.333/0001-82"}
	assert.Equal(t, "CNPJ inválido", v.ValidateStructured(company)["cnpj"])

	vehicle := models.Vehicle{Plate: "BRA2E19", Renavam: "00639884962", Year: 2020}
	assert.Nil(t, v.ValidateStructured(vehicle))
	vehicle.Plate = "??"
	assert.Equal(t, "Placa inválida", v.ValidateStructured(vehicle)["plate"])
}

func TestValidateDraft(t *testing.T) {
	errs := ValidateDraft(drafts.WizardContact, map[string]any{
		"full_name": "A",
		"tax_id":    "111.111.111-11",
		"email":     "",
		"zip":       42.0,
		"notes":     "ignored",
	})
	assert.Len(t, errs, 3)
	assert.Contains(t, errs, "full_name")
	assert.Contains(t, errs, "tax_id")
	assert.Contains(t, errs, "zip")

	assert.Empty(t, ValidateDraft(drafts.WizardVehicle, map[string]any{"plate": "BRA2E19"}))
	assert.Contains(t, ValidateDraft("boat", nil), "_wizard")
}
