package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type VehicleAttachments struct {
	CRLV            bool `json:"crlv" yaml:"crlv"`
	InsurancePolicy bool `json:"insurance_policy" yaml:"insurance_policy"`
}

// Vehicle belongs to a company's fleet but is scored on its own.
type Vehicle struct {
	ID                string             `json:"id" yaml:"id"`
	CompanyID         string             `json:"company_id" yaml:"company_id"`
	Plate             string             `json:"plate" yaml:"plate" validate:"omitempty,plate"`
	Renavam           string             `json:"renavam,omitempty" yaml:"renavam" validate:"omitempty,renavam"`
	Chassis           string             `json:"chassis,omitempty" yaml:"chassis" validate:"omitempty,len=17"`
	Brand             string             `json:"brand,omitempty" yaml:"brand"`
	Model             string             `json:"model,omitempty" yaml:"model"`
	Year              int                `json:"year,omitempty" yaml:"year" validate:"omitempty,gte=1950,lte=2100"`
	Category          string             `json:"category,omitempty" yaml:"category"`
	MarketValue       decimal.Decimal    `json:"market_value" yaml:"market_value" validate:"omitempty,gte=0"`
	Insured           bool               `json:"insured" yaml:"insured"`
	LicensingUpToDate bool               `json:"licensing_up_to_date" yaml:"licensing_up_to_date"`
	Attachments       VehicleAttachments `json:"attachments" yaml:"attachments"`
	CreatedAt         time.Time          `json:"created_at" yaml:"-"`
	UpdatedAt         time.Time          `json:"updated_at" yaml:"-"`
}
