package kyc

import (
	"sort"

	"fleet-crm/internal/models"
)

const (
	CategoryVehicleDescription = "descricao"
	CategoryInsurance          = "seguro"
	CategoryLicensing          = "licenciamento"
)

// VehicleBreakdown: identification 40, description 20, insurance 15, licensing 15, attachments 10.
func VehicleBreakdown(v models.Vehicle) Breakdown {
	return Breakdown{
		CategoryIdentification: points(present(v.Plate), 15) +
			points(present(v.Renavam), 15) +
			points(present(v.Chassis), 10),
		CategoryVehicleDescription: points(allPresent(v.Brand, v.Model), 10) +
			points(v.Year > 0, 5) +
			points(v.MarketValue.IsPositive(), 5),
		CategoryInsurance:   points(v.Insured, 15),
		CategoryLicensing:   points(v.LicensingUpToDate, 15),
		CategoryAttachments: points(v.Attachments.CRLV, 6) + points(v.Attachments.InsurancePolicy, 4),
	}
}

func ScoreVehicle(v models.Vehicle) int {
	return VehicleBreakdown(v).Total()
}

func VehiclePendencies(v models.Vehicle) []string {
	var p []string
	if !v.Attachments.CRLV {
		p = append(p, "CRLV")
	}
	if !v.Attachments.InsurancePolicy {
		p = append(p, "Apólice de seguro")
	}
	if !v.LicensingUpToDate {
		p = append(p, "Licenciamento em atraso")
	}
	if !v.Insured {
		p = append(p, "Veículo sem seguro")
	}
	return p
}

func VehicleCompleteness(v models.Vehicle) int {
	return percent(
		present(v.Plate),
		present(v.Renavam),
		present(v.Chassis),
		present(v.Brand),
		present(v.Model),
		v.Year > 0,
		present(v.Category),
		v.MarketValue.IsPositive(),
		v.Attachments.CRLV,
		v.Attachments.InsurancePolicy,
	)
}

// SummarizeFleet aggregates vehicle KYC for display next to a company.
// The company's own score is never derived from it.
func SummarizeFleet(companyID string, vehicles []models.Vehicle) models.FleetSummary {
	s := models.FleetSummary{
		CompanyID: companyID,
		Vehicles:  len(vehicles),
		ByTier:    map[models.RiskTier]int{},
	}
	if len(vehicles) == 0 {
		return s
	}

	total := 0
	pend := map[string]bool{}
	for _, v := range vehicles {
		score := ScoreVehicle(v)
		total += score
		s.ByTier[Classify(score).Tier]++
		for _, p := range VehiclePendencies(v) {
			label := p
			if v.Plate != "" {
				label = v.Plate + ": " + p
			}
			pend[label] = true
		}
	}
	s.AverageScore = float64(total) / float64(len(vehicles))
	for p := range pend {
		s.Pendencies = append(s.Pendencies, p)
	}
	sort.Strings(s.Pendencies)
	return s
}
