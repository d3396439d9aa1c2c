package kyc

import (
	"time"

	"fleet-crm/internal/models"
)

// Scorer builds KYC profiles. now is injectable for tests.
type Scorer struct {
	now func() time.Time
}

func NewScorer() *Scorer { return &Scorer{now: time.Now} }

func (s *Scorer) ContactProfile(c models.Contact) models.KYCProfile {
	score := ScoreContact(c)
	cl := Classify(score)
	return models.KYCProfile{
		Subject:        models.SubjectContact,
		SubjectID:      c.ID,
		Completeness:   ContactCompleteness(c),
		Score:          score,
		Tier:           cl.Tier,
		NextReviewDays: cl.NextReviewDays,
		Pendencies:     nonNil(ContactPendencies(c)),
		ComputedAt:     s.now().UTC(),
	}
}

func (s *Scorer) CompanyProfile(c models.Company) models.KYCProfile {
	score := ScoreCompany(c)
	cl := ClassifyCompany(score)
	return models.KYCProfile{
		Subject:        models.SubjectCompany,
		SubjectID:      c.ID,
		Completeness:   CompanyCompleteness(c),
		Score:          score,
		Tier:           cl.Tier,
		NextReviewDays: cl.NextReviewDays,
		Pendencies:     nonNil(CompanyPendencies(c)),
		ComputedAt:     s.now().UTC(),
	}
}

func (s *Scorer) VehicleProfile(v models.Vehicle) models.KYCProfile {
	score := ScoreVehicle(v)
	cl := Classify(score)
	return models.KYCProfile{
		Subject:        models.SubjectVehicle,
		SubjectID:      v.ID,
		Completeness:   VehicleCompleteness(v),
		Score:          score,
		Tier:           cl.Tier,
		NextReviewDays: cl.NextReviewDays,
		Pendencies:     nonNil(VehiclePendencies(v)),
		ComputedAt:     s.now().UTC(),
	}
}

// NextReviewAt returns when a profile is due for review.
func NextReviewAt(p models.KYCProfile) time.Time {
	return p.ComputedAt.AddDate(0, 0, p.NextReviewDays)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
