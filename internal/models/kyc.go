package models

import "time"

// SubjectKind identifies what a KYC profile describes.
type SubjectKind string

const (
	SubjectContact SubjectKind = "contact"
	SubjectCompany SubjectKind = "company"
	SubjectVehicle SubjectKind = "vehicle"
)

// RiskTier is the classification derived from a KYC score.
type RiskTier string

const (
	TierOK        RiskTier = "ok"
	TierAttention RiskTier = "attention"
	TierHighRisk  RiskTier = "high_risk"

	TierLowRisk    RiskTier = "low_risk"
	TierMediumRisk RiskTier = "medium_risk"
)

// KYCProfile bundles the computed KYC view of one record.
type KYCProfile struct {
	Subject        SubjectKind `json:"subject"`
	SubjectID      string      `json:"subject_id"`
	Completeness   int         `json:"completeness"`
	Score          int         `json:"score"`
	Tier           RiskTier    `json:"tier"`
	NextReviewDays int         `json:"next_review_days"`
	Pendencies     []string    `json:"pendencies"`
	ComputedAt     time.Time   `json:"computed_at"`
}

// FleetSummary aggregates vehicle KYC for display next to a company.
// It never changes the company's own score.
type FleetSummary struct {
	CompanyID    string           `json:"company_id"`
	Vehicles     int              `json:"vehicles"`
	AverageScore float64          `json:"average_score"`
	ByTier       map[RiskTier]int `json:"by_tier"`
	Pendencies   []string         `json:"pendencies"`
}
