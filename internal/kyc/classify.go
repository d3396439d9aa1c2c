// Package kyc computes know-your-customer completeness and risk for contacts,
// companies and vehicles.
//
// Scores are additive point tables with fixed category caps. Every point is gated by
// the presence of the source field, so a score never decreases when a field is filled.
package kyc

import (
	"math"
	"strings"

	"fleet-crm/internal/models"
)

// Classification thresholds and review intervals.
const (
	OKThreshold        = 80
	AttentionThreshold = 60

	ReviewDaysOK        = 365
	ReviewDaysAttention = 180
	ReviewDaysHighRisk  = 90
)

// Classification is the tier and review interval derived from a score.
type Classification struct {
	Tier           models.RiskTier `json:"tier"`
	NextReviewDays int             `json:"next_review_days"`
}

// Classify maps a contact or vehicle score to its tier.
func Classify(score int) Classification {
	switch {
	case score >= OKThreshold:
		return Classification{Tier: models.TierOK, NextReviewDays: ReviewDaysOK}
	case score >= AttentionThreshold:
		return Classification{Tier: models.TierAttention, NextReviewDays: ReviewDaysAttention}
	default:
		return Classification{Tier: models.TierHighRisk, NextReviewDays: ReviewDaysHighRisk}
	}
}

// ClassifyCompany uses the same thresholds with the corporate risk vocabulary.
func ClassifyCompany(score int) Classification {
	switch {
	case score >= OKThreshold:
		return Classification{Tier: models.TierLowRisk, NextReviewDays: ReviewDaysOK}
	case score >= AttentionThreshold:
		return Classification{Tier: models.TierMediumRisk, NextReviewDays: ReviewDaysAttention}
	default:
		return Classification{Tier: models.TierHighRisk, NextReviewDays: ReviewDaysHighRisk}
	}
}

// Breakdown holds points per category, keyed by category name.
type Breakdown map[string]int

// Total sums the categories and clamps the result to [0,100].
func (b Breakdown) Total() int {
	t := 0
	for _, v := range b {
		t += v
	}
	return clamp(t)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func present(s string) bool { return strings.TrimSpace(s) != "" }

func allPresent(values ...string) bool {
	for _, v := range values {
		if !present(v) {
			return false
		}
	}
	return true
}

// declarationPoints converts accepted declarations (out of 4) into up to 5 points.
func declarationPoints(d models.Declarations) int {
	return int(math.Round(float64(d.Count()) / 4 * 5))
}

func points(ok bool, p int) int {
	if ok {
		return p
	}
	return 0
}

// percent returns the rounded share of true values.
func percent(flags ...bool) int {
	if len(flags) == 0 {
		return 0
	}
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return int(math.Round(float64(n) / float64(len(flags)) * 100))
}
