package models

import "time"

// MatchResult is one contact↔company suggestion produced by a match run.
type MatchResult struct {
	ContactID   string   `json:"contact_id"`
	ContactName string   `json:"contact_name"`
	CompanyID   string   `json:"company_id"`
	CompanyName string   `json:"company_name"`
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons"`
}

// ConfirmedMatch is a suggestion accepted by an operator; the only match state persisted.
type ConfirmedMatch struct {
	ContactID   string    `json:"contact_id"`
	CompanyID   string    `json:"company_id"`
	Score       float64   `json:"score"`
	Reasons     []string  `json:"reasons"`
	ConfirmedBy string    `json:"confirmed_by"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
