package events

import (
	"context"
	"encoding/json"
	"time"

	"fleet-crm/internal/models"
)

// Event is an audit record about one subject (contact, company, vehicle or match run).
// Payloads stay small and JSON-friendly so they can be replayed without the entity tables.
type Event interface {
	Type() string
	SubjectID() string
	Actor() string
	Timestamp() time.Time
	Payload() map[string]any
}

// Base contains common event metadata.
type Base struct {
	Ts      time.Time `json:"ts"`
	Subject string    `json:"subject_id"`
	ActorID string    `json:"actor_id,omitempty"`
}

func (b Base) Timestamp() time.Time { return b.Ts }
func (b Base) SubjectID() string    { return b.Subject }
func (b Base) Actor() string        { return b.ActorID }

// NewBase stamps an event with the current UTC time.
func NewBase(subjectID, actorID string) Base {
	return Base{Ts: time.Now().UTC(), Subject: subjectID, ActorID: actorID}
}

const (
	TypeContactSaved      = "contact.saved"
	TypeCompanySaved      = "company.saved"
	TypeVehicleSaved      = "vehicle.saved"
	TypeMatchConfirmed    = "match.confirmed"
	TypeKYCReviewed       = "kyc.reviewed"
	TypeMatchRunCompleted = "match.run.completed"
)

// RecordSaved is emitted after a whole-record write of a contact, company or vehicle.
type RecordSaved struct {
	Base
	Kind  models.SubjectKind `json:"kind"`
	Score int                `json:"score"`
	Tier  models.RiskTier    `json:"tier"`
}

func (e RecordSaved) Type() string {
	switch e.Kind {
	case models.SubjectCompany:
		return TypeCompanySaved
	case models.SubjectVehicle:
		return TypeVehicleSaved
	default:
		return TypeContactSaved
	}
}

func (e RecordSaved) Payload() map[string]any {
	return map[string]any{"kind": e.Kind, "score": e.Score, "tier": e.Tier}
}

// MatchConfirmed is emitted when an operator accepts a suggestion. Subject is the contact.
type MatchConfirmed struct {
	Base
	CompanyID string  `json:"company_id"`
	Score     float64 `json:"score"`
}

func (e MatchConfirmed) Type() string { return TypeMatchConfirmed }
func (e MatchConfirmed) Payload() map[string]any {
	return map[string]any{"company_id": e.CompanyID, "score": e.Score}
}

// KYCReviewed is emitted when a profile is computed on request.
type KYCReviewed struct {
	Base
	Kind           models.SubjectKind `json:"kind"`
	Score          int                `json:"score"`
	Tier           models.RiskTier    `json:"tier"`
	NextReviewDays int                `json:"next_review_days"`
	Pendencies     int                `json:"pendencies"`
}

func (e KYCReviewed) Type() string { return TypeKYCReviewed }
func (e KYCReviewed) Payload() map[string]any {
	return map[string]any{
		"kind": e.Kind, "score": e.Score, "tier": e.Tier,
		"next_review_days": e.NextReviewDays, "pendencies": e.Pendencies,
	}
}

// MatchRunCompleted is emitted by the run engine. Subject is the run id.
type MatchRunCompleted struct {
	Base
	Contacts  int   `json:"contacts"`
	Companies int   `json:"companies"`
	Results   int   `json:"results"`
	ElapsedMs int64 `json:"elapsed_ms"`
}

func (e MatchRunCompleted) Type() string { return TypeMatchRunCompleted }
func (e MatchRunCompleted) Payload() map[string]any {
	return map[string]any{"contacts": e.Contacts, "companies": e.Companies, "results": e.Results, "elapsed_ms": e.ElapsedMs}
}

// Store persists events and lists them per subject in append order.
type Store interface {
	Append(ctx context.Context, ev ...Event) error
	ListBySubject(ctx context.Context, subjectID string) ([]StoredEvent, error)
	Recent(ctx context.Context, limit int) ([]StoredEvent, error)
}

// StoredEvent is the durable representation.
type StoredEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	SubjectID string          `json:"subject_id"`
	ActorID   string          `json:"actor_id,omitempty"`
	Ts        time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// SubjectState is what replaying a subject's history yields.
type SubjectState struct {
	SubjectID          string          `json:"subject_id"`
	Events             int             `json:"events"`
	LastType           string          `json:"last_type"`
	LastUpdated        time.Time       `json:"last_updated"`
	LastScore          int             `json:"last_score"`
	LastTier           models.RiskTier `json:"last_tier,omitempty"`
	ConfirmedCompanyID string          `json:"confirmed_company_id,omitempty"`
	LastReviewedAt     *time.Time      `json:"last_reviewed_at,omitempty"`
}

// Replay applies events in order and rebuilds the subject's state.
func Replay(list []StoredEvent) *SubjectState {
	st := &SubjectState{}
	for _, se := range list {
		st.SubjectID = se.SubjectID
		st.Events++
		st.LastType = se.Type
		st.LastUpdated = se.Ts

		var p struct {
			Score     float64         `json:"score"`
			Tier      models.RiskTier `json:"tier"`
			CompanyID string          `json:"company_id"`
		}
		_ = json.Unmarshal(se.Payload, &p)

		switch se.Type {
		case TypeContactSaved, TypeCompanySaved, TypeVehicleSaved:
			st.LastScore = int(p.Score)
			st.LastTier = p.Tier
		case TypeKYCReviewed:
			st.LastScore = int(p.Score)
			st.LastTier = p.Tier
			ts := se.Ts
			st.LastReviewedAt = &ts
		case TypeMatchConfirmed:
			st.ConfirmedCompanyID = p.CompanyID
		}
	}
	return st
}

func encode(e Event) (json.RawMessage, error) {
	payload := e.Payload()
	if payload == nil {
		payload = map[string]any{}
	}
	return json.Marshal(payload)
}
