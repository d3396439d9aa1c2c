package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-crm/internal/models"
)

func TestMemoryStoreAndReplay(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Append(ctx,
		RecordSaved{Base: NewBase("c1", "u1"), Kind: models.SubjectContact, Score: 55, Tier: models.TierHighRisk},
		KYCReviewed{Base: NewBase("c1", "u1"), Kind: models.SubjectContact, Score: 85, Tier: models.TierOK, NextReviewDays: 365},
		RecordSaved{Base: NewBase("k1", "u1"), Kind: models.SubjectCompany, Score: 70},
		MatchConfirmed{Base: NewBase("c1", "u2"), CompanyID: "k1", Score: 70},
	))

	list, err := s.ListBySubject(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, TypeContactSaved, list[0].Type)
	assert.Equal(t, "u2", list[2].ActorID)

	st := Replay(list)
	assert.Equal(t, "c1", st.SubjectID)
	assert.Equal(t, 3, st.Events)
	assert.Equal(t, 85, st.LastScore)
	assert.Equal(t, models.TierOK, st.LastTier)
	assert.Equal(t, "k1", st.ConfirmedCompanyID)
	assert.NotNil(t, st.LastReviewedAt)
	assert.Equal(t, TypeMatchConfirmed, st.LastType)

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, TypeMatchConfirmed, recent[0].Type)
	assert.Equal(t, TypeCompanySaved, recent[1].Type)
}

func TestRecordSavedType(t *testing.T) {
	assert.Equal(t, TypeVehicleSaved, RecordSaved{Kind: models.SubjectVehicle}.Type())
	assert.Equal(t, TypeContactSaved, RecordSaved{}.Type())
}

func TestReplayEmpty(t *testing.T) {
	st := Replay(nil)
	assert.Zero(t, st.Events)
	assert.Empty(t, st.SubjectID)
}
