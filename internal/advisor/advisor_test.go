package advisor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-crm/internal/models"
	errs "fleet-crm/pkg/errors"
)

type mockChat struct {
	mu    sync.Mutex
	calls int
	last  openai.ChatCompletionRequest
	reply string
	err   error
}

func (m *mockChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = req
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "  " + m.reply + "\n"}}},
		Usage:   openai.Usage{PromptTokens: 1000, CompletionTokens: 1000},
	}, nil
}

func profile() models.KYCProfile {
	return models.KYCProfile{
		Subject: models.SubjectContact, SubjectID: "c1", Score: 65, Completeness: 70,
		Tier: models.TierAttention, NextReviewDays: 180,
		Pendencies: []string{"Comprovante de renda", "Dados bancários"},
	}
}

func TestDisabledWithoutKey(t *testing.T) {
	a, err := New(Config{}, nil)
	require.NoError(t, err)
	assert.False(t, a.Enabled())
	_, err = a.KYCNote(context.Background(), "Ana", profile())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestKYCNote(t *testing.T) {
	mc := &mockChat{reply: "Cadastro em atenção."}
	a, err := NewWithClient(mc, Config{MonthlyLimitUSD: 10}, nil)
	require.NoError(t, err)

	n, err := a.KYCNote(context.Background(), "Ana", profile())
	require.NoError(t, err)
	assert.Equal(t, "Cadastro em atenção.", n.Text)
	assert.False(t, n.Cached)
	assert.Equal(t, openai.GPT4oMini, mc.last.Model)
	require.Len(t, mc.last.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, mc.last.Messages[0].Role)
	assert.Contains(t, mc.last.Messages[1].Content, "Cadastro: Ana (contact)")
	assert.Contains(t, mc.last.Messages[1].Content, "Comprovante de renda; Dados bancários")

	again, err := a.KYCNote(context.Background(), "Ana", profile())
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, 1, mc.calls)

	st := a.CostStats()
	assert.Equal(t, 2000, st.TotalTokens)
	assert.Equal(t, 1, st.TotalRequests)
	assert.Equal(t, "0.00075", st.EstimatedCostUSD.String())
}

func TestMatchNote(t *testing.T) {
	mc := &mockChat{reply: "Sinais fortes."}
	a, err := NewWithClient(mc, Config{}, nil)
	require.NoError(t, err)

	_, err = a.MatchNote(context.Background(), models.MatchResult{
		ContactName: "Ana", CompanyName: "Tech Solutions", Score: 70, Reasons: []string{"Mesmo estado (SP)"},
	})
	require.NoError(t, err)
	assert.Contains(t, mc.last.Messages[1].Content, "- Mesmo estado (SP)")
}

func TestUpstreamError(t *testing.T) {
	a, err := NewWithClient(&mockChat{err: errors.New("boom")}, Config{}, nil)
	require.NoError(t, err)
	_, err = a.MatchNote(context.Background(), models.MatchResult{ContactName: "x"})
	assert.True(t, errs.Is(err, errs.ErrExternal))
}

func TestBudget(t *testing.T) {
	c := NewCostTracker()
	assert.False(t, c.Exceeded(0))
	c.AddUsage(1_000_000, 0)
	assert.True(t, c.Exceeded(0.1))
	assert.False(t, c.Exceeded(1))

	a, err := NewWithClient(&mockChat{}, Config{MonthlyLimitUSD: 0.0001}, nil)
	require.NoError(t, err)
	a.costs.AddUsage(1000, 0)
	_, err = a.KYCNote(context.Background(), "Ana", profile())
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}
