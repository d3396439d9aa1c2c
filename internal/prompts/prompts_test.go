package prompts

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-crm/internal/models"
	errs "fleet-crm/pkg/errors"
)

func TestEmbeddedTemplatesLoad(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{KYCSystem, KYCUser, MatchSystem, MatchUser}, m.Names())
}

func TestRenderMatchUser(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	out, err := m.Render(MatchUser, models.MatchResult{
		ContactName: "Ana", CompanyName: "Tech Solutions", Score: 70,
		Reasons: []string{"Mesmo domínio de email (techsolutions.com)"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Empresa sugerida: Tech Solutions")
	assert.Contains(t, out, "Pontuação: 70%")
	assert.Contains(t, out, "- Mesmo domínio de email (techsolutions.com)")
}

func TestRenderUnknown(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)
	_, err = m.Render("nope", nil)
	assert.True(t, errs.Is(err, errs.ErrValidation))
}

func TestBrokenTemplate(t *testing.T) {
	_, err := NewManagerFS(fstest.MapFS{"bad.txt.tmpl": {Data: []byte("{{.Open")}})
	assert.True(t, errs.Is(err, errs.ErrBiz))
}
