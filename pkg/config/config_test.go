package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "fleet-crm/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MATCH_MIN_SCORE", "")
	t.Setenv("DATABASE_URL", "")
	cfg := Load()
	assert.Equal(t, 60.0, cfg.MatchMinScore)
	assert.True(t, cfg.StackNameRules)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "99999"
	cfg.MatchMinScore = 120
	cfg.RedisURL = "localhost:6379"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrValidation))
	for _, field := range []string{"PORT", "MATCH_MIN_SCORE", "REDIS_URL", "LOG_FORMAT"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestSummaryMasksSecrets(t *testing.T) {
	cfg := Load()
	cfg.OpenAIAPIKey = "sk-abcdefgh"
	assert.Equal(t, "sk-a*******", cfg.Summary()["openai_api_key"])
}

func TestWatcherPicksUpDotEnvChanges(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MATCH_MIN_SCORE=60\n"), 0o644))
	t.Setenv("CONFIG_FILE", envFile)
	t.Setenv("MATCH_MIN_SCORE", "60")

	w := NewWatcher(time.Hour)
	defer w.Close()
	ch := w.Subscribe()

	require.NoError(t, os.WriteFile(envFile, []byte("MATCH_MIN_SCORE=75\n"), 0o644))
	w.lastMTime = time.Time{}
	w.checkOnce()

	select {
	case chg := <-ch:
		require.NoError(t, chg.Err)
		assert.Equal(t, []string{"MatchMinScore"}, chg.Fields)
		assert.Equal(t, 60.0, chg.Old.MatchMinScore)
		assert.Equal(t, 75.0, chg.New.MatchMinScore)
	default:
		t.Fatal("expected a change notification")
	}
	assert.Equal(t, 75.0, w.Current().MatchMinScore)
}

func TestWatcherRejectsInvalidConfig(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	w := NewWatcher(time.Hour)
	defer w.Close()
	ch := w.Subscribe()

	prev := w.Current()
	w.load = func() *Config {
		c := Load()
		c.MatchWorkers = 0
		return c
	}
	w.checkOnce()

	chg := <-ch
	assert.Error(t, chg.Err)
	assert.Same(t, prev, w.Current())
}
