package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanoutWritesConsoleAndJSON(t *testing.T) {
	var console, file bytes.Buffer
	l := NewWithWriters(&console, &file, LogConfig{Level: LevelInfo, Format: "text"})

	l.WithComponent("matching").Info("run finished", Int("results", 3))
	l.Debug("hidden")

	assert.Contains(t, console.String(), "run finished")
	assert.Contains(t, console.String(), "component=matching")
	assert.NotContains(t, console.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(file.Bytes()), &entry))
	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, float64(3), entry["results"])
}

func TestContextValuesAndErrors(t *testing.T) {
	var file bytes.Buffer
	l := NewWithWriters(&bytes.Buffer{}, &file, LogConfig{Level: LevelDebug})

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "u-7")
	l.WithComponent("api").WithContext(ctx).Error("save failed", errors.New("boom"))

	line := file.String()
	assert.True(t, strings.Contains(line, `"request_id":"req-1"`), line)
	assert.Contains(t, line, `"user_id":"u-7"`)
	assert.Contains(t, line, `"error":"boom"`)
	assert.Contains(t, line, `"component":"api"`)
	assert.Contains(t, line, `"caller":"logger_test.go`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
