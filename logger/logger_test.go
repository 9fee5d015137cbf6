package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestZeroLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("warn", false, &buf)

	log.Debug().Msg("hidden")
	log.Info().Msg("hidden")
	assert.Empty(t, buf.Bytes())

	log.Warn().Msg("visible")
	line := logLine(t, &buf)
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "visible", line["message"])
}

func TestZeroLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("bogus", false, &buf)

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.Bytes())
	log.Info().Msg("shown")
	assert.NotEmpty(t, buf.Bytes())
}

func TestZeroLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", false, &buf)

	log.Debug().
		Str("method", "GET").
		Int("status", 200).
		Err(assert.AnError).
		Msgf("call %s", "done")

	line := logLine(t, &buf)
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, float64(200), line["status"])
	assert.Equal(t, assert.AnError.Error(), line["error"])
	assert.Equal(t, "call done", line["message"])
}

func TestZeroLoggerMasksSensitiveStrings(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", false, &buf)

	log.Debug().
		Str("access_token", "very-secret").
		Str("method", "GET").
		Msg("request")

	line := logLine(t, &buf)
	assert.Equal(t, DefaultMaskValue, line["access_token"])
	assert.Equal(t, "GET", line["method"])
}

func TestWithFieldsMasksSensitiveValues(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", false, &buf)

	log.WithFields(map[string]any{
		"component": "client",
		"password":  "hunter2",
	}).Info().Msg("boot")

	line := logLine(t, &buf)
	assert.Equal(t, "client", line["component"])
	assert.Equal(t, DefaultMaskValue, line["password"])
}

func TestNoopLoggerDiscardsEverything(t *testing.T) {
	log := Noop()
	// Must not panic anywhere along the chain.
	log.WithFields(map[string]any{"k": "v"}).Error().Err(assert.AnError).Str("a", "b").Msg("dropped")
	log.Debug().Msgf("%d", 1)
}
