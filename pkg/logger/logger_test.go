package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_WritesJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewWithWriter(Config{Level: "debug"}, &buf)
	require.NoError(t, err)

	log.WithComponent("sdcp").Info().Str("ip", "10.0.0.5").Msg("query ok")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "sdcp", line["component"])
	assert.Equal(t, "10.0.0.5", line["ip"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "query ok", line["message"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewWithWriter(Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.SetLevel(zerolog.DebugLevel)
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewWithWriter_DebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewWithWriter(Config{Level: "error", Debug: true}, &buf)
	require.NoError(t, err)

	log.Debug().Msg("debug on")
	assert.Contains(t, buf.String(), "debug on")
}

func TestNewWithWriter_InvalidLevel(t *testing.T) {
	_, err := NewWithWriter(Config{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "yes")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.True(t, config.Debug)
	assert.Equal(t, "stdout", config.Output)
}
