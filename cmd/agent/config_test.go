package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaavedra/agent-resin/pkg/integration"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
printer:
  timeout_ms: 2500
api:
  listen: ":8080"
integrations:
  interval_seconds: 30
  entries:
    - name: Saturn Lab
      ip_address: 192.168.0.172
sinks:
  nats:
    enabled: true
    subject_prefix: lab.printers
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3000, cfg.Printer.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.PrinterTimeout())
	assert.Equal(t, ":8080", cfg.API.Listen)
	assert.Equal(t, 30*time.Second, cfg.Interval())
	require.Len(t, cfg.Integrations.Entries, 1)
	assert.Equal(t, "192.168.0.172", cfg.Integrations.Entries[0].Address)
	assert.Equal(t, "lab.printers", cfg.Sinks.NATS.SubjectPrefix)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Sinks.NATS.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, DefaultConfig().API.Listen, cfg.API.Listen)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "printer: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Sinks.HTTP.Enabled = true
	cfg.Integrations.Entries = []integration.Entry{
		{Title: "Saturn", Address: "192.168.0.172"},
		{Title: "saturn", Address: "192.168.0.173"},
		{Title: "Bad", Address: "not-an-ip"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sinks.http.endpoint")
	assert.Contains(t, err.Error(), "duplicado")
	assert.Contains(t, err.Error(), "Bad")
}
