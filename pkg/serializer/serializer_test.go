package serializer

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaavedra/agent-resin/pkg/sdcp"
	"github.com/asaavedra/agent-resin/pkg/telemetry"
)

func sampleEvent() *telemetry.Event {
	return &telemetry.Event{
		SchemaVersion: telemetry.SchemaVersion,
		EventID:       "e1",
		CollectedAt:   time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
		Printer:       telemetry.PrinterRef{EntryID: "saturn", Name: "Saturn & Co", IP: "192.168.0.172"},
		Available:     true,
		Status:        &sdcp.Snapshot{MachineName: "Saturn 3 Ultra", Status: sdcp.StatusIdle},
	}
}

func TestSerialize_Indented(t *testing.T) {
	data, err := NewSerializer().Serialize(sampleEvent())
	require.NoError(t, err)

	assert.False(t, strings.HasSuffix(string(data), "\n"))
	assert.Contains(t, string(data), "\n  \"event_id\": \"e1\"")
	assert.Contains(t, string(data), "Saturn & Co")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Saturn 3 Ultra", decoded["status"].(map[string]interface{})["machine_name"])
	assert.NotContains(t, decoded, "error")
}

func TestSerialize_Compact(t *testing.T) {
	data, err := NewCompactSerializer().Serialize(sampleEvent())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")
}

func TestSerialize_Nil(t *testing.T) {
	_, err := NewSerializer().Serialize(nil)
	require.Error(t, err)
}
