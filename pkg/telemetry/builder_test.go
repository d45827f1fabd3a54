package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaavedra/agent-resin/pkg/coordinator"
	"github.com/asaavedra/agent-resin/pkg/sdcp"
)

var testSource = AgentSource{AgentID: "AGT-LOCAL-001", Hostname: "pi", OS: "linux", Version: "1.0.0"}

func TestBuild_Available(t *testing.T) {
	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	snap := &sdcp.Snapshot{MachineName: "Saturn 3 Ultra", Status: sdcp.StatusPrinting}

	event, err := NewBuilder(testSource).Build(
		PrinterRef{EntryID: "saturn", Name: "Saturn", IP: "192.168.0.172"},
		coordinator.Update{Snapshot: snap, At: at},
	)
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, event.SchemaVersion)
	_, parseErr := uuid.Parse(event.EventID)
	assert.NoError(t, parseErr)
	assert.Equal(t, time.UTC, event.CollectedAt.Location())
	assert.True(t, event.CollectedAt.Equal(at))
	assert.True(t, event.Available)
	assert.Same(t, snap, event.Status)
	assert.Empty(t, event.Error)
	assert.Equal(t, testSource, event.Source)
}

func TestBuild_UpdateFailed(t *testing.T) {
	event, err := NewBuilder(testSource).Build(
		PrinterRef{EntryID: "saturn"},
		coordinator.Update{Err: errors.New("update failed: timeout"), At: time.Now()},
	)
	require.NoError(t, err)

	assert.False(t, event.Available)
	assert.Nil(t, event.Status)
	assert.Equal(t, "update failed: timeout", event.Error)
}

func TestBuild_RequiresEntryID(t *testing.T) {
	_, err := NewBuilder(testSource).Build(PrinterRef{}, coordinator.Update{})
	require.Error(t, err)
}
