package telemetry

import (
	"time"

	"github.com/asaavedra/agent-resin/pkg/sdcp"
)

// SchemaVersion del evento; se incrementa si cambia el contrato JSON.
const SchemaVersion = "1.0.0"

// Event es el payload atómico que representa el estado de UNA impresora
// tras un ciclo de refresco del coordinador.
type Event struct {
	SchemaVersion string         `json:"schema_version"`
	EventID       string         `json:"event_id"`
	CollectedAt   time.Time      `json:"collected_at"`
	Source        AgentSource    `json:"source"`
	Printer       PrinterRef     `json:"printer"`
	Available     bool           `json:"available"`
	Status        *sdcp.Snapshot `json:"status"`          // nil → null cuando no hubo datos
	Error         string         `json:"error,omitempty"` // motivo del "update failed"
}

// AgentSource describe quién envía el evento
type AgentSource struct {
	AgentID  string `json:"agent_id"`
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Version  string `json:"version"`
}

// PrinterRef identifica la entrada de integración que produjo el evento
type PrinterRef struct {
	EntryID string `json:"entry_id"`
	Name    string `json:"name"`
	IP      string `json:"ip"`
}
