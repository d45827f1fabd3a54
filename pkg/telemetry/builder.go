package telemetry

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/asaavedra/agent-resin/pkg/coordinator"
)

// Builder transforma coordinator.Update → Event.
// No sabe nada del protocolo UDP: solo mapea campos.
type Builder struct {
	source AgentSource
	newID  func() string
}

// NewBuilder crea un nuevo builder
func NewBuilder(source AgentSource) *Builder {
	return &Builder{
		source: source,
		newID:  func() string { return uuid.NewString() },
	}
}

// Build convierte el resultado de un refresco en un evento.
// SIEMPRE en UTC; el backend maneja zonas horarias.
func (b *Builder) Build(printer PrinterRef, update coordinator.Update) (*Event, error) {
	if strings.TrimSpace(printer.EntryID) == "" {
		return nil, fmt.Errorf("printer entry id cannot be empty")
	}

	event := &Event{
		SchemaVersion: SchemaVersion,
		EventID:       b.newID(),
		CollectedAt:   update.At.UTC(),
		Source:        b.source,
		Printer:       printer,
		Available:     update.Err == nil && update.Snapshot != nil,
		Status:        update.Snapshot,
	}

	if update.Err != nil {
		event.Error = update.Err.Error()
	}

	return event, nil
}
