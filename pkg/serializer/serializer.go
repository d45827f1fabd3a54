package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/asaavedra/agent-resin/pkg/telemetry"
)

// Serializer convierte un Event a JSON bytes
// Responsabilidad ÚNICA: Marshal a JSON
// NO escribe a disco, NO decide destino
type Serializer struct {
	indent bool
}

// NewSerializer crea un serializador con indentación legible
func NewSerializer() *Serializer {
	return &Serializer{indent: true}
}

// NewCompactSerializer crea un serializador sin indentación (para NATS/HTTP)
func NewCompactSerializer() *Serializer {
	return &Serializer{}
}

// Serialize convierte un Event a JSON, listo para enviarse a un Sink
func (s *Serializer) Serialize(e *telemetry.Event) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("event cannot be nil")
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)

	// No escapear HTML para que "&" quede legible en los nombres de archivo y de impresora
	encoder.SetEscapeHTML(false)

	if s.indent {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(e); err != nil {
		return nil, fmt.Errorf("failed to serialize event: %w", err)
	}

	// Encode agrega un newline final, lo removemos
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
