package sink

import (
	"context"
	"errors"
	"fmt"
)

// Sink es la interfaz abstracta para "dónde va el evento serializado".
// Implementaciones: disco local (cola), HTTP y NATS.
type Sink interface {
	// Write envía los bytes a su destino; entryID identifica la impresora
	Write(ctx context.Context, data []byte, entryID string) error

	// Close libera recursos (conexiones, archivos, etc)
	Close() error
}

// SinkError es un error con contexto de qué sink y qué impresora fallaron
type SinkError struct {
	Sink      string // nombre del sink (http, file, nats)
	Operation string // operación que falló (write, publish, etc)
	Err       error  // error subyacente
	EntryID   string // entrada de integración que originó el evento
	Retryable bool   // el llamador puede reintentar más tarde
}

// Error implementa la interfaz error
func (se *SinkError) Error() string {
	return fmt.Sprintf("[%s] %s failed for printer %s: %v", se.Sink, se.Operation, se.EntryID, se.Err)
}

// Unwrap expone el error subyacente a errors.Is / errors.As
func (se *SinkError) Unwrap() error {
	return se.Err
}

// IsRetryable indica si el error es recuperable
func (se *SinkError) IsRetryable() bool {
	return se.Retryable
}

// Multi reparte cada evento a varios sinks.
// Un sink que falla no impide que los demás reciban el evento.
type Multi []Sink

// Write escribe en todos los sinks y junta los errores
func (m Multi) Write(ctx context.Context, data []byte, entryID string) error {
	var errs []error

	for _, s := range m {
		if err := s.Write(ctx, data, entryID); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close cierra todos los sinks
func (m Multi) Close() error {
	var errs []error

	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
