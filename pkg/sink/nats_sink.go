package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher es la parte de *nats.Conn que usa NatsSink
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

var _ Publisher = (*nats.Conn)(nil)

// NatsSinkConfig configura un NatsSink
type NatsSinkConfig struct {
	URL           string // ej: nats://localhost:4222
	SubjectPrefix string // default: printers.status
	Name          string // nombre de la conexión visible en el servidor
	Timeout       time.Duration
}

// NatsSink publica cada evento en el subject <prefix>.<entry_id>
type NatsSink struct {
	conn         Publisher
	prefix       string
	flushTimeout time.Duration
}

// NewNatsSink conecta con el servidor NATS
func NewNatsSink(config NatsSinkConfig) (*NatsSink, error) {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}

	opts := []nats.Option{
		nats.Timeout(config.Timeout),
		nats.MaxReconnects(-1),
	}
	if config.Name != "" {
		opts = append(opts, nats.Name(config.Name))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", config.URL, err)
	}

	return NewNatsSinkWithPublisher(conn, config.SubjectPrefix), nil
}

// NewNatsSinkWithPublisher usa una conexión ya establecida
func NewNatsSinkWithPublisher(conn Publisher, prefix string) *NatsSink {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "printers.status"
	}

	return &NatsSink{conn: conn, prefix: prefix, flushTimeout: 5 * time.Second}
}

// Subject retorna el subject usado para una entrada
func (ns *NatsSink) Subject(entryID string) string {
	return ns.prefix + "." + strings.ReplaceAll(safeName(entryID), ".", "_")
}

// Write publica el evento y espera el flush hacia el servidor
func (ns *NatsSink) Write(ctx context.Context, data []byte, entryID string) error {
	if len(data) == 0 {
		return fmt.Errorf("empty data for printer %s", entryID)
	}

	if err := ns.conn.Publish(ns.Subject(entryID), data); err != nil {
		return &SinkError{Sink: "nats", Operation: "publish", Err: err, EntryID: entryID, Retryable: true}
	}

	// FlushWithContext exige un contexto con deadline
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ns.flushTimeout)
		defer cancel()
	}

	if err := ns.conn.FlushWithContext(ctx); err != nil {
		return &SinkError{Sink: "nats", Operation: "flush", Err: err, EntryID: entryID, Retryable: true}
	}

	return nil
}

// Close cierra la conexión NATS
func (ns *NatsSink) Close() error {
	ns.conn.Close()
	return nil
}
