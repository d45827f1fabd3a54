package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileSink escribe cada evento a un archivo en disco.
// Sirve de cola cuando el destino remoto no está disponible.
type FileSink struct {
	queueDir string
	now      func() time.Time
}

// NewFileSink crea un nuevo file sink
// queueDir: directorio donde guardar los archivos (ej: /var/lib/agent-resin/queue)
func NewFileSink(queueDir string) (*FileSink, error) {
	if err := os.MkdirAll(queueDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create queue directory: %w", err)
	}

	return &FileSink{
		queueDir: queueDir,
		now:      time.Now,
	}, nil
}

// Dir retorna el directorio de la cola
func (fs *FileSink) Dir() string {
	return fs.queueDir
}

// Write guarda el JSON con naming: {epoch_nanos}_{entry_id}.json
// Se escribe a un temporal y se renombra, así un lector nunca ve un archivo a medias
func (fs *FileSink) Write(_ context.Context, data []byte, entryID string) error {
	if len(data) == 0 {
		return fmt.Errorf("empty data for printer %s", entryID)
	}

	filename := fmt.Sprintf("%d_%s.json", fs.now().UnixNano(), safeName(entryID))
	target := filepath.Join(fs.queueDir, filename)

	tmp, err := os.CreateTemp(fs.queueDir, ".pending-*")
	if err != nil {
		return &SinkError{Sink: "file", Operation: "write", Err: err, EntryID: entryID, Retryable: true}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &SinkError{Sink: "file", Operation: "write", Err: err, EntryID: entryID, Retryable: true}
	}

	if err := tmp.Close(); err != nil {
		return &SinkError{Sink: "file", Operation: "write", Err: err, EntryID: entryID, Retryable: true}
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return &SinkError{Sink: "file", Operation: "rename", Err: err, EntryID: entryID, Retryable: true}
	}

	return nil
}

// Close no tiene recursos abiertos
func (fs *FileSink) Close() error {
	return nil
}

// safeName evita que un entry id con separadores escape del directorio
func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, id)
}
