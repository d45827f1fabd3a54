package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxBackoff = 60 * time.Second

// HTTPSink envía los eventos a un endpoint HTTP
// Implementa reintentos con backoff exponencial
type HTTPSink struct {
	endpoint    string        // URL del endpoint (ej: https://cloud.example.com/api/v1/printers)
	authToken   string        // Bearer token para autenticación
	client      *http.Client  // cliente HTTP con timeout
	maxRetries  int           // reintentos después del primer intento
	initialWait time.Duration // espera inicial entre reintentos
}

// HTTPSinkConfig configura un HTTPSink
type HTTPSinkConfig struct {
	Endpoint    string        // URL del endpoint
	AuthToken   string        // Bearer token (opcional)
	Timeout     time.Duration // timeout HTTP
	MaxRetries  int           // máximo de reintentos (default: 3)
	InitialWait time.Duration // espera inicial en reintentos (default: 1s)
}

// NewHTTPSink crea un nuevo HTTP sink
func NewHTTPSink(config HTTPSinkConfig) *HTTPSink {
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	if config.InitialWait == 0 {
		config.InitialWait = 1 * time.Second
	}

	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &HTTPSink{
		endpoint:    config.Endpoint,
		authToken:   config.AuthToken,
		client:      &http.Client{Timeout: config.Timeout},
		maxRetries:  config.MaxRetries,
		initialWait: config.InitialWait,
	}
}

// Write envía el JSON al endpoint con reintentos exponenciales.
// Los 4xx no se reintentan: el payload no va a mejorar.
func (hs *HTTPSink) Write(ctx context.Context, data []byte, entryID string) error {
	if len(data) == 0 {
		return fmt.Errorf("empty data for printer %s", entryID)
	}

	var lastErr error
	waitDuration := hs.initialWait

	for attempt := 0; attempt <= hs.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(waitDuration):
			case <-ctx.Done():
				return &SinkError{
					Sink:      "http",
					Operation: "write",
					Err:       fmt.Errorf("context cancelled after %d attempts: %w", attempt, ctx.Err()),
					EntryID:   entryID,
					Retryable: true,
				}
			}

			waitDuration *= 2
			if waitDuration > maxBackoff {
				waitDuration = maxBackoff
			}
		}

		err := hs.sendRequest(ctx, data, entryID)
		if err == nil {
			return nil
		}

		var se *SinkError
		if errors.As(err, &se) && !se.Retryable {
			return se
		}

		lastErr = err
	}

	return &SinkError{
		Sink:      "http",
		Operation: "write",
		Err:       fmt.Errorf("failed after %d attempts: %w", hs.maxRetries+1, lastErr),
		EntryID:   entryID,
		Retryable: true,
	}
}

// sendRequest intenta un único POST
func (hs *HTTPSink) sendRequest(ctx context.Context, data []byte, entryID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hs.endpoint, bytes.NewReader(data))
	if err != nil {
		return &SinkError{Sink: "http", Operation: "request", Err: err, EntryID: entryID}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Printer-ID", entryID)

	if hs.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+hs.authToken)
	}

	resp, err := hs.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	// 2xx = éxito, 4xx = no reintentar, 5xx = reintentar
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &SinkError{
			Sink:      "http",
			Operation: "write",
			Err:       fmt.Errorf("client error (HTTP %d): %s", resp.StatusCode, bodyBytes),
			EntryID:   entryID,
		}
	}

	return fmt.Errorf("server error (HTTP %d): %s", resp.StatusCode, bodyBytes)
}

// Close no hay recursos especiales: http.Client no se cierra
func (hs *HTTPSink) Close() error {
	return nil
}
