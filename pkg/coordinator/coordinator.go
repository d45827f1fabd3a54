// Package coordinator refresca una impresora cada cierto intervalo y reparte
// el resultado a los listeners registrados.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asaavedra/agent-resin/pkg/logger"
	"github.com/asaavedra/agent-resin/pkg/sdcp"
)

const DefaultInterval = 10 * time.Second

// ErrUpdateFailed marca un ciclo de refresco que no obtuvo datos.
var ErrUpdateFailed = errors.New("update failed")

// Update se entrega a los listeners después de cada intento de refresco.
type Update struct {
	Snapshot *sdcp.Snapshot
	Err      error
	At       time.Time
}

// State es una copia del estado del coordinador en un instante dado.
type State struct {
	Snapshot            *sdcp.Snapshot
	LastUpdateSuccess   bool
	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// Listener recibe los resultados del refresco. No debe bloquear.
type Listener func(Update)

// Coordinator maneja el loop de refresco de una sola impresora.
type Coordinator struct {
	name     string
	printer  sdcp.Printer
	interval time.Duration
	log      logger.Logger
	now      func() time.Time

	refreshMu sync.Mutex
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int

	requests chan struct{}
}

// New crea un coordinador. Un intervalo <= 0 usa DefaultInterval.
func New(name string, printer sdcp.Printer, interval time.Duration, log logger.Logger) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Coordinator{
		name:      name,
		printer:   printer,
		interval:  interval,
		log:       log.WithComponent("coordinator"),
		now:       time.Now,
		listeners: make(map[int]Listener),
		requests:  make(chan struct{}, 1),
	}
}

// Name retorna el nombre visible del coordinador.
func (c *Coordinator) Name() string {
	return c.name
}

// Printer retorna la impresora consultada.
func (c *Coordinator) Printer() sdcp.Printer {
	return c.printer
}

// Interval retorna el intervalo de refresco.
func (c *Coordinator) Interval() time.Duration {
	return c.interval
}

// AddListener registra l y retorna una función que lo quita.
func (c *Coordinator) AddListener(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = l

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Refresh consulta la impresora una vez. Sin datos se conserva el snapshot
// anterior, se registra la falla y se retorna un error que envuelve
// ErrUpdateFailed. El mensaje no incluye la IP; queda solo en el log.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	result := c.printer.Query(ctx)
	at := c.now()

	var update Update

	c.mu.Lock()
	if result.OK() {
		c.state.Snapshot = result.Snapshot
		c.state.LastUpdateSuccess = true
		c.state.LastError = nil
		c.state.ConsecutiveFailures = 0
		update = Update{Snapshot: result.Snapshot, At: at}
	} else {
		err := fmt.Errorf("%w: %s: %w", ErrUpdateFailed, c.name, result.Outcome.Err())
		c.state.LastUpdateSuccess = false
		c.state.LastError = err
		c.state.ConsecutiveFailures++
		update = Update{Err: err, At: at}
	}
	c.state.LastUpdated = at
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	failures := c.state.ConsecutiveFailures
	c.mu.Unlock()

	if update.Err != nil {
		c.log.Warn().
			Str("printer", c.name).
			Str("ip", c.printer.Address()).
			Str("outcome", result.Outcome.String()).
			Int("consecutive_failures", failures).
			Msg("printer refresh failed")
	} else {
		c.log.Debug().
			Str("printer", c.name).
			Str("status", update.Snapshot.Status).
			Float64("progress", update.Snapshot.ProgressPercent).
			Msg("printer refreshed")
	}

	for _, l := range listeners {
		l(update)
	}

	return update.Err
}

// FirstRefresh hace el refresco inicial. Un error significa "impresora no
// lista"; el loop se puede iniciar igual.
func (c *Coordinator) FirstRefresh(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Start lanza el loop de refresco y retorna de inmediato. El loop termina
// al cancelar ctx.
func (c *Coordinator) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-c.requests:
			}

			_ = c.Refresh(ctx)
		}
	}()
}

// RequestRefresh pide un refresco inmediato. Si ya hay uno pendiente, los
// pedidos se combinan.
func (c *Coordinator) RequestRefresh() {
	select {
	case c.requests <- struct{}{}:
	default:
	}
}

// State retorna una copia del estado actual.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// Data retorna el último snapshot válido, si existe.
func (c *Coordinator) Data() (*sdcp.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.Snapshot, c.state.Snapshot != nil
}

// Available indica si el último refresco tuvo éxito.
func (c *Coordinator) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.LastUpdateSuccess
}
