package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/asaavedra/agent-resin/pkg/coordinator"
	"github.com/asaavedra/agent-resin/pkg/logger"
	"github.com/asaavedra/agent-resin/pkg/sdcp"
	"github.com/asaavedra/agent-resin/pkg/serializer"
	"github.com/asaavedra/agent-resin/pkg/sink"
	"github.com/asaavedra/agent-resin/pkg/telemetry"
)

const (
	eventQueueSize   = 64
	sinkWriteTimeout = 30 * time.Second
)

// PrinterFactory crea el cliente para una dirección.
type PrinterFactory func(address string) sdcp.Printer

// Options configura un Manager. Sink nil desactiva la exportación de eventos.
type Options struct {
	Interval   time.Duration
	Factory    PrinterFactory
	Builder    *telemetry.Builder
	Serializer *serializer.Serializer
	Sink       sink.Sink
	Logger     logger.Logger
}

type queuedEvent struct {
	entryID string
	event   *telemetry.Event
}

// Manager administra las entradas configuradas y exporta sus updates a los sinks.
type Manager struct {
	opts Options
	log  logger.Logger

	mu      sync.RWMutex
	devices map[string]*Device
	closed  bool

	events chan queuedEvent
	wg     sync.WaitGroup
}

// NewManager crea el manager y lanza su despachador de eventos.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger()
	}

	if opts.Factory == nil {
		log := opts.Logger
		opts.Factory = func(address string) sdcp.Printer {
			return sdcp.NewClient(sdcp.Endpoint{Address: address}, log)
		}
	}

	if opts.Serializer == nil {
		opts.Serializer = serializer.NewCompactSerializer()
	}

	m := &Manager{
		opts:    opts,
		log:     opts.Logger.WithComponent("integration"),
		devices: make(map[string]*Device),
		events:  make(chan queuedEvent, eventQueueSize),
	}

	m.wg.Add(1)
	go m.dispatch()

	return m
}

// Setup crea el dispositivo de entry, hace el primer refresco y comienza a
// consultar. Si el primer refresco falla se registra en el log y el
// dispositivo sigue consultando; ctx acota el loop.
func (m *Manager) Setup(ctx context.Context, entry Entry) (*Device, error) {
	entry = entry.Normalize()
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	printer := m.opts.Factory(entry.Address)
	coord := coordinator.New(entry.Title, printer, m.opts.Interval, m.opts.Logger)
	removeListener := coord.AddListener(func(u coordinator.Update) {
		m.enqueue(entry, u)
	})

	loopCtx, cancel := context.WithCancel(ctx)
	device := &Device{
		entry:       entry,
		printer:     printer,
		coordinator: coord,
		stop: func() {
			cancel()
			removeListener()
		},
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		device.stop()
		return nil, fmt.Errorf("integration manager is closed")
	}

	if _, exists := m.devices[entry.ID]; exists {
		m.mu.Unlock()
		device.stop()
		return nil, fmt.Errorf("%w: %s", ErrEntryExists, entry.ID)
	}

	m.devices[entry.ID] = device
	m.mu.Unlock()

	if err := coord.FirstRefresh(loopCtx); err != nil {
		m.log.Warn().
			Str("entry", entry.ID).
			Err(err).
			Msg("printer not ready, will keep polling")
	}

	coord.Start(loopCtx)

	m.log.Info().
		Str("entry", entry.ID).
		Str("title", entry.Title).
		Dur("interval", coord.Interval()).
		Msg("integration entry set up")

	return device, nil
}

// Unload detiene la consulta de una entrada y la olvida.
func (m *Manager) Unload(id string) error {
	m.mu.Lock()
	device, ok := m.devices[id]
	if ok {
		delete(m.devices, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	device.stop()

	m.log.Info().Str("entry", id).Msg("integration entry unloaded")

	return nil
}

// Get retorna un dispositivo configurado.
func (m *Manager) Get(id string) (*Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	device, ok := m.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	return device, nil
}

// Devices retorna todos los dispositivos ordenados por id de entrada.
func (m *Manager) Devices() []*Device {
	m.mu.RLock()
	defer m.mu.RUnlock()

	devices := make([]*Device, 0, len(m.devices))
	for _, d := range m.devices {
		devices = append(devices, d)
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].entry.ID < devices[j].entry.ID
	})

	return devices
}

// Close descarga todas las entradas, vacía los eventos pendientes y cierra el sink.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	devices := m.devices
	m.devices = make(map[string]*Device)
	close(m.events)
	m.mu.Unlock()

	for _, d := range devices {
		d.stop()
	}

	m.wg.Wait()

	if m.opts.Sink != nil {
		return m.opts.Sink.Close()
	}

	return nil
}

func (m *Manager) enqueue(entry Entry, u coordinator.Update) {
	if m.opts.Sink == nil || m.opts.Builder == nil {
		return
	}

	event, err := m.opts.Builder.Build(telemetry.PrinterRef{
		EntryID: entry.ID,
		Name:    entry.Title,
		IP:      entry.Address,
	}, u)
	if err != nil {
		m.log.Error().Err(err).Str("entry", entry.ID).Msg("failed to build event")
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}

	select {
	case m.events <- queuedEvent{entryID: entry.ID, event: event}:
	default:
		m.log.Warn().Str("entry", entry.ID).Msg("event queue full, dropping event")
	}
}

func (m *Manager) dispatch() {
	defer m.wg.Done()

	for q := range m.events {
		data, err := m.opts.Serializer.Serialize(q.event)
		if err != nil {
			m.log.Error().Err(err).Str("entry", q.entryID).Msg("failed to serialize event")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), sinkWriteTimeout)
		err = m.opts.Sink.Write(ctx, data, q.entryID)
		cancel()

		if err != nil {
			m.log.Error().Err(err).Str("entry", q.entryID).Msg("failed to export event")
			continue
		}

		m.log.Debug().
			Str("entry", q.entryID).
			Str("event_id", q.event.EventID).
			Bool("available", q.event.Available).
			Msg("event exported")
	}
}
