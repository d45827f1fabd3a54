package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaavedra/agent-resin/pkg/coordinator"
	"github.com/asaavedra/agent-resin/pkg/sdcp"
)

// Device es una entrada ya configurada: su impresora, su coordinador y sus entidades.
type Device struct {
	entry       Entry
	printer     sdcp.Printer
	coordinator *coordinator.Coordinator
	stop        func()
}

// Entry retorna la entrada configurada.
func (d *Device) Entry() Entry {
	return d.entry
}

// Printer retorna el cliente usado para los comandos.
func (d *Device) Printer() sdcp.Printer {
	return d.printer
}

// Coordinator retorna el coordinador de refresco del dispositivo.
func (d *Device) Coordinator() *coordinator.Coordinator {
	return d.coordinator
}

// DeviceInfo describe la impresora física. La versión de firmware se conoce
// recién después de un refresco exitoso.
func (d *Device) DeviceInfo() DeviceInfo {
	info := DeviceInfo{
		Identifiers:  []string{d.entry.ID},
		Name:         d.entry.Title,
		Manufacturer: Manufacturer,
		Model:        Model,
	}

	if snap, ok := d.coordinator.Data(); ok {
		info.SWVersion = snap.FirmwareVersion
	}

	return info
}

// UniqueID arma el id de una entidad del dispositivo.
func (d *Device) UniqueID(key string) string {
	return d.entry.ID + "_" + key
}

// Sensors evalúa cada sensor contra el último snapshot válido.
func (d *Device) Sensors() []SensorState {
	snap, _ := d.coordinator.Data()
	available := d.coordinator.Available()
	device := d.DeviceInfo()

	states := make([]SensorState, 0, len(Sensors))
	for _, desc := range Sensors {
		states = append(states, SensorState{
			UniqueID:   d.UniqueID(desc.Key),
			Key:        desc.Key,
			Name:       desc.Name,
			Icon:       desc.Icon,
			Unit:       desc.Unit,
			StateClass: desc.StateClass,
			Value:      desc.Value(snap),
			Available:  available && snap != nil,
			Device:     device,
		})
	}

	return states
}

// Sensor retorna un sensor por su clave.
func (d *Device) Sensor(key string) (SensorState, bool) {
	for _, s := range d.Sensors() {
		if s.Key == key {
			return s, true
		}
	}

	return SensorState{}, false
}

// Press envía el comando del botón y luego pide un refresco al coordinador,
// haya respondido o no la impresora.
func (d *Device) Press(ctx context.Context, key string) (sdcp.Reply, error) {
	button, ok := findButton(key)
	if !ok {
		return sdcp.Reply{}, fmt.Errorf("%w: %q", ErrUnknownButton, key)
	}

	reply := button.press(ctx, d.printer)
	d.coordinator.RequestRefresh()

	if !reply.OK() {
		return reply, fmt.Errorf("%w: %s on %s: %w", ErrCommandFailed, key, d.entry.ID, reply.Outcome.Err())
	}

	return reply, nil
}

// Diagnostics es un volcado de soporte de una entrada, con la IP ocultada.
type Diagnostics struct {
	ConfigEntry         ConfigEntryDump `json:"config_entry"`
	PrinterData         *sdcp.Snapshot  `json:"printer_data"`
	LastUpdateSuccess   bool            `json:"last_update_success"`
	LastError           string          `json:"last_error,omitempty"`
	LastUpdated         time.Time       `json:"last_updated"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	Interval            string          `json:"update_interval"`
}

// ConfigEntryDump refleja Entry con los campos sensibles ocultados.
type ConfigEntryDump struct {
	EntryID string            `json:"entry_id"`
	Title   string            `json:"title"`
	Data    map[string]string `json:"data"`
}

// Diagnostics retorna la entrada y los datos actuales del coordinador. La IP
// no aparece en ningún campo, tampoco dentro del último error.
func (d *Device) Diagnostics() Diagnostics {
	state := d.coordinator.State()

	diag := Diagnostics{
		ConfigEntry: ConfigEntryDump{
			EntryID: d.entry.ID,
			Title:   d.entry.Title,
			Data:    map[string]string{"ip_address": Redacted},
		},
		PrinterData:         state.Snapshot,
		LastUpdateSuccess:   state.LastUpdateSuccess,
		LastUpdated:         state.LastUpdated,
		ConsecutiveFailures: state.ConsecutiveFailures,
		Interval:            d.coordinator.Interval().String(),
	}

	if state.LastError != nil {
		diag.LastError = d.redact(state.LastError.Error())
	}

	return diag
}

func (d *Device) redact(msg string) string {
	if d.entry.Address == "" {
		return msg
	}

	return strings.ReplaceAll(msg, d.entry.Address, Redacted)
}
