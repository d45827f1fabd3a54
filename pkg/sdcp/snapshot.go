package sdcp

import (
	"fmt"
	"math"
	"time"
)

const (
	StatusIdle     = "Idle"
	StatusPrinting = "Printing"
	StatusPaused   = "Paused"
	StatusError    = "Error"
	StatusUnknown  = "Unknown"

	// FinishCompleted reemplaza la hora estimada cuando no queda tiempo.
	FinishCompleted = "completed"

	ticksPerSecond   = 1000
	finishTimeLayout = "15:04:05 - 02/01/06"

	// maxTicks es el mayor valor que cabe en un time.Duration al pasar a ms.
	maxTicks = math.MaxInt64 / int64(time.Millisecond)
	maxLayer = math.MaxInt32
)

var statusNames = map[int]string{
	0: StatusIdle,
	1: StatusPrinting,
	2: StatusPaused,
	3: StatusError,
}

// Snapshot es el estado decodificado de una impresora en una consulta.
// Se construye de nuevo en cada Query; nunca se mezcla con uno anterior.
type Snapshot struct {
	MachineName         string    `json:"machine_name"`
	FirmwareVersion     string    `json:"firmware_version"`
	Resolution          string    `json:"resolution"`
	StatusCode          int       `json:"status_code"`
	Status              string    `json:"status"`
	Filename            string    `json:"filename"`
	CurrentLayer        int       `json:"current_layer"`
	TotalLayers         int       `json:"total_layers"`
	ElapsedTicks        int64     `json:"elapsed_ticks"`
	TotalTicks          int64     `json:"total_ticks"`
	ProgressPercent     float64   `json:"progress"`
	Percentage          string    `json:"percentage"`
	ElapsedTime         string    `json:"elapsed_time"`
	RemainingTime       string    `json:"remaining_time"`
	EstimatedFinishTime string    `json:"finish_time"`
	CollectedAt         time.Time `json:"collected_at"`
}

// PrinterInfo es el resumen de identidad expuesto por la API REST.
type PrinterInfo struct {
	MachineName     string `json:"machine_name"`
	FirmwareVersion string `json:"firmware_version"`
	Resolution      string `json:"resolution"`
	Status          string `json:"status"`
}

// PrintProgress agrupa el avance del trabajo actual.
type PrintProgress struct {
	Filename            string `json:"filename"`
	CurrentLayer        int    `json:"current_layer"`
	TotalLayers         int    `json:"total_layers"`
	ElapsedTime         string `json:"elapsed_time"`
	RemainingTime       string `json:"remaining_time"`
	Percentage          string `json:"percentage"`
	EstimatedFinishTime string `json:"estimated_finish_time"`
}

// StatusSummary es el resumen de estado expuesto por la API REST.
type StatusSummary struct {
	Status   string        `json:"status"`
	Progress PrintProgress `json:"progress"`
}

func newSnapshot(r statusReply, now time.Time) *Snapshot {
	attrs := r.Data.Attributes
	info := r.Data.Status.PrintInfo

	current := clampInt(info.CurrentLayer)
	total := clampInt(info.TotalLayer)
	elapsed := clampTicks(info.CurrentTicks)
	totalTicks := clampTicks(info.TotalTicks)
	remaining := totalTicks - elapsed
	progress := ProgressPercent(current, total)
	code := int(r.Data.Status.CurrentStatus)

	return &Snapshot{
		MachineName:         attrs.MachineName,
		FirmwareVersion:     attrs.FirmwareVersion,
		Resolution:          attrs.Resolution,
		StatusCode:          code,
		Status:              StatusText(code),
		Filename:            info.Filename,
		CurrentLayer:        current,
		TotalLayers:         total,
		ElapsedTicks:        elapsed,
		TotalTicks:          totalTicks,
		ProgressPercent:     progress,
		Percentage:          FormatPercent(progress),
		ElapsedTime:         TicksToText(elapsed),
		RemainingTime:       TicksToText(remaining),
		EstimatedFinishTime: EstimateFinish(remaining, now),
		CollectedAt:         now,
	}
}

// Info proyecta el snapshot al resumen de identidad.
func (s *Snapshot) Info() PrinterInfo {
	return PrinterInfo{
		MachineName:     s.MachineName,
		FirmwareVersion: s.FirmwareVersion,
		Resolution:      s.Resolution,
		Status:          s.Status,
	}
}

// Summary proyecta el snapshot al resumen de estado.
func (s *Snapshot) Summary() StatusSummary {
	return StatusSummary{
		Status: s.Status,
		Progress: PrintProgress{
			Filename:            s.Filename,
			CurrentLayer:        s.CurrentLayer,
			TotalLayers:         s.TotalLayers,
			ElapsedTime:         s.ElapsedTime,
			RemainingTime:       s.RemainingTime,
			Percentage:          s.Percentage,
			EstimatedFinishTime: s.EstimatedFinishTime,
		},
	}
}

// StatusText traduce el código de estado; códigos fuera de 0-3 son "Unknown".
func StatusText(code int) string {
	if name, ok := statusNames[code]; ok {
		return name
	}

	return StatusUnknown
}

// ProgressPercent retorna current/total*100 acotado a [0, 100], o 0 si
// total es 0.
func ProgressPercent(current, total int) float64 {
	if total <= 0 || current <= 0 {
		return 0
	}

	if current >= total {
		return 100
	}

	return float64(current) / float64(total) * 100
}

// FormatPercent redondea a dos decimales para mostrar ("42.50%").
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// TicksToText convierte ticks (1000 = 1s) a "Hh Mm Ss". Negativos son cero.
func TicksToText(ticks int64) string {
	seconds := ticks / ticksPerSecond
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	seconds %= 3600
	minutes := seconds / 60
	seconds %= 60

	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// EstimateFinish retorna now+remaining como "HH:MM:SS - DD/MM/YY", o
// FinishCompleted si no queda tiempo.
func EstimateFinish(remainingTicks int64, now time.Time) string {
	if remainingTicks <= 0 {
		return FinishCompleted
	}

	if remainingTicks > maxTicks {
		remainingTicks = maxTicks
	}

	finish := now.Add(time.Duration(remainingTicks) * time.Millisecond)

	return finish.Format(finishTimeLayout)
}

// clampInt y clampTicks acotan antes de convertir: int(v) con v fuera de
// rango no está definido.
func clampInt(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}

	if v >= maxLayer {
		return maxLayer
	}

	return int(v)
}

func clampTicks(v float64) int64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}

	if v >= float64(maxTicks) {
		return maxTicks
	}

	return int64(v)
}
