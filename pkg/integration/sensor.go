package integration

import (
	"fmt"
	"math"

	"github.com/asaavedra/agent-resin/pkg/sdcp"
)

const (
	SensorStatus        = "status"
	SensorProgress      = "progress"
	SensorLayer         = "layer"
	SensorFilename      = "filename"
	SensorRemainingTime = "remaining_time"
	SensorFinishTime    = "finish_time"

	noLayers   = "N/A"
	noFilename = "None"
)

// SensorDescription es la parte estática de un sensor.
type SensorDescription struct {
	Key        string
	Name       string
	Icon       string
	Unit       string
	StateClass string
	value      func(*sdcp.Snapshot) any
}

// SensorState es lo que reporta un sensor en un instante.
type SensorState struct {
	UniqueID   string     `json:"unique_id"`
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon,omitempty"`
	Unit       string     `json:"unit_of_measurement,omitempty"`
	StateClass string     `json:"state_class,omitempty"`
	Value      any        `json:"state"`
	Available  bool       `json:"available"`
	Device     DeviceInfo `json:"device"`
}

// Sensors lista los seis sensores en orden de despliegue.
var Sensors = []SensorDescription{
	{
		Key:   SensorStatus,
		Name:  "Status",
		value: func(s *sdcp.Snapshot) any { return s.Status },
	},
	{
		Key:        SensorProgress,
		Name:       "Progress",
		Icon:       "mdi:percent",
		Unit:       "%",
		StateClass: "measurement",
		value:      progressValue,
	},
	{
		Key:   SensorLayer,
		Name:  "Current Layer",
		Icon:  "mdi:layers",
		value: layerValue,
	},
	{
		Key:   SensorFilename,
		Name:  "File",
		Icon:  "mdi:file-3d",
		value: filenameValue,
	},
	{
		Key:   SensorRemainingTime,
		Name:  "Remaining Time",
		Icon:  "mdi:timer-sand",
		value: func(s *sdcp.Snapshot) any { return s.RemainingTime },
	},
	{
		Key:   SensorFinishTime,
		Name:  "Estimated Finish",
		Icon:  "mdi:clock-check",
		value: func(s *sdcp.Snapshot) any { return s.EstimatedFinishTime },
	},
}

// progressValue redondea a dos decimales
func progressValue(s *sdcp.Snapshot) any {
	return math.Round(s.ProgressPercent*100) / 100
}

func layerValue(s *sdcp.Snapshot) any {
	if s.TotalLayers == 0 {
		return noLayers
	}

	return fmt.Sprintf("%d/%d", s.CurrentLayer, s.TotalLayers)
}

func filenameValue(s *sdcp.Snapshot) any {
	if s.Filename == "" {
		return noFilename
	}

	return s.Filename
}

// Value evalúa el sensor contra un snapshot. Sin snapshot no hay valor.
func (d SensorDescription) Value(s *sdcp.Snapshot) any {
	if s == nil {
		return nil
	}

	return d.value(s)
}
