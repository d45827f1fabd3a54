package sdcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"unicode/utf8"
)

// Command es un comando ASCII del protocolo UDP de la impresora.
type Command string

const (
	CmdStatus Command = "M99999"
	CmdPause  Command = "M25"
	CmdResume Command = "M24"
	CmdStop   Command = "M33"
)

const (
	unknownName       = "Unknown"
	unknownStatusCode = -1
)

// statusReply refleja {"Data": {"Attributes": {...}, "Status": {...}}}.
// Los valores por defecto se cargan antes de decodificar, así que una clave
// ausente conserva su default.
type statusReply struct {
	Data struct {
		Attributes struct {
			MachineName     string `json:"MachineName"`
			FirmwareVersion string `json:"FirmwareVersion"`
			Resolution      string `json:"Resolution"`
		} `json:"Attributes"`
		Status struct {
			CurrentStatus statusCode `json:"CurrentStatus"`
			PrintInfo     struct {
				CurrentLayer float64 `json:"CurrentLayer"`
				TotalLayer   float64 `json:"TotalLayer"`
				CurrentTicks float64 `json:"CurrentTicks"`
				TotalTicks   float64 `json:"TotalTicks"`
				Filename     string  `json:"Filename"`
			} `json:"PrintInfo"`
		} `json:"Status"`
	} `json:"Data"`
}

func defaultStatusReply() statusReply {
	var r statusReply
	r.Data.Attributes.MachineName = unknownName
	r.Data.Attributes.FirmwareVersion = unknownName
	r.Data.Attributes.Resolution = unknownName
	r.Data.Status.CurrentStatus = unknownStatusCode

	return r
}

// statusCode acepta tanto 1 como [1]; firmwares nuevos reportan una lista.
type statusCode int

func (s *statusCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var single float64
	if err := json.Unmarshal(b, &single); err == nil {
		*s = codeFromFloat(single)
		return nil
	}

	var list []float64
	if err := json.Unmarshal(b, &list); err == nil && len(list) > 0 {
		*s = codeFromFloat(list[0])
		return nil
	}

	// Tipo inesperado: se conserva el default.
	return nil
}

// codeFromFloat descarta códigos fuera del rango de int32; quedan "Unknown".
func codeFromFloat(v float64) statusCode {
	if math.IsNaN(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return unknownStatusCode
	}

	return statusCode(int(v))
}

// decodeObject valida que el payload sea UTF-8 y un objeto JSON no vacío.
func decodeObject(payload []byte) (json.RawMessage, bool) {
	if !utf8.Valid(payload) {
		return nil, false
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || len(fields) == 0 {
		return nil, false
	}

	return json.RawMessage(trimmed), true
}

// decodeStatus decodifica la respuesta de M99999 aplicando defaults.
// Los campos con tipo inesperado conservan su default en vez de invalidar
// toda la respuesta.
func decodeStatus(payload []byte) (statusReply, bool) {
	obj, ok := decodeObject(payload)
	if !ok {
		return statusReply{}, false
	}

	reply := defaultStatusReply()

	err := json.Unmarshal(obj, &reply)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return statusReply{}, false
		}
	}

	return reply, true
}
