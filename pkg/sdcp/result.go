package sdcp

import (
	"encoding/json"
	"errors"
)

// Outcome clasifica el resultado de un intercambio con la impresora.
// Cualquier valor distinto de OutcomeOK es un resultado vacío ("sin datos"),
// nunca un fallo fatal: la impresora es un par poco confiable en la LAN.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTimeout
	OutcomeMalformed
	OutcomeUnreachable
)

var (
	ErrNoReply        = errors.New("printer did not reply before the deadline")
	ErrMalformedReply = errors.New("printer reply is not a JSON object")
	ErrUnreachable    = errors.New("printer is unreachable")
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Err retorna el error sentinela asociado, o nil para OutcomeOK.
func (o Outcome) Err() error {
	switch o {
	case OutcomeOK:
		return nil
	case OutcomeTimeout:
		return ErrNoReply
	case OutcomeMalformed:
		return ErrMalformedReply
	default:
		return ErrUnreachable
	}
}

// Result es la respuesta de Query: un snapshot o "sin datos".
// Snapshot es nil si y solo si Outcome != OutcomeOK.
type Result struct {
	Outcome  Outcome
	Snapshot *Snapshot
}

// OK indica si hay un snapshot utilizable.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK && r.Snapshot != nil
}

// Reply es la respuesta cruda de un comando de control (pausa/reanudar/detener).
type Reply struct {
	Outcome Outcome
	Payload json.RawMessage
}

// OK indica si la impresora respondió con un objeto JSON.
func (r Reply) OK() bool {
	return r.Outcome == OutcomeOK && len(r.Payload) > 0
}

func emptyResult(o Outcome) Result {
	return Result{Outcome: o}
}
