package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/asaavedra/agent-resin/pkg/sdcp"
)

// printerFromRequest crea un cliente para el parámetro IP; sin él responde
// 400.
func (s *APIServer) printerFromRequest(w http.ResponseWriter, r *http.Request) (sdcp.Printer, bool) {
	ip := strings.TrimSpace(r.URL.Query().Get("IP"))
	if ip == "" {
		ip = strings.TrimSpace(r.URL.Query().Get("ip"))
	}

	if ip == "" {
		s.writeError(w, "IP not provided", http.StatusBadRequest)
		return nil, false
	}

	return s.printers(ip), true
}

// query consulta el estado y responde 404 si la impresora no entregó datos.
func (s *APIServer) query(w http.ResponseWriter, r *http.Request) (*sdcp.Snapshot, bool) {
	printer, ok := s.printerFromRequest(w, r)
	if !ok {
		return nil, false
	}

	result := printer.Query(r.Context())
	if !result.OK() {
		s.writeError(w, noDataMessage(printer.Address(), result.Outcome), http.StatusNotFound)
		return nil, false
	}

	return result.Snapshot, true
}

func noDataMessage(address string, outcome sdcp.Outcome) string {
	return fmt.Sprintf("no data from printer at %s: %v", address, outcome.Err())
}

func (s *APIServer) getPrinterInfo(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.query(w, r)
	if !ok {
		return
	}

	s.encodeJSONResponse(w, http.StatusOK, snap.Info())
}

func (s *APIServer) getPrinterStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.query(w, r)
	if !ok {
		return
	}

	s.encodeJSONResponse(w, http.StatusOK, snap.Summary())
}

func (s *APIServer) getPrinterSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.query(w, r)
	if !ok {
		return
	}

	s.encodeJSONResponse(w, http.StatusOK, snap)
}

func (s *APIServer) controlPrinter(w http.ResponseWriter, r *http.Request) {
	printer, ok := s.printerFromRequest(w, r)
	if !ok {
		return
	}

	command := mux.Vars(r)["command"]

	var reply sdcp.Reply

	switch command {
	case "pause":
		reply = printer.Pause(r.Context())
	case "resume":
		reply = printer.Resume(r.Context())
	case "stop":
		reply = printer.Stop(r.Context())
	default:
		s.writeError(w, fmt.Sprintf("unknown command %q", command), http.StatusNotFound)
		return
	}

	if !reply.OK() {
		s.writeError(w, noDataMessage(printer.Address(), reply.Outcome), http.StatusNotFound)
		return
	}

	s.log.Info().
		Str("ip", printer.Address()).
		Str("command", command).
		Msg("printer command acknowledged")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply.Payload)
}
