package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/asaavedra/agent-resin/pkg/integration"
)

type entryResponse struct {
	EntryID     string                          `json:"entry_id"`
	Title       string                          `json:"title"`
	Available   bool                            `json:"available"`
	LastUpdated time.Time                       `json:"last_updated"`
	Device      integration.DeviceInfo          `json:"device"`
	Sensors     []integration.SensorState       `json:"sensors"`
	Buttons     []integration.ButtonDescription `json:"buttons"`
}

func (s *APIServer) requireIntegrations(w http.ResponseWriter) bool {
	if s.integrations == nil {
		s.writeError(w, "no integration entries configured", http.StatusServiceUnavailable)
		return false
	}

	return true
}

func (s *APIServer) listEntries(w http.ResponseWriter, _ *http.Request) {
	if !s.requireIntegrations(w) {
		return
	}

	devices := s.integrations.Devices()
	out := make([]entryResponse, 0, len(devices))

	for _, d := range devices {
		state := d.Coordinator().State()
		out = append(out, entryResponse{
			EntryID:     d.Entry().ID,
			Title:       d.Entry().Title,
			Available:   state.LastUpdateSuccess,
			LastUpdated: state.LastUpdated,
			Device:      d.DeviceInfo(),
			Sensors:     d.Sensors(),
			Buttons:     integration.Buttons,
		})
	}

	s.encodeJSONResponse(w, http.StatusOK, out)
}

func (s *APIServer) device(w http.ResponseWriter, r *http.Request) (*integration.Device, bool) {
	if !s.requireIntegrations(w) {
		return nil, false
	}

	d, err := s.integrations.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err.Error(), http.StatusNotFound)
		return nil, false
	}

	return d, true
}

func (s *APIServer) entryDiagnostics(w http.ResponseWriter, r *http.Request) {
	d, ok := s.device(w, r)
	if !ok {
		return
	}

	s.encodeJSONResponse(w, http.StatusOK, d.Diagnostics())
}

func (s *APIServer) pressButton(w http.ResponseWriter, r *http.Request) {
	d, ok := s.device(w, r)
	if !ok {
		return
	}

	button := mux.Vars(r)["button"]

	_, err := d.Press(r.Context(), button)
	switch {
	case err == nil:
	case errors.Is(err, integration.ErrUnknownButton), errors.Is(err, integration.ErrCommandFailed):
		s.writeError(w, err.Error(), http.StatusNotFound)
		return
	default:
		s.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.writeSuccess(w, button+" sent to "+d.Entry().Title)
}
