package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/asaavedra/agent-resin/pkg/discovery"
	"github.com/asaavedra/agent-resin/pkg/registry"
)

const maxFormMemory = 1 << 20

func decodeRecord(r *http.Request) (registry.PrinterRecord, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	values := make(map[string]string)

	if mediaType == "application/json" {
		var body map[string]interface{}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxFormMemory)).Decode(&body); err != nil {
			return registry.PrinterRecord{}, fmt.Errorf("invalid JSON body: %w", err)
		}

		for key, v := range body {
			if str, ok := v.(string); ok {
				values[key] = str
			}
		}
	} else {
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxFormMemory); err != nil {
				return registry.PrinterRecord{}, fmt.Errorf("invalid form: %w", err)
			}
		} else if err := r.ParseForm(); err != nil {
			return registry.PrinterRecord{}, fmt.Errorf("invalid form: %w", err)
		}

		for key := range r.Form {
			values[key] = r.Form.Get(key)
		}
	}

	field := func(name string) string {
		for _, alias := range registry.FieldAliases[name] {
			if v := strings.TrimSpace(values[alias]); v != "" {
				return v
			}
		}
		return ""
	}

	return registry.PrinterRecord{
		MachineName: field("machine_name"),
		Nickname:    field("nickname"),
		IP:          field("ip"),
		Type:        field("type"),
		Brand:       field("brand"),
		API:         field("api"),
	}, nil
}

func (s *APIServer) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.writeError(w, "printer registry is not configured", http.StatusServiceUnavailable)
		return false
	}

	return true
}

func (s *APIServer) addPrinter(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	rec, err := decodeRecord(r)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch err := s.store.Add(rec); {
	case err == nil:
	case errors.Is(err, registry.ErrMissingField):
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, registry.ErrDuplicateNickname):
		s.writeError(w, err.Error(), http.StatusConflict)
		return
	default:
		s.log.Error().Err(err).Msg("failed to add printer")
		s.writeError(w, "failed to add printer", http.StatusInternalServerError)
		return
	}

	s.log.Info().
		Str("nickname", rec.Nickname).
		Str("ip", rec.IP).
		Msg("printer registered")

	s.writeSuccess(w, "printer added")
}

func (s *APIServer) getPrinters(w http.ResponseWriter, _ *http.Request) {
	if !s.requireStore(w) {
		return
	}

	printers, err := s.store.List()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read printer registry")
		s.writeError(w, "failed to read printer registry", http.StatusInternalServerError)
		return
	}

	if len(printers) == 0 {
		s.encodeJSONResponse(w, http.StatusNotFound, messageResponse{Message: "no printers registered"})
		return
	}

	s.encodeJSONResponse(w, http.StatusOK, printers)
}

func (s *APIServer) removePrinter(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	query := r.URL.Query()

	nickname := strings.TrimSpace(query.Get("nickname"))
	if nickname == "" {
		nickname = strings.TrimSpace(query.Get("Apelido"))
	}

	if nickname == "" {
		s.writeError(w, "nickname not provided", http.StatusBadRequest)
		return
	}

	switch err := s.store.RemoveByNickname(nickname); {
	case err == nil:
	case errors.Is(err, registry.ErrNotFound):
		s.writeError(w, fmt.Sprintf("printer with nickname %s not found", nickname), http.StatusNotFound)
		return
	default:
		s.log.Error().Err(err).Str("nickname", nickname).Msg("failed to remove printer")
		s.writeError(w, "failed to remove printer", http.StatusInternalServerError)
		return
	}

	s.writeSuccess(w, fmt.Sprintf("printer with nickname %s removed", nickname))
}

func (s *APIServer) discover(w http.ResponseWriter, r *http.Request) {
	if s.discoverer == nil {
		s.writeError(w, "discovery is not configured", http.StatusServiceUnavailable)
		return
	}

	ips, err := discovery.ParseIPRange(r.URL.Query().Get("range"))
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := s.discoverer.Scan(r.Context(), ips)
	if err != nil {
		s.log.Warn().Err(err).Int("found", len(results)).Msg("discovery interrupted")
	}

	s.encodeJSONResponse(w, http.StatusOK, results)
}
