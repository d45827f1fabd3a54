// Package api sirve la API REST de impresoras: consultas y comandos directos
// por IP, el registro CSV, el descubrimiento en la LAN y las entradas de la
// integración.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/asaavedra/agent-resin/pkg/discovery"
	"github.com/asaavedra/agent-resin/pkg/integration"
	"github.com/asaavedra/agent-resin/pkg/logger"
	"github.com/asaavedra/agent-resin/pkg/registry"
	"github.com/asaavedra/agent-resin/pkg/sdcp"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 2 * time.Minute // un descubrimiento de un /24 puede tardar
	defaultIdleTimeout  = 60 * time.Second
	shutdownTimeout     = 5 * time.Second
)

// PrinterFactory crea un cliente para la dirección que llega en un request.
type PrinterFactory func(address string) sdcp.Printer

// PrinterStore es el registro tal como lo ve la API.
type PrinterStore interface {
	Add(rec registry.PrinterRecord) error
	List() ([]registry.PrinterRecord, error)
	RemoveByNickname(nickname string) error
}

// Discoverer busca impresoras en una lista de direcciones.
type Discoverer interface {
	Scan(ctx context.Context, ips []string) ([]discovery.Result, error)
}

// EntryProvider expone las entradas configuradas de la integración.
type EntryProvider interface {
	Devices() []*integration.Device
	Get(id string) (*integration.Device, error)
}

var (
	_ PrinterStore  = (*registry.Registry)(nil)
	_ Discoverer    = (*discovery.Scanner)(nil)
	_ EntryProvider = (*integration.Manager)(nil)
)

// APIServer enruta los requests REST a impresoras, registro e integraciones.
type APIServer struct {
	router     *mux.Router
	corsConfig CORSConfig
	log        logger.Logger

	printers     PrinterFactory
	store        PrinterStore
	discoverer   Discoverer
	integrations EntryProvider
}

// NewAPIServer crea el servidor y sus rutas.
func NewAPIServer(config CORSConfig, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		corsConfig: config,
		log:        logger.NewTestLogger(),
	}

	for _, o := range options {
		o(s)
	}

	if s.printers == nil {
		log := s.log
		s.printers = func(address string) sdcp.Printer {
			return sdcp.NewClient(sdcp.Endpoint{Address: address}, log)
		}
	}

	s.setupRoutes()

	return s
}

// WithLogger define el logger del servidor.
func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		server.log = log.WithComponent("api")
	}
}

// WithPrinterFactory define cómo se crea el cliente de cada request.
func WithPrinterFactory(f PrinterFactory) func(server *APIServer) {
	return func(server *APIServer) {
		server.printers = f
	}
}

// WithRegistry habilita las rutas /general_operations del registro.
func WithRegistry(store PrinterStore) func(server *APIServer) {
	return func(server *APIServer) {
		server.store = store
	}
}

// WithDiscoverer habilita la ruta de descubrimiento.
func WithDiscoverer(d Discoverer) func(server *APIServer) {
	return func(server *APIServer) {
		server.discoverer = d
	}
}

// WithIntegrations habilita las rutas /integration.
func WithIntegrations(p EntryProvider) func(server *APIServer) {
	return func(server *APIServer) {
		server.integrations = p
	}
}

func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return CommonMiddleware(next, s.corsConfig, s.log)
	})

	elegoo := s.router.PathPrefix("/elegoo_operations").Subrouter()
	elegoo.HandleFunc("/get_printer_info", s.getPrinterInfo).Methods(http.MethodGet, http.MethodOptions)
	elegoo.HandleFunc("/get_printer_status", s.getPrinterStatus).Methods(http.MethodGet, http.MethodOptions)
	elegoo.HandleFunc("/get_printer_snapshot", s.getPrinterSnapshot).Methods(http.MethodGet, http.MethodOptions)
	elegoo.HandleFunc("/{command:pause|resume|stop}", s.controlPrinter).Methods(http.MethodPost, http.MethodOptions)

	general := s.router.PathPrefix("/general_operations").Subrouter()
	general.HandleFunc("/add_printer", s.addPrinter).Methods(http.MethodPost, http.MethodOptions)
	general.HandleFunc("/get_printers", s.getPrinters).Methods(http.MethodGet, http.MethodOptions)
	general.HandleFunc("/remove_printer_by_nickname", s.removePrinter).Methods(http.MethodPost, http.MethodOptions)
	general.HandleFunc("/discover", s.discover).Methods(http.MethodGet, http.MethodOptions)

	s.router.HandleFunc("/integration/entries", s.listEntries).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/integration/entries/{id}/diagnostics", s.entryDiagnostics).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/integration/entries/{id}/buttons/{button}", s.pressButton).Methods(http.MethodPost, http.MethodOptions)

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.encodeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

// Handler retorna el handler con las rutas; lo usan Serve y los tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Serve escucha en addr hasta que se cancela ctx y luego cierra ordenadamente.
func (s *APIServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info().Str("addr", addr).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

type messageResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

func (s *APIServer) encodeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, message string, status int) {
	s.encodeJSONResponse(w, status, messageResponse{Status: "error", Message: message})
}

func (s *APIServer) writeSuccess(w http.ResponseWriter, message string) {
	s.encodeJSONResponse(w, http.StatusOK, messageResponse{Status: "success", Message: message})
}
