package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/asaavedra/agent-resin/pkg/api"
	"github.com/asaavedra/agent-resin/pkg/discovery"
	"github.com/asaavedra/agent-resin/pkg/integration"
	"github.com/asaavedra/agent-resin/pkg/logger"
	"github.com/asaavedra/agent-resin/pkg/registry"
	"github.com/asaavedra/agent-resin/pkg/sdcp"
	"github.com/asaavedra/agent-resin/pkg/serializer"
	"github.com/asaavedra/agent-resin/pkg/sink"
	"github.com/asaavedra/agent-resin/pkg/snmp"
	"github.com/asaavedra/agent-resin/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "agent: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	configFile := flag.String("config", "config.yaml", "Archivo de configuración")
	listenOverride := flag.String("listen", "", "Override de la dirección de la API (ej: :5000)")
	verbose := flag.Bool("verbose", false, "Logs de debug (override de config)")

	flag.Parse()

	// Cargar configuración desde YAML; sin archivo se usan los defaults
	cfg, loadErr := LoadConfig(*configFile)
	if loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
		return loadErr
	}

	if *listenOverride != "" {
		cfg.API.Listen = *listenOverride
	}
	if *verbose {
		cfg.Logging.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuración inválida: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}

	if loadErr != nil {
		log.Warn().Str("config", *configFile).Msg("config file not found, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printerFactory := func(address string) sdcp.Printer {
		return sdcp.NewClient(sdcp.Endpoint{
			Address: address,
			Port:    cfg.Printer.Port,
			Timeout: cfg.PrinterTimeout(),
		}, log)
	}

	eventSink, err := buildSinks(cfg, log)
	if err != nil {
		return err
	}

	manager := integration.NewManager(integration.Options{
		Interval: cfg.Interval(),
		Factory:  integration.PrinterFactory(printerFactory),
		Builder: telemetry.NewBuilder(telemetry.AgentSource{
			AgentID:  getAgentID(cfg.Agent.ID),
			Hostname: getHostname(),
			OS:       runtime.GOOS,
			Version:  cfg.Agent.Version,
		}),
		Serializer: serializer.NewCompactSerializer(),
		Sink:       eventSink,
		Logger:     log,
	})
	defer func() {
		if err := manager.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close sinks")
		}
	}()

	for _, entry := range cfg.Integrations.Entries {
		if _, err := manager.Setup(ctx, entry); err != nil {
			log.Error().Err(err).Str("entry", entry.Title).Msg("failed to set up integration entry")
		}
	}

	scanner := discovery.NewScanner(discovery.Config{
		MaxConcurrent: cfg.Discovery.MaxConcurrent,
		ProbeTimeout:  time.Duration(cfg.Discovery.ProbeTimeoutMs) * time.Millisecond,
		Port:          cfg.Printer.Port,
		SNMPEnabled:   cfg.Discovery.SNMPEnabled,
		SNMP: snmp.Config{
			Port:      cfg.Discovery.SNMPPort,
			Community: cfg.Discovery.Community,
			Version:   cfg.Discovery.SNMPVersion,
		},
	}, log)

	if !cfg.API.Enabled {
		log.Info().Int("entries", len(manager.Devices())).Msg("api disabled, polling only")
		<-ctx.Done()
		return nil
	}

	server := api.NewAPIServer(cfg.API.CORS,
		api.WithLogger(log),
		api.WithPrinterFactory(printerFactory),
		api.WithRegistry(registry.New(cfg.Registry.Path)),
		api.WithDiscoverer(scanner),
		api.WithIntegrations(manager),
	)

	return server.Serve(ctx, cfg.API.Listen)
}

// buildSinks arma los sinks habilitados; nil si no hay ninguno
func buildSinks(cfg Config, log logger.Logger) (sink.Sink, error) {
	var sinks sink.Multi

	if cfg.Sinks.File.Enabled {
		fileSink, err := sink.NewFileSink(cfg.Sinks.File.Path)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fileSink)
		log.Info().Str("path", cfg.Sinks.File.Path).Msg("file sink enabled")
	}

	if cfg.Sinks.HTTP.Enabled {
		sinks = append(sinks, sink.NewHTTPSink(sink.HTTPSinkConfig{
			Endpoint:   cfg.Sinks.HTTP.Endpoint,
			AuthToken:  cfg.Sinks.HTTP.AuthToken,
			Timeout:    time.Duration(cfg.Sinks.HTTP.TimeoutSeconds) * time.Second,
			MaxRetries: cfg.Sinks.HTTP.Retries,
		}))
		log.Info().Str("endpoint", cfg.Sinks.HTTP.Endpoint).Msg("http sink enabled")
	}

	if cfg.Sinks.NATS.Enabled {
		natsSink, err := sink.NewNatsSink(sink.NatsSinkConfig{
			URL:           cfg.Sinks.NATS.URL,
			SubjectPrefix: cfg.Sinks.NATS.SubjectPrefix,
			Name:          "agent-resin " + getAgentID(cfg.Agent.ID),
		})
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, natsSink)
		log.Info().Str("url", cfg.Sinks.NATS.URL).Msg("nats sink enabled")
	}

	if len(sinks) == 0 {
		return nil, nil
	}

	return sinks, nil
}

// getAgentID obtiene el ID del agente (env var o config)
func getAgentID(configured string) string {
	if id := os.Getenv("AGENT_ID"); id != "" {
		return id
	}
	return configured
}

// getHostname obtiene el hostname del servidor
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
