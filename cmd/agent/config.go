package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/asaavedra/agent-resin/pkg/api"
	"github.com/asaavedra/agent-resin/pkg/integration"
	"github.com/asaavedra/agent-resin/pkg/logger"
	"github.com/asaavedra/agent-resin/pkg/sdcp"
)

// Config contiene la configuración global del agente
type Config struct {
	// Agent identifica este agente en los eventos exportados
	Agent struct {
		ID      string `yaml:"id"`
		Version string `yaml:"version"`
	} `yaml:"agent"`

	// Printer: parámetros del protocolo UDP
	Printer struct {
		Port      int `yaml:"port"`
		TimeoutMs int `yaml:"timeout_ms"`
	} `yaml:"printer"`

	// API REST
	API struct {
		Enabled bool           `yaml:"enabled"`
		Listen  string         `yaml:"listen"`
		CORS    api.CORSConfig `yaml:"cors"`
	} `yaml:"api"`

	// Registry: CSV de impresoras registradas
	Registry struct {
		Path string `yaml:"path"`
	} `yaml:"registry"`

	// Integrations: impresoras monitoreadas por el coordinador
	Integrations struct {
		IntervalSeconds int                 `yaml:"interval_seconds"`
		Entries         []integration.Entry `yaml:"entries"`
	} `yaml:"integrations"`

	// Discovery
	Discovery struct {
		MaxConcurrent  int    `yaml:"max_concurrent"`
		ProbeTimeoutMs int    `yaml:"probe_timeout_ms"`
		SNMPEnabled    bool   `yaml:"snmp_enabled"`
		Community      string `yaml:"community"`
		SNMPVersion    string `yaml:"snmp_version"`
		SNMPPort       uint16 `yaml:"snmp_port"`
	} `yaml:"discovery"`

	// Sinks
	Sinks struct {
		File struct {
			Enabled bool   `yaml:"enabled"`
			Path    string `yaml:"path"`
		} `yaml:"file"`
		HTTP struct {
			Enabled        bool   `yaml:"enabled"`
			Endpoint       string `yaml:"endpoint"`
			AuthToken      string `yaml:"auth_token"`
			Retries        int    `yaml:"retries"`
			TimeoutSeconds int    `yaml:"timeout_seconds"`
		} `yaml:"http"`
		NATS struct {
			Enabled       bool   `yaml:"enabled"`
			URL           string `yaml:"url"`
			SubjectPrefix string `yaml:"subject_prefix"`
		} `yaml:"nats"`
	} `yaml:"sinks"`

	// Logging
	Logging logger.Config `yaml:"logging"`
}

// LoadConfig carga la configuración desde un YAML sobre los valores por defecto
func LoadConfig(filePath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, fmt.Errorf("error leyendo %s: %w", filePath, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parseando YAML: %w", err)
	}

	return cfg, nil
}

// DefaultConfig retorna la configuración por defecto
func DefaultConfig() Config {
	var cfg Config
	cfg.Agent.ID = "AGT-LOCAL-001"
	cfg.Agent.Version = "1.0.0"
	cfg.Printer.Port = sdcp.DefaultPort
	cfg.Printer.TimeoutMs = int(sdcp.DefaultTimeout / time.Millisecond)
	cfg.API.Enabled = true
	cfg.API.Listen = ":5000"
	cfg.API.CORS.AllowedOrigins = []string{"*"}
	cfg.Registry.Path = "printers.csv"
	cfg.Integrations.IntervalSeconds = 10
	cfg.Discovery.MaxConcurrent = 32
	cfg.Discovery.ProbeTimeoutMs = 1500
	cfg.Discovery.Community = "public"
	cfg.Discovery.SNMPVersion = "2c"
	cfg.Discovery.SNMPPort = 161
	cfg.Sinks.File.Enabled = false
	cfg.Sinks.File.Path = "./queue"
	cfg.Sinks.HTTP.Retries = 3
	cfg.Sinks.HTTP.TimeoutSeconds = 10
	cfg.Sinks.NATS.URL = "nats://127.0.0.1:4222"
	cfg.Sinks.NATS.SubjectPrefix = "printers.status"
	cfg.Logging = logger.DefaultConfig()
	return cfg
}

// Validate revisa los campos que harían fallar el arranque
func (c Config) Validate() error {
	var errs []error

	if c.Printer.Port <= 0 || c.Printer.Port > 65535 {
		errs = append(errs, fmt.Errorf("printer.port fuera de rango: %d", c.Printer.Port))
	}

	if c.API.Enabled && c.API.Listen == "" {
		errs = append(errs, errors.New("api.listen es obligatorio con la API habilitada"))
	}

	if c.Sinks.HTTP.Enabled && c.Sinks.HTTP.Endpoint == "" {
		errs = append(errs, errors.New("sinks.http.endpoint es obligatorio"))
	}

	if c.Sinks.NATS.Enabled && c.Sinks.NATS.URL == "" {
		errs = append(errs, errors.New("sinks.nats.url es obligatorio"))
	}

	seen := make(map[string]bool)
	for _, e := range c.Integrations.Entries {
		e = e.Normalize()
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("integrations.entries[%s]: %w", e.Title, err))
			continue
		}
		if seen[e.ID] {
			errs = append(errs, fmt.Errorf("integrations.entries: id duplicado %q", e.ID))
		}
		seen[e.ID] = true
	}

	return errors.Join(errs...)
}

// PrinterTimeout retorna el timeout UDP como duración
func (c Config) PrinterTimeout() time.Duration {
	return time.Duration(c.Printer.TimeoutMs) * time.Millisecond
}

// Interval retorna el intervalo de refresco de las integraciones
func (c Config) Interval() time.Duration {
	return time.Duration(c.Integrations.IntervalSeconds) * time.Second
}
