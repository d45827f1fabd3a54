// Package logger entrega logging estructurado en JSON usando zerolog
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger es la interfaz de logging que recibe cada componente del agente.
type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	Fatal() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) Logger
	SetLevel(level zerolog.Level)
}

// Config define nivel, destino y formato de timestamp.
type Config struct {
	Level      string `json:"level" yaml:"level"`
	Debug      bool   `json:"debug" yaml:"debug"`
	Output     string `json:"output" yaml:"output"`
	TimeFormat string `json:"time_format" yaml:"time_format"`
}

// DefaultConfig lee LOG_LEVEL, DEBUG, LOG_OUTPUT y LOG_TIME_FORMAT.
func DefaultConfig() Config {
	return Config{
		Level:      getEnvOrDefault("LOG_LEVEL", "info"),
		Debug:      getEnvBoolOrDefault("DEBUG", false),
		Output:     getEnvOrDefault("LOG_OUTPUT", "stdout"),
		TimeFormat: getEnvOrDefault("LOG_TIME_FORMAT", ""),
	}
}

type zlogger struct {
	zl zerolog.Logger
}

// New crea un Logger sin tocar el estado global.
func New(config Config) (Logger, error) {
	var output io.Writer = os.Stdout

	if config.Output == "stderr" {
		output = os.Stderr
	}

	return NewWithWriter(config, output)
}

// NewWithWriter es New con un destino explícito.
func NewWithWriter(config Config, output io.Writer) (Logger, error) {
	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(strings.ToLower(config.Level))
		if err != nil {
			return nil, err
		}
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	zl := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &zlogger{zl: zl}, nil
}

func (l *zlogger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *zlogger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *zlogger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *zlogger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *zlogger) Error() *zerolog.Event { return l.zl.Error() }
func (l *zlogger) Fatal() *zerolog.Event { return l.zl.Fatal() }
func (l *zlogger) With() zerolog.Context { return l.zl.With() }

func (l *zlogger) WithComponent(component string) Logger {
	return &zlogger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *zlogger) SetLevel(level zerolog.Level) {
	l.zl = l.zl.Level(level)
}

// NewTestLogger crea un logger para tests que descarta toda la salida
func NewTestLogger() Logger {
	return &zlogger{zl: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	value = strings.ToLower(value)

	return value == "true" || value == "1" || value == "yes" || value == "on"
}
