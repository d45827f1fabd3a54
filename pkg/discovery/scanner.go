// Package discovery busca impresoras de resina en un rango de la LAN:
// primero con la consulta de estado UDP y, opcionalmente, con SNMP.
package discovery

import (
	"bytes"
	"context"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/asaavedra/agent-resin/pkg/detector"
	"github.com/asaavedra/agent-resin/pkg/logger"
	"github.com/asaavedra/agent-resin/pkg/sdcp"
	"github.com/asaavedra/agent-resin/pkg/snmp"
)

const (
	ProtocolSDCP = "sdcp"
	ProtocolSNMP = "snmp"

	DefaultMaxConcurrent = 32
	DefaultProbeTimeout  = 1500 * time.Millisecond
)

// Result contiene información de un dispositivo descubierto
type Result struct {
	IP              string        `json:"ip"`
	MachineName     string        `json:"machine_name"`
	Firmware        string        `json:"firmware_version,omitempty"`
	Resolution      string        `json:"resolution,omitempty"`
	Status          string        `json:"status,omitempty"`
	Brand           string        `json:"brand"`
	BrandConfidence float64       `json:"brand_confidence"`
	Type            string        `json:"type"`
	Protocol        string        `json:"protocol"`
	SysDescr        string        `json:"sys_descr,omitempty"`
	ResponseTime    time.Duration `json:"response_time_ns"`
	DiscoveredAt    time.Time     `json:"discovered_at"`
}

// Config contiene configuración para el discovery
type Config struct {
	MaxConcurrent int           `yaml:"max_concurrent"`
	ProbeTimeout  time.Duration `yaml:"-"`
	Port          int           `yaml:"port"`
	SNMPEnabled   bool          `yaml:"snmp_enabled"`
	SNMP          snmp.Config   `yaml:"-"`
}

// Identifier lee la identidad SNMP de un host
type Identifier interface {
	Identify(ctx context.Context) (snmp.Identity, error)
}

// Scanner ejecuta las sondas en paralelo con concurrencia acotada
type Scanner struct {
	config        Config
	log           logger.Logger
	newPrinter    func(ip string) sdcp.Printer
	newIdentifier func(ip string) Identifier
	now           func() time.Time
}

// Option ajusta un Scanner
type Option func(*Scanner)

// WithPrinterFactory reemplaza cómo se construye el cliente UDP por IP
func WithPrinterFactory(f func(ip string) sdcp.Printer) Option {
	return func(s *Scanner) {
		s.newPrinter = f
	}
}

// WithIdentifierFactory reemplaza cómo se construye el cliente SNMP por IP
func WithIdentifierFactory(f func(ip string) Identifier) Option {
	return func(s *Scanner) {
		s.newIdentifier = f
	}
}

// NewScanner crea un nuevo scanner de discovery
func NewScanner(config Config, log logger.Logger, opts ...Option) *Scanner {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}

	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	s := &Scanner{
		config: config,
		log:    log.WithComponent("discovery"),
		now:    time.Now,
	}

	s.newPrinter = func(ip string) sdcp.Printer {
		return sdcp.NewClient(sdcp.Endpoint{
			Address: ip,
			Port:    s.config.Port,
			Timeout: s.config.ProbeTimeout,
		}, log)
	}

	s.newIdentifier = func(ip string) Identifier {
		return snmp.NewSNMPClient(ip, s.config.SNMP)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScanRange parsea el rango y lo escanea
func (s *Scanner) ScanRange(ctx context.Context, ipRange string) ([]Result, error) {
	ips, err := ParseIPRange(ipRange)
	if err != nil {
		return nil, err
	}

	return s.Scan(ctx, ips)
}

// Scan sondea cada IP y retorna solo las que respondieron, ordenadas por IP.
// Una cancelación del contexto corta el escaneo y retorna lo encontrado.
func (s *Scanner) Scan(ctx context.Context, ips []string) ([]Result, error) {
	limiter := NewRateLimiter(s.config.MaxConcurrent)
	resultsChan := make(chan Result, len(ips))

	var wg sync.WaitGroup

	s.log.Info().
		Int("ips", len(ips)).
		Int("max_concurrent", limiter.Capacity()).
		Bool("snmp", s.config.SNMPEnabled).
		Msg("starting discovery")

	startTime := s.now()

	for _, ip := range ips {
		if err := limiter.Acquire(ctx); err != nil {
			break
		}

		wg.Add(1)

		go func(targetIP string) {
			defer wg.Done()
			defer limiter.Release()

			if result, ok := s.probeIP(ctx, targetIP); ok {
				resultsChan <- result
			}
		}(ip)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]Result, 0)
	for result := range resultsChan {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return compareIP(results[i].IP, results[j].IP) < 0
	})

	s.log.Info().
		Dur("elapsed", s.now().Sub(startTime)).
		Int("found", len(results)).
		Msg("discovery completed")

	return results, ctx.Err()
}

// probeIP prueba un IP individual: UDP primero, SNMP como respaldo
func (s *Scanner) probeIP(ctx context.Context, ip string) (Result, bool) {
	startTime := s.now()

	if res := s.newPrinter(ip).Query(ctx); res.OK() {
		snap := res.Snapshot
		brand := detector.DetectBrand(snap.MachineName)

		// El protocolo UDP solo lo hablan equipos Elegoo
		if brand == detector.BrandGeneric {
			brand = "Elegoo"
		}

		return Result{
			IP:              ip,
			MachineName:     snap.MachineName,
			Firmware:        snap.FirmwareVersion,
			Resolution:      snap.Resolution,
			Status:          snap.Status,
			Brand:           brand,
			BrandConfidence: detector.GetBrandConfidence(snap.MachineName, brand),
			Type:            typeOrResin(snap.MachineName),
			Protocol:        ProtocolSDCP,
			ResponseTime:    s.now().Sub(startTime),
			DiscoveredAt:    s.now(),
		}, true
	}

	if !s.config.SNMPEnabled || ctx.Err() != nil {
		return Result{}, false
	}

	id, err := s.newIdentifier(ip).Identify(ctx)
	if err != nil {
		s.log.Debug().Str("ip", ip).Err(err).Msg("snmp probe failed")
		return Result{}, false
	}

	name := id.SysName
	if name == "" {
		name = id.SysDescr
	}

	brand := detector.DetectBrand(id.SysDescr + " " + id.SysName)

	return Result{
		IP:              ip,
		MachineName:     name,
		Brand:           brand,
		BrandConfidence: detector.GetBrandConfidence(id.SysDescr, brand),
		Type:            detector.DetectType(id.SysDescr + " " + id.SysName),
		Protocol:        ProtocolSNMP,
		SysDescr:        id.SysDescr,
		ResponseTime:    s.now().Sub(startTime),
		DiscoveredAt:    s.now(),
	}, true
}

// typeOrResin: todo lo que responde M99999 es de resina salvo que el
// nombre diga lo contrario
func typeOrResin(name string) string {
	if t := detector.DetectType(name); t != detector.TypeUnknown {
		return t
	}

	return detector.TypeResin
}

func compareIP(a, b string) int {
	ipA, ipB := net.ParseIP(a).To16(), net.ParseIP(b).To16()
	if ipA == nil || ipB == nil {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}

	return bytes.Compare(ipA, ipB)
}
