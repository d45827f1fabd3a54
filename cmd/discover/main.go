package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaavedra/agent-resin/pkg/discovery"
	"github.com/asaavedra/agent-resin/pkg/logger"
	"github.com/asaavedra/agent-resin/pkg/output"
	"github.com/asaavedra/agent-resin/pkg/registry"
	"github.com/asaavedra/agent-resin/pkg/sdcp"
	"github.com/asaavedra/agent-resin/pkg/snmp"
)

func main() {
	// Flags
	ipRangeFlag := flag.String("range", "", "Rango de IPs a escanear (ej: 192.168.1.1-254 o 192.168.1.0/24)")
	portFlag := flag.Int("port", sdcp.DefaultPort, "Puerto UDP de las impresoras")
	timeoutFlag := flag.Duration("timeout", discovery.DefaultProbeTimeout, "Timeout por IP")
	maxConcurrentFlag := flag.Int("concurrent", discovery.DefaultMaxConcurrent, "Máximo de sondas concurrentes")
	snmpFlag := flag.Bool("snmp", false, "Sondear por SNMP las IPs que no responden por UDP")
	communityFlag := flag.String("community", "public", "Comunidad SNMP")
	outputDirFlag := flag.String("output", "./output", "Directorio de salida")
	registerFlag := flag.String("register", "", "CSV donde registrar las impresoras encontradas (opcional)")
	verbose := flag.Bool("verbose", false, "Modo verbose")

	flag.Parse()

	if *ipRangeFlag == "" {
		fmt.Println("Error: se requiere el parámetro -range")
		fmt.Println("\nUso:")
		fmt.Println("  discover -range 192.168.1.1-254")
		fmt.Println("\nOpciones:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Debug = *verbose
	if !*verbose {
		logCfg.Level = "warn"
	}

	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ips, err := discovery.ParseIPRange(*ipRangeFlag)
	if err != nil {
		fmt.Printf("Error parseando rango: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Se escaneará un total de %d IPs\n\n", len(ips))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := discovery.NewScanner(discovery.Config{
		MaxConcurrent: *maxConcurrentFlag,
		ProbeTimeout:  *timeoutFlag,
		Port:          *portFlag,
		SNMPEnabled:   *snmpFlag,
		SNMP:          snmp.Config{Community: *communityFlag, Timeout: *timeoutFlag},
	}, log)

	startTime := time.Now()

	results, err := scanner.Scan(ctx, ips)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("Error durante discovery: %v\n", err)
		os.Exit(1)
	}

	endTime := time.Now()

	if len(results) == 0 {
		fmt.Println("No se encontraron impresoras en el rango especificado")
		os.Exit(0)
	}

	summary := output.Summarize(results, *ipRangeFlag, len(ips), startTime, endTime)

	if err := output.NewJSONWriter(*outputDirFlag).WriteScanResults(summary, results); err != nil {
		fmt.Printf("Error escribiendo salida: %v\n", err)
		os.Exit(1)
	}

	_ = output.WriteReport(os.Stdout, summary, results)

	if *registerFlag != "" {
		registerAll(registry.New(*registerFlag), results)
	}

	fmt.Printf("\nArchivos generados en: %s\n", *outputDirFlag)
	fmt.Printf("   • %s\n", output.ResultsFile)
	fmt.Printf("   • %s\n", output.ReportFile)
}

// registerAll agrega al CSV las impresoras nuevas; el apodo por defecto es la IP
func registerAll(reg *registry.Registry, results []discovery.Result) {
	added := 0

	for _, r := range results {
		err := reg.Add(registry.PrinterRecord{
			MachineName: r.MachineName,
			Nickname:    r.IP,
			IP:          r.IP,
			Type:        r.Type,
			Brand:       r.Brand,
			API:         apiFor(r),
		})

		switch {
		case err == nil:
			added++
		case errors.Is(err, registry.ErrDuplicateNickname):
			// ya registrada
		default:
			fmt.Printf("No se pudo registrar %s: %v\n", r.IP, err)
		}
	}

	fmt.Printf("\nRegistradas %d impresoras nuevas en %s\n", added, reg.Path())
}

// apiFor indica qué grupo de rutas REST controla la impresora
func apiFor(r discovery.Result) string {
	if r.Protocol == discovery.ProtocolSDCP {
		return "/elegoo_operations"
	}
	return "none"
}
