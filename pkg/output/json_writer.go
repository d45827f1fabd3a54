// Package output escribe los resultados de un descubrimiento a disco:
// un JSON completo y un reporte de texto legible.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/asaavedra/agent-resin/pkg/discovery"
)

const (
	ResultsFile = "discovery_results.json"
	ReportFile  = "discovery_report.txt"
)

// ScanSummary contiene el resumen del escaneo
type ScanSummary struct {
	ScanStartTime       time.Time      `json:"scan_start_time"`
	ScanEndTime         time.Time      `json:"scan_end_time"`
	ScanDuration        string         `json:"scan_duration"`
	Range               string         `json:"range"`
	TotalScanned        int            `json:"total_scanned"`
	TotalFound          int            `json:"total_found"`
	ByBrand             map[string]int `json:"by_brand"`
	ByType              map[string]int `json:"by_type"`
	ByProtocol          map[string]int `json:"by_protocol"`
	AverageResponseTime float64        `json:"avg_response_time_ms"`
	SuccessRate         float64        `json:"success_rate"`
}

// ScanOutput es el formato de salida JSON principal
type ScanOutput struct {
	ScanInfo *ScanSummary       `json:"scan_info"`
	Printers []discovery.Result `json:"printers"`
}

// JSONWriter escribe los resultados en formato JSON
type JSONWriter struct {
	outputDir string
}

// NewJSONWriter crea un nuevo escritor JSON
func NewJSONWriter(outputDir string) *JSONWriter {
	return &JSONWriter{outputDir: outputDir}
}

// Summarize genera el resumen del escaneo
func Summarize(results []discovery.Result, ipRange string, totalScanned int, startTime, endTime time.Time) *ScanSummary {
	summary := &ScanSummary{
		ScanStartTime: startTime,
		ScanEndTime:   endTime,
		ScanDuration:  fmt.Sprintf("%.1fs", endTime.Sub(startTime).Seconds()),
		Range:         ipRange,
		TotalScanned:  totalScanned,
		TotalFound:    len(results),
		ByBrand:       make(map[string]int),
		ByType:        make(map[string]int),
		ByProtocol:    make(map[string]int),
	}

	var totalResponse time.Duration
	for _, r := range results {
		summary.ByBrand[r.Brand]++
		summary.ByType[r.Type]++
		summary.ByProtocol[r.Protocol]++
		totalResponse += r.ResponseTime
	}

	if len(results) > 0 {
		summary.AverageResponseTime = float64(totalResponse.Milliseconds()) / float64(len(results))
	}

	if totalScanned > 0 {
		summary.SuccessRate = float64(len(results)) / float64(totalScanned) * 100.0
	}

	return summary
}

// WriteScanResults escribe el JSON de resultados y el reporte de texto
func (jw *JSONWriter) WriteScanResults(summary *ScanSummary, results []discovery.Result) error {
	if err := os.MkdirAll(jw.outputDir, 0o755); err != nil {
		return fmt.Errorf("error creando directorio de salida: %w", err)
	}

	if results == nil {
		results = []discovery.Result{}
	}

	out := ScanOutput{ScanInfo: summary, Printers: results}
	if err := jw.writeJSON(out, filepath.Join(jw.outputDir, ResultsFile)); err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(jw.outputDir, ReportFile))
	if err != nil {
		return fmt.Errorf("error creando reporte: %w", err)
	}
	defer file.Close()

	return WriteReport(file, summary, results)
}

// writeJSON escribe un objeto a JSON sin escapar HTML
func (jw *JSONWriter) writeJSON(data interface{}, filePath string) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("error serializando JSON: %w", err)
	}

	if err := os.WriteFile(filePath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error escribiendo archivo: %w", err)
	}

	return nil
}

// WriteReport escribe un reporte legible en texto
func WriteReport(w io.Writer, summary *ScanSummary, results []discovery.Result) error {
	var b bytes.Buffer

	fmt.Fprintf(&b, "REPORTE DE DESCUBRIMIENTO DE IMPRESORAS 3D\n")
	fmt.Fprintf(&b, "═══════════════════════════════════════════════════════════════\n")
	fmt.Fprintf(&b, "Rango escaneado:        %s\n", summary.Range)
	fmt.Fprintf(&b, "Total escaneado:        %d IPs\n", summary.TotalScanned)
	fmt.Fprintf(&b, "Impresoras encontradas: %d\n", summary.TotalFound)
	fmt.Fprintf(&b, "Tasa de éxito:          %.1f%%\n", summary.SuccessRate)
	fmt.Fprintf(&b, "Tiempo de escaneo:      %s\n\n", summary.ScanDuration)

	fmt.Fprintf(&b, "IMPRESORAS POR MARCA\n")
	fmt.Fprintf(&b, "───────────────────────────────────────────────────────────────\n")
	for _, brand := range sortedKeys(summary.ByBrand) {
		fmt.Fprintf(&b, "%-20s: %d\n", brand, summary.ByBrand[brand])
	}

	fmt.Fprintf(&b, "\nDETALLE\n")
	fmt.Fprintf(&b, "───────────────────────────────────────────────────────────────\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %-15s %-10s %-8s %s", i+1, r.IP, r.Brand, r.Type, r.MachineName)
		if r.Firmware != "" {
			fmt.Fprintf(&b, " (%s)", r.Firmware)
		}
		fmt.Fprintf(&b, " via %s\n", r.Protocol)
	}

	_, err := w.Write(b.Bytes())
	return err
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
