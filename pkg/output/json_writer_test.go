package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaavedra/agent-resin/pkg/discovery"
)

var found = []discovery.Result{
	{IP: "192.168.0.172", MachineName: "Saturn 3 Ultra", Firmware: "V1.4.2", Brand: "Elegoo", Type: "resin", Protocol: discovery.ProtocolSDCP, ResponseTime: 20 * time.Millisecond},
	{IP: "192.168.0.180", MachineName: "k1-lab", Brand: "Creality", Type: "FDM", Protocol: discovery.ProtocolSNMP, ResponseTime: 40 * time.Millisecond},
}

func TestSummarize(t *testing.T) {
	start := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	s := Summarize(found, "192.168.0.1-254", 254, start, start.Add(3*time.Second))

	assert.Equal(t, "3.0s", s.ScanDuration)
	assert.Equal(t, 2, s.TotalFound)
	assert.Equal(t, map[string]int{"Elegoo": 1, "Creality": 1}, s.ByBrand)
	assert.Equal(t, map[string]int{"resin": 1, "FDM": 1}, s.ByType)
	assert.Equal(t, 30.0, s.AverageResponseTime)
	assert.InDelta(t, 0.787, s.SuccessRate, 0.001)
}

func TestWriteScanResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	start := time.Now()
	summary := Summarize(found, "192.168.0.1-254", 254, start, start)

	require.NoError(t, NewJSONWriter(dir).WriteScanResults(summary, found))

	data, err := os.ReadFile(filepath.Join(dir, ResultsFile))
	require.NoError(t, err)

	var out ScanOutput
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Printers, 2)
	assert.Equal(t, "Saturn 3 Ultra", out.Printers[0].MachineName)

	report, err := os.ReadFile(filepath.Join(dir, ReportFile))
	require.NoError(t, err)
	assert.Contains(t, string(report), "192.168.0.172")
	assert.Contains(t, string(report), "(V1.4.2) via sdcp")
}

func TestWriteReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, Summarize(nil, "10.0.0.1", 1, time.Now(), time.Now()), nil))
	assert.Contains(t, buf.String(), "Impresoras encontradas: 0")
}
