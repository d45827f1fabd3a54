package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaavedra/agent-resin/pkg/discovery"
	"github.com/asaavedra/agent-resin/pkg/registry"
)

func TestRegisterAll_SkipsDuplicates(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "printers.csv"))
	results := []discovery.Result{
		{IP: "192.168.0.172", MachineName: "Saturn 3 Ultra", Brand: "Elegoo", Type: "resin", Protocol: discovery.ProtocolSDCP},
		{IP: "192.168.0.180", MachineName: "k1-lab", Brand: "Creality", Type: "FDM", Protocol: discovery.ProtocolSNMP},
	}

	registerAll(reg, results)
	registerAll(reg, results)

	printers, err := reg.List()
	require.NoError(t, err)
	require.Len(t, printers, 2)
	assert.Equal(t, "/elegoo_operations", printers[0].API)
	assert.Equal(t, "none", printers[1].API)
	assert.Equal(t, "192.168.0.172", printers[0].Nickname)
}
