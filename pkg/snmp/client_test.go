package snmp

import (
	"context"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		pdu  gosnmp.SnmpPDU
		want string
	}{
		{"nil", gosnmp.SnmpPDU{}, ""},
		{"string with nul", gosnmp.SnmpPDU{Value: "ELEGOO Saturn\x00"}, "ELEGOO Saturn"},
		{"octet string text", gosnmp.SnmpPDU{Value: []byte("Anycubic Photon")}, "Anycubic Photon"},
		{"binary octets", gosnmp.SnmpPDU{Value: []byte{0x00, 0x1a, 0x2b, 0x3c, 0x4d, 0x5e}}, "001a2b3c4d5e"},
		{"oid", gosnmp.SnmpPDU{Value: ".1.3.6.1.4.1.11"}, ".1.3.6.1.4.1.11"},
		{"integer", gosnmp.SnmpPDU{Value: 42}, "42"},
		{"counter", gosnmp.SnmpPDU{Value: uint32(7)}, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.pdu))
		})
	}
}

func TestNewSNMPClient_Defaults(t *testing.T) {
	c := NewSNMPClient("192.168.0.10", Config{})

	assert.Equal(t, uint16(161), c.config.Port)
	assert.Equal(t, "public", c.config.Community)
	assert.Equal(t, "2c", c.config.Version)
	assert.Equal(t, 2*time.Second, c.config.Timeout)
}

func TestGetMultiple_EmptyOIDs(t *testing.T) {
	values, err := NewSNMPClient("192.168.0.10", Config{}).GetMultiple(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestIdentify_NoAgent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Nadie escucha en este puerto del loopback: debe fallar sin colgarse
	c := NewSNMPClient("127.0.0.1", Config{Port: 1, Timeout: 100 * time.Millisecond})

	_, err := c.Identify(ctx)
	require.Error(t, err)
}
