// Package snmp envuelve gosnmp para leer la identidad (system MIB) de un
// equipo de red durante el descubrimiento.
package snmp

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosnmp/gosnmp"
)

// OIDs del grupo system (RFC 1213)
const (
	OIDSysDescr    = "1.3.6.1.2.1.1.1.0"
	OIDSysObjectID = "1.3.6.1.2.1.1.2.0"
	OIDSysName     = "1.3.6.1.2.1.1.5.0"
)

// Config agrupa los parámetros de conexión
type Config struct {
	Port      uint16
	Community string
	Version   string // "1" o "2c"
	Timeout   time.Duration
	Retries   int
}

// DefaultConfig retorna valores típicos de una LAN doméstica
func DefaultConfig() Config {
	return Config{
		Port:      161,
		Community: "public",
		Version:   "2c",
		Timeout:   2 * time.Second,
		Retries:   1,
	}
}

// Identity es lo que un equipo dice de sí mismo por SNMP
type Identity struct {
	SysDescr    string `json:"sys_descr"`
	SysObjectID string `json:"sys_object_id,omitempty"`
	SysName     string `json:"sys_name,omitempty"`
}

// SNMPClient wrapper alrededor de gosnmp; conecta en cada llamada
type SNMPClient struct {
	host   string
	config Config
}

// NewSNMPClient crea un nuevo cliente SNMP
func NewSNMPClient(host string, config Config) *SNMPClient {
	defaults := DefaultConfig()

	if config.Port == 0 {
		config.Port = defaults.Port
	}

	if config.Community == "" {
		config.Community = defaults.Community
	}

	if config.Version == "" {
		config.Version = defaults.Version
	}

	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &SNMPClient{host: host, config: config}
}

// Get obtiene un único valor OID como texto
func (sc *SNMPClient) Get(ctx context.Context, oid string) (string, error) {
	values, err := sc.GetMultiple(ctx, []string{oid})
	if err != nil {
		return "", err
	}

	value, ok := values[oid]
	if !ok {
		return "", fmt.Errorf("sin respuesta para OID: %s", oid)
	}

	return value, nil
}

// GetMultiple obtiene múltiples OIDs en un solo PDU
func (sc *SNMPClient) GetMultiple(ctx context.Context, oids []string) (map[string]string, error) {
	values := make(map[string]string, len(oids))
	if len(oids) == 0 {
		return values, nil
	}

	client, err := sc.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Conn.Close()

	result, err := client.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("error SNMP GET %s: %w", sc.host, err)
	}

	if result == nil {
		return nil, fmt.Errorf("sin respuesta para OIDs en %s", sc.host)
	}

	if result.Error != gosnmp.NoError {
		return nil, fmt.Errorf("SNMP error %d: %s", result.Error, result.Error.String())
	}

	for _, variable := range result.Variables {
		switch variable.Type {
		case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.Null:
			continue
		}

		values[strings.TrimPrefix(variable.Name, ".")] = parseValue(variable)
	}

	return values, nil
}

// Identify lee sysDescr, sysObjectID y sysName. sysDescr vacío es un error:
// sin él no hay nada que clasificar.
func (sc *SNMPClient) Identify(ctx context.Context) (Identity, error) {
	values, err := sc.GetMultiple(ctx, []string{OIDSysDescr, OIDSysObjectID, OIDSysName})
	if err != nil {
		return Identity{}, err
	}

	id := Identity{
		SysDescr:    strings.TrimSpace(values[OIDSysDescr]),
		SysObjectID: values[OIDSysObjectID],
		SysName:     strings.TrimSpace(values[OIDSysName]),
	}

	if id.SysDescr == "" {
		return Identity{}, fmt.Errorf("sysDescr vacío en %s", sc.host)
	}

	return id, nil
}

// connect establece la sesión SNMP
func (sc *SNMPClient) connect(ctx context.Context) (*gosnmp.GoSNMP, error) {
	var version gosnmp.SnmpVersion

	switch sc.config.Version {
	case "1":
		version = gosnmp.Version1
	default:
		version = gosnmp.Version2c
	}

	params := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    sc.host,
		Port:      sc.config.Port,
		Community: sc.config.Community,
		Version:   version,
		Timeout:   sc.config.Timeout,
		Retries:   sc.config.Retries,
	}

	if err := params.Connect(); err != nil {
		return nil, fmt.Errorf("error conectando a %s:%d: %w", sc.host, sc.config.Port, err)
	}

	return params, nil
}

// parseValue convierte un PDU variable a string
func parseValue(variable gosnmp.SnmpPDU) string {
	if variable.Value == nil {
		return ""
	}

	switch v := variable.Value.(type) {
	case string:
		return strings.TrimRight(v, "\x00")
	case []byte:
		if utf8.Valid(v) && isLikelyText(v) {
			return strings.TrimRight(string(v), "\x00")
		}

		return hex.EncodeToString(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// isLikelyText verifica si los bytes parecen texto (no caracteres de control raros)
func isLikelyText(b []byte) bool {
	if len(b) == 0 {
		return false
	}

	printableCount := 0
	for _, c := range b {
		// ASCII imprimible más tab/newline/carriage return; los bytes UTF-8 altos cuentan
		if (c >= 32 && c <= 126) || c == 9 || c == 10 || c == 13 || c >= 0x80 {
			printableCount++
		}
	}

	// Al menos el 80% imprimible
	return float64(printableCount)/float64(len(b)) >= 0.8
}
