// Package integration expone las impresoras configuradas como entidades de
// domótica: sensores alimentados por un coordinador y botones de control.
package integration

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

const (
	Manufacturer = "Elegoo"
	Model        = "Saturn 3 Ultra"

	// Redacted reemplaza valores sensibles en los diagnósticos.
	Redacted = "**REDACTED**"
)

var (
	ErrInvalidEntry  = errors.New("invalid integration entry")
	ErrEntryExists   = errors.New("integration entry already set up")
	ErrEntryNotFound = errors.New("integration entry not found")
	ErrUnknownButton = errors.New("unknown button")
	ErrCommandFailed = errors.New("printer did not acknowledge command")
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Entry es una impresora configurada.
type Entry struct {
	ID      string `json:"entry_id" yaml:"id"`
	Title   string `json:"title" yaml:"name"`
	Address string `json:"ip_address" yaml:"ip_address"`
}

// Normalize completa el ID a partir del título cuando está vacío.
func (e Entry) Normalize() Entry {
	e.Title = strings.TrimSpace(e.Title)
	e.Address = strings.TrimSpace(e.Address)
	e.ID = strings.TrimSpace(e.ID)

	if e.ID == "" {
		e.ID = Slugify(e.Title)
	}

	return e
}

// Validate revisa los campos que el usuario debe entregar.
func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}

	if net.ParseIP(e.Address) == nil {
		return fmt.Errorf("%w: %q is not an IP address", ErrInvalidEntry, e.Address)
	}

	return nil
}

// Slugify pasa s a minúsculas y une los tramos alfanuméricos con "_".
func Slugify(s string) string {
	return strings.Trim(slugInvalidChars.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// DeviceInfo agrupa las entidades de una entrada bajo un dispositivo.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	SWVersion    string   `json:"sw_version,omitempty"`
}
