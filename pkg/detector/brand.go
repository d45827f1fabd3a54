// Package detector clasifica impresoras 3D por marca y tecnología a partir
// de lo que reportan (nombre de máquina o sysDescr).
package detector

import (
	"strings"
)

const (
	TypeResin   = "resin"
	TypeFDM     = "FDM"
	TypeUnknown = "unknown"

	BrandGeneric = "Generic"
)

type brandPatterns struct {
	brand    string
	patterns []string
}

// El orden importa: el primer match gana
var brands = []brandPatterns{
	{"Elegoo", []string{"elegoo", "saturn", "mars", "jupiter", "neptune"}},
	{"Anycubic", []string{"anycubic", "photon", "kobra", "vyper"}},
	{"Phrozen", []string{"phrozen", "sonic mini", "sonic mighty", "sonic xl"}},
	{"Creality", []string{"creality", "ender", "cr-10", "halot", "k1 max", "sermoon"}},
	{"Prusa", []string{"prusa", "mk3", "mk4", "mini+", "sl1"}},
	{"Formlabs", []string{"formlabs", "form 3", "form 4"}},
	{"Bambu Lab", []string{"bambu", "x1c", "x1-carbon", "p1s", "p1p", "a1 mini"}},
	{"Uniformation", []string{"uniformation", "gktwo", "gkone"}},
	{"Flashforge", []string{"flashforge", "adventurer", "creator pro"}},
}

var resinPatterns = []string{
	"saturn", "mars", "jupiter", "photon", "sonic", "halot", "sl1", "form ",
	"gktwo", "gkone", "resin", "msla", "lcd", "dlp",
}

var fdmPatterns = []string{
	"neptune", "kobra", "vyper", "ender", "cr-10", "k1 max", "sermoon", "mk3",
	"mk4", "mini+", "x1c", "x1-carbon", "p1s", "p1p", "a1 mini", "adventurer",
	"creator pro", "fdm", "marlin", "klipper", "filament",
}

// DetectBrand detecta la marca a partir de un nombre de máquina o sysDescr
func DetectBrand(desc string) string {
	descLower := strings.ToLower(desc)

	for _, b := range brands {
		if matchesPatterns(descLower, b.patterns) {
			return b.brand
		}
	}

	return BrandGeneric
}

// DetectType distingue resina (MSLA/DLP) de filamento (FDM)
func DetectType(desc string) string {
	descLower := strings.ToLower(desc)

	// FDM primero: "neptune" es Elegoo pero de filamento
	if matchesPatterns(descLower, fdmPatterns) {
		return TypeFDM
	}

	if matchesPatterns(descLower, resinPatterns) {
		return TypeResin
	}

	return TypeUnknown
}

// matchesPatterns verifica si descLower contiene alguno de los patrones
func matchesPatterns(descLower string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(descLower, pattern) {
			return true
		}
	}
	return false
}

// GetBrandConfidence retorna un valor de confianza (0-1) según qué tan
// específico fue el match
func GetBrandConfidence(desc string, brand string) float64 {
	descLower := strings.ToLower(desc)

	if brand == BrandGeneric {
		return 0.50
	}

	for _, b := range brands {
		if b.brand != brand {
			continue
		}

		// El nombre de la marca es la evidencia más fuerte
		if strings.Contains(descLower, b.patterns[0]) {
			return 0.98
		}

		if matchesPatterns(descLower, b.patterns[1:]) {
			return 0.85
		}
	}

	return 0.75
}
