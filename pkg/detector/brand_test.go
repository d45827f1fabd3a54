package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBrand(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"ELEGOO Saturn 3 Ultra", "Elegoo"},
		{"Saturn 3 Ultra", "Elegoo"},
		{"Anycubic Photon Mono X", "Anycubic"},
		{"Phrozen Sonic Mini 8K", "Phrozen"},
		{"Creality HALOT-ONE", "Creality"},
		{"Original Prusa MK4", "Prusa"},
		{"Bambu Lab P1S", "Bambu Lab"},
		{"Linux raspberrypi 6.1.21", BrandGeneric},
		{"", BrandGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectBrand(tt.desc))
		})
	}
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, TypeResin, DetectType("Saturn 3 Ultra"))
	assert.Equal(t, TypeResin, DetectType("Anycubic Photon M3"))
	assert.Equal(t, TypeFDM, DetectType("ELEGOO Neptune 4 Pro"))
	assert.Equal(t, TypeFDM, DetectType("Creality Ender-3 V3"))
	assert.Equal(t, TypeUnknown, DetectType("Generic network device"))
}

func TestGetBrandConfidence(t *testing.T) {
	assert.Equal(t, 0.98, GetBrandConfidence("ELEGOO Saturn 3 Ultra", "Elegoo"))
	assert.Equal(t, 0.85, GetBrandConfidence("Saturn 3 Ultra", "Elegoo"))
	assert.Equal(t, 0.50, GetBrandConfidence("router", BrandGeneric))
}
