package colorspace

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/shop4me/ARVA-sub000/internal/services"
)

// Target is a fabric color resolved once per (product, color) pair.
type Target struct {
	Hex string
	R   uint8
	G   uint8
	B   uint8
	Lab Lab
}

// ParseTarget parses "#rrggbb" or "#rgb" (leading '#' optional).
func ParseTarget(hex string) (Target, error) {
	value := strings.TrimSpace(hex)
	if value == "" {
		return Target{}, services.Wrap(services.ErrValidation, "colorspace", "parse hex", "empty color", nil)
	}
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	parsed, err := colorful.Hex(value)
	if err != nil {
		return Target{}, services.Wrap(services.ErrValidation, "colorspace", "parse hex", hex, err)
	}
	r, g, b := parsed.RGB255()
	return Target{
		Hex: parsed.Hex(),
		R:   r,
		G:   g,
		B:   b,
		Lab: SRGBToLab(r, g, b),
	}, nil
}
