// Package recolor implements the deterministic fallback: a Lab-space chroma
// shift inside the upholstery mask that keeps the original lightness, and so
// the original shading and texture.
package recolor

import (
	"github.com/shop4me/ARVA-sub000/internal/colorspace"
	"github.com/shop4me/ARVA-sub000/internal/mask"
	"github.com/shop4me/ARVA-sub000/internal/raster"
)

// DefaultBlend moves chroma all the way to the target.
const DefaultBlend = 1.0

// InMask returns a copy of img where every upholstery pixel keeps its L* and
// has its a*/b* moved toward target by blend. Blend is clamped to [0,1];
// pixels outside the mask and alpha are copied unchanged.
func InMask(img *raster.Image, m *mask.Mask, target colorspace.Target, blend float64) *raster.Image {
	blend = clampBlend(blend)
	out := img.Clone()
	if blend == 0 {
		return out
	}
	fitted := m.Fit(img.Width, img.Height)
	for i := 0; i < img.Len(); i++ {
		if !fitted.Inside(i) {
			continue
		}
		r, g, b := img.RGB(i)
		shifted := colorspace.ShiftChroma(colorspace.SRGBToLab(r, g, b), target.Lab, blend)
		nr, ng, nb := colorspace.LabToSRGB(shifted)
		out.SetRGB(i, nr, ng, nb)
	}
	return out
}

func clampBlend(v float64) float64 {
	switch {
	case v != v, v <= 0:
		return 0
	case v >= 1:
		return 1
	default:
		return v
	}
}
