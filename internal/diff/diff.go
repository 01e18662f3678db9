// Package diff measures how much a candidate image departs from the base hero
// inside and outside the upholstery mask.
package diff

import (
	"github.com/shop4me/ARVA-sub000/internal/mask"
	"github.com/shop4me/ARVA-sub000/internal/raster"
)

// Stats holds the per-region mean absolute RGB difference. A region with no
// pixels reports 0.
type Stats struct {
	OutsideMeanDiff float64
	InsideMeanDiff  float64
	InsideCount     int
	OutsideCount    int
}

// Align resamples candidate to the base dimensions when they differ.
func Align(base, candidate *raster.Image) *raster.Image {
	if candidate.SameSize(base) {
		return candidate
	}
	return candidate.Resize(base.Width, base.Height)
}

// Analyze compares candidate against base. The candidate is aligned to the
// base and the mask fitted to it first; alpha is ignored.
func Analyze(base, candidate *raster.Image, m *mask.Mask) Stats {
	candidate = Align(base, candidate)
	fitted := m.Fit(base.Width, base.Height)

	var insideSum, outsideSum float64
	var stats Stats
	for i := 0; i < base.Len(); i++ {
		d := PixelDiff(base, candidate, i)
		if fitted.Inside(i) {
			insideSum += d
			stats.InsideCount++
		} else {
			outsideSum += d
			stats.OutsideCount++
		}
	}
	if stats.InsideCount > 0 {
		stats.InsideMeanDiff = insideSum / float64(stats.InsideCount)
	}
	if stats.OutsideCount > 0 {
		stats.OutsideMeanDiff = outsideSum / float64(stats.OutsideCount)
	}
	return stats
}

// PixelDiff is the mean of |ΔR|, |ΔG|, |ΔB| at pixel i.
func PixelDiff(a, b *raster.Image, i int) float64 {
	ar, ag, ab := a.RGB(i)
	br, bg, bb := b.RGB(i)
	return float64(absDiff(ar, br)+absDiff(ag, bg)+absDiff(ab, bb)) / 3
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
