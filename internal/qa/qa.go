package qa

import (
	"fmt"
	"strings"

	"github.com/shop4me/ARVA-sub000/internal/colorspace"
	"github.com/shop4me/ARVA-sub000/internal/diff"
	"github.com/shop4me/ARVA-sub000/internal/mask"
	"github.com/shop4me/ARVA-sub000/internal/raster"
)

// Gate thresholds.
const (
	MaxOutsideDiff = 12.0
	MinInsideDiff  = 8.0
	MaxDeltaE      = 55.0

	// ΔE sampling excludes deep shadows and specular highlights.
	LuminanceMin = 25.0
	LuminanceMax = 230.0

	// NoSampleDeltaE is reported when no upholstery pixel falls inside the
	// luminance window; it always fails the color gate.
	NoSampleDeltaE = 999.0

	// Regions with fewer than MinArtifactSamples upholstery pixels are too
	// small to score and pass the artifact gate with score 1.
	ArtifactBins       = 32
	MinArtifactScore   = 0.4
	MinArtifactSamples = 100
)

// Result is the outcome of running all gates on one candidate.
type Result struct {
	Pass            bool
	BackgroundPass  bool
	UpholsteryPass  bool
	ColorPass       bool
	ArtifactPass    bool
	OutsideMaskDiff float64
	InsideMaskDiff  float64
	DeltaE          float64
	ArtifactScore   float64
	Message         string
}

// Measurement holds the raw numbers the gates are evaluated on.
type Measurement struct {
	Diff          diff.Stats
	DeltaE        float64
	ArtifactScore float64
}

// Run measures candidate against base and evaluates the gates.
func Run(base, candidate *raster.Image, m *mask.Mask, target colorspace.Target) Result {
	return Evaluate(Measure(base, candidate, m, target))
}

// Measure computes the diff statistics, ΔE and artifact score.
func Measure(base, candidate *raster.Image, m *mask.Mask, target colorspace.Target) Measurement {
	candidate = diff.Align(base, candidate)
	fitted := m.Fit(base.Width, base.Height)
	stats := diff.Analyze(base, candidate, fitted)

	var deltaSum float64
	var deltaCount, insideCount int
	var seen [256]bool
	unique := 0
	mark := func(v uint8) {
		if !seen[v] {
			seen[v] = true
			unique++
		}
	}

	for i := 0; i < base.Len(); i++ {
		if !fitted.Inside(i) {
			continue
		}
		insideCount++
		r, g, b := candidate.RGB(i)
		if lum := colorspace.Luminance(r, g, b); lum >= LuminanceMin && lum <= LuminanceMax {
			deltaSum += colorspace.DeltaE76(colorspace.SRGBToLab(r, g, b), target.Lab)
			deltaCount++
		}
		mark(r)
		mark(g)
		mark(b)
	}

	deltaE := NoSampleDeltaE
	if deltaCount > 0 {
		deltaE = deltaSum / float64(deltaCount)
	}
	score := 1.0
	if insideCount >= MinArtifactSamples {
		score = float64(unique) / float64(ArtifactBins*3)
	}
	return Measurement{Diff: stats, DeltaE: deltaE, ArtifactScore: score}
}

// Evaluate applies the gate thresholds to a measurement.
func Evaluate(m Measurement) Result {
	res := Result{
		BackgroundPass:  m.Diff.OutsideMeanDiff <= MaxOutsideDiff,
		UpholsteryPass:  m.Diff.InsideMeanDiff >= MinInsideDiff,
		ColorPass:       m.DeltaE <= MaxDeltaE,
		ArtifactPass:    m.ArtifactScore >= MinArtifactScore,
		OutsideMaskDiff: m.Diff.OutsideMeanDiff,
		InsideMaskDiff:  m.Diff.InsideMeanDiff,
		DeltaE:          m.DeltaE,
		ArtifactScore:   m.ArtifactScore,
	}
	res.Pass = res.BackgroundPass && res.UpholsteryPass && res.ColorPass && res.ArtifactPass
	if !res.Pass {
		res.Message = failureMessage(res)
	}
	return res
}

// Failures lists the failed gate descriptions.
func (r Result) Failures() []string {
	if r.Message == "" {
		return nil
	}
	return strings.Split(r.Message, "; ")
}

func failureMessage(r Result) string {
	var parts []string
	if !r.BackgroundPass {
		parts = append(parts, fmt.Sprintf("background changed (diff=%.1f)", r.OutsideMaskDiff))
	}
	if !r.UpholsteryPass {
		parts = append(parts, fmt.Sprintf("upholstery unchanged (diff=%.1f)", r.InsideMaskDiff))
	}
	if !r.ColorPass {
		parts = append(parts, fmt.Sprintf("color off (ΔE=%.1f)", r.DeltaE))
	}
	if !r.ArtifactPass {
		parts = append(parts, fmt.Sprintf("artifacts (score=%.2f)", r.ArtifactScore))
	}
	return strings.Join(parts, "; ")
}
