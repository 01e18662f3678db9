package variants

import (
	"github.com/shop4me/ARVA-sub000/internal/qa"
	"github.com/shop4me/ARVA-sub000/internal/raster"
)

// Phase names a state of the per-pair state machine.
type Phase string

const (
	PhaseSkipCheck Phase = "skip_check"
	PhaseAI        Phase = "ai"
	PhaseFallback  Phase = "fallback"
	PhasePersist   Phase = "persist"
	PhaseReview    Phase = "review"
)

// Candidate sources.
const (
	SourceAI     = "ai"
	SourcePolish = "polish"
)

// Candidate is one generated image and its QA verdict.
type Candidate struct {
	Image  *raster.Image
	QA     qa.Result
	Source string
	Index  int
	// Path is the work-dir copy kept for operator inspection, if written.
	Path string
}

// Selection is the tagged result of a phase transition. When Passed is true
// Candidate is the winner. Otherwise the phase is exhausted and Candidate is
// the closest miss (lowest ΔE), which has a nil Image when nothing could be
// evaluated.
type Selection struct {
	Passed    bool
	Candidate Candidate
	Phase     Phase
	Evaluated int
}

// Exhausted reports whether the phase ended without a passing candidate.
func (s Selection) Exhausted() bool { return !s.Passed }

// passed builds a passing selection.
func passed(phase Phase, c Candidate, evaluated int) Selection {
	return Selection{Passed: true, Candidate: c, Phase: phase, Evaluated: evaluated}
}

// exhausted builds a failing selection around the closest evaluated candidate.
func exhausted(phase Phase, evaluated []Candidate) Selection {
	sel := Selection{Phase: phase, Evaluated: len(evaluated)}
	if closest, ok := Closest(evaluated); ok {
		sel.Candidate = closest
	}
	return sel
}

// SelectBest returns the passing candidate with the lowest ΔE. Ties keep the
// earliest candidate. ok is false when nothing passed.
func SelectBest(candidates []Candidate) (Candidate, bool) {
	var (
		best  Candidate
		found bool
	)
	for _, c := range candidates {
		if !c.QA.Pass {
			continue
		}
		if !found || c.QA.DeltaE < best.QA.DeltaE {
			best = c
			found = true
		}
	}
	return best, found
}

// Closest returns the candidate with the lowest ΔE regardless of verdict.
func Closest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.QA.DeltaE < best.QA.DeltaE {
			best = c
		}
	}
	return best, true
}

// ExistingOutput describes a variant already on disk.
type ExistingOutput struct {
	Path string
}

// ShouldSkip decides whether a pair can keep its existing output. current is
// the QA verdict of the existing file against the base, nil when it could not
// be measured.
func ShouldSkip(existing *ExistingOutput, force bool, current *qa.Result) bool {
	if existing == nil || force || current == nil {
		return false
	}
	return current.Pass
}
