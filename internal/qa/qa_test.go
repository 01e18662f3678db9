package qa_test

import (
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/colorspace"
	"github.com/shop4me/ARVA-sub000/internal/diff"
	"github.com/shop4me/ARVA-sub000/internal/mask"
	"github.com/shop4me/ARVA-sub000/internal/qa"
	"github.com/shop4me/ARVA-sub000/internal/raster"
	"github.com/shop4me/ARVA-sub000/internal/testsupport"
)

func target(t *testing.T) colorspace.Target {
	t.Helper()
	tgt, err := colorspace.ParseTarget(testsupport.TargetHex)
	if err != nil {
		t.Fatalf("ParseTarget: %v", err)
	}
	return tgt
}

func TestRecoloredSquareChangesOnlyUpholstery(t *testing.T) {
	base := testsupport.BaseScene()
	candidate := testsupport.Paint(base, testsupport.FlatRed)

	res := qa.Run(base, candidate, testsupport.SceneMask(), target(t))
	if res.OutsideMaskDiff != 0 {
		t.Fatalf("outside diff = %v, want 0", res.OutsideMaskDiff)
	}
	if !res.BackgroundPass || !res.UpholsteryPass || !res.ColorPass {
		t.Fatalf("expected first three gates to pass: %+v", res)
	}
	if res.InsideMaskDiff < qa.MinInsideDiff {
		t.Fatalf("inside diff = %v", res.InsideMaskDiff)
	}
	// A single flat color is indistinguishable from posterization.
	if res.ArtifactPass || res.Pass {
		t.Fatalf("flat fill should fail the artifact gate: %+v", res)
	}
}

func TestIdenticalCandidateFailsUpholsteryGate(t *testing.T) {
	base := testsupport.BaseScene()
	res := qa.Run(base, base.Clone(), testsupport.SceneMask(), target(t))
	if res.UpholsteryPass || res.Pass {
		t.Fatalf("identical image must fail: %+v", res)
	}
	if !strings.Contains(res.Message, "upholstery unchanged (diff=0.0)") {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestBackgroundShiftFailsBackgroundGate(t *testing.T) {
	base := testsupport.BaseScene()
	candidate := testsupport.ShiftOutside(testsupport.GoodCandidate(), 50)
	res := qa.Run(base, candidate, testsupport.SceneMask(), target(t))
	if res.BackgroundPass || res.Pass {
		t.Fatalf("background change must fail: %+v", res)
	}
	if res.OutsideMaskDiff < 49 || res.OutsideMaskDiff > 51 {
		t.Fatalf("outside diff = %v, want ~50", res.OutsideMaskDiff)
	}
	if got := res.Failures(); len(got) != 1 || got[0] != "background changed (diff=50.0)" {
		t.Fatalf("unexpected failures %v", got)
	}
}

func TestTexturedRecolorPassesAllGates(t *testing.T) {
	base := testsupport.BaseScene()
	res := qa.Run(base, testsupport.GoodCandidate(), testsupport.SceneMask(), target(t))
	if !res.Pass {
		t.Fatalf("expected pass, got %+v", res)
	}
	if res.Message != "" {
		t.Fatalf("passing result should have no message, got %q", res.Message)
	}
	if res.DeltaE > 20 {
		t.Fatalf("deltaE unexpectedly large: %v", res.DeltaE)
	}
}

func TestCandidateIsResizedToBase(t *testing.T) {
	base := testsupport.BaseScene()
	big := testsupport.GoodCandidate().Resize(testsupport.SceneSize*2, testsupport.SceneSize*2)
	res := qa.Run(base, big, testsupport.SceneMask(), target(t))
	if !res.BackgroundPass {
		t.Fatalf("upscaled candidate should keep the background: %+v", res)
	}
}

func TestDarkUpholsteryUsesSentinelDeltaE(t *testing.T) {
	base := testsupport.BaseScene()
	candidate := testsupport.Paint(base, func(int, int) (uint8, uint8, uint8) { return 5, 5, 5 })
	res := qa.Run(base, candidate, testsupport.SceneMask(), target(t))
	if res.DeltaE != qa.NoSampleDeltaE || res.ColorPass {
		t.Fatalf("expected sentinel deltaE, got %+v", res)
	}
}

func TestEvaluatePassIsConjunctionOfGates(t *testing.T) {
	outside := []float64{0, 12, 12.01}
	inside := []float64{7.99, 8, 40}
	deltas := []float64{0, 55, 55.01, qa.NoSampleDeltaE}
	scores := []float64{0.39, 0.4, 1}
	for _, o := range outside {
		for _, in := range inside {
			for _, d := range deltas {
				for _, s := range scores {
					res := qa.Evaluate(qa.Measurement{
						Diff:          diff.Stats{OutsideMeanDiff: o, InsideMeanDiff: in},
						DeltaE:        d,
						ArtifactScore: s,
					})
					want := o <= 12 && in >= 8 && d <= 55 && s >= 0.4
					if res.Pass != want {
						t.Fatalf("Evaluate(o=%v in=%v d=%v s=%v).Pass = %v, want %v", o, in, d, s, res.Pass, want)
					}
					if res.Pass != (res.BackgroundPass && res.UpholsteryPass && res.ColorPass && res.ArtifactPass) {
						t.Fatalf("pass flag disagrees with gates: %+v", res)
					}
					if !res.Pass && res.Message == "" {
						t.Fatalf("failed result needs a message: %+v", res)
					}
				}
			}
		}
	}
}

func TestFailureMessageOrderAndFormat(t *testing.T) {
	res := qa.Evaluate(qa.Measurement{
		Diff:          diff.Stats{OutsideMeanDiff: 20.04, InsideMeanDiff: 1.26},
		DeltaE:        60.55,
		ArtifactScore: 0.123,
	})
	want := "background changed (diff=20.0); upholstery unchanged (diff=1.3); color off (ΔE=60.5); artifacts (score=0.12)"
	if res.Message != want {
		t.Fatalf("message = %q\nwant      %q", res.Message, want)
	}
}

func TestArtifactGateSampleThreshold(t *testing.T) {
	const size = 20
	flatScore := 3.0 / float64(qa.ArtifactBins*3)
	tests := []struct {
		name      string
		inside    int
		wantScore float64
		wantPass  bool
	}{
		{name: "below threshold", inside: qa.MinArtifactSamples - 1, wantScore: 1, wantPass: true},
		{name: "at threshold", inside: qa.MinArtifactSamples, wantScore: flatScore, wantPass: false},
		{name: "above threshold", inside: qa.MinArtifactSamples + 1, wantScore: flatScore, wantPass: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			base := raster.Fill(size, size, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			candidate := base.Clone()
			m := &mask.Mask{Bits: make([]uint8, size*size), Width: size, Height: size}
			for i := range tc.inside {
				m.Bits[i] = 1
				candidate.SetRGB(i, 192, 57, 43)
			}

			res := qa.Run(base, candidate, m, target(t))
			if math.Abs(res.ArtifactScore-tc.wantScore) > 1e-9 {
				t.Fatalf("artifact score = %v, want %v", res.ArtifactScore, tc.wantScore)
			}
			if res.ArtifactPass != tc.wantPass {
				t.Fatalf("artifact pass = %v, want %v", res.ArtifactPass, tc.wantPass)
			}
			if !res.BackgroundPass || !res.UpholsteryPass || !res.ColorPass {
				t.Fatalf("flat red on white should pass the other gates: %+v", res)
			}
			if res.Pass != tc.wantPass {
				t.Fatalf("pass = %v, want %v", res.Pass, tc.wantPass)
			}
		})
	}
}
