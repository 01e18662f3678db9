package variants

import (
	"strings"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/qa"
)

func cand(index int, pass bool, deltaE float64) Candidate {
	return Candidate{Index: index, Source: SourceAI, QA: qa.Result{Pass: pass, DeltaE: deltaE}}
}

func TestSelectBestPicksLowestPassingDeltaE(t *testing.T) {
	tests := []struct {
		name      string
		in        []Candidate
		wantIndex int
		wantOK    bool
	}{
		{name: "empty", in: nil, wantOK: false},
		{name: "none pass", in: []Candidate{cand(0, false, 3), cand(1, false, 1)}, wantOK: false},
		{name: "single pass", in: []Candidate{cand(0, false, 1), cand(1, true, 40)}, wantIndex: 1, wantOK: true},
		{name: "lowest wins", in: []Candidate{cand(0, true, 30), cand(1, true, 12.5), cand(2, true, 20)}, wantIndex: 1, wantOK: true},
		{name: "failing lower ignored", in: []Candidate{cand(0, false, 2), cand(1, true, 9), cand(2, true, 11)}, wantIndex: 1, wantOK: true},
		{name: "tie keeps first", in: []Candidate{cand(0, true, 10), cand(1, true, 10)}, wantIndex: 0, wantOK: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SelectBest(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got.Index != tc.wantIndex {
				t.Fatalf("selected candidate %d, want %d", got.Index, tc.wantIndex)
			}
		})
	}
}

func TestClosestIgnoresVerdict(t *testing.T) {
	got, ok := Closest([]Candidate{cand(0, true, 30), cand(1, false, 4), cand(2, false, 4)})
	if !ok || got.Index != 1 {
		t.Fatalf("closest = %+v, %v", got, ok)
	}
	if _, ok := Closest(nil); ok {
		t.Fatal("expected no closest candidate for empty input")
	}
}

func TestExhaustedSelectionCarriesClosestMiss(t *testing.T) {
	sel := exhausted(PhaseAI, []Candidate{cand(0, false, 70), cand(1, false, 60)})
	if sel.Passed || !sel.Exhausted() {
		t.Fatal("expected exhausted selection")
	}
	if sel.Candidate.Index != 1 || sel.Evaluated != 2 || sel.Phase != PhaseAI {
		t.Fatalf("unexpected selection %+v", sel)
	}
	empty := exhausted(PhaseFallback, nil)
	if empty.Candidate.Image != nil || empty.Evaluated != 0 {
		t.Fatalf("unexpected empty selection %+v", empty)
	}
}

func TestShouldSkip(t *testing.T) {
	existing := &ExistingOutput{Path: "/public/images/products/a/a-navy.jpg"}
	pass := &qa.Result{Pass: true}
	fail := &qa.Result{Pass: false}
	tests := []struct {
		name     string
		existing *ExistingOutput
		force    bool
		current  *qa.Result
		want     bool
	}{
		{name: "no output", existing: nil, current: pass, want: false},
		{name: "passing output", existing: existing, current: pass, want: true},
		{name: "forced", existing: existing, force: true, current: pass, want: false},
		{name: "failing output", existing: existing, current: fail, want: false},
		{name: "unmeasured output", existing: existing, current: nil, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldSkip(tc.existing, tc.force, tc.current); got != tc.want {
				t.Fatalf("ShouldSkip = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPrompts(t *testing.T) {
	recolor := RecolorPrompt("Slate Gray", "#708090")
	if !strings.HasPrefix(recolor, "Change ONLY the upholstery fabric color inside the masked region to match Slate Gray (#708090). ") {
		t.Fatalf("unexpected recolor prompt %q", recolor)
	}
	if strings.Contains(recolor, "{") {
		t.Fatalf("unfilled placeholder in %q", recolor)
	}
	polish := PolishPrompt("Slate Gray")
	want := "Do not change anything except make the upholstery look natural and photo-real for Slate Gray. Keep lighting and texture realistic. No geometry changes."
	if polish != want {
		t.Fatalf("polish prompt = %q", polish)
	}
}
