package main

import (
	"errors"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/testsupport"
)

func TestQACommand(t *testing.T) {
	dir := t.TempDir()
	base := testsupport.SaveImage(t, dir, "base.png", testsupport.BaseScene())
	good := testsupport.SaveImage(t, dir, "good.png", testsupport.GoodCandidate())
	shifted := testsupport.SaveImage(t, dir, "shifted.png", testsupport.ShiftOutside(testsupport.GoodCandidate(), 50))
	maskPath := testsupport.SaveImage(t, dir, "mask.png", testsupport.SceneMask().Image())

	tests := []struct {
		name      string
		candidate string
		wantErr   bool
		want      []string
	}{
		{name: "passing", candidate: good, want: []string{"Background", "pass", "[OK]"}},
		{name: "background changed", candidate: shifted, wantErr: true, want: []string{"fail", "background changed (diff=50.0)", "[FAIL]"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := runCLI(t, []string{"qa", "--base", base, "--candidate", tc.candidate, "--mask", maskPath, "--hex", testsupport.TargetHex}, "")
			if tc.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v\n%s", err, tc.wantErr, out)
			}
			if err != nil && !errors.Is(err, errQAFailed) {
				t.Fatalf("expected errQAFailed, got %v", err)
			}
			for _, want := range tc.want {
				requireContains(t, out, want)
			}
		})
	}
}

func TestQACommandRejectsBadHex(t *testing.T) {
	dir := t.TempDir()
	base := testsupport.SaveImage(t, dir, "base.png", testsupport.BaseScene())
	maskPath := testsupport.SaveImage(t, dir, "mask.png", testsupport.SceneMask().Image())
	_, _, err := runCLI(t, []string{"qa", "--base", base, "--candidate", base, "--mask", maskPath, "--hex", "#zzz"}, "")
	if err == nil || errors.Is(err, errQAFailed) {
		t.Fatalf("expected hex parse error, got %v", err)
	}
}

func TestQACommandRequiresFlags(t *testing.T) {
	if _, _, err := runCLI(t, []string{"qa", "--hex", "#ffffff"}, ""); err == nil {
		t.Fatal("expected missing flags to fail")
	}
}
