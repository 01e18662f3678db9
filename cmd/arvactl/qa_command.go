package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shop4me/ARVA-sub000/internal/colorspace"
	"github.com/shop4me/ARVA-sub000/internal/mask"
	"github.com/shop4me/ARVA-sub000/internal/qa"
	"github.com/shop4me/ARVA-sub000/internal/raster"
)

// errQAFailed marks a candidate that failed at least one gate; the gate
// table has already been printed.
var errQAFailed = errors.New("qa failed")

func newQACommand(ctx *commandContext) *cobra.Command {
	var basePath, candidatePath, maskPath, hex string

	cmd := &cobra.Command{
		Use:         "qa",
		Short:       "Run the QA gates on one candidate image",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := colorspace.ParseTarget(hex)
			if err != nil {
				return err
			}
			base, err := raster.Load(basePath)
			if err != nil {
				return fmt.Errorf("load base: %w", err)
			}
			candidate, err := raster.Load(candidatePath)
			if err != nil {
				return fmt.Errorf("load candidate: %w", err)
			}
			m, err := mask.Load(maskPath)
			if err != nil {
				return fmt.Errorf("load mask: %w", err)
			}

			res := qa.Run(base, candidate, m, target)
			out := cmd.OutOrStdout()
			printQAResult(cmd, res, target)
			if !res.Pass {
				fmt.Fprintln(out, "Failures: "+strings.Join(res.Failures(), "; "))
				return errQAFailed
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&basePath, "base", "", "Reference hero image")
	flags.StringVar(&candidatePath, "candidate", "", "Candidate variant image")
	flags.StringVar(&maskPath, "mask", "", "Upholstery mask (white = upholstery)")
	flags.StringVar(&hex, "hex", "", "Target fabric color, e.g. #6b7a8f")
	for _, name := range []string{"base", "candidate", "mask", "hex"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func printQAResult(cmd *cobra.Command, res qa.Result, target colorspace.Target) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	printLines(out, renderSectionHeader("QA "+target.Hex, colorize)...)

	rows := [][]string{
		{"Background", fmt.Sprintf("outside diff %.2f", res.OutsideMaskDiff), fmt.Sprintf("<= %.0f", qa.MaxOutsideDiff), passFail(res.BackgroundPass)},
		{"Upholstery", fmt.Sprintf("inside diff %.2f", res.InsideMaskDiff), fmt.Sprintf(">= %.0f", qa.MinInsideDiff), passFail(res.UpholsteryPass)},
		{"Color", fmt.Sprintf("ΔE %.2f", res.DeltaE), fmt.Sprintf("<= %.0f", qa.MaxDeltaE), passFail(res.ColorPass)},
		{"Artifacts", fmt.Sprintf("score %.2f", res.ArtifactScore), fmt.Sprintf(">= %.1f", qa.MinArtifactScore), passFail(res.ArtifactPass)},
	}
	fmt.Fprintln(out, renderTable([]column{left("Gate"), right("Measured"), right("Threshold"), left("Result")}, rows))
	fmt.Fprintln(out, renderStatusLine("Verdict", gateKind(res.Pass), "", colorize))
}

func passFail(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}
