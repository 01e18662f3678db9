package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shop4me/ARVA-sub000/internal/history"
	"github.com/shop4me/ARVA-sub000/internal/variantlog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var filter history.Filter
	var outcome string
	var stats bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded variant attempts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if stats {
				counts, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderOutcomeCounts(counts))
				return nil
			}

			filter.Outcome = variantlog.Outcome(strings.TrimSpace(outcome))
			entries, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No variant records")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(entries))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.Slug, "slug", "", "Only show this product slug")
	flags.StringVar(&filter.Color, "color", "", "Only show this color name")
	flags.StringVar(&filter.RunID, "run", "", "Only show records from this run id")
	flags.StringVar(&outcome, "outcome", "", "Only show this outcome (published, skipped, needs_review)")
	flags.IntVar(&filter.Limit, "limit", 20, "Maximum records to show (0 for all)")
	flags.BoolVar(&stats, "stats", false, "Show record counts per outcome instead of records")
	return cmd
}

func renderHistoryTable(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Slug,
			e.ColorName,
			e.Hex,
			string(e.Outcome),
			yesNo(e.QAPass),
			strconv.FormatFloat(e.DeltaE, 'f', 2, 64),
			strconv.FormatFloat(e.OutsideMaskDiff, 'f', 2, 64),
		})
	}
	return renderTable([]column{
		right("ID"), left("Recorded"), left("Slug"), left("Color"), left("Hex"),
		left("Outcome"), left("QA"), right("ΔE"), right("Outside"),
	}, rows)
}

func renderOutcomeCounts(counts map[variantlog.Outcome]int) string {
	outcomes := make([]string, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, string(o))
	}
	sort.Strings(outcomes)
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{o, strconv.Itoa(counts[variantlog.Outcome(o)])})
	}
	return renderTable([]column{left("Outcome"), right("Records")}, rows)
}
