package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shop4me/ARVA-sub000/internal/catalog"
	"github.com/shop4me/ARVA-sub000/internal/config"
	"github.com/shop4me/ARVA-sub000/internal/history"
	"github.com/shop4me/ARVA-sub000/internal/notifications"
	"github.com/shop4me/ARVA-sub000/internal/runlock"
	"github.com/shop4me/ARVA-sub000/internal/services/imageedit"
	"github.com/shop4me/ARVA-sub000/internal/variantlog"
	"github.com/shop4me/ARVA-sub000/internal/variants"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts variants.Options

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate color variant heroes for every eligible product",
		Long: "Generate walks every (product, color) pair, keeps existing variants that still pass QA,\n" +
			"and otherwise publishes the best AI candidate or the polished deterministic recolor.\n" +
			"Pairs that never pass QA are logged for manual review.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Workers < 0 || opts.Candidates < 0 {
				return errors.New("--workers and --candidates must not be negative")
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(runCtx, ctx, opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Slug, "slug", "", "Only process this product slug")
	flags.StringVar(&opts.Color, "color", "", "Only process this color name (case-insensitive)")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "List the pairs that would be generated without calling the API")
	flags.BoolVar(&opts.Force, "force", false, "Regenerate variants even when the existing output passes QA")
	flags.IntVar(&opts.Workers, "workers", 0, "Concurrent product/color pairs (default pipeline.workers)")
	flags.IntVar(&opts.Candidates, "candidates", 0, "AI candidates per pair (default pipeline.candidates)")
	return cmd
}

func runGenerate(runCtx context.Context, ctx *commandContext, opts variants.Options, out io.Writer) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		if errors.Is(err, runlock.ErrHeld) {
			return fmt.Errorf("%w (lock %s)", err, cfg.LockPath())
		}
		return err
	}
	defer lock.Release()

	cat, err := catalog.Load(cfg.Paths.ProductsFile, cfg.Paths.DetailsFile)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	engineOpts := []variants.EngineOption{}
	var generator imageedit.Generator
	notifier := notifications.Noop()
	if !opts.DryRun {
		client, err := imageedit.NewClient(imageEditConfig(cfg), imageedit.WithLogger(logger))
		if err != nil {
			return err
		}
		generator = client

		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()

		notifier = notifications.NewService(cfg)
		engineOpts = append(engineOpts,
			variants.WithRecorder(variantlog.Multi{variantlog.NewCSVLog(cfg.Paths.VariantLog), store}),
			variants.WithNotifier(notifier),
		)
	}

	engine := variants.NewEngine(cfg, cat, generator, logger, engineOpts...)
	summary, runErr := engine.Run(runCtx, opts)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		_ = notifier.NotifyError(context.WithoutCancel(runCtx), runErr, "generate")
	}
	if summary.Pairs > 0 || runErr == nil {
		printGenerateSummary(out, summary, shouldColorize(out))
	}
	return runErr
}

func imageEditConfig(cfg *config.Config) imageedit.ClientConfig {
	ie := cfg.ImageEdit
	return imageedit.ClientConfig{
		APIKey:          ie.APIKey,
		BaseURL:         ie.BaseURL,
		Model:           ie.Model,
		Size:            ie.Size,
		Timeout:         time.Duration(ie.TimeoutSeconds) * time.Second,
		RequestInterval: time.Duration(ie.RequestIntervalMillis) * time.Millisecond,
		RetryAttempts:   ie.RetryAttempts,
		RetryBaseDelay:  time.Duration(ie.RetryBaseDelaySeconds) * time.Second,
		RetryMaxDelay:   time.Duration(ie.RetryMaxDelaySeconds) * time.Second,
	}
}

func printGenerateSummary(out io.Writer, summary variants.Summary, colorize bool) {
	printLines(out, renderSectionHeader("Variant run "+summary.RunID, colorize)...)

	if summary.DryRun > 0 {
		fmt.Fprintf(out, "%d pair(s) would be generated (dry run)\n", summary.DryRun)
	}
	rows := [][]string{
		{"Published", strconv.Itoa(summary.Published)},
		{"Skipped (still passing)", strconv.Itoa(summary.Skipped)},
		{"Needs review", strconv.Itoa(summary.NeedsReview)},
		{"Missing assets", strconv.Itoa(summary.MissingAssets)},
		{"Failed", strconv.Itoa(summary.Failed)},
	}
	fmt.Fprintln(out, renderTable([]column{left("Outcome"), right("Pairs")}, rows))

	switch {
	case summary.Failed > 0:
		fmt.Fprintln(out, renderStatusLine("Result", statusError, fmt.Sprintf("%d pair(s) failed", summary.Failed), colorize))
	case summary.NeedsReview > 0:
		fmt.Fprintln(out, renderStatusLine("Result", statusWarn, fmt.Sprintf("%d pair(s) need review", summary.NeedsReview), colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Result", statusOK, "", colorize))
	}
	for _, path := range summary.Previews {
		fmt.Fprintln(out, renderStatusLine("Preview", statusInfo, path, colorize))
	}
	fmt.Fprintf(out, "Elapsed: %s\n", summary.Duration.Round(time.Millisecond))
}
