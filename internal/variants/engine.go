package variants

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shop4me/ARVA-sub000/internal/catalog"
	"github.com/shop4me/ARVA-sub000/internal/config"
	"github.com/shop4me/ARVA-sub000/internal/fileutil"
	"github.com/shop4me/ARVA-sub000/internal/logging"
	"github.com/shop4me/ARVA-sub000/internal/mask"
	"github.com/shop4me/ARVA-sub000/internal/notifications"
	"github.com/shop4me/ARVA-sub000/internal/preview"
	"github.com/shop4me/ARVA-sub000/internal/services"
	"github.com/shop4me/ARVA-sub000/internal/services/imageedit"
	"github.com/shop4me/ARVA-sub000/internal/variantlog"
)

// Options are the per-run hooks exposed to the CLI. Zero Workers or
// Candidates fall back to the pipeline config.
type Options struct {
	Slug       string
	Color      string
	DryRun     bool
	Force      bool
	Workers    int
	Candidates int
}

// Summary counts how each pair of a run ended.
type Summary struct {
	RunID         string
	Pairs         int
	Published     int
	Skipped       int
	NeedsReview   int
	MissingAssets int
	Failed        int
	DryRun        int
	Previews      []string
	Duration      time.Duration

	decodeFailures int
}

// Notification converts the summary for the batch notification.
func (s Summary) Notification() notifications.BatchSummary {
	return notifications.BatchSummary{
		Published:     s.Published,
		Skipped:       s.Skipped,
		NeedsReview:   s.NeedsReview,
		MissingAssets: s.MissingAssets,
		Failed:        s.Failed,
		Duration:      s.Duration,
	}
}

// Engine drives the variant state machine over every eligible pair.
type Engine struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	generator imageedit.Generator
	recorder  variantlog.Recorder
	notifier  notifications.Service
	logger    *slog.Logger
	now       func() time.Time
	newRunID  func() string
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithRecorder sets where variant records go.
func WithRecorder(r variantlog.Recorder) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithNotifier sets the notification service.
func WithNotifier(n notifications.Service) EngineOption {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRunID fixes the run identifier (tests).
func WithRunID(id string) EngineOption {
	return func(e *Engine) {
		if id != "" {
			e.newRunID = func() string { return id }
		}
	}
}

// NewEngine wires an engine. generator may be nil for dry runs only.
func NewEngine(cfg *config.Config, cat *catalog.Catalog, generator imageedit.Generator, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:       cfg,
		catalog:   cat,
		generator: generator,
		recorder:  variantlog.Multi(nil),
		notifier:  notifications.Noop(),
		logger:    logging.NewComponentLogger(logger, "variants"),
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// job is one (product, color) pair ready to run.
type job struct {
	index    int
	slug     string
	color    catalog.Color
	heroPath string
	maskPath string
}

// outcome is how a pair ended.
type outcome int

const (
	outcomePending outcome = iota
	outcomePublished
	outcomeSkipped
	outcomeNeedsReview
	outcomeMissing
	outcomeFailed
	outcomeDryRun
)

type pairResult struct {
	outcome outcome
	output  string
	decode  bool
}

// Run processes every eligible pair and returns the batch summary. The error
// is non-nil only for invalid inputs, cancellation, or when every attempted
// pair failed to decode.
func (e *Engine) Run(ctx context.Context, opts Options) (Summary, error) {
	started := e.now()
	summary := Summary{RunID: e.newRunID()}
	if e.catalog == nil {
		return summary, services.Wrap(services.ErrConfiguration, "variants", "run", "catalog not loaded", nil)
	}
	if e.generator == nil && !opts.DryRun {
		return summary, services.Wrap(services.ErrConfiguration, "variants", "run", "image edit client not configured", nil)
	}
	if opts.Workers <= 0 {
		opts.Workers = e.cfg.Pipeline.Workers
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Candidates <= 0 {
		opts.Candidates = e.cfg.Pipeline.Candidates
	}

	ctx = services.WithRequestID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("variant run started",
		logging.String("run_id", summary.RunID),
		logging.Bool("dry_run", opts.DryRun),
		logging.Bool("force", opts.Force),
		logging.Int("workers", opts.Workers),
		logging.Int("candidates", opts.Candidates),
	)

	jobs := e.plan(ctx, opts, &summary)
	results := e.dispatch(ctx, jobs, opts)
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	attempted := 0
	for _, res := range results {
		summary.Pairs++
		if res.outcome != outcomeMissing && res.outcome != outcomeDryRun {
			attempted++
		}
		switch res.outcome {
		case outcomePublished:
			summary.Published++
		case outcomeSkipped:
			summary.Skipped++
		case outcomeNeedsReview:
			summary.NeedsReview++
		case outcomeMissing:
			summary.MissingAssets++
		case outcomeFailed:
			summary.Failed++
		case outcomeDryRun:
			summary.DryRun++
		}
		if res.decode {
			summary.decodeFailures++
		}
	}

	if !opts.DryRun && e.cfg.Pipeline.Previews {
		summary.Previews = e.buildPreviews(ctx, jobs, results)
	}
	summary.Duration = e.now().Sub(started)

	logger.Info("variant run finished",
		logging.Int("published", summary.Published),
		logging.Int("skipped", summary.Skipped),
		logging.Int("needs_review", summary.NeedsReview),
		logging.Int("missing_assets", summary.MissingAssets),
		logging.Int("failed", summary.Failed),
		logging.Int("dry_run", summary.DryRun),
		logging.Duration("elapsed", summary.Duration),
	)

	if !opts.DryRun && summary.Pairs > 0 {
		if err := e.notifier.NotifyBatchCompleted(ctx, summary.Notification()); err != nil {
			logging.WarnWithContext(logger, "batch notification failed", "notification_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "no push notification for this batch"),
			)
		}
	}

	if attempted > 0 && summary.decodeFailures == attempted {
		return summary, services.Wrap(services.ErrDecode, "variants", "run",
			fmt.Sprintf("all %d pairs failed to decode", attempted), nil)
	}
	return summary, nil
}

// plan resolves assets per product and expands the eligible pairs. Products
// with missing assets are counted and skipped with a warning.
func (e *Engine) plan(ctx context.Context, opts Options, summary *Summary) []job {
	var jobs []job
	for _, slug := range e.catalog.Slugs(e.cfg.Catalog.Slugs, opts.Slug) {
		logger := logging.WithContext(services.WithSlug(ctx, slug), e.logger)
		skip := func(reason, hint string) {
			summary.MissingAssets++
			logging.WarnWithContext(logger, "skipping product", "asset_missing",
				logging.String("reason", reason),
				logging.String(logging.FieldErrorHint, hint),
				logging.String(logging.FieldImpact, "no variants generated for this product"),
			)
		}

		heroPath, ok := e.catalog.HeroPath(e.cfg.Paths.PublicDir, slug)
		if !ok {
			skip("no base hero", "set images.hero in productDetails.json")
			continue
		}
		if !fileutil.Exists(heroPath) {
			skip("base image not found", "check "+heroPath)
			continue
		}
		maskPath := mask.PathFor(e.cfg.Paths.MasksDir, slug)
		if !fileutil.Exists(maskPath) {
			skip("mask not found at "+maskPath,
				fmt.Sprintf("create %s (white=upholstery) or run arvactl masks placeholder --slug %s", filepath.Base(maskPath), slug))
			continue
		}
		colors := e.catalog.Colors(slug, opts.Color)
		if len(colors) == 0 {
			skip("no colors with hex", "add fabricOptions with hex values")
			continue
		}
		for _, color := range colors {
			jobs = append(jobs, job{
				index:    len(jobs),
				slug:     slug,
				color:    color,
				heroPath: heroPath,
				maskPath: maskPath,
			})
		}
	}
	return jobs
}

// dispatch runs jobs on a bounded worker pool. Results are indexed like jobs.
func (e *Engine) dispatch(ctx context.Context, jobs []job, opts Options) []pairResult {
	results := make([]pairResult, len(jobs))
	queue := make(chan job)
	var wg sync.WaitGroup
	workers := min(opts.Workers, max(len(jobs), 1))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				results[j.index] = e.runPair(ctx, j, opts)
			}
		}()
	}
feed:
	for _, j := range jobs {
		select {
		case queue <- j:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()
	return results
}

// buildPreviews writes one contact sheet per product that has at least one
// published or kept variant, in catalog color order.
func (e *Engine) buildPreviews(ctx context.Context, jobs []job, results []pairResult) []string {
	var (
		order   []string
		heroes  = map[string]string{}
		outputs = map[string][]string{}
	)
	for i, j := range jobs {
		res := results[i]
		if res.outcome != outcomePublished && res.outcome != outcomeSkipped {
			continue
		}
		if _, ok := heroes[j.slug]; !ok {
			order = append(order, j.slug)
			heroes[j.slug] = j.heroPath
		}
		outputs[j.slug] = append(outputs[j.slug], res.output)
	}

	var written []string
	for _, slug := range order {
		logger := logging.WithContext(services.WithSlug(ctx, slug), e.logger)
		out := preview.PathFor(e.cfg.Paths.PreviewDir, slug)
		res, err := preview.Build(heroes[slug], outputs[slug], out, e.cfg.Pipeline.PreviewQuality)
		if err != nil {
			logging.WarnWithContext(logger, "preview grid failed", "preview_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "no contact sheet for this product"),
			)
			continue
		}
		if len(res.Missing) > 0 {
			logger.Debug("preview skipped unreadable variants", logging.String("missing", strings.Join(res.Missing, ", ")))
		}
		logger.Info("preview written", logging.String("preview", res.Path), logging.Int("tiles", res.Tiles))
		written = append(written, res.Path)
	}
	return written
}
