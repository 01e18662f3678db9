package variants

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/shop4me/ARVA-sub000/internal/catalog"
	"github.com/shop4me/ARVA-sub000/internal/colorspace"
	"github.com/shop4me/ARVA-sub000/internal/fileutil"
	"github.com/shop4me/ARVA-sub000/internal/logging"
	"github.com/shop4me/ARVA-sub000/internal/mask"
	"github.com/shop4me/ARVA-sub000/internal/qa"
	"github.com/shop4me/ARVA-sub000/internal/raster"
	"github.com/shop4me/ARVA-sub000/internal/recolor"
	"github.com/shop4me/ARVA-sub000/internal/services"
	"github.com/shop4me/ARVA-sub000/internal/services/imageedit"
	"github.com/shop4me/ARVA-sub000/internal/variantlog"
)

// pairRun holds the assets of one (product, color) attempt. Everything is
// loaded fresh per pair.
type pairRun struct {
	job       job
	target    colorspace.Target
	base      *raster.Image
	mask      *mask.Mask
	outPath   string
	outputURL string
	workDir   string
	logger    *slog.Logger
}

func (e *Engine) runPair(ctx context.Context, j job, opts Options) pairResult {
	ctx = services.WithSlug(ctx, j.slug)
	ctx = services.WithColor(ctx, j.color.Name)
	logger := logging.WithContext(ctx, e.logger)

	relPath := catalog.VariantPath(j.slug, j.color.Name)
	p := &pairRun{
		job:       j,
		outPath:   filepath.Join(e.cfg.Paths.PublicDir, filepath.FromSlash(relPath)),
		outputURL: catalog.VariantURL(j.slug, j.color.Name),
		workDir:   filepath.Join(e.cfg.Paths.WorkDir, j.slug, catalog.ColorSlug(j.color.Name)),
		logger:    logger,
	}

	target, err := colorspace.ParseTarget(j.color.Hex)
	if err != nil {
		return e.fail(ctx, p, "invalid color hex", err)
	}
	p.target = target

	if opts.DryRun {
		logger.Info("[dry-run] would generate",
			logging.String("output", relPath),
			logging.String("hex", target.Hex),
		)
		return pairResult{outcome: outcomeDryRun}
	}

	if p.base, err = raster.Load(j.heroPath); err != nil {
		return e.fail(ctx, p, "base image unusable", err)
	}
	if p.mask, err = mask.Load(j.maskPath); err != nil {
		return e.fail(ctx, p, "mask unusable", err)
	}

	if res, ok := e.skipCheck(services.WithPhase(ctx, string(PhaseSkipCheck)), p, opts.Force); ok {
		return res
	}

	sel := e.aiPhase(services.WithPhase(ctx, string(PhaseAI)), p, opts.Candidates)
	if sel.Exhausted() {
		if err := ctx.Err(); err != nil {
			return pairResult{outcome: outcomeFailed}
		}
		sel = e.fallbackPhase(services.WithPhase(ctx, string(PhaseFallback)), p, sel)
	}
	if sel.Passed {
		return e.persist(services.WithPhase(ctx, string(PhasePersist)), p, sel)
	}
	return e.review(services.WithPhase(ctx, string(PhaseReview)), p, sel)
}

// skipCheck keeps an existing output that still passes QA.
func (e *Engine) skipCheck(ctx context.Context, p *pairRun, force bool) (pairResult, bool) {
	if !fileutil.Exists(p.outPath) {
		return pairResult{}, false
	}
	existing := &ExistingOutput{Path: p.outPath}
	var current *qa.Result
	if !force {
		img, err := raster.Load(p.outPath)
		if err != nil {
			p.logger.Debug("existing output unreadable, regenerating", logging.Error(err))
		} else {
			res := qa.Run(p.base, img, p.mask, p.target)
			current = &res
		}
	}

	logger := logging.WithContext(ctx, e.logger)
	if !ShouldSkip(existing, force, current) {
		reason := "forced"
		if !force {
			reason = "existing output fails QA"
			if current != nil && current.Message != "" {
				reason = current.Message
			}
		}
		logger.Info("regenerating existing output", logging.Args(logging.DecisionAttrs("skip_check", "regenerate", reason)...)...)
		return pairResult{}, false
	}

	logger.Info("existing output passes QA", append(
		logging.Args(logging.DecisionAttrs("skip_check", "skip", "exists and passes QA")...),
		logging.Float64("delta_e", current.DeltaE),
	)...)
	e.record(ctx, p, variantlog.Record{
		OutputURL:       p.outputURL,
		QAPass:          true,
		DeltaE:          current.DeltaE,
		OutsideMaskDiff: current.OutsideMaskDiff,
		Outcome:         variantlog.OutcomeSkipped,
	})
	return pairResult{outcome: outcomeSkipped, output: p.outPath}, true
}

// aiPhase requests n candidates and selects the passing one with lowest ΔE.
// Generator failures cost one candidate each and never end the pair.
func (e *Engine) aiPhase(ctx context.Context, p *pairRun, n int) Selection {
	logger := logging.WithContext(ctx, e.logger)
	prompt := RecolorPrompt(p.job.color.Name, p.job.color.Hex)
	evaluated := make([]Candidate, 0, n)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		img, err := e.generator.Generate(ctx, imageedit.EditRequest{
			ReferencePath: p.job.heroPath,
			MaskPath:      p.job.maskPath,
			Prompt:        prompt,
			Size:          e.cfg.ImageEdit.Size,
		})
		if err != nil {
			logging.WarnWithContext(logger, "candidate generation failed", "candidate_failed",
				logging.Int("candidate", i),
				logging.Error(err),
				logging.String(logging.FieldImpact, "one fewer candidate for this color"),
			)
			continue
		}
		c := Candidate{Image: img, Source: SourceAI, Index: i}
		c.Path = e.keep(p, "candidate-"+strconv.Itoa(i)+".png", img)
		c.QA = qa.Run(p.base, img, p.mask, p.target)
		logCandidate(logger, c)
		evaluated = append(evaluated, c)
	}

	if best, ok := SelectBest(evaluated); ok {
		return passed(PhaseAI, best, len(evaluated))
	}
	return exhausted(PhaseAI, evaluated)
}

// fallbackPhase recolors deterministically, asks for one polish edit of the
// recolor and runs QA on it once.
func (e *Engine) fallbackPhase(ctx context.Context, p *pairRun, prev Selection) Selection {
	logger := logging.WithContext(ctx, e.logger)
	var evaluated []Candidate
	if prev.Candidate.Image != nil {
		evaluated = append(evaluated, prev.Candidate)
	}
	giveUp := func(msg string, err error) Selection {
		logging.WarnWithContext(logger, msg, "fallback_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "color will need manual review"),
		)
		sel := exhausted(PhaseFallback, evaluated)
		sel.Evaluated = prev.Evaluated
		return sel
	}

	recolored := recolor.InMask(p.base, p.mask, p.target, e.cfg.Pipeline.RecolorBlend)
	recolorPath := filepath.Join(p.workDir, "recolor.png")
	if err := raster.SavePNG(recolorPath, recolored); err != nil {
		return giveUp("deterministic recolor could not be staged", err)
	}
	logger.Debug("deterministic recolor staged", logging.String("recolor_path", recolorPath))

	img, err := e.generator.Generate(ctx, imageedit.EditRequest{
		ReferencePath: recolorPath,
		MaskPath:      p.job.maskPath,
		Prompt:        PolishPrompt(p.job.color.Name),
		Size:          e.cfg.ImageEdit.Size,
	})
	if err != nil {
		return giveUp("polish call failed", err)
	}
	c := Candidate{Image: img, Source: SourcePolish, Index: prev.Evaluated}
	c.Path = e.keep(p, "polish.png", img)
	c.QA = qa.Run(p.base, img, p.mask, p.target)
	logCandidate(logger, c)

	if c.QA.Pass {
		return passed(PhaseFallback, c, prev.Evaluated+1)
	}
	evaluated = append(evaluated, c)
	sel := exhausted(PhaseFallback, evaluated)
	sel.Evaluated = prev.Evaluated + 1
	return sel
}

// persist publishes the selected candidate and records the pass.
func (e *Engine) persist(ctx context.Context, p *pairRun, sel Selection) pairResult {
	logger := logging.WithContext(ctx, e.logger)
	c := sel.Candidate
	if err := raster.SaveJPEG(p.outPath, c.Image, e.cfg.Pipeline.JPEGQuality); err != nil {
		logging.ErrorWithContext(logger, "variant write failed", "persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on "+filepath.Dir(p.outPath)),
		)
		e.notifyError(ctx, p, err)
		e.record(ctx, p, variantlog.Record{
			DeltaE:          c.QA.DeltaE,
			OutsideMaskDiff: c.QA.OutsideMaskDiff,
			Outcome:         variantlog.OutcomeNeedsReview,
		})
		return pairResult{outcome: outcomeFailed}
	}

	logger.Info("variant published",
		logging.String("output", p.outputURL),
		logging.String("source", c.Source),
		logging.String("selected_phase", string(sel.Phase)),
		logging.Float64("delta_e", c.QA.DeltaE),
		logging.Float64("outside_diff", c.QA.OutsideMaskDiff),
	)
	e.record(ctx, p, variantlog.Record{
		OutputURL:       p.outputURL,
		QAPass:          true,
		DeltaE:          c.QA.DeltaE,
		OutsideMaskDiff: c.QA.OutsideMaskDiff,
		Outcome:         variantlog.OutcomePublished,
	})
	return pairResult{outcome: outcomePublished, output: p.outPath}
}

// review flags an exhausted pair. Nothing is written and any existing output
// is left untouched.
func (e *Engine) review(ctx context.Context, p *pairRun, sel Selection) pairResult {
	logger := logging.WithContext(ctx, e.logger)
	closest := sel.Candidate.QA
	reason := closest.Message
	if sel.Candidate.Image == nil {
		reason = "no candidate could be generated"
	}
	logging.WarnWithContext(logger, "NEEDS MANUAL REVIEW", "needs_review",
		logging.String("qa_message", reason),
		logging.Int("evaluated", sel.Evaluated),
		logging.Float64("delta_e", closest.DeltaE),
		logging.String(logging.FieldErrorHint, "inspect "+p.workDir+" and fix the mask or color by hand"),
		logging.String(logging.FieldImpact, "variant not published"),
	)
	if err := e.notifier.NotifyNeedsReview(ctx, p.job.slug, p.job.color.Name, reason); err != nil {
		logger.Debug("review notification failed", logging.Error(err))
	}
	e.record(ctx, p, variantlog.Record{
		DeltaE:          closest.DeltaE,
		OutsideMaskDiff: closest.OutsideMaskDiff,
		Outcome:         variantlog.OutcomeNeedsReview,
	})
	return pairResult{outcome: outcomeNeedsReview}
}

// fail ends a pair on an error before any candidate was requested.
func (e *Engine) fail(ctx context.Context, p *pairRun, msg string, err error) pairResult {
	logger := p.logger
	switch services.Classify(err) {
	case services.DispositionSkip:
		logging.WarnWithContext(logger, msg, "asset_missing",
			logging.Error(err),
			logging.String(logging.FieldImpact, "color skipped"),
		)
		return pairResult{outcome: outcomeMissing}
	default:
		logging.ErrorWithContext(logger, msg, "pair_failed", logging.Error(err))
		e.notifyError(ctx, p, err)
		return pairResult{outcome: outcomeFailed, decode: errors.Is(err, services.ErrDecode)}
	}
}

// keep writes a candidate into the pair work dir for later inspection.
// Failures only cost the debug copy.
func (e *Engine) keep(p *pairRun, name string, img *raster.Image) string {
	path := filepath.Join(p.workDir, name)
	if err := raster.SavePNG(path, img); err != nil {
		p.logger.Debug("could not keep candidate", logging.String("name", name), logging.Error(err))
		return ""
	}
	return path
}

func (e *Engine) record(ctx context.Context, p *pairRun, rec variantlog.Record) {
	rec.Slug = p.job.slug
	rec.ColorName = p.job.color.Name
	rec.Hex = p.job.color.Hex
	if id, ok := services.RequestIDFromContext(ctx); ok {
		rec.RunID = id
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = e.now()
	}
	if err := e.recorder.Record(ctx, rec); err != nil {
		logging.WarnWithContext(p.logger, "variant record not saved", "record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "variant log is missing this attempt"),
		)
	}
}

func (e *Engine) notifyError(ctx context.Context, p *pairRun, err error) {
	label := fmt.Sprintf("%s / %s", p.job.slug, p.job.color.Name)
	if nerr := e.notifier.NotifyError(ctx, err, label); nerr != nil {
		p.logger.Debug("error notification failed", logging.Error(nerr))
	}
}

func logCandidate(logger *slog.Logger, c Candidate) {
	logger.Info("candidate checked",
		logging.String("source", c.Source),
		logging.Int("candidate", c.Index),
		logging.Bool("pass", c.QA.Pass),
		logging.Float64("delta_e", c.QA.DeltaE),
		logging.Float64("outside_diff", c.QA.OutsideMaskDiff),
		logging.Float64("inside_diff", c.QA.InsideMaskDiff),
		logging.String("qa_message", c.QA.Message),
		logging.String("candidate_path", c.Path),
	)
}
