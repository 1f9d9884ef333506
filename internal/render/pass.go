package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"github.com/inful/mdfigure/internal/cache"
	"github.com/inful/mdfigure/internal/config"
	"github.com/inful/mdfigure/internal/docs"
	"github.com/inful/mdfigure/internal/logfields"
	"github.com/inful/mdfigure/internal/metrics"
)

// Report summarizes one render pass over the source tree.
type Report struct {
	PassID    string        `json:"pass_id"`
	Docs      int           `json:"docs"`
	Rendered  int           `json:"rendered"`
	CacheHits int           `json:"cache_hits"`
	Figures   int           `json:"figures"`
	SetHash   string        `json:"set_hash"`
	Duration  time.Duration `json:"duration"`
	Errors    []error       `json:"-"`
}

// Outcome classifies the pass for metrics and notifications. A pass that
// produced no output at all is failed; one with per-document errors alongside
// successes is partial.
func (r *Report) Outcome() metrics.OutcomeLabel {
	switch {
	case len(r.Errors) == 0:
		return metrics.OutcomeSuccess
	case r.Rendered+r.CacheHits == 0:
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomePartial
	}
}

// Pass renders every Markdown document under the source directory into the
// output directory, consulting the cache when one is configured.
type Pass struct {
	cfg      *config.Config
	engine   *Engine
	store    cache.Store
	recorder metrics.Recorder
	logger   *slog.Logger

	// optionsKey folds the figure options into each fingerprint so cached
	// entries go stale when the options change.
	optionsKey string
}

// Option customizes a Pass.
type Option func(*Pass)

// WithStore attaches a render cache.
func WithStore(store cache.Store) Option {
	return func(p *Pass) {
		if store != nil {
			p.store = store
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(p *Pass) {
		if rec != nil {
			p.recorder = rec
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pass) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPass builds a Pass for the given configuration. Without options it runs
// with no cache, no metrics, and the default logger.
func NewPass(cfg *config.Config, opts ...Option) *Pass {
	p := &Pass{
		cfg:      cfg,
		engine:   NewEngine(cfg.Figure),
		store:    cache.NoopStore{},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		optionsKey: fmt.Sprintf("image_link=%t\nskip_no_caption=%t",
			cfg.Figure.ImageLink, cfg.Figure.SkipNoCaption),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one pass. Per-document failures are collected in the report;
// only discovery-level failures abort the pass.
func (p *Pass) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{PassID: uuid.NewString()}

	files, err := docs.Discover(p.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("discover docs: %w", err)
	}
	report.Docs = len(files)

	if hash, err := docs.ComputeSetHash(files); err != nil {
		p.logger.Warn("Doc set hash failed", logfields.Error(err))
	} else {
		report.SetHash = hash
	}

	for i := range files {
		if err := ctx.Err(); err != nil {
			p.finish(report, start)
			return report, err
		}

		doc := &files[i]
		res, err := p.renderDoc(ctx, doc)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("%s: %w", doc.RelativePath, err))
			p.recorder.IncDocResult(metrics.ResultFailed)
			p.logger.Warn("Document failed", logfields.Doc(doc.RelativePath), logfields.Error(err))
			continue
		}

		report.Figures += res.figures
		if res.cached {
			report.CacheHits++
		} else {
			report.Rendered++
		}
	}

	p.finish(report, start)
	return report, nil
}

// finish stamps the duration and flushes pass-level observability.
func (p *Pass) finish(report *Report, start time.Time) {
	report.Duration = time.Since(start)

	p.recorder.ObservePassDuration(report.Duration)
	p.recorder.IncPassOutcome(report.Outcome())
	p.recorder.SetDocsTotal(report.Docs)
	p.recorder.SetFiguresTotal(report.Figures)

	p.logger.Info("Render pass complete",
		logfields.PassID(report.PassID),
		logfields.Docs(report.Docs),
		logfields.Figures(report.Figures),
		logfields.CacheHits(report.CacheHits),
		logfields.DurationMS(report.Duration.Seconds()*1000))
}

type docResult struct {
	figures int
	cached  bool
}

// renderDoc renders a single document, serving it from the cache when the
// fingerprint still matches.
func (p *Pass) renderDoc(ctx context.Context, doc *docs.DocFile) (docResult, error) {
	docStart := time.Now()

	if err := doc.LoadContent(); err != nil {
		return docResult{}, err
	}
	fingerprint := mdfp.CalculateFingerprintFromParts(p.optionsKey, string(doc.Content))

	entry, err := p.store.Get(ctx, doc.RelativePath, fingerprint)
	if err != nil {
		p.logger.Warn("Cache lookup failed", logfields.Doc(doc.RelativePath), logfields.Error(err))
	}
	if entry != nil {
		p.recorder.IncCacheLookup(true)
		if err := p.writePage(doc, entry.HTML); err != nil {
			return docResult{}, err
		}
		p.recorder.IncDocResult(metrics.ResultCached)
		return docResult{figures: entry.Figures, cached: true}, nil
	}
	p.recorder.IncCacheLookup(false)

	body, figures, err := p.engine.Render(doc.Content)
	if err != nil {
		return docResult{}, fmt.Errorf("render markdown: %w", err)
	}
	if err := p.writePage(doc, body); err != nil {
		return docResult{}, err
	}

	// A failed cache write degrades the next pass, not this one.
	putErr := p.store.Put(ctx, cache.Entry{
		RelativePath: doc.RelativePath,
		Fingerprint:  fingerprint,
		HTML:         body,
		Figures:      figures,
	})
	if putErr != nil {
		p.logger.Warn("Cache store failed", logfields.Doc(doc.RelativePath), logfields.Error(putErr))
	}

	p.recorder.IncDocResult(metrics.ResultRendered)
	p.recorder.ObserveDocDuration(time.Since(docStart))
	return docResult{figures: figures}, nil
}

// writePage wraps the rendered body in the page shell and writes it under the
// output directory, mirroring the source tree.
func (p *Pass) writePage(doc *docs.DocFile, body []byte) error {
	outPath := filepath.Join(p.cfg.Output, filepath.FromSlash(doc.OutputPath()))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	page := Page{Title: pageTitle(p.cfg.Title, doc), Body: template.HTML(body)}
	var buf bytes.Buffer
	if err := page.Write(&buf); err != nil {
		return fmt.Errorf("render page shell: %w", err)
	}

	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
