package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inful/mdfigure/internal/cache"
	"github.com/inful/mdfigure/internal/config"
	"github.com/inful/mdfigure/internal/logfields"
	"github.com/inful/mdfigure/internal/render"
)

// RenderCmd renders the Markdown tree once and exits.
type RenderCmd struct {
	Source  string `short:"s" help:"Source directory (overrides config)"`
	Output  string `short:"o" help:"Output directory (overrides config)"`
	NoCache bool   `name:"no-cache" help:"Render every document even when cached"`
}

func (r *RenderCmd) Run(g *Global, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if r.Source != "" {
		cfg.Source = r.Source
	}
	if r.Output != "" {
		cfg.Output = r.Output
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return RunRender(ctx, cfg, r.NoCache)
}

// RunRender executes a single render pass with the full pipeline attached:
// cache, notifications, and pruning.
func RunRender(ctx context.Context, cfg *config.Config, noCache bool) error {
	fmt.Println("Starting mdfigure render")

	store, err := openStore(cfg, noCache)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close cache store", logfields.Error(err))
		}
	}()

	notifier := buildNotifier(cfg)
	defer func() {
		if err := notifier.Close(); err != nil {
			slog.Warn("Failed to close notifier", logfields.Error(err))
		}
	}()

	pass := render.NewPass(cfg, render.WithStore(store))
	report, err := pass.Run(ctx)
	if err != nil {
		return fmt.Errorf("render pass: %w", err)
	}

	if err := notifier.PublishReport(ctx, report); err != nil {
		slog.Warn("Failed to publish render report", logfields.Error(err))
	}

	pruneCache(ctx, cfg, store)

	fmt.Printf("Rendered %d of %d documents (%d cached, %d figures) in %s\n",
		report.Rendered, report.Docs, report.CacheHits, report.Figures,
		report.Duration.Round(time.Millisecond))

	if len(report.Errors) > 0 {
		for _, docErr := range report.Errors {
			slog.Error("Document failed", logfields.Error(docErr))
		}
		return fmt.Errorf("%d of %d documents failed", len(report.Errors), report.Docs)
	}
	return nil
}

// pruneCache drops cache entries past their configured age. Pruning is
// maintenance; a failure never fails the render.
func pruneCache(ctx context.Context, cfg *config.Config, store cache.Store) {
	if !cfg.Cache.Enabled {
		return
	}
	maxAge, err := cfg.ParseCacheMaxAge()
	if err != nil {
		slog.Warn("Skipping cache prune", logfields.Error(err))
		return
	}
	removed, err := store.Prune(ctx, maxAge)
	if err != nil {
		slog.Warn("Cache prune failed", logfields.Error(err))
		return
	}
	if removed > 0 {
		slog.Info("Pruned cache entries", logfields.Count(int(removed)))
	}
}
