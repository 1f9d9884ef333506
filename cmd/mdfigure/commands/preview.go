package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inful/mdfigure/internal/logfields"
	"github.com/inful/mdfigure/internal/metrics"
	"github.com/inful/mdfigure/internal/preview"
	"github.com/inful/mdfigure/internal/render"
)

// PreviewCmd runs the local preview server until interrupted.
type PreviewCmd struct {
	Port         int  `short:"p" help:"Preview server port (overrides config)"`
	NoLiveReload bool `name:"no-live-reload" help:"Disable live reload"`
	NoCache      bool `name:"no-cache" help:"Render every document even when cached"`
}

func (p *PreviewCmd) Run(g *Global, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	if p.Port != 0 {
		cfg.Preview.Port = p.Port
	}
	if p.NoLiveReload {
		off := false
		cfg.Preview.LiveReload = &off
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg, p.NoCache)
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

	passOpts := []render.Option{render.WithStore(store)}
	serverOpts := []preview.Option{preview.WithNotifier(notifier)}
	if cfg.Cache.Enabled && !p.NoCache {
		serverOpts = append(serverOpts, preview.WithPruner(func(ctx context.Context) {
			pruneCache(ctx, cfg, store)
		}))
	}
	if cfg.Preview.Metrics {
		reg := prometheus.NewRegistry()
		passOpts = append(passOpts, render.WithRecorder(metrics.NewPrometheusRecorder(reg)))
		serverOpts = append(serverOpts, preview.WithMetricsHandler(metrics.HTTPHandler(reg)))
	}

	pass := render.NewPass(cfg, passOpts...)
	server := preview.NewServer(cfg, pass, serverOpts...)

	fmt.Printf("Preview at http://localhost:%d\n", cfg.Preview.Port)
	return server.Run(ctx)
}
