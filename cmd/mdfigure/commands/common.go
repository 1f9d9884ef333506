package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/inful/mdfigure/internal/cache"
	"github.com/inful/mdfigure/internal/config"
	"github.com/inful/mdfigure/internal/logfields"
	"github.com/inful/mdfigure/internal/notify"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render  RenderCmd  `cmd:"" help:"Render the Markdown tree to HTML"`
	Preview PreviewCmd `cmd:"" help:"Serve the rendered site with live reload"`
	Stats   StatsCmd   `cmd:"" help:"Report figure statistics for rendered output"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel handles both the verbose flag and MDFIGURE_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(os.Getenv("MDFIGURE_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads and validates the configuration file named on the command
// line.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured render cache, or a no-op store when caching
// is off.
func openStore(cfg *config.Config, disabled bool) (cache.Store, error) {
	if disabled || !cfg.Cache.Enabled {
		return cache.NoopStore{}, nil
	}
	store, err := cache.NewSQLiteStore(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

// buildNotifier connects to NATS when notifications are configured. An
// unreachable broker degrades to no notifications rather than blocking
// renders.
func buildNotifier(cfg *config.Config) notify.Notifier {
	if cfg.Notify.URL == "" {
		return notify.NoopNotifier{}
	}
	n, err := notify.NewNATSNotifier(cfg.Notify)
	if err != nil {
		slog.Warn("Notifications disabled", logfields.Error(err))
		return notify.NoopNotifier{}
	}
	return n
}
