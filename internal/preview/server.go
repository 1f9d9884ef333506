// Package preview serves the rendered site locally, rebuilding when the
// source tree changes and pushing reloads to connected browsers over SSE.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/inful/mdfigure/internal/config"
	"github.com/inful/mdfigure/internal/logfields"
	"github.com/inful/mdfigure/internal/notify"
	"github.com/inful/mdfigure/internal/render"
)

// passStatus tracks the latest pass result for the health endpoint.
type passStatus struct {
	mu       sync.RWMutex
	lastErr  error
	lastPass *render.Report
	goodPass bool
}

func (ps *passStatus) record(report *render.Report, err error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if err != nil {
		ps.lastErr = err
		return
	}
	ps.lastErr = nil
	ps.lastPass = report
	ps.goodPass = true
}

func (ps *passStatus) snapshot() (*render.Report, error, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.lastPass, ps.lastErr, ps.goodPass
}

// cachePruneInterval is how often a long-running preview clears stale cache
// entries.
const cachePruneInterval = 24 * time.Hour

// Server serves the rendered site and keeps it fresh: filesystem changes and
// the optional periodic schedule both trigger render passes.
type Server struct {
	cfg            *config.Config
	pass           *render.Pass
	hub            *LiveReloadHub
	notifier       notify.Notifier
	metricsHandler http.Handler
	pruner         func(context.Context)
	logger         *slog.Logger
	status         *passStatus
}

// Option customizes a Server.
type Option func(*Server)

// WithNotifier attaches a pass notifier. The server publishes a report after
// every pass; publish failures are logged, never fatal.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Server) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithPruner schedules f as periodic cache maintenance while the server runs.
func WithPruner(f func(context.Context)) Option {
	return func(s *Server) { s.pruner = f }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer builds a preview server around an existing render pass.
func NewServer(cfg *config.Config, pass *render.Pass, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		pass:     pass,
		hub:      NewLiveReloadHub(),
		notifier: notify.NoopNotifier{},
		logger:   slog.Default(),
		status:   &passStatus{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves until ctx is canceled. It renders once before accepting
// connections so the first request never sees an empty site.
func (s *Server) Run(ctx context.Context) error {
	absSource, err := resolveSourceDir(s.cfg.Source)
	if err != nil {
		return err
	}

	s.runPass(ctx)

	watcher, err := setupFileWatcher(absSource)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	rebuildReq, trigger := setupRebuildDebouncer()
	s.startRebuildWorker(ctx, rebuildReq)

	interval, err := s.cfg.ParseRebuildInterval()
	if err != nil {
		return err
	}
	if interval > 0 || s.pruner != nil {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if interval > 0 {
			if _, err := sched.ScheduleEvery("periodic-rebuild", interval, func() {
				select {
				case rebuildReq <- struct{}{}:
				default:
				}
			}); err != nil {
				return err
			}
		}
		if s.pruner != nil {
			if _, err := sched.ScheduleEvery("cache-prune", cachePruneInterval, func() {
				s.pruner(ctx)
			}); err != nil {
				return err
			}
		}
		sched.Start()
		defer func() { _ = sched.Stop(context.Background()) }()
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Preview.Port))
	if err != nil {
		return fmt.Errorf("preview port %d: %w", s.cfg.Preview.Port, err)
	}

	// SSE connections share this server, so it must not enforce a write
	// timeout.
	server := &http.Server{Handler: s.routes(), ReadTimeout: 30 * time.Second, WriteTimeout: 0, IdleTimeout: 300 * time.Second}
	go func() {
		if serveErr := server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("Preview server error", logfields.Error(serveErr))
		}
	}()

	s.logger.Info("Preview server listening",
		logfields.Port(s.cfg.Preview.Port),
		slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Preview.Port)))

	return s.serveLoop(ctx, watcher, trigger, server)
}

// serveLoop handles filesystem events until shutdown.
func (s *Server) serveLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger func(), server *http.Server) error {
	for {
		select {
		case <-ctx.Done():
			return s.shutdown(server)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (s *Server) shutdown(server *http.Server) error {
	s.logger.Info("Shutting down preview server")

	// Closing the hub first releases the long-lived SSE handlers that would
	// otherwise hold Shutdown open.
	s.hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	return nil
}

// routes assembles the single-port mux: the rendered site at the root plus
// the live reload, health, and optional metrics endpoints.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	var root http.Handler = http.FileServer(http.Dir(s.cfg.Output))
	if s.cfg.Preview.LiveReloadEnabled() {
		root = InjectLiveReload(root)
		mux.Handle("/livereload", s.hub)
		mux.HandleFunc("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
			if _, err := w.Write([]byte(LiveReloadScript)); err != nil {
				s.logger.Error("failed to write livereload script", logfields.Error(err))
			}
		})
	}
	mux.Handle("/", root)
	mux.HandleFunc("/healthz", s.handleHealthz)
	if s.metricsHandler != nil {
		mux.Handle("/metrics", s.metricsHandler)
	}

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	report, lastErr, good := s.status.snapshot()

	payload := map[string]any{"status": "ok"}
	code := http.StatusOK
	if lastErr != nil || !good {
		payload["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	if lastErr != nil {
		payload["error"] = lastErr.Error()
	}
	if report != nil {
		payload["pass_id"] = report.PassID
		payload["docs"] = report.Docs
		payload["figures"] = report.Figures
		payload["pass_errors"] = len(report.Errors)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// runPass executes one render pass and fans the result out to the health
// status, connected browsers, and the notifier.
func (s *Server) runPass(ctx context.Context) {
	report, err := s.pass.Run(ctx)
	if err != nil {
		s.status.record(nil, err)
		s.logger.Error("Render pass failed", logfields.Error(err))
		return
	}

	s.status.record(report, nil)
	s.hub.Broadcast(report.SetHash)

	if err := s.notifier.PublishReport(ctx, report); err != nil {
		s.logger.Warn("Pass notification failed", logfields.Error(err))
	}
}

// startRebuildWorker processes rebuild requests one at a time. The request
// channel is buffered, so a change arriving mid-pass coalesces into exactly
// one follow-up pass.
func (s *Server) startRebuildWorker(ctx context.Context, rebuildReq chan struct{}) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-rebuildReq:
				if !ok {
					return
				}
				s.logger.Info("Change detected; rebuilding")
				s.runPass(ctx)
			}
		}
	}()
}

// setupRebuildDebouncer creates the rebuild channel and a trigger that folds
// bursts of filesystem events into one request.
func setupRebuildDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(300*time.Millisecond, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}

	return rebuildReq, trigger
}

// resolveSourceDir validates and resolves the absolute path of the source
// directory.
func resolveSourceDir(sourceDir string) (string, error) {
	if sourceDir == "" {
		sourceDir = "./docs"
	}
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", fmt.Errorf("resolve source dir: %w", err)
	}
	if st, statErr := os.Stat(absSource); statErr != nil || !st.IsDir() {
		return "", fmt.Errorf("source dir not found or not a directory: %s", absSource)
	}
	return absSource, nil
}
