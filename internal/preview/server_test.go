package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inful/mdfigure/internal/config"
	"github.com/inful/mdfigure/internal/render"
)

func previewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Source: filepath.Join(t.TempDir(), "docs"),
		Output: filepath.Join(t.TempDir(), "site"),
		Title:  "Preview",
	}
	require.NoError(t, os.MkdirAll(cfg.Source, 0o755))
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) *Server {
	t.Helper()
	return NewServer(cfg, render.NewPass(cfg), opts...)
}

func TestResolveSourceDir_ErrorsWhenMissing(t *testing.T) {
	_, err := resolveSourceDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}

func TestResolveSourceDir_ErrorsOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := resolveSourceDir(path)
	require.Error(t, err)
}

func TestResolveSourceDir_ReturnsAbsoluteDir(t *testing.T) {
	abs, err := resolveSourceDir(t.TempDir())
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(abs))
}

func TestServer_HealthzDegradedBeforeFirstPass(t *testing.T) {
	s := newTestServer(t, previewConfig(t))

	rec := httptest.NewRecorder()
	s.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "degraded", payload["status"])
}

func TestServer_HealthzAfterSuccessfulPass(t *testing.T) {
	s := newTestServer(t, previewConfig(t))
	s.status.record(&render.Report{PassID: "p1", Docs: 2, Figures: 3}, nil)

	rec := httptest.NewRecorder()
	s.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "ok", payload["status"])
	require.Equal(t, "p1", payload["pass_id"])
	require.Equal(t, float64(3), payload["figures"])
}

func TestServer_RoutesServeSiteWithInjection(t *testing.T) {
	cfg := previewConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Output, 0o755))
	page := "<html><head></head><body><p>hello</p></body></html>"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output, "index.html"), []byte(page), 0o644))

	s := newTestServer(t, cfg)
	ts := httptest.NewServer(s.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Contains(t, string(body), `<script async src="/livereload.js"></script></body>`)

	resp, err = http.Get(ts.URL + "/livereload.js")
	require.NoError(t, err)
	script, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Contains(t, resp.Header.Get("Content-Type"), "javascript")
	require.Contains(t, string(script), "EventSource('/livereload')")
}

func TestServer_RoutesWithoutLiveReload(t *testing.T) {
	cfg := previewConfig(t)
	off := false
	cfg.Preview.LiveReload = &off
	require.NoError(t, os.MkdirAll(cfg.Output, 0o755))
	page := "<html><body>plain</body></html>"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output, "index.html"), []byte(page), 0o644))

	s := newTestServer(t, cfg)
	ts := httptest.NewServer(s.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.NotContains(t, string(body), "livereload.js")
}

func TestServer_MetricsRouteMountedWhenConfigured(t *testing.T) {
	cfg := previewConfig(t)
	stub := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("metrics here"))
	})

	s := newTestServer(t, cfg, WithMetricsHandler(stub))
	ts := httptest.NewServer(s.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, "metrics here", string(body))
}

func TestServer_RunRendersWatchesAndShutsDown(t *testing.T) {
	cfg := previewConfig(t)
	cfg.Preview.Port = freePort(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Source, "index.md"), []byte("![A](a.png)\nAlpha\n"), 0o644))

	ctx, cancel := context.WithCancel(t.Context())
	// The pruner exercises the scheduler startup path; its first tick is a day
	// out, so it never fires here.
	s := newTestServer(t, cfg, WithPruner(func(context.Context) {}))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Initial pass output appears before the server accepts traffic.
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(cfg.Output, "index.html"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	base := fmt.Sprintf("http://localhost:%d", cfg.Preview.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	// A source change triggers a rebuild through the watcher.
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Source, "extra.md"), []byte("![B](b.png)\nBeta\n"), 0o644))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(cfg.Output, "extra.html"))
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}
