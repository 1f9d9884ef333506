package preview

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestLiveReload_InitialConnectReceivesLastHash ensures a fresh client is
// seeded with the current hash so it can establish its baseline.
func TestLiveReload_InitialConnectReceivesLastHash(t *testing.T) {
	hub := NewLiveReloadHub()
	defer hub.Shutdown()

	// Seed state so initial event includes hash
	hub.Broadcast("abc123")

	server := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer server.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	reader := bufio.NewReader(resp.Body)
	deadline := time.Now().Add(500 * time.Millisecond)
	found := false
	for time.Now().Before(deadline) {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.Contains(line, "abc123") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("did not find initial hash event")
	}
}

// TestLiveReload_BroadcastSendsEvent ensures a broadcast after connection
// emits an SSE message with the new hash.
func TestLiveReload_BroadcastSendsEvent(t *testing.T) {
	hub := NewLiveReloadHub()
	defer hub.Shutdown()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer server.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	reader := bufio.NewReader(resp.Body)

	// Allow connection to establish
	time.Sleep(20 * time.Millisecond)

	hub.Broadcast("newhash")

	deadline := time.Now().Add(500 * time.Millisecond)
	found := false
	for time.Now().Before(deadline) {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.Contains(line, "newhash") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("did not observe broadcast hash in SSE stream")
	}
}

// TestLiveReload_DuplicateBroadcastIgnored ensures a repeated hash is not
// re-sent to clients.
func TestLiveReload_DuplicateBroadcastIgnored(t *testing.T) {
	hub := NewLiveReloadHub()
	defer hub.Shutdown()

	client := &lrClient{ch: make(chan string, 8), done: make(chan struct{})}
	hub.clients[0] = client

	hub.Broadcast("hash1")
	hub.Broadcast("hash1")
	hub.Broadcast("")

	if got := len(client.ch); got != 1 {
		t.Fatalf("client received %d events, want 1", got)
	}
	if hash := <-client.ch; hash != "hash1" {
		t.Fatalf("hash = %q, want hash1", hash)
	}
}

// TestLiveReload_ShutdownRejectsNewClients ensures connections after shutdown
// get a 503 instead of hanging.
func TestLiveReload_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewLiveReloadHub()
	hub.Shutdown()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/livereload", nil)
	hub.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

// TestLiveReload_BroadcastAfterShutdownIsNoop guards the shutdown path
// against late rebuild completions.
func TestLiveReload_BroadcastAfterShutdownIsNoop(t *testing.T) {
	hub := NewLiveReloadHub()
	hub.Shutdown()

	hub.Broadcast("late")

	if hub.lastHash != "" {
		t.Fatalf("lastHash = %q, want empty after shutdown", hub.lastHash)
	}
}
