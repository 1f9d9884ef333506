package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestCachePutAndGet(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	entry := Entry{
		RelativePath: "guide/intro.md",
		Fingerprint:  "fp-1",
		HTML:         []byte("<figure>\n</figure>\n"),
		Figures:      1,
	}

	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("failed to put entry: %v", err)
	}

	got, err := store.Get(ctx, "guide/intro.md", "fp-1")
	if err != nil {
		t.Fatalf("failed to get entry: %v", err)
	}
	if got == nil {
		t.Fatal("expected a cache hit")
	}
	if string(got.HTML) != string(entry.HTML) {
		t.Errorf("expected html %q, got %q", entry.HTML, got.HTML)
	}
	if got.Figures != 1 {
		t.Errorf("expected 1 figure, got %d", got.Figures)
	}
	if got.RenderedAt.IsZero() {
		t.Error("expected rendered_at to be set")
	}
}

func TestCacheMissOnUnknownPath(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	got, err := store.Get(t.Context(), "absent.md", "fp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected a miss, got %+v", got)
	}
}

func TestCacheMissOnStaleFingerprint(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	_ = store.Put(ctx, Entry{RelativePath: "doc.md", Fingerprint: "old", HTML: []byte("x")})

	got, err := store.Get(ctx, "doc.md", "new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("stale fingerprint should miss")
	}
}

func TestCachePutReplaces(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	_ = store.Put(ctx, Entry{RelativePath: "doc.md", Fingerprint: "v1", HTML: []byte("one")})
	_ = store.Put(ctx, Entry{RelativePath: "doc.md", Fingerprint: "v2", HTML: []byte("two"), Figures: 2})

	if got, _ := store.Get(ctx, "doc.md", "v1"); got != nil {
		t.Fatal("old fingerprint should no longer hit")
	}
	got, err := store.Get(ctx, "doc.md", "v2")
	if err != nil || got == nil {
		t.Fatalf("expected hit for v2, got %v %v", got, err)
	}
	if string(got.HTML) != "two" || got.Figures != 2 {
		t.Errorf("unexpected replaced entry: %+v", got)
	}
}

func TestCachePrune(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	oldEntry := Entry{
		RelativePath: "old.md",
		Fingerprint:  "fp",
		HTML:         []byte("old"),
		RenderedAt:   time.Now().Add(-48 * time.Hour),
	}
	freshEntry := Entry{
		RelativePath: "fresh.md",
		Fingerprint:  "fp",
		HTML:         []byte("fresh"),
	}
	_ = store.Put(ctx, oldEntry)
	_ = store.Put(ctx, freshEntry)

	removed, err := store.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", removed)
	}

	if got, _ := store.Get(ctx, "old.md", "fp"); got != nil {
		t.Fatal("pruned entry should be gone")
	}
	if got, _ := store.Get(ctx, "fresh.md", "fp"); got == nil {
		t.Fatal("fresh entry should survive pruning")
	}
}

func TestCacheCreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cache.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create store at %s: %v", dbPath, err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Put(t.Context(), Entry{RelativePath: "doc.md", Fingerprint: "fp", HTML: []byte("x")}); err != nil {
		t.Fatalf("put on file-backed store: %v", err)
	}
}

func TestNoopStore(t *testing.T) {
	var s Store = NoopStore{}

	if err := s.Put(t.Context(), Entry{RelativePath: "doc.md"}); err != nil {
		t.Fatalf("noop put: %v", err)
	}
	got, err := s.Get(t.Context(), "doc.md", "fp")
	if err != nil || got != nil {
		t.Fatalf("noop get should miss silently, got %v %v", got, err)
	}
	if _, err := s.Prune(t.Context(), time.Hour); err != nil {
		t.Fatalf("noop prune: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("noop close: %v", err)
	}
}
