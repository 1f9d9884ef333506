package preview

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreEvent(t *testing.T) {
	require.True(t, shouldIgnoreEvent("/tmp/.hidden.md"))
	require.True(t, shouldIgnoreEvent("/tmp/#foo#"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.swp"))
	require.True(t, shouldIgnoreEvent("/tmp/backup~"))
	require.True(t, shouldIgnoreEvent("/tmp/.DS_Store"))
	require.False(t, shouldIgnoreEvent("/tmp/visible.md"))
}

func TestSetupFileWatcher_CoversNestedDirs(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "guides", "advanced")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	watcher, err := setupFileWatcher(root)
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(nested, "new.md"), []byte("x"), 0o644))

	select {
	case ev := <-watcher.Events:
		require.Contains(t, ev.Name, "new.md")
	case err := <-watcher.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for file created in nested directory")
	}
}

func TestHandleFileEvent_TriggersOnRelevantChange(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	triggered := 0
	trigger := func() { triggered++ }

	handleFileEvent(watcher, fsnotify.Event{Name: "/docs/page.md", Op: fsnotify.Write}, trigger)
	require.Equal(t, 1, triggered)

	handleFileEvent(watcher, fsnotify.Event{Name: "/docs/.page.md.swp", Op: fsnotify.Write}, trigger)
	require.Equal(t, 1, triggered)
}

func TestHandleFileEvent_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	watcher, err := setupFileWatcher(root)
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	newDir := filepath.Join(root, "added")
	require.NoError(t, os.Mkdir(newDir, 0o755))
	handleFileEvent(watcher, fsnotify.Event{Name: newDir, Op: fsnotify.Create}, func() {})

	// The new directory is now watched, so files inside produce events.
	require.NoError(t, os.WriteFile(filepath.Join(newDir, "inside.md"), []byte("x"), 0o644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-watcher.Events:
			if filepath.Base(ev.Name) == "inside.md" {
				return
			}
		case <-deadline:
			t.Fatal("no event for file inside newly created directory")
		}
	}
}

func TestSetupRebuildDebouncer_CoalescesBursts(t *testing.T) {
	rebuildReq, trigger := setupRebuildDebouncer()

	for range 5 {
		trigger()
	}

	select {
	case <-rebuildReq:
	case <-time.After(time.Second):
		t.Fatal("debounced trigger never fired")
	}

	// The burst collapses into a single request.
	select {
	case <-rebuildReq:
		t.Fatal("expected exactly one rebuild request")
	case <-time.After(500 * time.Millisecond):
	}
}
