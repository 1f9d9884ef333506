// Package cache persists render results between passes. Entries are keyed by
// a document's relative path and validated by its content fingerprint, so an
// edited file misses and gets re-rendered while untouched files are served
// from the store.
package cache

import (
	"context"
	"time"
)

// Entry is one cached render result.
type Entry struct {
	RelativePath string
	Fingerprint  string
	HTML         []byte
	Figures      int
	RenderedAt   time.Time
}

// Store defines the interface for the persistent render cache.
type Store interface {
	// Get returns the entry for relPath when its stored fingerprint matches.
	// A miss (absent or stale entry) returns nil with no error.
	Get(ctx context.Context, relPath, fingerprint string) (*Entry, error)

	// Put stores or replaces the entry for relPath.
	Put(ctx context.Context, e Entry) error

	// Prune removes entries older than maxAge and reports how many were removed.
	Prune(ctx context.Context, maxAge time.Duration) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}

// NoopStore is a Store that never hits and drops writes (cache disabled).
type NoopStore struct{}

func (NoopStore) Get(context.Context, string, string) (*Entry, error) { return nil, nil }
func (NoopStore) Put(context.Context, Entry) error                    { return nil }
func (NoopStore) Prune(context.Context, time.Duration) (int64, error) { return 0, nil }
func (NoopStore) Close() error                                        { return nil }
