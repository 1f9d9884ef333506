package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based render cache.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS renders (
		rel_path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		html BLOB NOT NULL,
		figures INTEGER NOT NULL,
		rendered_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rendered_at ON renders(rendered_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the entry for relPath when its stored fingerprint matches.
func (s *SQLiteStore) Get(ctx context.Context, relPath, fingerprint string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT fingerprint, html, figures, rendered_at FROM renders WHERE rel_path = ?",
		relPath,
	)

	e := Entry{RelativePath: relPath}
	var renderedAtUnix int64
	err := row.Scan(&e.Fingerprint, &e.HTML, &e.Figures, &renderedAtUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query render: %w", err)
	}

	if e.Fingerprint != fingerprint {
		// Stale entry, the document changed since it was cached.
		return nil, nil
	}

	e.RenderedAt = time.Unix(renderedAtUnix, 0)
	return &e, nil
}

// Put stores or replaces the entry for relPath.
func (s *SQLiteStore) Put(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	renderedAt := e.RenderedAt
	if renderedAt.IsZero() {
		renderedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO renders (rel_path, fingerprint, html, figures, rendered_at) VALUES (?, ?, ?, ?, ?)",
		e.RelativePath, e.Fingerprint, e.HTML, e.Figures, renderedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert render: %w", err)
	}

	return nil
}

// Prune removes entries older than maxAge.
func (s *SQLiteStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := s.db.ExecContext(ctx, "DELETE FROM renders WHERE rendered_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune renders: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned renders: %w", err)
	}
	return removed, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
