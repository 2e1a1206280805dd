package translate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// cachePragmas are applied via EXEC so they work regardless of driver DSN
// parameter support.
var cachePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS translations (
	source     TEXT PRIMARY KEY,
	target     TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);`

// Cache is an SQLite-backed translation memory. Terms translated once are
// never sent to the remote service again, across runs.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if necessary) the translation memory at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open translation cache %s: %w", path, err)
	}
	for _, pragma := range cachePragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create translations table: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the cached translation for source, if any.
func (c *Cache) Get(ctx context.Context, source string) (string, bool, error) {
	var target string
	err := c.db.QueryRowContext(ctx,
		`SELECT target FROM translations WHERE source = ?`, source,
	).Scan(&target)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read translation cache: %w", err)
	}
	return target, true, nil
}

// Put stores a translation. Re-inserting an existing source keeps the
// original translation.
func (c *Cache) Put(ctx context.Context, source, target string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO translations (source, target) VALUES (?, ?)
		 ON CONFLICT (source) DO NOTHING`, source, target,
	)
	if err != nil {
		return fmt.Errorf("write translation cache: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
