// Package store is the single-file SQLite store for sections, documents,
// images and glossary terms.
//
// Open sets these pragmas on every connection:
//
//	foreign_keys = ON
//	journal_mode = WAL
//	busy_timeout = 10000
//	synchronous  = NORMAL
//
// then creates the schema and upgrades older stores in place.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps the database handle together with the directories used to
// resolve stored paths.
type Store struct {
	db           *sql.DB
	root         string
	assetsDir    string
	extractedDir string
}

type config struct {
	busyTimeout  int
	mkdirAll     bool
	root         string
	assetsDir    string
	extractedDir string
}

func defaults() config {
	return config{
		busyTimeout: 10_000,
		root:        ".",
	}
}

// Option customises Open behaviour.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithMkdirAll creates parent directories of the database path before opening.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// WithRoot sets the directory relative stored paths are resolved against.
func WithRoot(dir string) Option { return func(c *config) { c.root = dir } }

// WithAssetsDir sets the only directory stored document paths may resolve into.
func WithAssetsDir(dir string) Option { return func(c *config) { c.assetsDir = dir } }

// WithExtractedDir sets the directory public image URLs are relative to.
func WithExtractedDir(dir string) Option { return func(c *config) { c.extractedDir = dir } }

// Open opens (creating if needed) the store at path.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path, cfg))
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := applyPragmas(db, cfg); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &Store{
		db:           db,
		root:         cfg.root,
		assetsDir:    cfg.assetsDir,
		extractedDir: cfg.extractedDir,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for collaborators that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// dsn carries the per-connection pragmas in the modernc query form, so
// every pooled connection enforces foreign keys, not only the first.
func dsn(path string, cfg config) string {
	return fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path, cfg.busyTimeout)
}

func applyPragmas(db *sql.DB, cfg config) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("store: %s: %w", p, err)
		}
	}
	return nil
}

// withTx runs fn in a transaction, committing when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
