package bank

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed question bank. It implements
// CandidateSource, ItemLookup, FrequencyCounter and SnapshotPersister.
type Store struct {
	db *sql.DB
}

// Open creates a Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for single-user desktop performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			uuid TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			question_image_url TEXT NOT NULL DEFAULT '',
			option_a TEXT NOT NULL DEFAULT '',
			option_a_image_url TEXT NOT NULL DEFAULT '',
			option_b TEXT NOT NULL DEFAULT '',
			option_b_image_url TEXT NOT NULL DEFAULT '',
			option_c TEXT NOT NULL DEFAULT '',
			option_c_image_url TEXT NOT NULL DEFAULT '',
			option_d TEXT NOT NULL DEFAULT '',
			option_d_image_url TEXT NOT NULL DEFAULT '',
			answer TEXT NOT NULL,
			chapter TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT '',
			pool TEXT NOT NULL,
			year TEXT NOT NULL DEFAULT '',
			division_override INTEGER NOT NULL DEFAULT 0,
			class_tag INTEGER NOT NULL DEFAULT 0,
			frequency INTEGER NOT NULL DEFAULT 0,
			tag_1 TEXT NOT NULL DEFAULT '',
			tag_2 TEXT NOT NULL DEFAULT '',
			tag_3 TEXT NOT NULL DEFAULT '',
			tag_4 TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_chapter ON questions(chapter)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_pool ON questions(pool)`,
		`CREATE TABLE IF NOT EXISTS selection_records (
			project TEXT NOT NULL,
			section TEXT NOT NULL,
			position INTEGER NOT NULL,
			item_uuid TEXT NOT NULL,
			chapter TEXT NOT NULL DEFAULT '',
			chapter_name TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT '',
			division INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			PRIMARY KEY (project, section, item_uuid)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. PAPERFORGE_DB environment variable
// 2. $XDG_DATA_HOME/paperforge/paperforge.db
// 3. ~/.local/share/paperforge/paperforge.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PAPERFORGE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "paperforge", "paperforge.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
