// Package store persists epics, tasks, and sessions in a single SQLite
// database file and owns the schema migration lifecycle.
//
// The schema version lives in a single-row schema_version table.
// Migrations are numbered, run in order, and are written to be idempotent
// so a partially migrated database can be migrated again safely.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// LatestSchemaVersion is the schema version this build writes.
const LatestSchemaVersion = 2

// Store wraps the SQLite database and the workspace directory that holds
// generated plan files.
type Store struct {
	db  *sql.DB
	dir string
}

// Open opens (or creates) the database file and returns a Store rooted at
// the workspace directory containing it. Callers must Close it.
func Open(dbPath, workspaceDir string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single short-lived CLI process, one connection is enough and avoids
	// SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &Store{db: db, dir: workspaceDir}, nil
}

// Exists reports whether a database file is present at the given path.
func Exists(dbPath string) bool {
	info, err := os.Stat(dbPath)
	return err == nil && !info.IsDir()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the workspace directory the store was opened in.
func (s *Store) Dir() string {
	return s.dir
}

// SchemaVersion returns the recorded schema version, or 0 for a fresh or
// pre-versioning database.
func (s *Store) SchemaVersion() (int, error) {
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&name)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("check schema_version table: %w", err)
	}

	var version int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// NeedsMigration reports whether pending migrations exist.
func (s *Store) NeedsMigration() (bool, error) {
	version, err := s.SchemaVersion()
	if err != nil {
		return false, err
	}
	return version < LatestSchemaVersion, nil
}

// Migrate runs all pending migrations in order, recording the version
// after each one so an interrupted run resumes where it stopped.
func (s *Store) Migrate() error {
	current, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	for version := current + 1; version <= LatestSchemaVersion; version++ {
		if err := s.runMigration(version); err != nil {
			return fmt.Errorf("migration %d: %w", version, err)
		}
		if err := s.setSchemaVersion(version); err != nil {
			return fmt.Errorf("record migration %d: %w", version, err)
		}
	}
	return nil
}

func (s *Store) setSchemaVersion(version int) error {
	if _, err := s.db.Exec(
		"CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)",
	); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) runMigration(version int) error {
	switch version {
	case 1:
		return s.migrateV1()
	case 2:
		return s.migrateV2()
	default:
		return fmt.Errorf("unknown migration version %d", version)
	}
}

// migrateV1 creates the base epics and tasks tables.
func (s *Store) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS epics (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			file_name TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT 'feature',
			status TEXT NOT NULL DEFAULT 'draft',
			git_hash TEXT NOT NULL DEFAULT '',
			completed_at TEXT,
			epic_id TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (epic_id) REFERENCES epics(id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateV2 adds sessions, the tasks.description column, the epics.skills
// column, and the partial index backing the single-in-progress invariant.
// Column additions are skipped when already present so the migration can
// be replayed.
func (s *Store) migrateV2() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL UNIQUE,
		current_mode TEXT NOT NULL DEFAULT 'start',
		loaded_memories TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (task_id) REFERENCES tasks(id)
	)`); err != nil {
		return err
	}

	if err := s.addColumnIfMissing("tasks", "description", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return err
	}
	if err := s.addColumnIfMissing("epics", "skills", "TEXT NOT NULL DEFAULT '[]'"); err != nil {
		return err
	}

	// Backstop for the application-level conflict check. The app check runs
	// first so the user-facing error message is unaffected.
	if _, err := s.db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_one_in_progress
		 ON tasks(status) WHERE status = 'in-progress'`,
	); err != nil {
		return err
	}
	return nil
}

func (s *Store) addColumnIfMissing(table, column, definition string) error {
	exists, err := s.columnExists(table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	if err != nil && strings.Contains(err.Error(), "duplicate column") {
		return nil
	}
	return err
}

func (s *Store) columnExists(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
