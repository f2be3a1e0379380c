package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database holding invocation results
type Store struct {
	db *sql.DB
}

// Open opens (and creates/migrates) the ledger at the given path
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	// Ensure file exists with strict perms
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		f, err := os.OpenFile(dbPath, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return nil, fmt.Errorf("create database file: %w", err)
		}
		f.Close()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Parallel subtests record concurrently; one connection serializes writers
	db.SetMaxOpenConns(1)

	// Pragmas
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	// user_version based migrations
	var ver int
	_ = s.db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&ver)

	// v1: invocation results
	if ver == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS results (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id       TEXT NOT NULL,
  artifact     TEXT NOT NULL,
  suite        TEXT NOT NULL,
  case_name    TEXT NOT NULL,
  variant      TEXT NOT NULL,
  state        TEXT NOT NULL,
  message      TEXT NOT NULL DEFAULT '',
  duration_ms  INTEGER NOT NULL DEFAULT 0,
  recorded_at  INTEGER NOT NULL,
  UNIQUE (run_id, artifact)
);
`)
		if err == nil {
			_, err = tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_results_artifact ON results (artifact);`)
		}
		if err == nil {
			_, err = tx.ExecContext(ctx, "PRAGMA user_version=1;")
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate v1: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		ver = 1
	}

	// v2: test_name, so failures sharing an attempted artifact name stay apart
	if ver == 1 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range []string{
			`CREATE TABLE results_v2 (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id       TEXT NOT NULL,
  test_name    TEXT NOT NULL DEFAULT '',
  artifact     TEXT NOT NULL,
  suite        TEXT NOT NULL,
  case_name    TEXT NOT NULL,
  variant      TEXT NOT NULL,
  state        TEXT NOT NULL,
  message      TEXT NOT NULL DEFAULT '',
  duration_ms  INTEGER NOT NULL DEFAULT 0,
  recorded_at  INTEGER NOT NULL,
  UNIQUE (run_id, artifact, test_name)
);`,
			`INSERT INTO results_v2 (id, run_id, artifact, suite, case_name, variant, state, message, duration_ms, recorded_at)
  SELECT id, run_id, artifact, suite, case_name, variant, state, message, duration_ms, recorded_at FROM results;`,
			`DROP TABLE results;`,
			`ALTER TABLE results_v2 RENAME TO results;`,
			`CREATE INDEX IF NOT EXISTS idx_results_artifact ON results (artifact);`,
			`PRAGMA user_version=2;`,
		} {
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				break
			}
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate v2: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		ver = 2
	}

	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB
func (s *Store) DB() *sql.DB {
	return s.db
}
