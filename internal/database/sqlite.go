package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"copypics/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Run status values stored in import_runs.status.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// ImportRun is a row of import_runs.
type ImportRun struct {
	ID          string
	Source      string
	Destination string
	StartedAt   time.Time
	FinishedAt  sql.NullTime
	Status      string
	Imported    int64
	Duplicates  int64
	Failures    int64
}

// SQLiteStore holds the fingerprint set and run history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens the database at path and migrates it to the latest
// schema. path can be a file path or ":memory:".
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	if err := migrations.CheckDBMigrationStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("checking schema of %s: %w", path, err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; also keeps ":memory:" to a single database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Fingerprint operations

// InsertFingerprint adds fp and reports whether it was new.
func (s *SQLiteStore) InsertFingerprint(fp string) (bool, error) {
	res, err := s.db.Exec(
		"INSERT OR IGNORE INTO fingerprints (fingerprint, created_at) VALUES (?, ?)",
		fp, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("inserting fingerprint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting fingerprint: %w", err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) DeleteFingerprint(fp string) error {
	if _, err := s.db.Exec("DELETE FROM fingerprints WHERE fingerprint = ?", fp); err != nil {
		return fmt.Errorf("deleting fingerprint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) HasFingerprint(fp string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM fingerprints WHERE fingerprint = ?", fp).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("finding fingerprint: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) CountFingerprints() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM fingerprints").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting fingerprints: %w", err)
	}
	return n, nil
}

// Import run tracking

func (s *SQLiteStore) CreateImportRun(run *ImportRun) error {
	_, err := s.db.Exec(
		`INSERT INTO import_runs (id, source, destination, started_at, status)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Destination, run.StartedAt.UTC(), run.Status,
	)
	if err != nil {
		return fmt.Errorf("creating import run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishImportRun(run *ImportRun) error {
	res, err := s.db.Exec(
		`UPDATE import_runs
		 SET finished_at = ?, status = ?, imported = ?, duplicates = ?, failures = ?
		 WHERE id = ?`,
		run.FinishedAt, run.Status, run.Imported, run.Duplicates, run.Failures, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing import run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing import run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing import run: no run with id %s", run.ID)
	}
	return nil
}

// ListImportRuns returns the most recent runs first.
func (s *SQLiteStore) ListImportRuns(limit int) ([]*ImportRun, error) {
	rows, err := s.db.Query(
		`SELECT id, source, destination, started_at, finished_at, status, imported, duplicates, failures
		 FROM import_runs
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing import runs: %w", err)
	}
	defer rows.Close()

	var runs []*ImportRun
	for rows.Next() {
		run := &ImportRun{}
		if err := rows.Scan(
			&run.ID, &run.Source, &run.Destination, &run.StartedAt, &run.FinishedAt,
			&run.Status, &run.Imported, &run.Duplicates, &run.Failures,
		); err != nil {
			return nil, fmt.Errorf("scanning import run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing import runs: %w", err)
	}
	return runs, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
