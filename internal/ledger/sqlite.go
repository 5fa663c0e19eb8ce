package ledger

import (
	"database/sql"
	"fmt"
	"sync"

	"copypics/internal/database"
	"copypics/internal/pics"
)

// DefaultSQLiteFilename is the name of the sqlite ledger inside the destination root.
const DefaultSQLiteFilename = ".copypics.db"

// SQLiteLedger stores fingerprints in SQLite. Every mark is committed as it
// happens, so Persist has nothing left to do. It also records run history.
//
// Because marks are durable before the file is copied, a crash between
// ContainsAndMark and the copy leaves a fingerprint recorded for content
// that never reached the destination. The TextLedger has no such window.
type SQLiteLedger struct {
	mu    sync.Mutex
	store *database.SQLiteStore
}

// OpenSQLiteLedger opens (and migrates) the database at path.
func OpenSQLiteLedger(path string) (*SQLiteLedger, error) {
	store, err := database.NewSQLiteStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return &SQLiteLedger{store: store}, nil
}

// ContainsAndMark uses INSERT OR IGNORE, so the check and the mark are one statement.
func (l *SQLiteLedger) ContainsAndMark(fp pics.Fingerprint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.store.InsertFingerprint(fp.String())
}

func (l *SQLiteLedger) Forget(fp pics.Fingerprint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.store.DeleteFingerprint(fp.String())
}

func (l *SQLiteLedger) Len() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.store.CountFingerprints()
}

func (l *SQLiteLedger) Persist() error {
	return nil
}

func (l *SQLiteLedger) Close() error {
	return l.store.Close()
}

// Path returns the database file location.
func (l *SQLiteLedger) Path() string {
	return l.store.Path()
}

// Run history

func (l *SQLiteLedger) StartRun(run *pics.ImportRun) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.store.CreateImportRun(toRow(run))
}

func (l *SQLiteLedger) FinishRun(run *pics.ImportRun) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.store.FinishImportRun(toRow(run))
}

func (l *SQLiteLedger) ListRuns(limit int) ([]*pics.ImportRun, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.store.ListImportRuns(limit)
	if err != nil {
		return nil, err
	}
	runs := make([]*pics.ImportRun, len(rows))
	for i, row := range rows {
		runs[i] = fromRow(row)
	}
	return runs, nil
}

func toRow(run *pics.ImportRun) *database.ImportRun {
	row := &database.ImportRun{
		ID:          run.ID,
		Source:      run.Source,
		Destination: run.Destination,
		StartedAt:   run.StartedAt,
		Status:      run.Status,
		Imported:    int64(run.Imported),
		Duplicates:  int64(run.Duplicates),
		Failures:    int64(run.Failures),
	}
	if !run.FinishedAt.IsZero() {
		row.FinishedAt = sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
	}
	return row
}

func fromRow(row *database.ImportRun) *pics.ImportRun {
	run := &pics.ImportRun{
		ID:          row.ID,
		Source:      row.Source,
		Destination: row.Destination,
		StartedAt:   row.StartedAt,
		Status:      row.Status,
		Imported:    int(row.Imported),
		Duplicates:  int(row.Duplicates),
		Failures:    int(row.Failures),
	}
	if row.FinishedAt.Valid {
		run.FinishedAt = row.FinishedAt.Time
	}
	return run
}

var (
	_ pics.Ledger     = (*SQLiteLedger)(nil)
	_ pics.RunHistory = (*SQLiteLedger)(nil)
)
