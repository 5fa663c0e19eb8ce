package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"copypics/internal/pics"
	"copypics/internal/testutil"
)

func newTestSQLiteLedger(t *testing.T, path string) *SQLiteLedger {
	t.Helper()
	l, err := OpenSQLiteLedger(path)
	if err != nil {
		t.Fatalf("OpenSQLiteLedger() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestSQLiteLedger_ContainsAndMark(t *testing.T) {
	l := newTestSQLiteLedger(t, ":memory:")
	fp := testutil.FingerprintOf([]byte("photo"))

	unique, err := l.ContainsAndMark(fp)
	if err != nil || !unique {
		t.Fatalf("first ContainsAndMark() = %v, %v; want true, nil", unique, err)
	}
	unique, err = l.ContainsAndMark(fp)
	if err != nil || unique {
		t.Fatalf("second ContainsAndMark() = %v, %v; want false, nil", unique, err)
	}
	if n, err := l.Len(); err != nil || n != 1 {
		t.Fatalf("Len() = %d, %v; want 1, nil", n, err)
	}

	if err := l.Forget(fp); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	if n, _ := l.Len(); n != 0 {
		t.Errorf("Len() after Forget = %d, want 0", n)
	}
}

func TestSQLiteLedger_durableWithoutPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultSQLiteFilename)
	fp := testutil.FingerprintOf([]byte("photo"))

	l, err := OpenSQLiteLedger(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.ContainsAndMark(fp); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := newTestSQLiteLedger(t, path)
	if unique, _ := reopened.ContainsAndMark(fp); unique {
		t.Error("fingerprint lost across reopen")
	}
}

func TestSQLiteLedger_RunHistory(t *testing.T) {
	l := newTestSQLiteLedger(t, ":memory:")
	clock := testutil.ImportEveningClock()

	run := &pics.ImportRun{
		ID:          "run-1",
		Source:      "/media/card",
		Destination: "/photos",
		StartedAt:   clock.Now(),
		Status:      "running",
	}
	if err := l.StartRun(run); err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}

	clock.Advance(90 * time.Second)
	run.FinishedAt = clock.Now()
	run.Status = "success"
	run.Imported = 4
	run.Duplicates = 1
	if err := l.FinishRun(run); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := l.ListRuns(5)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() returned %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != "run-1" || got.Status != "success" || got.Imported != 4 || got.Duplicates != 1 {
		t.Errorf("run = %+v", got)
	}
	if !got.FinishedAt.Equal(run.FinishedAt) {
		t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, run.FinishedAt)
	}
}
