package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"copypics/internal/pics"
	"copypics/internal/testutil"
)

func TestOpenTextLedger_createsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultTextFilename)

	l, err := OpenTextLedger(path, pics.NewNopLogger())
	if err != nil {
		t.Fatalf("OpenTextLedger() error = %v", err)
	}
	if n, _ := l.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("ledger file not created: %v", err)
	}
}

func TestOpenTextLedger_parsesLines(t *testing.T) {
	fpA := testutil.FingerprintOf([]byte("a"))
	fpB := testutil.FingerprintOf([]byte("b"))
	short := pics.Fingerprint{31: 0xab}

	content := strings.Join([]string{
		"0x" + fpA.String(),
		"",
		"   ",
		fpB.String(), // bare digits
		"0xab",       // leading zeros dropped
		"not a fingerprint",
		"0x" + fpA.String(), // repeated
	}, "\n") + "\n"

	path := filepath.Join(t.TempDir(), DefaultTextFilename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	logger := testutil.NewRecordingLogger()
	l, err := OpenTextLedger(path, logger)
	if err != nil {
		t.Fatalf("OpenTextLedger() error = %v", err)
	}

	if n, _ := l.Len(); n != 3 {
		t.Errorf("Len() = %d, want 3", n)
	}
	for _, fp := range []pics.Fingerprint{fpA, fpB, short} {
		unique, err := l.ContainsAndMark(fp)
		if err != nil {
			t.Fatalf("ContainsAndMark() error = %v", err)
		}
		if unique {
			t.Errorf("%s should have been loaded", fp)
		}
	}

	warnings := logger.Entries("WARN")
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
}

func TestOpenTextLedger_skipsOverlongLine(t *testing.T) {
	fpA := testutil.FingerprintOf([]byte("a"))
	fpB := testutil.FingerprintOf([]byte("b"))

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "garbage between fingerprints",
			content: "0x" + fpA.String() + "\n" + strings.Repeat("z", 70000) + "\n0x" + fpB.String() + "\n",
		},
		{
			name:    "unterminated garbage at end",
			content: "0x" + fpA.String() + "\n0x" + fpB.String() + "\n" + strings.Repeat("f", 5000),
		},
		{
			name:    "just over the limit",
			content: "0x" + fpA.String() + "\n" + strings.Repeat(" ", 200) + "0x" + fpB.String() + "\n0x" + fpB.String() + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultTextFilename)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			logger := testutil.NewRecordingLogger()
			l, err := OpenTextLedger(path, logger)
			if err != nil {
				t.Fatalf("OpenTextLedger() error = %v", err)
			}

			if n, _ := l.Len(); n != 2 {
				t.Errorf("Len() = %d, want 2", n)
			}
			if warnings := logger.Entries("WARN"); len(warnings) != 1 {
				t.Errorf("got %d warnings, want 1: %v", len(warnings), warnings)
			}
		})
	}
}

func TestOpenTextLedger_unreadable(t *testing.T) {
	// A directory cannot be read as a ledger.
	dir := t.TempDir()
	if _, err := OpenTextLedger(dir, pics.NewNopLogger()); err == nil {
		t.Fatal("OpenTextLedger() expected error for a directory")
	}
}

func TestTextLedger_ContainsAndMark(t *testing.T) {
	l, err := OpenTextLedger(filepath.Join(t.TempDir(), DefaultTextFilename), pics.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	fp := testutil.FingerprintOf([]byte("photo"))

	unique, err := l.ContainsAndMark(fp)
	if err != nil || !unique {
		t.Fatalf("first ContainsAndMark() = %v, %v; want true, nil", unique, err)
	}
	unique, err = l.ContainsAndMark(fp)
	if err != nil || unique {
		t.Fatalf("second ContainsAndMark() = %v, %v; want false, nil", unique, err)
	}

	if err := l.Forget(fp); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	unique, err = l.ContainsAndMark(fp)
	if err != nil || !unique {
		t.Fatalf("ContainsAndMark() after Forget = %v, %v; want true, nil", unique, err)
	}
}

func TestTextLedger_PersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultTextFilename)
	l, err := OpenTextLedger(path, pics.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}

	want := []pics.Fingerprint{
		testutil.FingerprintOf([]byte("one")),
		testutil.FingerprintOf([]byte("two")),
		{0: 0x00, 31: 0x01}, // leading zeros must survive
	}
	for _, fp := range want {
		if _, err := l.ContainsAndMark(fp); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Persist(); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("persisted %d lines, want %d", len(lines), len(want))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "0x") || len(line) != 66 {
			t.Errorf("line %q is not 0x + 64 hex digits", line)
		}
	}

	reloaded, err := OpenTextLedger(path, pics.NewNopLogger())
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	if n, _ := reloaded.Len(); n != len(want) {
		t.Fatalf("reloaded Len() = %d, want %d", n, len(want))
	}
	for _, fp := range want {
		if unique, _ := reloaded.ContainsAndMark(fp); unique {
			t.Errorf("%s missing after round trip", fp)
		}
	}
}

func TestTextLedger_PersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultTextFilename)
	l, err := OpenTextLedger(path, pics.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.ContainsAndMark(testutil.FingerprintOf([]byte("x"))); err != nil {
		t.Fatal(err)
	}
	if err := l.Persist(); err != nil {
		t.Fatal(err)
	}
	if err := l.Persist(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != DefaultTextFilename {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, want only %s", names, DefaultTextFilename)
	}
}

func TestTextLedger_PersistFailureKeepsOldLedger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultTextFilename)
	old := "0x" + testutil.FingerprintOf([]byte("old")).String() + "\n"
	if err := os.WriteFile(path, []byte(old), 0644); err != nil {
		t.Fatal(err)
	}

	l, err := OpenTextLedger(path, pics.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.ContainsAndMark(testutil.FingerprintOf([]byte("new"))); err != nil {
		t.Fatal(err)
	}

	// Point the ledger at a directory that no longer exists so the temp
	// file cannot be created.
	l.path = filepath.Join(dir, "gone", DefaultTextFilename)
	if err := l.Persist(); err == nil {
		t.Fatal("Persist() expected error")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != old {
		t.Errorf("ledger changed to %q", data)
	}
}

func TestTextLedger_marksReachDiskOnlyOnPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultTextFilename)
	fp := testutil.FingerprintOf([]byte("photo"))

	l, err := OpenTextLedger(path, pics.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.ContainsAndMark(fp); err != nil {
		t.Fatal(err)
	}
	// Abandoned without Persist, as after a crash mid-walk.

	reopened, err := OpenTextLedger(path, pics.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if unique, _ := reopened.ContainsAndMark(fp); !unique {
		t.Error("unpersisted mark survived reopen")
	}
}
