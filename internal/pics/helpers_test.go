package pics_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	cpfs "copypics/internal/fs"
	"copypics/internal/ledger"
	"copypics/internal/metadata"
	"copypics/internal/pics"
	"copypics/internal/testutil"
)

// fixture is a source tree, an empty destination, and the collaborators of
// an ImportService.
type fixture struct {
	t      *testing.T
	source string
	dest   string
	fsmgr  *testutil.FaultyFilesystemManager
	ledger *ledger.MemoryLedger
	logger *testutil.RecordingLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:      t,
		source: realTempDir(t),
		dest:   realTempDir(t),
		fsmgr:  testutil.NewFaultyFilesystemManager(cpfs.NewOSFilesystemManager()),
		ledger: ledger.NewMemoryLedger(),
		logger: testutil.NewRecordingLogger(),
	}
}

// realTempDir returns a fresh temp dir with links resolved, matching what
// ResolveRoot reports for it.
func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func (f *fixture) service(opts pics.Options) *pics.ImportService {
	f.t.Helper()
	if opts.Candidates == nil {
		m, err := cpfs.NewPatternMatcher(pics.DefaultCandidatePatterns)
		if err != nil {
			f.t.Fatal(err)
		}
		opts.Candidates = m
	}
	return pics.NewImportService(f.ledger, f.fsmgr, newRegistry(), f.logger, opts)
}

func newRegistry() *metadata.Registry {
	return metadata.NewRegistry()
}

// write creates source/rel with data, making parent directories.
func (f *fixture) write(rel string, data []byte) string {
	f.t.Helper()
	path := filepath.Join(f.source, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		f.t.Fatal(err)
	}
	return path
}

func (f *fixture) run(svc *pics.ImportService) *pics.WalkReport {
	f.t.Helper()
	return f.runContext(context.Background(), svc)
}

func (f *fixture) runContext(ctx context.Context, svc *pics.ImportService) *pics.WalkReport {
	f.t.Helper()
	source, err := f.fsmgr.ResolveRoot(f.source)
	if err != nil {
		f.t.Fatal(err)
	}
	dest, err := f.fsmgr.ResolveRoot(f.dest)
	if err != nil {
		f.t.Fatal(err)
	}
	report, err := svc.Run(ctx, source, dest)
	if err != nil && ctx.Err() == nil {
		f.t.Fatalf("Run() error = %v", err)
	}
	return report
}

// destFiles returns the regular files under the destination, relative to it.
func (f *fixture) destFiles() []string {
	f.t.Helper()
	var files []string
	err := filepath.WalkDir(f.dest, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, _ := filepath.Rel(f.dest, path)
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		f.t.Fatal(err)
	}
	return files
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
