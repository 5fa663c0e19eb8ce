package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"copypics/internal/config"
	"copypics/internal/fs"
	"copypics/internal/ledger"
	"copypics/internal/metadata"
	"copypics/internal/metrics"
	"copypics/internal/pics"
)

// IgnoreFilename is read from the source root; each line is an exclude pattern.
const IgnoreFilename = ".copypicsignore"

// ErrNoRunHistory is returned by History for ledgers that do not record runs.
var ErrNoRunHistory = errors.New("ledger does not keep run history")

// CopyPicsApp is the application layer between the CLI and ImportService.
// It constructs all dependencies from config, runs one import, and on Close
// persists the ledger, records the run and flushes metrics.
type CopyPicsApp struct {
	cfg     *config.Config
	ledger  pics.Ledger
	history pics.RunHistory // nil unless the ledger records runs
	service *pics.ImportService
	clock   pics.Clock
	logger  pics.Logger
	logFile *os.File

	source *pics.Root
	dest   *pics.Root
	run    *pics.ImportRun
	report *pics.WalkReport
	runErr error
}

// NewCopyPicsApp validates the source and destination directories and wires
// an ImportService for them. The caller must call Close when done.
func NewCopyPicsApp(cfg *config.Config, sourcePath, destPath string) (*CopyPicsApp, error) {
	return newCopyPicsApp(cfg, sourcePath, destPath, pics.RealClock{}, pics.UUIDGenerator{}, os.Stderr)
}

func newCopyPicsApp(cfg *config.Config, sourcePath, destPath string, clock pics.Clock, ids pics.IDGenerator, console io.Writer) (*CopyPicsApp, error) {
	fsmgr := fs.NewOSFilesystemManager()

	source, err := fsmgr.ResolveRoot(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("resolving source: %w", err)
	}
	dest, err := fsmgr.ResolveRoot(destPath)
	if err != nil {
		return nil, fmt.Errorf("resolving destination: %w", err)
	}

	collision, err := pics.ParseCollisionPolicy(cfg.Import.Collision)
	if err != nil {
		return nil, err
	}
	candidates, err := fs.NewPatternMatcher(cfg.Import.Patterns)
	if err != nil {
		return nil, fmt.Errorf("parsing import patterns: %w", err)
	}
	exclude, err := loadExcludes(cfg.Import.Exclude, filepath.Join(source.String(), IgnoreFilename))
	if err != nil {
		return nil, err
	}

	runID := ids.New()
	slogger, logFile, err := newLogger(cfg.LogDir, runID, cfg.LogLevel, console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	l, err := ledger.NewLedgerFromConfig(cfg.Ledger, dest.String(), logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	opts := pics.Options{
		Candidates: candidates,
		UnknownDir: cfg.Import.UnknownDir,
		Collision:  collision,
	}
	if exclude.Len() > 0 {
		opts.Exclude = exclude
	}
	svc := pics.NewImportService(l, fsmgr, metadata.NewRegistry(), logger, opts)

	a := &CopyPicsApp{
		cfg:     cfg,
		ledger:  l,
		service: svc,
		clock:   clock,
		logger:  logger,
		logFile: logFile,
		source:  source,
		dest:    dest,
		run:     newImportRun(runID, source, dest, clock.Now()),
	}

	if h, ok := l.(pics.RunHistory); ok {
		if err := h.StartRun(a.run); err != nil {
			l.Close()
			logFile.Close()
			return nil, fmt.Errorf("recording run start: %w", err)
		}
		a.history = h
	}
	return a, nil
}

// loadExcludes combines the configured exclude patterns with those in the
// ignore file at ignorePath, which may be absent.
func loadExcludes(configured []string, ignorePath string) (*fs.PatternMatcher, error) {
	fromFile, err := fs.ReadPatternFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ignorePath, err)
	}
	patterns := append(append([]string(nil), configured...), fromFile...)
	m, err := fs.NewPatternMatcher(patterns)
	if err != nil {
		return nil, fmt.Errorf("parsing exclude patterns: %w", err)
	}
	return m, nil
}

// Import walks the source into the destination. It may only be called once.
// Failures of single files and directories are in the report, not the error.
func (a *CopyPicsApp) Import(ctx context.Context) (*pics.WalkReport, error) {
	if a.report != nil {
		return nil, fmt.Errorf("import already ran")
	}
	a.report, a.runErr = a.service.Run(ctx, a.source, a.dest)
	return a.report, a.runErr
}

// RunID identifies this run in the log and the run history.
func (a *CopyPicsApp) RunID() string {
	return a.run.ID
}

// Close persists the ledger, records the end of the run, writes metrics and
// closes all resources. The ledger is persisted even when the import was
// interrupted or had failures.
func (a *CopyPicsApp) Close() error {
	var firstErr error
	setErr := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if err := a.ledger.Persist(); err != nil {
		setErr(fmt.Errorf("saving ledger: %w", err))
	}

	finishImportRun(a.run, a.report, a.runErr, a.clock.Now())
	if a.history != nil {
		if err := a.history.FinishRun(a.run); err != nil {
			setErr(fmt.Errorf("recording run finish: %w", err))
		}
	}

	if n, err := a.ledger.Len(); err == nil {
		metrics.LedgerFingerprints.Set(float64(n))
		a.logger.Info("ledger persisted", "fingerprints", n)
	}
	metrics.LastRunTimestamp.Set(float64(a.run.FinishedAt.Unix()))
	if path := a.cfg.Metrics.TextfilePath; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			setErr(err)
		}
	}

	if err := a.ledger.Close(); err != nil {
		setErr(fmt.Errorf("closing ledger: %w", err))
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// History returns the most recent runs recorded in the ledger that belongs to
// destPath. destPath may be empty when ledger.path is configured.
func History(cfg *config.Config, destPath string, limit int) ([]*pics.ImportRun, error) {
	if cfg.Ledger.Type != "sqlite" {
		return nil, fmt.Errorf("%s ledger: %w", cfg.Ledger.Type, ErrNoRunHistory)
	}
	if destPath == "" && cfg.Ledger.Path == "" {
		return nil, fmt.Errorf("a destination is required unless ledger.path is set")
	}

	var destRoot string
	if destPath != "" {
		dest, err := fs.NewOSFilesystemManager().ResolveRoot(destPath)
		if err != nil {
			return nil, fmt.Errorf("resolving destination: %w", err)
		}
		destRoot = dest.String()
	}

	l, err := ledger.NewLedgerFromConfig(cfg.Ledger, destRoot, pics.NewNopLogger())
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	defer l.Close()

	h, ok := l.(pics.RunHistory)
	if !ok {
		return nil, ErrNoRunHistory
	}
	return h.ListRuns(limit)
}
