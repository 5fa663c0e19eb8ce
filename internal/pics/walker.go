package pics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"copypics/internal/metrics"
)

// WalkReport aggregates the outcome of a walk.
type WalkReport struct {
	Imported    int
	Duplicates  int
	Skipped     int
	BytesCopied int64

	// Failures holds a *DirectoryError or *FileError for everything that
	// could not be processed.
	Failures []error
}

// Err joins all failures, or returns nil if there were none.
func (r *WalkReport) Err() error {
	return errors.Join(r.Failures...)
}

// walkState carries the fixed parameters of one walk.
type walkState struct {
	ctx    context.Context
	source string
	dest   string
	report *WalkReport
}

// Walk traverses dir depth-first, importing candidates into destRoot.
//
// Each directory's subdirectories are visited before its own files.
// Symbolic links to directories are never followed; links to regular files
// are imported like the files themselves. A directory that cannot be listed is
// recorded as a *DirectoryError and skipped; a file that fails to import is
// recorded as a *FileError and the remaining files are still processed.
// Cancelling ctx stops the walk before the next file.
func (s *ImportService) Walk(ctx context.Context, dir, destRoot string) *WalkReport {
	st := &walkState{ctx: ctx, source: dir, dest: destRoot, report: &WalkReport{}}
	s.walk(st, dir)
	return st.report
}

func (s *ImportService) walk(st *walkState, dir string) {
	if st.ctx.Err() != nil {
		return
	}
	if err := s.walkDirectory(st, dir); err != nil {
		st.report.Failures = append(st.report.Failures, &DirectoryError{Dir: dir, Err: err})
		metrics.DirectoriesFailedTotal.Inc()
		s.logger.Error("directory failed", "dir", dir, "error", err)
	}
}

func (s *ImportService) walkDirectory(st *walkState, dir string) error {
	entries, err := s.fsmgr.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing subdirectories: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		if sub == st.dest {
			s.logger.Debug("skipping destination inside source", "dir", sub)
			continue
		}
		if s.excluded(st, sub) {
			s.logger.Debug("directory excluded", "dir", sub)
			continue
		}
		s.walk(st, sub)
	}

	// Listed again so files created while the subtree was walked are seen.
	candidates, err := s.candidates(st, dir)
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	for _, path := range candidates {
		if st.ctx.Err() != nil {
			return nil
		}
		s.importCandidate(st, path)
	}
	return nil
}

// candidates returns the regular files directly in dir that match the
// candidate patterns, in listing order.
func (s *ImportService) candidates(st *walkState, dir string) ([]string, error) {
	entries, err := s.fsmgr.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rel := s.relative(st, path)
		if !s.opts.Candidates.Match(rel) || s.excluded(st, path) {
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 && !s.linksToFile(path) {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// linksToFile reports whether the symbolic link at path resolves to a
// regular file. Links to directories and dangling links are skipped.
func (s *ImportService) linksToFile(path string) bool {
	info, err := s.fsmgr.Stat(path)
	if err != nil {
		s.logger.Debug("skipping dangling link", "path", path, "error", err)
		return false
	}
	if !info.Mode().IsRegular() {
		s.logger.Debug("skipping link to non-file", "path", path)
		return false
	}
	return true
}

func (s *ImportService) importCandidate(st *walkState, path string) {
	result, err := s.ImportFile(path, st.dest)
	if err != nil {
		st.report.Failures = append(st.report.Failures, &FileError{Path: path, Err: err})
		metrics.FilesFailedTotal.Inc()
		s.logger.Error("import failed", "path", path, "error", err)
		return
	}

	switch result.Status {
	case StatusImported:
		st.report.Imported++
		st.report.BytesCopied += result.Bytes
		metrics.FilesImportedTotal.Inc()
		metrics.BytesCopiedTotal.Add(float64(result.Bytes))
	case StatusDuplicate:
		st.report.Duplicates++
		metrics.FilesDuplicateTotal.Inc()
	case StatusSkipped:
		st.report.Skipped++
		metrics.FilesSkippedTotal.Inc()
	}
}

func (s *ImportService) excluded(st *walkState, path string) bool {
	if s.opts.Exclude == nil {
		return false
	}
	return s.opts.Exclude.Match(s.relative(st, path))
}

// relative returns path relative to the source root, falling back to the
// base name if the two are unrelated.
func (s *ImportService) relative(st *walkState, path string) string {
	rel, err := filepath.Rel(st.source, path)
	if err != nil {
		return filepath.Base(path)
	}
	return rel
}
