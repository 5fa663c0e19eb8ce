package pics

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ImportStatus is the outcome of importing one candidate.
type ImportStatus int

const (
	// StatusImported means the file was copied into the destination.
	StatusImported ImportStatus = iota
	// StatusDuplicate means the content was already imported.
	StatusDuplicate
	// StatusSkipped means a different file already holds the destination
	// name and the collision policy is CollisionSkip.
	StatusSkipped
)

func (s ImportStatus) String() string {
	switch s {
	case StatusImported:
		return "imported"
	case StatusDuplicate:
		return "duplicate"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("ImportStatus(%d)", int(s))
	}
}

// ImportResult describes what ImportFile did with a candidate.
type ImportResult struct {
	Source      string
	Destination string // empty unless Status is StatusImported
	Fingerprint Fingerprint
	CaptureTime CaptureTime
	Status      ImportStatus
	Bytes       int64
}

// ImportFile imports a single candidate into destRoot.
//
// The fingerprint is marked in the ledger before any work is done so that
// the check is atomic. If anything after the mark fails, or the file is
// skipped because of a name collision, the mark is undone so that a later
// run tries the file again.
func (s *ImportService) ImportFile(src, destRoot string) (result *ImportResult, err error) {
	f, err := s.fsmgr.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	fp, _, err := ComputeFingerprint(f)
	if err != nil {
		return nil, err
	}

	unique, err := s.ledger.ContainsAndMark(fp)
	if err != nil {
		return nil, fmt.Errorf("checking ledger: %w", err)
	}
	result = &ImportResult{Source: src, Fingerprint: fp, Status: StatusDuplicate}
	if !unique {
		s.logger.Debug("duplicate content", "path", src, "fingerprint", fp.String())
		return result, nil
	}

	keepMark := false
	defer func() {
		if keepMark {
			return
		}
		if ferr := s.ledger.Forget(fp); ferr != nil {
			err = errors.Join(err, fmt.Errorf("forgetting fingerprint: %w", ferr))
		}
	}()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding file: %w", err)
	}
	ct, err := s.captureTime(f, src)
	if err != nil {
		return nil, err
	}
	result.CaptureTime = ct

	dir, err := ResolveAndEnsure(s.fsmgr, destRoot, s.opts.UnknownDir, ct)
	if err != nil {
		return nil, fmt.Errorf("preparing destination: %w", err)
	}

	target, status, err := s.place(dir, filepath.Base(src), fp)
	if err != nil {
		return nil, err
	}
	switch status {
	case StatusDuplicate:
		// Same content already sits at the destination; remember it.
		keepMark = true
		s.logger.Info("content already at destination", "path", src, "dest", target)
		return result, nil
	case StatusSkipped:
		result.Status = StatusSkipped
		s.logger.Warn("destination name taken, skipping", "path", src, "dest", target)
		return result, nil
	}

	n, err := s.fsmgr.CopyFile(src, target)
	if err != nil {
		return nil, fmt.Errorf("copying to %s: %w", target, err)
	}

	keepMark = true
	result.Status = StatusImported
	result.Destination = target
	result.Bytes = n
	s.logger.Debug("file imported", "path", src, "dest", target, "date", ct.String())
	return result, nil
}

// captureTime extracts the capture date of the open file f.
// A present but malformed date is logged and treated as unknown, and so is
// a file whose format has no extractor.
func (s *ImportService) captureTime(f io.ReadSeeker, src string) (CaptureTime, error) {
	format := DetectFormat(src)
	extractor, err := s.extractors.For(format)
	if err == nil {
		var ct CaptureTime
		ct, err = extractor.ExtractCaptureTime(f)
		if err == nil {
			if !ct.Known() {
				s.logger.Info("unknown capture time", "path", src)
			}
			return ct, nil
		}
	}

	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		s.logger.Info("capture time not read", "path", src, "format", format.String())
		return UnknownCaptureTime, nil
	case errors.Is(err, ErrMalformedCaptureTime):
		s.logger.Warn("ignoring malformed capture time", "path", src, "error", err)
		return UnknownCaptureTime, nil
	default:
		return UnknownCaptureTime, fmt.Errorf("reading %s metadata: %w", format, err)
	}
}

// place picks the path inside dir that a file called name with content fp
// should be copied to, applying the collision policy. The returned status
// is StatusImported when the caller should copy to the returned path,
// StatusDuplicate when identical content is already there, and
// StatusSkipped when the policy says not to import.
func (s *ImportService) place(dir, name string, fp Fingerprint) (string, ImportStatus, error) {
	target := filepath.Join(dir, name)
	exists, err := s.fsmgr.Exists(target)
	if err != nil {
		return "", 0, fmt.Errorf("checking %s: %w", target, err)
	}
	if !exists {
		return target, StatusImported, nil
	}

	same, err := s.sameContent(target, fp)
	if err != nil {
		return "", 0, err
	}
	if same {
		return target, StatusDuplicate, nil
	}

	switch s.opts.Collision {
	case CollisionOverwrite:
		return target, StatusImported, nil
	case CollisionSkip:
		return target, StatusSkipped, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		exists, err := s.fsmgr.Exists(candidate)
		if err != nil {
			return "", 0, fmt.Errorf("checking %s: %w", candidate, err)
		}
		if !exists {
			return candidate, StatusImported, nil
		}
		same, err := s.sameContent(candidate, fp)
		if err != nil {
			return "", 0, err
		}
		if same {
			return candidate, StatusDuplicate, nil
		}
	}
}

// sameContent reports whether the file at path has fingerprint fp.
func (s *ImportService) sameContent(path string, fp Fingerprint) (bool, error) {
	f, err := s.fsmgr.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening existing %s: %w", path, err)
	}
	defer f.Close()

	existing, _, err := ComputeFingerprint(f)
	if err != nil {
		return false, fmt.Errorf("hashing existing %s: %w", path, err)
	}
	return existing == fp, nil
}
