package ledger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"copypics/internal/pics"
)

// DefaultTextFilename is the name of the text ledger inside the destination root.
const DefaultTextFilename = "Hashfile.txt"

// maxLineLen bounds how much of one ledger line is kept in memory. A
// fingerprint line is at most 66 characters; anything longer is garbage.
const maxLineLen = 256

// TextLedger keeps the fingerprint set in memory and persists it as a text
// file with one "0x"-prefixed hex fingerprint per line.
type TextLedger struct {
	path   string
	logger pics.Logger

	mu  sync.Mutex
	set map[pics.Fingerprint]struct{}
}

// OpenTextLedger loads the ledger at path, creating an empty file if none
// exists. Blank lines are ignored and lines that are not fingerprints are
// logged and skipped; I/O errors are returned.
func OpenTextLedger(path string, logger pics.Logger) (*TextLedger, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	l := &TextLedger{
		path:   path,
		logger: logger,
		set:    make(map[pics.Fingerprint]struct{}),
	}

	r := bufio.NewReader(f)
	lineNo := 0
	for {
		raw, tooLong, err := readLine(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ledger: %w", err)
		}
		lineNo++
		if tooLong {
			logger.Warn("skipping unparseable ledger line", "path", path, "line", lineNo, "error", "line too long")
			continue
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fp, err := pics.ParseFingerprint(line)
		if err != nil {
			logger.Warn("skipping unparseable ledger line", "path", path, "line", lineNo, "error", err)
			continue
		}
		l.set[fp] = struct{}{}
	}

	logger.Debug("ledger loaded", "path", path, "fingerprints", len(l.set))
	return l, nil
}

func (l *TextLedger) ContainsAndMark(fp pics.Fingerprint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.set[fp]; ok {
		return false, nil
	}
	l.set[fp] = struct{}{}
	return true, nil
}

func (l *TextLedger) Forget(fp pics.Fingerprint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.set, fp)
	return nil
}

func (l *TextLedger) Len() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.set), nil
}

// Persist rewrites the ledger file. The new contents are written to a temp
// file in the same directory and renamed over the old one, so a crash leaves
// either the previous ledger or the new one.
func (l *TextLedger) Persist() error {
	l.mu.Lock()
	lines := make([]string, 0, len(l.set))
	for fp := range l.set {
		lines = append(lines, "0x"+fp.String())
	}
	l.mu.Unlock()
	slices.Sort(lines)

	if err := writeLines(l.path, lines); err != nil {
		return fmt.Errorf("persisting ledger: %w", err)
	}
	l.logger.Debug("ledger persisted", "path", l.path, "fingerprints", len(lines))
	return nil
}

func (l *TextLedger) Close() error {
	return nil
}

// Path returns the ledger file location.
func (l *TextLedger) Path() string {
	return l.path
}

// readLine returns the next line without its terminator. A line longer than
// maxLineLen is consumed to its end but not returned, and tooLong is set.
// io.EOF is returned only when no line is left.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > maxLineLen {
				tooLong, buf = true, nil
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// writeLines writes lines to path using atomic write (temp file + rename).
func writeLines(path string, lines []string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmpFile)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			tmpFile.Close()
			return fmt.Errorf("failed to write data: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that TextLedger implements pics.Ledger interface
var _ pics.Ledger = (*TextLedger)(nil)
