package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// pattern is a parsed glob with its matching strategy.
type pattern struct {
	glob      string
	matchPath bool // true = match against relative path; false = match against basename only
}

// PatternMatcher checks paths against a set of glob patterns.
// Patterns without '/' match against the file's basename only.
// Patterns with '/' match against the full relative path from the source root.
// Matching is case-sensitive.
type PatternMatcher struct {
	patterns []pattern
}

// NewPatternMatcher creates a PatternMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped. Malformed globs are
// rejected up front rather than silently never matching.
func NewPatternMatcher(rawPatterns []string) (*PatternMatcher, error) {
	var patterns []pattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if _, err := filepath.Match(raw, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", raw, err)
		}
		patterns = append(patterns, pattern{
			glob:      raw,
			matchPath: strings.Contains(raw, "/"),
		})
	}
	return &PatternMatcher{patterns: patterns}, nil
}

// Match reports whether relativePath matches any pattern.
func (m *PatternMatcher) Match(relativePath string) bool {
	if len(m.patterns) == 0 || relativePath == "" {
		return false
	}

	normalized := filepath.ToSlash(relativePath)
	basename := filepath.Base(relativePath)

	for _, p := range m.patterns {
		subject := basename
		if p.matchPath {
			subject = normalized
		}
		// Patterns were validated in NewPatternMatcher.
		if matched, _ := filepath.Match(p.glob, subject); matched {
			return true
		}
	}
	return false
}

// Len returns the number of usable patterns.
func (m *PatternMatcher) Len() int {
	return len(m.patterns)
}

// ReadPatternFile reads one pattern per line from path.
// Returns nil and no error if the file does not exist.
func ReadPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening pattern file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pattern file: %w", err)
	}
	return patterns, nil
}
