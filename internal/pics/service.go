package pics

import (
	"context"
	"fmt"
)

// DefaultCandidatePatterns are the file name globs imported by default.
// Matching is case-sensitive.
var DefaultCandidatePatterns = []string{"*.jpg", "*.jpeg", "*.heic"}

// NameMatcher reports whether a path relative to the source root matches.
type NameMatcher interface {
	Match(relativePath string) bool
}

// CollisionPolicy decides what happens when the destination directory
// already holds a different file with the same name.
type CollisionPolicy string

const (
	// CollisionRename copies to "name (1).ext", "name (2).ext", ... instead.
	CollisionRename CollisionPolicy = "rename"
	// CollisionSkip leaves the existing file and does not import the new one.
	CollisionSkip CollisionPolicy = "skip"
	// CollisionOverwrite replaces the existing file.
	CollisionOverwrite CollisionPolicy = "overwrite"
)

// ParseCollisionPolicy validates a policy name. Empty means CollisionRename.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(s); p {
	case "":
		return CollisionRename, nil
	case CollisionRename, CollisionSkip, CollisionOverwrite:
		return p, nil
	default:
		return "", fmt.Errorf("unknown collision policy: %q", s)
	}
}

// Options tune an ImportService.
type Options struct {
	// Candidates selects which files are imported. Required.
	Candidates NameMatcher
	// Exclude removes files and directories from the walk. Optional.
	Exclude NameMatcher
	// UnknownDir names the bucket for files without a capture date.
	UnknownDir string
	// Collision is applied when a destination name is already taken.
	Collision CollisionPolicy
}

// ImportService walks a source tree and copies each new image into a
// date-structured destination tree, consulting the ledger to skip content
// that was imported before.
type ImportService struct {
	ledger     Ledger
	fsmgr      FilesystemManager
	extractors ExtractorRegistry
	logger     Logger
	opts       Options
}

// NewImportService creates a new ImportService with the provided dependencies.
// The ledger must already be loaded; persisting it is the caller's job.
func NewImportService(ledger Ledger, fsmgr FilesystemManager, extractors ExtractorRegistry, logger Logger, opts Options) *ImportService {
	if opts.UnknownDir == "" {
		opts.UnknownDir = DefaultUnknownDir
	}
	if opts.Collision == "" {
		opts.Collision = CollisionRename
	}
	return &ImportService{
		ledger:     ledger,
		fsmgr:      fsmgr,
		extractors: extractors,
		logger:     logger,
		opts:       opts,
	}
}

// Run imports every candidate under source into dest.
// Per-file and per-directory failures do not stop the run; they are
// collected in the returned report. The only error returned is the
// context's, when the run was interrupted.
func (s *ImportService) Run(ctx context.Context, source, dest *Root) (*WalkReport, error) {
	s.logger.Info("import started", "source", source.String(), "dest", dest.String())

	report := s.Walk(ctx, source.String(), dest.String())

	s.logger.Info("import finished",
		"imported", report.Imported,
		"duplicates", report.Duplicates,
		"skipped", report.Skipped,
		"failures", len(report.Failures),
		"bytes", report.BytesCopied,
	)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("import interrupted: %w", err)
	}
	return report, nil
}
