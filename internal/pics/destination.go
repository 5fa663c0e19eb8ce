package pics

import (
	"fmt"
	"path/filepath"
	"time"
)

// DefaultUnknownDir is the bucket for files without a capture date.
const DefaultUnknownDir = "Unknown"

// monthNames is indexed by month number; index 0 is unused.
var monthNames = [13]string{
	"",
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English name of m.
func MonthName(m time.Month) (string, error) {
	if m < time.January || m > time.December {
		return "", fmt.Errorf("month out of range: %d", int(m))
	}
	return monthNames[m], nil
}

// DestinationDir returns the directory under root that a file with capture
// time ct belongs in: root/<unknownDir>, or root/YYYY/<MonthName>/DD.
func DestinationDir(root, unknownDir string, ct CaptureTime) (string, error) {
	parts, err := destinationParts(unknownDir, ct)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{root}, parts...)...), nil
}

func destinationParts(unknownDir string, ct CaptureTime) ([]string, error) {
	if !ct.Known() {
		return []string{unknownDir}, nil
	}
	month, err := MonthName(ct.Month)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%04d", ct.Year), month, fmt.Sprintf("%02d", ct.Day)}, nil
}

// ResolveAndEnsure returns the destination directory for ct and creates it.
// For a known date the year, month and day directories are created in that
// order, each only if absent.
func ResolveAndEnsure(fsmgr FilesystemManager, root, unknownDir string, ct CaptureTime) (string, error) {
	parts, err := destinationParts(unknownDir, ct)
	if err != nil {
		return "", err
	}

	dir := root
	for _, part := range parts {
		dir = filepath.Join(dir, part)
		if err := fsmgr.Mkdir(dir); err != nil {
			return "", fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return dir, nil
}
