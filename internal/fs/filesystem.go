package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/djherbis/times.v1"

	"copypics/internal/pics"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
type OSFilesystemManager struct{}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// ResolveRoot validates that rawPath is an existing directory and returns it
// absolute with every symbolic link resolved.
func (m *OSFilesystemManager) ResolveRoot(rawPath string) (*pics.Root, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absPath)
	}

	// Walk paths are built from the root, so a root reached through a link
	// must be canonical for the destination-inside-source check to hold.
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("resolving links: %w", err)
	}

	return pics.NewRoot(realPath, info), nil
}

// ReadDir lists dir. Entries are not followed, so symbolic links report
// fs.ModeSymlink and IsDir() is false for links to directories.
func (m *OSFilesystemManager) ReadDir(dir string) ([]fs.DirEntry, error) {
	return os.ReadDir(dir)
}

// Stat describes the target of path, following symbolic links.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadSeekCloser, error) {
	return os.Open(path)
}

// Mkdir creates path if it does not already exist as a directory.
func (m *OSFilesystemManager) Mkdir(path string) error {
	err := os.Mkdir(path, 0755)
	if err == nil || !errors.Is(err, fs.ErrExist) {
		return err
	}
	// Something exists; it only counts as success if it is a directory.
	info, statErr := os.Stat(path)
	if statErr != nil {
		return statErr
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}

// Exists reports whether anything exists at path.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// CopyFile copies src to dst through a temp file in dst's directory that is
// renamed into place, so dst is never observed half-written. The copy gets
// src's permission bits and access/modification times.
func (m *OSFilesystemManager) CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	ts := times.Get(info)

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copypics-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, in)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("copying data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}
	if written != info.Size() {
		return 0, fmt.Errorf("size mismatch: expected %d bytes, got %d", info.Size(), written)
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Chtimes(tmpPath, ts.AccessTime(), ts.ModTime()); err != nil {
		return 0, fmt.Errorf("setting times: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("renaming into place: %w", err)
	}

	success = true
	return written, nil
}

// Compile-time check that OSFilesystemManager implements pics.FilesystemManager interface
var _ pics.FilesystemManager = (*OSFilesystemManager)(nil)
