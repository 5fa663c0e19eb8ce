package pics

import (
	"io"
	"io/fs"
)

// FilesystemManager provides the filesystem operations the importer needs.
// It abstracts file access so traversal failures can be injected in tests.
type FilesystemManager interface {
	// ResolveRoot validates a raw path and returns it as a Root.
	// The path is made absolute, stat'ed, and must be a directory.
	ResolveRoot(rawPath string) (*Root, error)

	// ReadDir lists a directory without following symbolic links, so
	// entries that are links report fs.ModeSymlink in their Type.
	ReadDir(dir string) ([]fs.DirEntry, error)

	// Stat follows symbolic links and describes the target.
	Stat(path string) (fs.FileInfo, error)

	// Open opens a file for reading.
	Open(path string) (io.ReadSeekCloser, error)

	// Mkdir creates a single directory. An existing directory is not an error.
	Mkdir(path string) error

	// Exists reports whether anything exists at path.
	Exists(path string) (bool, error)

	// CopyFile copies src to dst, replacing dst if it exists, and carries
	// over the permission bits and access/modification times of src.
	// Returns the number of bytes copied.
	CopyFile(src, dst string) (int64, error)
}
