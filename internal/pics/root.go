package pics

import "io/fs"

// Root is a validated directory the importer reads from or writes into.
// Roots are created by FilesystemManager.ResolveRoot, which resolves the
// path to an absolute one and checks that it is an existing directory.
type Root struct {
	absPath string
	info    fs.FileInfo
}

// NewRoot creates a Root from its components.
// This is primarily for use by FilesystemManager implementations.
func NewRoot(absPath string, info fs.FileInfo) *Root {
	return &Root{absPath: absPath, info: info}
}

// String returns the absolute path of the root.
func (r *Root) String() string {
	return r.absPath
}

// Info returns the stat info captured when the root was resolved.
func (r *Root) Info() fs.FileInfo {
	return r.info
}
