package testutil

import (
	"io"
	"io/fs"
	"sync"

	"copypics/internal/pics"
)

// FaultyFilesystemManager wraps a real FilesystemManager and fails chosen
// operations on chosen paths. Running tests as root makes permission-based
// failures unreliable, so tests inject them here instead.
type FaultyFilesystemManager struct {
	pics.FilesystemManager

	mu        sync.Mutex
	readDir   map[string]error
	open      map[string]error
	mkdir     map[string]error
	copyFile  map[string]error // keyed by source path
	listed    []string
	openCalls map[string]int
}

// NewFaultyFilesystemManager wraps inner. With no failures configured it
// behaves exactly like inner.
func NewFaultyFilesystemManager(inner pics.FilesystemManager) *FaultyFilesystemManager {
	return &FaultyFilesystemManager{
		FilesystemManager: inner,
		readDir:           make(map[string]error),
		open:              make(map[string]error),
		mkdir:             make(map[string]error),
		copyFile:          make(map[string]error),
		openCalls:         make(map[string]int),
	}
}

// FailReadDir makes ReadDir(dir) return err.
func (m *FaultyFilesystemManager) FailReadDir(dir string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readDir[dir] = err
}

// FailOpen makes Open(path) return err.
func (m *FaultyFilesystemManager) FailOpen(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open[path] = err
}

// FailMkdir makes Mkdir(path) return err.
func (m *FaultyFilesystemManager) FailMkdir(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdir[path] = err
}

// FailCopy makes CopyFile(src, _) return err.
func (m *FaultyFilesystemManager) FailCopy(src string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyFile[src] = err
}

// Listed returns every directory passed to ReadDir, in call order.
func (m *FaultyFilesystemManager) Listed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.listed...)
}

// OpenCount returns how many times path was opened.
func (m *FaultyFilesystemManager) OpenCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openCalls[path]
}

func (m *FaultyFilesystemManager) ReadDir(dir string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	m.listed = append(m.listed, dir)
	err := m.readDir[dir]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.FilesystemManager.ReadDir(dir)
}

func (m *FaultyFilesystemManager) Open(path string) (io.ReadSeekCloser, error) {
	m.mu.Lock()
	m.openCalls[path]++
	err := m.open[path]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.FilesystemManager.Open(path)
}

func (m *FaultyFilesystemManager) Mkdir(path string) error {
	m.mu.Lock()
	err := m.mkdir[path]
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.FilesystemManager.Mkdir(path)
}

func (m *FaultyFilesystemManager) CopyFile(src, dst string) (int64, error) {
	m.mu.Lock()
	err := m.copyFile[src]
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return m.FilesystemManager.CopyFile(src, dst)
}

// Compile-time check
var _ pics.FilesystemManager = (*FaultyFilesystemManager)(nil)
