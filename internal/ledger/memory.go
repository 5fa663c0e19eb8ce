package ledger

import (
	"sync"

	"copypics/internal/pics"
)

// MemoryLedger is an in-memory Ledger. Nothing survives the process, which
// makes it useful for tests and dry runs.
// This implementation is safe for concurrent use.
type MemoryLedger struct {
	mu        sync.Mutex
	set       map[pics.Fingerprint]struct{}
	persisted int
}

// NewMemoryLedger creates a ledger that already contains fps.
func NewMemoryLedger(fps ...pics.Fingerprint) *MemoryLedger {
	m := &MemoryLedger{set: make(map[pics.Fingerprint]struct{}, len(fps))}
	for _, fp := range fps {
		m.set[fp] = struct{}{}
	}
	return m
}

func (m *MemoryLedger) ContainsAndMark(fp pics.Fingerprint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.set[fp]; ok {
		return false, nil
	}
	m.set[fp] = struct{}{}
	return true, nil
}

func (m *MemoryLedger) Forget(fp pics.Fingerprint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.set, fp)
	return nil
}

func (m *MemoryLedger) Len() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.set), nil
}

// Contains reports whether fp is in the ledger without marking it.
func (m *MemoryLedger) Contains(fp pics.Fingerprint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.set[fp]
	return ok
}

// Persist only counts calls.
func (m *MemoryLedger) Persist() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.persisted++
	return nil
}

// PersistCount returns how many times Persist was called.
func (m *MemoryLedger) PersistCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.persisted
}

func (m *MemoryLedger) Close() error {
	return nil
}

var _ pics.Ledger = (*MemoryLedger)(nil)
