package pics

import "time"

// Ledger is the persisted set of fingerprints of content that has already
// been imported. It is loaded once before a run and persisted once after.
//
// Implementations must make ContainsAndMark atomic: two callers must never
// both observe the same fingerprint as unseen.
type Ledger interface {
	// ContainsAndMark records fp and returns true if it was not already present.
	// If fp was already present the ledger is unchanged and false is returned.
	ContainsAndMark(fp Fingerprint) (unique bool, err error)

	// Forget removes fp. It is used to undo a mark when the import that
	// followed it failed. Forgetting an absent fingerprint is a no-op.
	Forget(fp Fingerprint) error

	// Len returns the number of fingerprints in the ledger.
	Len() (int, error)

	// Persist writes the current set to durable storage.
	Persist() error

	// Close releases any resources held by the ledger. It does not persist.
	Close() error
}

// ImportRun is the record of one invocation of the importer.
type ImportRun struct {
	ID          string
	Source      string
	Destination string
	StartedAt   time.Time
	FinishedAt  time.Time // zero while the run is in progress
	Status      string    // "running", "success" or "error"
	Imported    int
	Duplicates  int
	Failures    int
}

// RunHistory is implemented by ledgers that can also keep a history of runs.
type RunHistory interface {
	StartRun(run *ImportRun) error
	FinishRun(run *ImportRun) error
	ListRuns(limit int) ([]*ImportRun, error)
}
