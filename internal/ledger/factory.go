package ledger

import (
	"fmt"
	"path/filepath"

	"copypics/internal/config"
	"copypics/internal/pics"
)

// NewLedgerFromConfig opens the Ledger selected by cfg.Type. Unless cfg.Path
// is set, file-backed ledgers live in destRoot.
func NewLedgerFromConfig(cfg config.LedgerConfig, destRoot string, logger pics.Logger) (pics.Ledger, error) {
	switch cfg.Type {
	case "text", "":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(destRoot, DefaultTextFilename)
		}
		return OpenTextLedger(path, logger)
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(destRoot, DefaultSQLiteFilename)
		}
		return OpenSQLiteLedger(path)
	case "memory":
		return NewMemoryLedger(), nil
	default:
		return nil, fmt.Errorf("unknown ledger type: %s", cfg.Type)
	}
}
