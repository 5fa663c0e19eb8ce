package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults holds the per-user locations copypics falls back to when the
// config file or command line does not name them.
type Defaults struct {
	ConfigPath string
	// BaseDir holds the text and sqlite ledgers when they have no explicit path.
	BaseDir string
	LogDir  string
}

// GetDefaults resolves the per-user locations. In order of preference:
//   - config file: COPYPICS_CONFIG_PATH, $XDG_CONFIG_HOME/copypics.toml, ~/.config/copypics.toml
//   - data dir: COPYPICS_HOME, $XDG_DATA_HOME/copypics, ~/.local/share/copypics
//
// Logs always go to the log directory under the data dir.
func GetDefaults() (*Defaults, error) {
	configPath, err := userPath("COPYPICS_CONFIG_PATH", "XDG_CONFIG_HOME", ".config", "copypics.toml")
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	baseDir, err := userPath("COPYPICS_HOME", "XDG_DATA_HOME", filepath.Join(".local", "share"), "copypics")
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// userPath returns the override variable verbatim, or name under the XDG
// directory, or name under homeRel in the home directory. A relative XDG
// value is ignored, following the XDG base directory rules.
func userPath(override, xdgVar, homeRel, name string) (string, error) {
	if path := os.Getenv(override); path != "" {
		return path, nil
	}
	if dir := os.Getenv(xdgVar); filepath.IsAbs(dir) {
		return filepath.Join(dir, name), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, homeRel, name), nil
}
