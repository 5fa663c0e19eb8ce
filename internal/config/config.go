package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults applied by NewConfig and to settings missing from a config file.
const (
	DefaultLogLevel   = "info"
	DefaultLedgerType = "text"
	DefaultUnknownDir = "Unknown"
	DefaultCollision  = "rename"
)

// DefaultPatterns selects the files imported when import.patterns is unset.
var DefaultPatterns = []string{"*.jpg", "*.jpeg", "*.heic"}

// Config represents the main configuration for copypics.
type Config struct {
	BaseDir  string        `toml:"base_dir"`
	LogDir   string        `toml:"log_dir"`
	LogLevel string        `toml:"log_level"` // "debug", "info", "warn" or "error"
	Ledger   LedgerConfig  `toml:"ledger"`
	Import   ImportConfig  `toml:"import"`
	Metrics  MetricsConfig `toml:"metrics"`
}

// LedgerConfig selects where fingerprints of imported content are kept.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type LedgerConfig struct {
	Type string `toml:"type"` // "text", "sqlite" or "memory"

	// Path overrides the ledger location. By default the ledger lives in the
	// destination root (Hashfile.txt for text, .copypics.db for sqlite).
	Path string `toml:"path,omitempty"`
}

// ImportConfig controls which files are imported and where they go.
type ImportConfig struct {
	Patterns   []string `toml:"patterns"`
	Exclude    []string `toml:"exclude"`
	UnknownDir string   `toml:"unknown_dir"`
	Collision  string   `toml:"collision"` // "rename", "skip" or "overwrite"
}

// MetricsConfig controls the node_exporter textfile written after each run.
type MetricsConfig struct {
	TextfilePath string `toml:"textfile_path,omitempty"` // empty disables the export
}

// NewConfig creates a new Config rooted at baseDir with every default filled in.
func NewConfig(baseDir string) *Config {
	cfg := &Config{BaseDir: baseDir}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in settings left empty.
func (c *Config) applyDefaults() {
	if c.LogDir == "" && c.BaseDir != "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Ledger.Type == "" {
		c.Ledger.Type = DefaultLedgerType
	}
	if len(c.Import.Patterns) == 0 {
		c.Import.Patterns = append([]string(nil), DefaultPatterns...)
	}
	if c.Import.UnknownDir == "" {
		c.Import.UnknownDir = DefaultUnknownDir
	}
	if c.Import.Collision == "" {
		c.Import.Collision = DefaultCollision
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Unknown keys are rejected
// so that typos do not silently fall back to defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path and fills in defaults. A missing file is
// not an error: copypics runs without one, using NewConfig(baseDir).
func Load(path, baseDir string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewConfig(baseDir), nil
	}
	if err != nil {
		return nil, err
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = baseDir
	}
	cfg.applyDefaults()
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to a new config file at path. An existing file is never overwritten.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
