package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name string
		env  map[string]string
		want Defaults
	}{
		{
			name: "copypics variables win",
			env: map[string]string{
				"COPYPICS_CONFIG_PATH": "/custom/config.toml",
				"COPYPICS_HOME":        "/custom/copypics",
				"XDG_CONFIG_HOME":      "/xdg/config",
				"XDG_DATA_HOME":        "/xdg/data",
			},
			want: Defaults{
				ConfigPath: "/custom/config.toml",
				BaseDir:    "/custom/copypics",
				LogDir:     "/custom/copypics/log",
			},
		},
		{
			name: "xdg directories",
			env: map[string]string{
				"XDG_CONFIG_HOME": "/xdg/config",
				"XDG_DATA_HOME":   "/xdg/data",
			},
			want: Defaults{
				ConfigPath: "/xdg/config/copypics.toml",
				BaseDir:    "/xdg/data/copypics",
				LogDir:     "/xdg/data/copypics/log",
			},
		},
		{
			name: "relative xdg values ignored",
			env: map[string]string{
				"XDG_CONFIG_HOME": "config",
				"XDG_DATA_HOME":   "data",
			},
			want: Defaults{
				ConfigPath: filepath.Join(homeDir, ".config", "copypics.toml"),
				BaseDir:    filepath.Join(homeDir, ".local", "share", "copypics"),
				LogDir:     filepath.Join(homeDir, ".local", "share", "copypics", "log"),
			},
		},
		{
			name: "home directory fallback",
			want: Defaults{
				ConfigPath: filepath.Join(homeDir, ".config", "copypics.toml"),
				BaseDir:    filepath.Join(homeDir, ".local", "share", "copypics"),
				LogDir:     filepath.Join(homeDir, ".local", "share", "copypics", "log"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"COPYPICS_CONFIG_PATH", "COPYPICS_HOME", "XDG_CONFIG_HOME", "XDG_DATA_HOME"} {
				t.Setenv(key, tt.env[key])
			}

			got, err := GetDefaults()
			if err != nil {
				t.Fatalf("GetDefaults() error = %v", err)
			}
			if *got != tt.want {
				t.Errorf("GetDefaults() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}
