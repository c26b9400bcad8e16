package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Defaults are the paths used when no flag or config overrides them.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults resolves the default paths. Environment variables win:
//   - TAGSPACE_CONFIG_PATH: config file (default ~/.config/tagspace.toml)
//   - TAGSPACE_HOME: data directory (default ~/.local/share/tagspace)
func GetDefaults() (*Defaults, error) {
	configPath := os.Getenv("TAGSPACE_CONFIG_PATH")
	baseDir := os.Getenv("TAGSPACE_HOME")

	if configPath == "" || baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(homeDir, ".config", "tagspace.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(homeDir, ".local", "share", "tagspace")
		}
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}
