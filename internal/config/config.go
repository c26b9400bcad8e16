package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the tagspace configuration file.
type Config struct {
	HostID     string           `toml:"host_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level"` // debug, info, warn, error
	Database   DatabaseConfig   `toml:"database"`
	Scan       ScanConfig       `toml:"scan"`
	Snapshot   SnapshotConfig   `toml:"snapshot"`
	Vaults     []VaultConfig    `toml:"vaults"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// DatabaseConfig selects the index store. Type is "sqlite" or "memory";
// DataDir is only used for sqlite.
type DatabaseConfig struct {
	Type    string `toml:"type"`
	DataDir string `toml:"data_dir,omitempty"`
}

// ScanConfig tunes update passes.
type ScanConfig struct {
	// HashWorkers bounds concurrent hashing; zero means one per CPU.
	HashWorkers int `toml:"hash_workers"`

	// Ignore holds gitignore-style patterns matched against paths relative
	// to each source root.
	Ignore []string `toml:"ignore"`
}

// SnapshotConfig controls uploading the index to the first vault after a
// command that changed it.
type SnapshotConfig struct {
	Enabled bool `toml:"enabled"`
	Encrypt bool `toml:"encrypt"`
}

// VaultConfig is a tagged union: Type ("memory", "filesystem" or "s3")
// decides which of the remaining fields apply.
type VaultConfig struct {
	Type string `toml:"type"`
	Name string `toml:"name"`

	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`

	// S3Endpoint points at an S3-compatible service instead of AWS. Static
	// keys are used when both are set, else the default credential chain.
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// EncryptionConfig holds the age key pair used to seal snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig returns a config rooted at baseDir with a sqlite index.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:   hostID,
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Scan: ScanConfig{
			HashWorkers: runtime.NumCPU(),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "tagspace.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "tagspace.key"),
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.HostID == "" {
		return fmt.Errorf("host_id is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.Database.Type {
	case "memory":
	case "sqlite":
		if c.Database.DataDir == "" {
			return fmt.Errorf("database.data_dir required for sqlite")
		}
	default:
		return fmt.Errorf("unknown database type %q", c.Database.Type)
	}
	if c.Scan.HashWorkers < 0 {
		return fmt.Errorf("scan.hash_workers must not be negative")
	}
	if c.Snapshot.Enabled && len(c.Vaults) == 0 {
		return fmt.Errorf("snapshot.enabled requires at least one vault")
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
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

// ReadFromFile reads and validates the config at path.
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
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

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

// Init writes cfg to path, refusing to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
