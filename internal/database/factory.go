package database

import (
	"fmt"
	"os"
	"path/filepath"

	"tagspace/internal/config"
	"tagspace/internal/tagspace"
)

// NewDatabaseFromConfig opens the index selected by cfg.Type. A sqlite index
// lives in DataDir, one file per host.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, hostID string) (tagspace.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		return NewSQLiteDatabase(SQLitePath(cfg, hostID))
	case "memory":
		return NewSQLiteDatabase(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// SQLitePath is the index file of hostID under cfg.DataDir.
func SQLitePath(cfg config.DatabaseConfig, hostID string) string {
	return filepath.Join(cfg.DataDir, hostID+".db")
}
